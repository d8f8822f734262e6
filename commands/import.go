package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/tasksheets/tasksheets/config"
	"github.com/tasksheets/tasksheets/sheets"
)

var ImportCmd = Import{
	file:        "",
	worksheet:   "",
	credentials: "",
	debug:       false,
}

// Import replaces the todo worksheet contents with the todos from a TSV file.
type Import struct {
	file        string
	worksheet   string
	credentials string
	debug       bool
}

func (cmd *Import) Name() string {
	return "import"
}

func (cmd *Import) Description() string {
	return "Replaces the todo list with the contents of a TSV file"
}

func (cmd *Import) Usage() string {
	return "--file <file>"
}

func (cmd *Import) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] import [options] --file <file>\n", APP)
	fmt.Println()
	fmt.Println("  Replaces the todo worksheet contents with the todos from a TSV file. The existing")
	fmt.Println("  rows are cleared - export first if you need a backup")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s import --file todos.tsv\n", APP)
	fmt.Println()
}

func (cmd *Import) FlagSet() *flag.FlagSet {
	flagset := flag.NewFlagSet("import", flag.ExitOnError)

	flagset.StringVar(&cmd.file, "file", cmd.file, "TSV file to import")
	flagset.StringVar(&cmd.credentials, "credentials", cmd.credentials, "Path to the service account key file. Defaults to the GOOGLE_CREDENTIALS environment variable")
	flagset.StringVar(&cmd.worksheet, "worksheet", cmd.worksheet, "Worksheet title. Defaults to the WORKSHEET environment variable")

	return flagset
}

func (cmd *Import) Execute(args ...any) error {
	options := args[0].(*Options)

	cmd.debug = options.Debug

	// ... check parameters
	if strings.TrimSpace(cmd.file) == "" {
		return fmt.Errorf("--file is a required option")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cmd.credentials != "" {
		cfg.CredentialsFile = cmd.credentials
	}

	if cmd.worksheet != "" {
		cfg.Worksheet = cmd.worksheet
	}

	if cmd.debug {
		cfg.Debug = true
	}

	f, err := os.Open(cmd.file)
	if err != nil {
		return err
	}

	defer f.Close()

	todos, err := sheets.ReadTSV(f)
	if err != nil {
		return fmt.Errorf("error reading TSV file (%v)", err)
	}

	ctx := context.Background()

	store, err := makeStore(ctx, cfg)
	if err != nil {
		return err
	}

	if err := store.Init(ctx); err != nil {
		return err
	}

	if err := store.Replace(ctx, todos); err != nil {
		return err
	}

	if len(todos) == 0 {
		warnf("file %s contains no todos - the worksheet has been cleared", cmd.file)
	} else {
		infof("imported %v todos from file %s", len(todos), cmd.file)
	}

	return nil
}
