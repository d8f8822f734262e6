package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tasksheets/tasksheets/config"
	"github.com/tasksheets/tasksheets/sheets"
)

var ExportCmd = Export{
	file:        time.Now().Format("todos-2006-01-02T150405.tsv"),
	worksheet:   "",
	credentials: "",
	debug:       false,
}

// Export downloads the todo list to a TSV file, completed todos included.
type Export struct {
	file        string
	worksheet   string
	credentials string
	debug       bool
}

func (cmd *Export) Name() string {
	return "export"
}

func (cmd *Export) Description() string {
	return "Downloads the todo list to a TSV file"
}

func (cmd *Export) Usage() string {
	return "--file <file>"
}

func (cmd *Export) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] export [options] --file <file>\n", APP)
	fmt.Println()
	fmt.Println("  Downloads the todo worksheet to a TSV file, completed todos included")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s export --file todos.tsv\n", APP)
	fmt.Println()
}

func (cmd *Export) FlagSet() *flag.FlagSet {
	flagset := flag.NewFlagSet("export", flag.ExitOnError)

	flagset.StringVar(&cmd.file, "file", cmd.file, "TSV file name. Defaults to 'todos-<yyyy-mm-dd>T<HHmmss>.tsv'")
	flagset.StringVar(&cmd.credentials, "credentials", cmd.credentials, "Path to the service account key file. Defaults to the GOOGLE_CREDENTIALS environment variable")
	flagset.StringVar(&cmd.worksheet, "worksheet", cmd.worksheet, "Worksheet title. Defaults to the WORKSHEET environment variable")

	return flagset
}

func (cmd *Export) Execute(args ...any) error {
	options := args[0].(*Options)

	cmd.debug = options.Debug

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

	ctx := context.Background()

	store, err := makeStore(ctx, cfg)
	if err != nil {
		return err
	}

	todos, err := store.List(ctx)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(os.TempDir(), "todos")
	if err != nil {
		return err
	}

	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := sheets.WriteTSV(tmp, todos); err != nil {
		return fmt.Errorf("error creating TSV file (%v)", err)
	}

	tmp.Close()

	dir := filepath.Dir(cmd.file)
	if err := os.MkdirAll(dir, 0770); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), cmd.file); err != nil {
		return err
	}

	infof("exported %v todos to file %s", len(todos), cmd.file)

	return nil
}
