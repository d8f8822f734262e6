package commands

import (
	"context"
	"flag"
	"fmt"

	"github.com/tasksheets/tasksheets/config"
)

var InitCmd = Init{
	worksheet:   "",
	credentials: "",
	debug:       false,
}

// Init creates the 'Todos' worksheet and its header row if they are missing.
// Safe to run repeatedly - an intact worksheet is left untouched.
type Init struct {
	worksheet   string
	credentials string
	debug       bool
}

func (cmd *Init) Name() string {
	return "init"
}

func (cmd *Init) Description() string {
	return "Creates the todo worksheet and header row if they are missing"
}

func (cmd *Init) Usage() string {
	return "[--credentials <file>] [--worksheet <name>]"
}

func (cmd *Init) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] init [options]\n", APP)
	fmt.Println()
	fmt.Println("  Creates the todo worksheet in the spreadsheet configured by SPREADSHEET_ID, along with")
	fmt.Println("  the canonical header row. A malformed header is rewritten in place")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s init --credentials credentials.json\n", APP)
	fmt.Println()
}

func (cmd *Init) FlagSet() *flag.FlagSet {
	flagset := flag.NewFlagSet("init", flag.ExitOnError)

	flagset.StringVar(&cmd.credentials, "credentials", cmd.credentials, "Path to the service account key file. Defaults to the GOOGLE_CREDENTIALS environment variable")
	flagset.StringVar(&cmd.worksheet, "worksheet", cmd.worksheet, "Worksheet title. Defaults to the WORKSHEET environment variable")

	return flagset
}

func (cmd *Init) Execute(args ...any) error {
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

	if err := store.Init(ctx); err != nil {
		return err
	}

	infof("worksheet %q is ready in spreadsheet %s", cfg.Worksheet, cfg.SpreadsheetID)

	return nil
}
