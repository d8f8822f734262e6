package commands

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/tasksheets/tasksheets/config"
	"github.com/tasksheets/tasksheets/credentials"
	"github.com/tasksheets/tasksheets/sheets"
)

const APP = "tasksheets"

// Options holds the global (pre-command) command line options.
type Options struct {
	Debug bool
}

// Command is a CLI subcommand. Execute receives the global Options as its
// first argument.
type Command interface {
	Name() string
	Description() string
	Usage() string
	Help()
	FlagSet() *flag.FlagSet
	Execute(args ...any) error
}

// Parse matches the first argument against the command list and parses the
// remaining arguments with the command's flag set. Returns nil (and no error)
// when there are no arguments at all.
func Parse(cli []Command, args []string) (Command, error) {
	if len(args) == 0 {
		return nil, nil
	}

	for _, cmd := range cli {
		if cmd.Name() == args[0] {
			if err := cmd.FlagSet().Parse(args[1:]); err != nil {
				return nil, err
			}

			return cmd, nil
		}
	}

	return nil, fmt.Errorf("unknown command '%s'", args[0])
}

// makeStore wires configuration and credentials into a worksheet store.
func makeStore(ctx context.Context, cfg *config.Config) (*sheets.Store, error) {
	creds, err := credentials.Resolve(cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}

	if cfg.Debug {
		debugf("using service account %s (from %s)", creds.ClientEmail(), creds.Source())
	}

	return sheets.NewStore(ctx, cfg.SpreadsheetID, cfg.Worksheet, creds.ClientEmail(), creds.ClientOption())
}

func helpOptions(flagset *flag.FlagSet) {
	fmt.Println("  Options:")
	flagset.VisitAll(func(f *flag.Flag) {
		fmt.Printf("    --%-13s %s\n", f.Name, f.Usage)
	})
}

func debugf(format string, args ...any) {
	log.Printf("%-5s %s", "DEBUG", fmt.Sprintf(format, args...))
}

func infof(format string, args ...any) {
	log.Printf("%-5s %s", "INFO", fmt.Sprintf(format, args...))
}

func warnf(format string, args ...any) {
	log.Printf("%-5s %s", "WARN", fmt.Sprintf(format, args...))
}
