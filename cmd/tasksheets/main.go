package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/tasksheets/tasksheets/commands"
)

var cli = []commands.Command{
	&commands.ServeCmd,
	&commands.InitCmd,
	&commands.ExportCmd,
	&commands.ImportCmd,
	&commands.VersionCmd,
}

var options = commands.Options{
	Debug: false,
}

func main() {
	flag.BoolVar(&options.Debug, "debug", options.Debug, "Enable debugging information")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) > 0 && args[0] == "help" {
		help(args[1:])
		return
	}

	cmd, err := commands.Parse(cli, args)
	if err != nil {
		fmt.Printf("\nError parsing command line: %v\n\n", err)
		os.Exit(1)
	}

	// no command runs the web application, which is what the hosting
	// platform's start command expects
	if cmd == nil {
		cmd = &commands.ServeCmd
	}

	if err := cmd.Execute(&options); err != nil {
		log.Fatalf("ERROR: %v", err)
	}
}

func help(args []string) {
	if len(args) > 0 {
		for _, cmd := range cli {
			if cmd.Name() == args[0] {
				cmd.Help()
				return
			}
		}

		fmt.Printf("\nUnknown command '%s'\n", args[0])
	}

	usage()
}

func usage() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] <command> [options]\n", commands.APP)
	fmt.Println()
	fmt.Println("  Commands:")

	for _, cmd := range cli {
		fmt.Printf("    %-9s %s\n", cmd.Name(), cmd.Description())
	}

	fmt.Println()
	fmt.Printf("  Defaults to 'serve' when no command is given. '%s help <command>' displays the command options.\n", commands.APP)
	fmt.Println()
}
