package commands

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tasksheets/tasksheets/config"
	"github.com/tasksheets/tasksheets/web"
)

var ServeCmd = Serve{
	port:        0,
	worksheet:   "",
	credentials: "",
	debug:       false,
}

// Serve runs the todo list web application. This is the default command - it
// is what the hosting platform's start command invokes.
type Serve struct {
	port        int
	worksheet   string
	credentials string
	debug       bool
}

func (cmd *Serve) Name() string {
	return "serve"
}

func (cmd *Serve) Description() string {
	return "Runs the todo list web application (default)"
}

func (cmd *Serve) Usage() string {
	return "[--port <port>] [--credentials <file>] [--worksheet <name>]"
}

func (cmd *Serve) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] serve [options]\n", APP)
	fmt.Println()
	fmt.Println("  Runs the todo list web application against the spreadsheet configured by SPREADSHEET_ID")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s serve\n", APP)
	fmt.Printf("    %s --debug serve --port 9090 --credentials credentials.json\n", APP)
	fmt.Println()
}

func (cmd *Serve) FlagSet() *flag.FlagSet {
	flagset := flag.NewFlagSet("serve", flag.ExitOnError)

	flagset.IntVar(&cmd.port, "port", cmd.port, "Listening port. Defaults to the PORT environment variable")
	flagset.StringVar(&cmd.credentials, "credentials", cmd.credentials, "Path to the service account key file. Defaults to the GOOGLE_CREDENTIALS environment variable")
	flagset.StringVar(&cmd.worksheet, "worksheet", cmd.worksheet, "Worksheet title. Defaults to the WORKSHEET environment variable")

	return flagset
}

func (cmd *Serve) Execute(args ...any) error {
	options := args[0].(*Options)

	cmd.debug = options.Debug

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// ... command line flags override the environment
	if cmd.port != 0 {
		cfg.Port = cmd.port
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := makeStore(ctx, cfg)
	if err != nil {
		return err
	}

	if err := store.Init(ctx); err != nil {
		return err
	}

	server, err := web.NewServer(store, cfg.SecretKey)
	if err != nil {
		return err
	}

	httpd := http.Server{
		Addr:    fmt.Sprintf(":%v", cfg.Port),
		Handler: server,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		infof("listening on %s", httpd.Addr)

		if err := httpd.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		infof("shutting down")

		timeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return httpd.Shutdown(timeout)
	})

	return g.Wait()
}
