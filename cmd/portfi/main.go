// Command portfi queries the PortFi backends from a terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/portfi/portfi-portal/internal/client"
	"github.com/portfi/portfi-portal/internal/common"
	"github.com/portfi/portfi-portal/internal/config"
)

var (
	configFile = flag.String("config", "", "Configuration file path (defaults and PORTFI_* env otherwise)")
	rawOutput  = flag.Bool("raw", false, "Print markdown without terminal styling")
	verbose    = flag.Bool("v", false, "Log diagnostics to stderr")
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&healthCmd{}, "backend")
	commander.Register(&chatCmd{}, "backend")
	commander.Register(&analyzeCmd{}, "backend")
	commander.Register(&marketCmd{}, "market")
	commander.Register(&searchCmd{}, "market")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// env is what every subcommand needs to reach the backends.
type env struct {
	cfg    *config.Config
	logger *common.Logger
	client *client.Client
}

func loadEnv() (*env, error) {
	cfg, err := config.LoadFromFile(*configFile)
	if err != nil {
		return nil, err
	}
	level := "error"
	if *verbose {
		level = "debug"
	}
	logger := common.NewLoggerWithOutput(level, os.Stderr)
	return &env{cfg: cfg, logger: logger, client: client.New(cfg.Backend, logger)}, nil
}

// render writes markdown to w, styled for the terminal unless -raw is set.
func render(w io.Writer, md string) error {
	if *rawOutput {
		_, err := io.WriteString(w, md)
		return err
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
	if err != nil {
		return err
	}
	out, err := r.Render(md)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func fail(format string, args ...interface{}) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return subcommands.ExitFailure
}
