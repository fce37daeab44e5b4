package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"offerletter/internal/config"
	oerrors "offerletter/internal/errors"
	"offerletter/internal/letter"
	"offerletter/internal/mcp"
	"offerletter/internal/service"
	"offerletter/internal/tui"
	"offerletter/internal/watcher"
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	headColor = color.New(color.FgCyan, color.Bold)
	dimColor  = color.New(color.FgHiBlack)
)

// newCLIApp creates the CLI application with all commands. Command output
// goes to out; diagnostics go to the standard logger.
func newCLIApp(out io.Writer) *cli.App {
	app := &cli.App{
		Name:    "offerletter",
		Usage:   "Generate employee offer letters from the roster and HR policies",
		Version: Version,
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Path to YAML config file (defaults to ./config.yaml or ~/.config/offerletter/config.yaml)"},
		},
		Action: tuiAction,
		Commands: []*cli.Command{
			tuiCmd(),
			generateCmd(out),
			rosterCmd(out),
			ingestCmd(out),
			mcpCmd(),
		},
	}
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func loadConfig(c *cli.Context) (*config.AppConfig, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	cfg, _, err := config.LoadDefault()
	return cfg, err
}

// ready loads config, builds the service and ingests. Ingestion errors are
// returned together with the service so callers may still use it.
func ready(c *cli.Context, logger *log.Logger) (*config.AppConfig, *service.Service, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, outputError(err)
	}
	svc, err := newService(cfg, logger)
	if err != nil {
		return nil, nil, outputError(err)
	}
	return cfg, svc, svc.Ingest(c.Context)
}

func tuiCmd() *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Interactive letter generator (default)",
		Action: tuiAction,
	}
}

func tuiAction(c *cli.Context) error {
	logPath := filepath.Join(os.TempDir(), "offerletter.log")
	f, err := tea.LogToFile(logPath, "offerletter")
	if err != nil {
		return outputError(err)
	}
	defer f.Close()

	cfg, svc, err := ready(c, log.Default())
	if svc == nil {
		return err
	}
	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()
	if cfg.Watch.Enabled {
		if err := startWatcher(ctx, cfg, svc, log.Default()); err != nil {
			log.Printf("watch disabled: %v", err)
		}
	}

	m := tui.New(svc, svc.Sources().Paths(), cfg.Output.Dir)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return outputError(err)
	}
	return nil
}

func generateCmd(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Print the offer letter for an employee",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true, Usage: "Employee name or part of it"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Also save the letter into this directory"},
			&cli.BoolFlag{Name: "show-context", Usage: "Print the retrieved policy passages after the letter"},
		},
		Action: func(c *cli.Context) error {
			_, svc, err := ready(c, log.New(os.Stderr, "offerletter: ", log.LstdFlags))
			if err != nil {
				return outputError(err)
			}
			offer, err := svc.Prepare(c.Context, c.String("name"))
			if err != nil {
				return outputError(err)
			}
			text := service.Render(offer)
			fmt.Fprint(out, text)

			if dir := c.String("out"); dir != "" {
				path, err := letter.Save(dir, offer.Employee.Name, text)
				if err != nil {
					return outputError(err)
				}
				okColor.Fprintf(out, "saved %s\n", path)
			}
			if c.Bool("show-context") {
				headColor.Fprintln(out, "\nRetrieved policy context")
				for i, r := range offer.Context {
					dimColor.Fprintf(out, "#%d [%s] chunk %d score=%.3f\n", i+1, r.Chunk.Source, r.Chunk.ID, r.Score)
					fmt.Fprintln(out, r.Chunk.Text)
				}
			}
			return nil
		},
	}
}

func rosterCmd(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "roster",
		Usage: "List the employees available for offer letters",
		Action: func(c *cli.Context) error {
			_, svc, err := ready(c, log.New(os.Stderr, "offerletter: ", log.LstdFlags))
			if err != nil {
				return outputError(err)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			headColor.Fprintln(tw, "NAME\tBAND\tDEPARTMENT\tLOCATION\tJOINING")
			for _, e := range svc.Employees() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Name, e.Band, e.Department, e.Location, e.JoiningDate.Format(time.DateOnly))
			}
			return tw.Flush()
		},
	}
}

func ingestCmd(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "ingest",
		Usage: "Check the roster and policy files and report what was indexed",
		Action: func(c *cli.Context) error {
			_, svc, err := ready(c, log.New(io.Discard, "", 0))
			if svc == nil {
				return err
			}
			for _, p := range svc.Sources().Paths() {
				dimColor.Fprintf(out, "  %s\n", p)
			}
			if err != nil {
				return outputError(err)
			}
			st := svc.Status()
			okColor.Fprintf(out, "ready: %d employees, %d policy chunks\n", st.Employees, st.Chunks)
			return nil
		},
	}
}

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve offer tools over MCP stdio",
		Action: func(c *cli.Context) error {
			logger := log.New(os.Stderr, "offerletter: ", log.LstdFlags)
			cfg, svc, err := ready(c, logger)
			if svc == nil {
				return err
			}
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
			defer stop()
			if cfg.Watch.Enabled {
				if err := startWatcher(ctx, cfg, svc, logger); err != nil {
					logger.Printf("watch disabled: %v", err)
				}
			}
			return mcp.Run(svc, Version)
		},
	}
}

func startWatcher(ctx context.Context, cfg *config.AppConfig, svc *service.Service, logger *log.Logger) error {
	w, err := watcher.New(svc.Sources().Paths(), time.Duration(cfg.Watch.DebounceMs)*time.Millisecond, svc.Ingest, logger)
	if err != nil {
		return err
	}
	go func() {
		defer w.Close()
		w.Run(ctx)
	}()
	return nil
}

// outputError formats an error for the CLI.
func outputError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(cli.ExitCoder); ok {
		return err
	}
	code := oerrors.CodeOf(err)
	var oErr *oerrors.OfferError
	if !errors.As(err, &oErr) {
		return cli.Exit(err.Error(), exitStatus(code))
	}
	msg := fmt.Sprintf("[%s] %s", oErr.Code, oErr.Message)
	if oErr.Cause != nil {
		msg += ": " + oErr.Cause.Error()
	}
	if code == oerrors.ErrEmployeeNotFound {
		msg += " (run 'offerletter roster' to list employees)"
	}
	return cli.Exit(msg, exitStatus(code))
}

// exitStatus is 2 for bad input or configuration and 1 for everything else.
func exitStatus(code oerrors.ErrorCode) int {
	switch code {
	case oerrors.ErrConfig, oerrors.ErrInvalidRequest:
		return 2
	}
	return 1
}
