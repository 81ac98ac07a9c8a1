package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/minigrep"
	"github.com/XiaoConstantine/minigrep/internal/config"
	"github.com/XiaoConstantine/minigrep/internal/render"
	"github.com/XiaoConstantine/minigrep/pkg/util"
)

// Version is the minigrep release.
const Version = "0.1.0"

// Process exit codes.
const (
	ExitMatch   = 0
	ExitNoMatch = 1
	ExitError   = 2
)

// errNoMatches ends a successful run that found nothing.
var errNoMatches = errors.New("no matches")

// Execute runs the root command with the process arguments and returns the
// exit code.
func Execute() int {
	return run(os.Args[1:], os.Stdout, os.Stderr, os.LookupEnv)
}

func run(args []string, stdout, stderr io.Writer, lookup config.LookupFunc) int {
	cmd := NewRootCommand(stdout, stderr, lookup)
	cmd.SetArgs(args)

	err := cmd.Execute()
	switch {
	case err == nil:
		return ExitMatch
	case errors.Is(err, errNoMatches):
		return ExitNoMatch
	default:
		_, _ = fmt.Fprintf(stderr, "minigrep: %v\n", err)
		return ExitError
	}
}

// NewRootCommand builds the minigrep command. Output goes to stdout and
// stderr; environment variables are read through lookup.
func NewRootCommand(stdout, stderr io.Writer, lookup config.LookupFunc) *cobra.Command {
	flags := config.Default()

	cmd := &cobra.Command{
		Use:   "minigrep [flags] <query> [path]",
		Short: "Search files for lines matching a query",
		Long: `minigrep prints the lines of a file that contain a query.

Matching lines print as "N:text" and context lines as "N~text", with "--"
between runs that are not adjacent. With -r every text file under a directory
is searched and each file's lines follow a "File: <path>" header.

Exit status is 0 when a line matched, 1 when nothing matched, 2 on error.

Settings are read from .minigrep.yaml (or --config), then MINIGREP_*
environment variables, then flags.`,
		Version:       Version,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.File, lookup)
			if err != nil {
				return err
			}
			cfg.MergeFlags(cmd.Flags(), flags)
			if err := applyArgs(cfg, args); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runSearch(cmd.Context(), cfg, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.Flags().SortFlags = false
	config.RegisterFlags(cmd.Flags(), flags)

	return cmd
}

// applyArgs fills the query and path from positional arguments. A recursive
// search defaults to the working directory.
func applyArgs(cfg *config.Config, args []string) error {
	if len(args) > 0 {
		cfg.Query = args[0]
	} else if cfg.Query == "" {
		return errors.New("missing query")
	}
	if len(args) > 1 {
		cfg.Path = args[1]
	}
	if cfg.Path == "" {
		if !cfg.Recursive {
			return errors.New("missing file path")
		}
		cfg.Path = "."
	}
	return nil
}

func runSearch(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error {
	util.SetDebugWriter(stderr)
	util.SetDebugLevel(util.DebugLevel(cfg.Debug))
	if cfg.File != "" {
		util.Debugf(util.DebugSummary, "config loaded from %s", cfg.File)
	}

	client, err := minigrep.New(cfg.Path, minigrep.Options{
		Pattern:    cfg.Query,
		Regex:      cfg.Regex,
		IgnoreCase: cfg.IgnoreCase,
		Context:    cfg.Context,
		Recursive:  cfg.Recursive,
		Exclude:    cfg.Exclude,
	})
	if err != nil {
		return err
	}
	defer client.Stats().PrintSummary()

	var outFile *os.File
	if f, ok := stdout.(*os.File); ok {
		outFile = f
	}
	colorOn := !cfg.JSON && render.ColorEnabled(cfg.Color, outFile)

	output := func(report *minigrep.Report) error {
		for _, f := range report.Failures {
			util.Warnf("skipped: %v", f.Err)
		}

		timer := client.Stats().Start("render").WithCount(int64(len(report.Files)))
		defer timer.Stop()
		if cfg.JSON {
			return render.JSON(stdout, report.Files)
		}
		return render.New(stdout, colorOn, cfg.Recursive, client.Query()).Render(report.Files)
	}

	if cfg.Watch {
		return watch(ctx, client, output)
	}

	report, err := client.Search()
	if err != nil {
		return err
	}
	util.Debugf(util.DebugSummary, "%d files searched, %d matching lines", report.FilesSearched, report.MatchCount())
	if err := output(report); err != nil {
		return err
	}
	if !report.HasMatches() {
		return errNoMatches
	}
	return nil
}

// watch prints a fresh result set after every change until interrupted.
// Search errors are reported and watching continues.
func watch(ctx context.Context, client *minigrep.Client, output func(*minigrep.Report) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return client.Watch(ctx, func(report *minigrep.Report, err error) {
		if err != nil {
			util.Warnf("%v", err)
			return
		}
		if err := output(report); err != nil {
			util.Warnf("%v", err)
		}
	})
}
