package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/vango-dev/routetree/internal/config"
	"github.com/vango-dev/routetree/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}

	if err := newRootCmd(env, os.Stdout, os.Stderr).Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

// cli carries what every command needs.
type cli struct {
	env    *config.Env
	out    io.Writer
	logger *slog.Logger
}

func newRootCmd(env *config.Env, stdout, stderr io.Writer) *cobra.Command {
	c := &cli{
		env: env,
		out: stdout,
		logger: slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
			Level: env.LogLevel,
		})),
	}

	rootCmd := &cobra.Command{
		Use:   "routetree",
		Short: "Inspect and serve route maps",
		Long: `routetree compiles nested route maps into ordered path matchers.

Use it to list the matchers of a map, resolve paths, build URLs and
run a live preview server. Route maps are JSON, YAML or TOML files,
local or on S3.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVarP(&env.Routes, "routes", "r", env.Routes,
		"Route map file or s3://bucket/key URI (env ROUTETREE_ROUTES)")

	rootCmd.AddCommand(
		c.routesCmd(),
		c.matchCmd(),
		c.generateCmd(),
		c.validateCmd(),
		c.serveCmd(),
		c.versionCmd(),
	)
	return rootCmd
}

// success prints a success message.
func (c *cli) success(format string, args ...any) {
	fmt.Fprintf(c.out, "%s %s\n", successStyle.Render("✓"), fmt.Sprintf(format, args...))
}
