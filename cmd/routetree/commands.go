package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/vango-dev/routetree/internal/config"
	"github.com/vango-dev/routetree/internal/dev"
	"github.com/vango-dev/routetree/pkg/router"
)

// load reads and validates the route map and returns a listening router.
func (c *cli) load(ctx context.Context) (*config.Config, *router.Router, error) {
	cfg, err := config.LoadURI(ctx, c.env.Routes, c.env.RemoteOptions()...)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	r, err := cfg.Router(router.WithLogger(c.logger))
	if err != nil {
		return nil, nil, err
	}
	return cfg, r, nil
}

func (c *cli) routesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the matchers of the route map",
		Long: `List the compiled matchers in resolution order.

Examples:
  routetree routes
  routetree routes --json
  routetree routes -r s3://my-bucket/routes.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, r, err := c.load(cmd.Context())
			if err != nil {
				return err
			}
			defer r.Destroy()

			rows := make([]dev.RouteInfo, 0, len(r.Matchers()))
			for _, m := range r.Matchers() {
				rows = append(rows, dev.RouteInfo{
					Name:          m.Name(),
					QualifiedName: m.Route().QualifiedName(),
					Path:          m.Path,
					Params:        m.ParamNames,
					Index:         m.Route().IsIndex(),
				})
			}

			if asJSON {
				enc := json.NewEncoder(c.out)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			fmt.Fprint(c.out, routeTable(rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

// routeTable renders rows as aligned columns.
func routeTable(rows []dev.RouteInfo) string {
	header := []string{"NAME", "QUALIFIED NAME", "PATH", "PARAMS"}
	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells = append(cells, []string{
			row.Name,
			row.QualifiedName,
			row.Path,
			strings.Join(row.Params, ","),
		})
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range cells {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	render := func(row []string, style lipgloss.Style) {
		parts := make([]string, len(row))
		for i, cell := range row {
			parts[i] = style.Width(widths[i]).Render(cell)
		}
		b.WriteString(strings.TrimRight(strings.Join(parts, "  "), " "))
		b.WriteString("\n")
	}

	render(header, headerStyle)
	for _, row := range cells {
		render(row, lipgloss.NewStyle())
	}
	return b.String()
}

func (c *cli) matchCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "match <path>",
		Short: "Resolve a path against the route map",
		Long: `Resolve a path and print the matched route chain, parameters and query.

Examples:
  routetree match /application/KidkArolis/status/42
  routetree match '#application/messages?page=2'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, r, err := c.load(cmd.Context())
			if err != nil {
				return err
			}
			defer r.Destroy()

			m := r.Match(args[0])
			if m == nil {
				return fmt.Errorf("no route matches %q", args[0])
			}

			result := dev.NewMatchResult(m)
			if asJSON {
				enc := json.NewEncoder(c.out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			fmt.Fprintf(c.out, "%s %s\n", headerStyle.Render("route:   "), result.Route)
			fmt.Fprintf(c.out, "%s %s\n", headerStyle.Render("chain:   "), strings.Join(result.Routes, " > "))
			fmt.Fprintf(c.out, "%s %s\n", headerStyle.Render("template:"), result.Template)
			printMap(c, "params:  ", result.Params)
			printMap(c, "query:   ", result.Query)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func printMap(c *cli, label string, m map[string]string) {
	if len(m) == 0 {
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + m[k]
	}
	fmt.Fprintf(c.out, "%s %s\n", headerStyle.Render(label), strings.Join(pairs, " "))
}

func (c *cli) generateCmd() *cobra.Command {
	var (
		params map[string]string
		query  map[string]string
	)

	cmd := &cobra.Command{
		Use:   "generate <name> [values...]",
		Short: "Build a URL for a named route",
		Long: `Build a URL for a named route. Values fill the route's parameters
in order; --param sets them by name and --query adds query parameters.

Examples:
  routetree generate messages
  routetree generate status KidkArolis 42 --query withReplies=true
  routetree generate status --param user=KidkArolis --param id=42`,
		Aliases: []string{"gen", "url"},
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, r, err := c.load(cmd.Context())
			if err != nil {
				return err
			}
			defer r.Destroy()

			url, err := r.Generate(args[0], dev.GenerateArgs(args[1:], params, query)...)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, url)
			return nil
		},
	}

	cmd.Flags().StringToStringVarP(&params, "param", "p", nil, "Named parameter (key=value)")
	cmd.Flags().StringToStringVarP(&query, "query", "q", nil, "Query parameter (key=value)")
	return cmd
}

func (c *cli) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the route map",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, r, err := c.load(cmd.Context())
			if err != nil {
				return err
			}
			defer r.Destroy()

			count := 0
			for _, route := range r.Routes() {
				route.Walk(func(*router.Route) { count++ })
			}
			source := c.env.Routes
			if cfg.Path() != "" {
				source = cfg.Path()
			}
			c.success("%s: %d routes, %d matchers", source, count, len(r.Matchers()))
			return nil
		},
	}
}

func (c *cli) serveCmd() *cobra.Command {
	var (
		addr    string
		watch   bool
		metrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the route preview server",
		Long: `Start an HTTP server that resolves paths and builds URLs with the
route map. Local route map files are watched and reloaded on change;
connected WebSocket clients are told about every reload.

Examples:
  routetree serve
  routetree serve --addr=0.0.0.0:8080 --watch=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server := dev.NewServer(dev.ServerOptions{
				Routes:  c.env.Routes,
				Addr:    addr,
				Watch:   watch,
				Metrics: metrics,
				Logger:  c.logger,
				Remote:  c.env.RemoteOptions(),
				OnReload: func(clients int) {
					c.success("Reloaded routes for %d clients", clients)
				},
			})

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			fmt.Fprintf(c.out, "  %s %s\n", faintStyle.Render("serving"), "http://"+addr)
			return server.Start(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", c.env.Addr, "Listen address (env ROUTETREE_ADDR)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", true, "Reload when the route map file changes")
	cmd.Flags().BoolVar(&metrics, "metrics", c.env.Metrics, "Expose /metrics (env ROUTETREE_METRICS)")
	return cmd
}
