package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/matijazezelj/fuelnet/internal/config"
	"github.com/matijazezelj/fuelnet/internal/export"
	"github.com/matijazezelj/fuelnet/internal/route"
	"github.com/matijazezelj/fuelnet/internal/server"
	"github.com/matijazezelj/fuelnet/internal/source"
	"github.com/matijazezelj/fuelnet/pkg/models"
)

var (
	version     = "dev"
	cfgFile     string
	networkPath string
	sourceKind  string
	logFormat   string
	logLevel    string
	logger      *slog.Logger
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:           "fuelnet",
		Short:         "fuelnet: gas station network queries",
		Long:          "Load a network of gas stations and answer route, traversal and price queries.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseLogLevel(logLevel)
			if err != nil {
				return err
			}
			opts := &slog.HandlerOptions{Level: level}
			switch logFormat {
			case "json":
				logger = slog.New(slog.NewJSONHandler(os.Stderr, opts))
			case "text":
				logger = slog.New(slog.NewTextHandler(os.Stderr, opts))
			default:
				return fmt.Errorf("invalid --log-format %q (use: text, json)", logFormat)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./fuelnet.yaml)")
	root.PersistentFlags().StringVar(&networkPath, "network", "", "network file or database path (overrides config)")
	root.PersistentFlags().StringVar(&sourceKind, "source", "", "network source: yaml, sqlite, neo4j (overrides config)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log output format (text, json)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		showCmd(),
		stationsCmd(),
		neighborsCmd(),
		traverseCmd("bfs", "Breadth-first traversal from a station", route.BFSOrder),
		traverseCmd("dfs", "Depth-first traversal from a station", route.DFSOrder),
		pathCmd(),
		hopsCmd(),
		cheapestCmd(),
		nearestCmd(),
		distancesCmd(),
		exportCmd(),
		serveCmd(),
		versionCmd(),
		completionCmd(),
	)
	return root
}

// openNetwork loads config and builds the network from the configured
// source. The returned source must be closed if it implements io.Closer.
func openNetwork(ctx context.Context) (*source.Network, source.Source, *config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if sourceKind != "" {
		cfg.Network.Source = sourceKind
	}

	src, err := source.Open(cfg.Network, networkPath, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	n, err := source.Load(ctx, src, cfg.Network.Capacity)
	if err != nil {
		closeSource(src)
		return nil, nil, nil, err
	}
	logger.Debug("network loaded", "source", src.Name(),
		"stations", n.Graph.Len(), "connections", n.Graph.EdgeCount())
	return n, src, cfg, nil
}

// loadNetwork is openNetwork for one-shot commands.
func loadNetwork(ctx context.Context) (*source.Network, error) {
	n, src, _, err := openNetwork(ctx)
	if err != nil {
		return nil, err
	}
	closeSource(src)
	return n, nil
}

func closeSource(src source.Source) {
	if c, ok := src.(io.Closer); ok {
		_ = c.Close()
	}
}

func stationLabel(n *source.Network, id int) string {
	st, err := n.Graph.Station(id)
	if err != nil {
		return n.Key(id)
	}
	return fmt.Sprintf("%s (%s)", st.Name, n.Key(id))
}

func printPath(out io.Writer, n *source.Network, p models.Path) {
	labels := make([]string, len(p.Stations))
	for i, id := range p.Stations {
		labels[i] = stationLabel(n, id)
	}
	_, _ = fmt.Fprintf(out, "%s\n", strings.Join(labels, " -> "))
	_, _ = fmt.Fprintf(out, "Hops: %d  Distance: %g\n", p.Hops(), p.Weight)
}

// --- show ---

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print network summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := loadNetwork(cmd.Context())
			if err != nil {
				return err
			}
			sum := n.Summarize()
			out := cmd.OutOrStdout()

			_, _ = fmt.Fprintf(out, "Network Summary (%s)\n", sum.Source)
			_, _ = fmt.Fprintf(out, "  Stations:    %d\n", sum.Stations)
			_, _ = fmt.Fprintf(out, "  Connections: %d\n", sum.Connections)
			if sum.Stations > 0 {
				_, _ = fmt.Fprintf(out, "  Price:       %.2f - %.2f (mean %.2f)\n", sum.MinPrice, sum.MaxPrice, sum.MeanPrice)
			}

			_, _ = fmt.Fprintf(out, "\nStations by area:\n")
			areas := make([]string, 0, len(sum.ByArea))
			for a := range sum.ByArea {
				areas = append(areas, a)
			}
			slices.Sort(areas)
			for _, a := range areas {
				_, _ = fmt.Fprintf(out, "  %-20s %d\n", a, sum.ByArea[a])
			}
			return nil
		},
	}
}

// --- stations ---

func stationsCmd() *cobra.Command {
	var area string

	cmd := &cobra.Command{
		Use:   "stations",
		Short: "List stations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := loadNetwork(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tKEY\tNAME\tPRICE\tAREA\tLOCATION")
			for _, s := range n.Graph.Stations() {
				if area != "" && !strings.EqualFold(s.Area, area) {
					continue
				}
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%s\t%s\n", s.ID, n.Key(s.ID), s.Name, s.Price, s.Area, s.Location)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&area, "area", "", "only list stations in this area")
	return cmd
}

// --- neighbors ---

func neighborsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "neighbors <station>",
		Short: "Show stations directly connected to a station",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := loadNetwork(cmd.Context())
			if err != nil {
				return err
			}
			id, err := n.Resolve(args[0])
			if err != nil {
				return err
			}
			ns, err := n.Graph.Neighbors(id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Neighbors of %s\n\n", stationLabel(n, id))

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tKEY\tNAME\tDISTANCE")
			for _, nb := range ns {
				st, _ := n.Graph.Station(nb.ID)
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%g\n", nb.ID, n.Key(nb.ID), st.Name, nb.Weight)
			}
			return w.Flush()
		},
	}
}

// --- bfs / dfs ---

func traverseCmd(use, short string, order func(route.Graph, int) ([]int, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <station>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := loadNetwork(cmd.Context())
			if err != nil {
				return err
			}
			id, err := n.Resolve(args[0])
			if err != nil {
				return err
			}
			ids, err := order(n.Graph, id)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "#\tID\tKEY\tNAME")
			for i, v := range ids {
				st, _ := n.Graph.Station(v)
				_, _ = fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", i+1, v, n.Key(v), st.Name)
			}
			return w.Flush()
		},
	}
}

// --- path / hops ---

func pairCmd(use, short string, find func(route.Graph, int, int) (models.Path, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <from> <to>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := loadNetwork(cmd.Context())
			if err != nil {
				return err
			}
			from, err := n.Resolve(args[0])
			if err != nil {
				return err
			}
			to, err := n.Resolve(args[1])
			if err != nil {
				return err
			}
			p, err := find(n.Graph, from, to)
			if err != nil {
				return err
			}
			printPath(cmd.OutOrStdout(), n, p)
			return nil
		},
	}
}

func pathCmd() *cobra.Command {
	return pairCmd("path", "Shortest path by distance between two stations", route.ShortestPath)
}

func hopsCmd() *cobra.Command {
	return pairCmd("hops", "Path with the fewest connections between two stations", route.HopPath)
}

// --- cheapest ---

func cheapestCmd() *cobra.Command {
	var maxHops int

	cmd := &cobra.Command{
		Use:   "cheapest [station]",
		Short: "Cheapest station within --max-hops of a station, or in the whole network",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := loadNetwork(cmd.Context())
			if err != nil {
				return err
			}

			var st models.Station
			if len(args) == 0 {
				st, err = route.CheapestOverall(n.Graph)
			} else {
				var start int
				if start, err = n.Resolve(args[0]); err == nil {
					st, err = route.CheapestWithinHops(n.Graph, start, maxHops)
				}
			}
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %.2f\n", stationLabel(n, st.ID), st.Price)
			return nil
		},
	}

	cmd.Flags().IntVar(&maxHops, "max-hops", 1, "maximum number of connections from the station")
	return cmd
}

// --- nearest ---

func nearestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nearest <station>",
		Short: "Closest other station by road distance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := loadNetwork(cmd.Context())
			if err != nil {
				return err
			}
			id, err := n.Resolve(args[0])
			if err != nil {
				return err
			}
			reach, err := route.Nearest(n.Graph, id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Nearest to %s: %s at %g\n", stationLabel(n, id), stationLabel(n, reach.Station.ID), reach.Distance)
			printPath(out, n, reach.Path)
			return nil
		},
	}
}

// --- distances ---

func distancesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "distances <station>",
		Short: "Shortest road distance from a station to every other station",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := loadNetwork(cmd.Context())
			if err != nil {
				return err
			}
			id, err := n.Resolve(args[0])
			if err != nil {
				return err
			}
			dist, err := route.Distances(n.Graph, id)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tKEY\tNAME\tDISTANCE")
			for _, s := range n.Graph.Stations() {
				d, ok := dist[s.ID]
				if !ok {
					_, _ = fmt.Fprintf(w, "%d\t%s\t%s\tnot reachable\n", s.ID, n.Key(s.ID), s.Name)
					continue
				}
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%g\n", s.ID, n.Key(s.ID), s.Name, d)
			}
			return w.Flush()
		},
	}
}

// --- export ---

func exportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the network in various formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := loadNetwork(cmd.Context())
			if err != nil {
				return err
			}
			output, err := export.Render(format, n.Data())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "export format: "+strings.Join(export.Formats, ", "))
	return cmd
}

// --- serve ---

func serveCmd() *cobra.Command {
	var listen string
	var writable bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			n, src, cfg, err := openNetwork(ctx)
			if err != nil {
				return err
			}
			defer closeSource(src)

			if listen != "" {
				cfg.Server.Listen = listen
			}
			if writable {
				cfg.Server.ReadOnly = false
			}

			srv := server.New(n, cfg.Server, logger)

			interval, err := cfg.Server.Reload()
			if err != nil {
				return err
			}
			if interval > 0 {
				if !cfg.Server.ReadOnly {
					logger.Warn("reloading replaces the network; API mutations are lost on each reload")
				}
				reloader, err := source.NewReloader(src, cfg.Network.Capacity, interval, srv.SetNetwork, logger)
				if err != nil {
					return err
				}
				reloader.Start(ctx)
				defer reloader.Stop()
			}

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			if err := srv.Start(); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config or :8080)")
	cmd.Flags().BoolVar(&writable, "writable", false, "enable station and connection mutations via the API")
	return cmd
}

// --- version ---

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "fuelnet %s\n", version)
		},
	}
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid --log-level %q (use: debug, info, warn, error)", s)
	}
}

func completionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for fuelnet.

To load completions:

Bash:
  $ source <(fuelnet completion bash)

Zsh:
  $ fuelnet completion zsh > "${fpath[1]}/_fuelnet"

Fish:
  $ fuelnet completion fish | source

PowerShell:
  PS> fuelnet completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
}
