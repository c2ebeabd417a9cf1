package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// globals holds the persistent flags shared by every command.
type globals struct {
	configDir string
	verbose   bool
}

func rootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "citysim",
		Short:         "Headless tick-based city simulation",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(*cobra.Command, []string) {
			level := slog.LevelInfo
			if g.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().StringVarP(&g.configDir, "config", "c", "", "project directory containing citysim.yaml")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newCmd(g))
	root.AddCommand(runCmd(g))
	root.AddCommand(buildCmd(g))
	root.AddCommand(upgradeCmd(g))
	root.AddCommand(reportCmd(g))
	root.AddCommand(validateCmd(g))
	root.AddCommand(serveCmd(g))
	root.AddCommand(storeCmd(g))
	return root
}

func newCmd(g *globals) *cobra.Command {
	var width, height int
	cmd := &cobra.Command{
		Use:   "new [save-file]",
		Short: "Found a fresh city and write it to a save file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(g, args[0], width, height, cmd.Flags().Changed("width"), cmd.Flags().Changed("height"))
		},
	}
	cmd.Flags().IntVar(&width, "width", 12, "grid width (overrides config)")
	cmd.Flags().IntVar(&height, "height", 12, "grid height (overrides config)")
	return cmd
}

func runCmd(g *globals) *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run [save-file]",
		Short: "Advance a saved city by a number of ticks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.taxSet = cmd.Flags().Changed("tax")
			return runTicks(g, args[0], opts)
		},
	}
	cmd.Flags().IntVarP(&opts.ticks, "ticks", "n", 1, "number of ticks")
	cmd.Flags().Float64Var(&opts.tax, "tax", 0.10, "tax rate in [0, 1] (overrides config)")
	cmd.Flags().BoolVar(&opts.noEvents, "no-events", false, "disable random events")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "event seed (0 uses config or the clock)")
	return cmd
}

func buildCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "build [save-file] [x] [y] [category]",
		Short: "Place a tile (Residential, Commercial, Industrial, PowerPlant, WaterPlant, Road, Park, Empty)",
		Args:  cobra.ExactArgs(4),
		RunE: func(_ *cobra.Command, args []string) error {
			return runBuild(g, args[0], args[1], args[2], args[3])
		},
	}
}

func upgradeCmd(g *globals) *cobra.Command {
	var quote bool
	cmd := &cobra.Command{
		Use:   "upgrade [save-file] [x] [y]",
		Short: "Raise a tile one level",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			return runUpgrade(g, args[0], args[1], args[2], quote)
		},
	}
	cmd.Flags().BoolVar(&quote, "quote", false, "print the price without upgrading")
	return cmd
}

func reportCmd(g *globals) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "report [save-file]",
		Short: "Show resources, production, valuation and problems of a saved city",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runReport(g, args[0], asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func validateCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [project-dir | save-file]",
		Short: "Validate a project config or a save file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runValidate(args[0])
		},
	}
}

func serveCmd(g *globals) *cobra.Command {
	var port int
	var db string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the city in real time behind an HTTP and websocket API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), g, serveOptions{
				port:    port,
				portSet: cmd.Flags().Changed("port"),
				db:      db,
				dbSet:   cmd.Flags().Changed("db"),
			})
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP server port (overrides config)")
	cmd.Flags().StringVar(&db, "db", "", "SQLite save database (overrides config, empty disables slots)")
	return cmd
}

func storeCmd(g *globals) *cobra.Command {
	var db string
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage save slots in the SQLite database",
	}
	cmd.PersistentFlags().StringVar(&db, "db", "", "SQLite save database (default from config)")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List save slots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStoreList(cmd.Context(), g, db)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "put [save-file] [name]",
		Short: "Copy a save file into a new slot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStorePut(cmd.Context(), g, db, args[0], args[1])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "get [slot-id | name] [save-file]",
		Short: "Write a slot out to a save file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStoreGet(cmd.Context(), g, db, args[0], args[1])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rm [slot-id]",
		Short: "Delete a slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStoreDelete(cmd.Context(), g, db, args[0])
		},
	})
	return cmd
}
