package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/google/uuid"

	"github.com/samlin1112/CitySim/internal/server"
	"github.com/samlin1112/CitySim/pkg/config"
	"github.com/samlin1112/CitySim/pkg/grid"
	"github.com/samlin1112/CitySim/pkg/persist"
	"github.com/samlin1112/CitySim/pkg/session"
	"github.com/samlin1112/CitySim/pkg/sim"
	"github.com/samlin1112/CitySim/pkg/store"
	"github.com/samlin1112/CitySim/pkg/validation"
)

// loadConfig reads the project config, or the defaults when no project
// directory was given.
func loadConfig(g *globals) (*config.Config, error) {
	if g.configDir == "" {
		return config.Default(), nil
	}
	cfg, err := config.LoadProject(g.configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

var stdoutSink = session.SinkFunc(func(msg string) { fmt.Println(msg) })

// withSaveFile loads the city in path into a session, runs fn and writes
// the result back in the same format. Nothing is written when fn fails.
func withSaveFile(cfg *config.Config, path string, fn func(*session.Session) error) error {
	sess, err := session.New(cfg, stdoutSink, session.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening save file: %w", err)
	}
	format := persist.FormatFromPath(path)
	err = sess.Load(f, format)
	f.Close()
	if err != nil {
		return err
	}
	if err := fn(sess); err != nil {
		return err
	}
	return writeAtomic(path, func(w io.Writer) error { return sess.Save(w, format) })
}

// writeAtomic writes through a temporary file in the target directory so
// a failed save never truncates the previous one. The file keeps its
// permissions; a new file gets 0644.
func writeAtomic(path string, write func(io.Writer) error) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".citysim-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("setting save file mode: %w", err)
	}
	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing save file: %w", err)
	}
	return nil
}

func readCity(path string) (*sim.City, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening save file: %w", err)
	}
	defer f.Close()
	return persist.Decode(f, persist.FormatFromPath(path))
}

func parseCoords(xs, ys string) (int, int, error) {
	x, err := strconv.Atoi(xs)
	if err != nil {
		return 0, 0, fmt.Errorf("x coordinate %q: %w", xs, err)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return 0, 0, fmt.Errorf("y coordinate %q: %w", ys, err)
	}
	return x, y, nil
}

func runNew(g *globals, path string, width, height int, widthSet, heightSet bool) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	if widthSet {
		cfg.City.Width = width
	}
	if heightSet {
		cfg.City.Height = height
	}
	sess, err := session.New(cfg, stdoutSink, session.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	if err := sess.NewCity(cfg.City.Width, cfg.City.Height); err != nil {
		return err
	}
	return writeAtomic(path, func(w io.Writer) error {
		return sess.Save(w, persist.FormatFromPath(path))
	})
}

type runOptions struct {
	ticks    int
	tax      float64
	taxSet   bool
	noEvents bool
	seed     uint64
}

func runTicks(g *globals, path string, opts runOptions) error {
	if opts.ticks < 1 {
		return fmt.Errorf("--ticks must be at least 1, got %d", opts.ticks)
	}
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	if opts.noEvents {
		cfg.Events.Enabled = false
	}
	if opts.seed != 0 {
		cfg.Events.Seed = opts.seed
	}
	return withSaveFile(cfg, path, func(sess *session.Session) error {
		if opts.taxSet {
			if err := sess.SetTaxRate(opts.tax); err != nil {
				return err
			}
		}
		for range opts.ticks {
			sess.Step()
		}
		fmt.Println(sess.City().Summary())
		return nil
	})
}

func runBuild(g *globals, path, xs, ys, category string) error {
	x, y, err := parseCoords(xs, ys)
	if err != nil {
		return err
	}
	c, err := grid.ParseCategory(category)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	return withSaveFile(cfg, path, func(sess *session.Session) error {
		_, err := sess.Build(x, y, c)
		return err
	})
}

func runUpgrade(g *globals, path, xs, ys string, quote bool) error {
	x, y, err := parseCoords(xs, ys)
	if err != nil {
		return err
	}
	if quote {
		city, err := readCity(path)
		if err != nil {
			return err
		}
		price, err := city.QuoteUpgrade(x, y)
		if err != nil {
			return err
		}
		fmt.Printf("Upgrade (%d,%d): %d money, %d materials\n", x, y, price.Money, price.Materials)
		return nil
	}
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	return withSaveFile(cfg, path, func(sess *session.Session) error {
		_, err := sess.Upgrade(x, y)
		return err
	})
}

func runReport(_ *globals, path string, asJSON bool) error {
	city, err := readCity(path)
	if err != nil {
		return err
	}
	r := session.BuildReport(city)
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	printCityReport(r)
	return nil
}

// runValidate checks a project directory's config, or a save file's
// document and the health of the city it holds.
func runValidate(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	var report *validation.Report
	if info.IsDir() {
		cfg, err := config.LoadProject(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		report = validation.ValidateConfig(cfg)
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading save file: %w", err)
		}
		snap, err := persist.Unmarshal(data, persist.FormatFromPath(path))
		if err != nil {
			return err
		}
		report = persist.Check(snap)
		if report.Valid {
			city, err := persist.Deserialize(snap)
			if err != nil {
				return err
			}
			report.Merge(session.BuildReport(city).Diagnosis)
		}
	}

	printValidationReport(report)
	if !report.Valid {
		return errors.New("validation failed")
	}
	return nil
}

type serveOptions struct {
	port    int
	portSet bool
	db      string
	dbSet   bool
}

func runServe(ctx context.Context, g *globals, opts serveOptions) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	if opts.portSet {
		cfg.Server.Port = opts.port
	}
	if opts.dbSet {
		cfg.Storage.Path = opts.db
	}
	logger := slog.Default()

	history := session.NewHistory(cfg.Simulation.LogHistory)
	hub := server.NewHub(logger)
	sinks := []session.Sink{history, hub}

	id := uuid.New()
	var st *store.Store
	if cfg.Storage.Path != "" {
		st, err = store.Open(cfg.Storage.Path)
		if err != nil {
			return err
		}
		defer st.Close()
		sinks = append(sinks, st.JournalSink(id, logger))
	}

	sess, err := session.New(cfg, session.MultiSink(sinks...),
		session.WithID(id), session.WithLogger(logger))
	if err != nil {
		return err
	}

	srv := server.New(sess, server.Options{
		Port:         cfg.Server.Port,
		TickInterval: cfg.Simulation.TickInterval,
		AutoTick:     cfg.Simulation.AutoTick,
		Store:        st,
		History:      history,
		Hub:          hub,
		Logger:       logger,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}

func openStore(g *globals, db string) (*store.Store, error) {
	if db == "" {
		cfg, err := loadConfig(g)
		if err != nil {
			return nil, err
		}
		db = cfg.Storage.Path
	}
	if db == "" {
		return nil, errors.New("no save database configured, pass --db")
	}
	return store.Open(db)
}

func runStoreList(ctx context.Context, g *globals, db string) error {
	st, err := openStore(g, db)
	if err != nil {
		return err
	}
	defer st.Close()
	slots, err := st.List(ctx)
	if err != nil {
		return err
	}
	printSlots(slots)
	return nil
}

func runStorePut(ctx context.Context, g *globals, db, path, name string) error {
	city, err := readCity(path)
	if err != nil {
		return err
	}
	st, err := openStore(g, db)
	if err != nil {
		return err
	}
	defer st.Close()
	slot, err := st.SaveCity(ctx, name, city)
	if err != nil {
		return err
	}
	fmt.Printf("Stored %q as %s.\n", slot.Name, slot.ID)
	return nil
}

func runStoreGet(ctx context.Context, g *globals, db, ref, path string) error {
	st, err := openStore(g, db)
	if err != nil {
		return err
	}
	defer st.Close()
	city, slot, err := st.LoadCity(ctx, ref)
	if err != nil {
		return err
	}
	if err := writeAtomic(path, func(w io.Writer) error {
		return persist.Encode(w, city, persist.FormatFromPath(path))
	}); err != nil {
		return err
	}
	fmt.Printf("Wrote %q (tick %d) to %s.\n", slot.Name, slot.TickCount, path)
	return nil
}

func runStoreDelete(ctx context.Context, g *globals, db, id string) error {
	st, err := openStore(g, db)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Deleted %s.\n", id)
	return nil
}
