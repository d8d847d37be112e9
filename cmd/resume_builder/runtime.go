package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/resume-builder/internal/browser"
	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/editor"
	"github.com/jonathan/resume-builder/internal/measure"
	"github.com/jonathan/resume-builder/internal/prefs"
	"github.com/jonathan/resume-builder/internal/rendering"
)

// appRuntime holds the long-lived dependencies shared by the commands.
type appRuntime struct {
	cfg      *config.Config
	renderer *rendering.Renderer
	measurer measure.Measurer
	browser  *browser.Browser
	db       *db.DB
	prefs    prefs.Store
	closers  []func()
}

// loadConfig reads --config, applies defaults and the environment, then the --verbose flag.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

// newRuntime starts what cfg asks for. withStores also connects the database and preference store.
func newRuntime(ctx context.Context, cfg *config.Config, withStores bool) (*appRuntime, error) {
	rt := &appRuntime{cfg: cfg}

	renderer, err := rendering.NewRenderer()
	if err != nil {
		return nil, err
	}
	rt.renderer = renderer

	if cfg.ChromeEnabled {
		opts := browser.DefaultOptions()
		if cfg.ChromePath != "" {
			opts.ExecPath = cfg.ChromePath
		}
		opts.MaxTabs = cfg.MaxTabs
		opts.Verbose = cfg.Verbose
		b, err := browser.New(opts)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.browser = b
		rt.closers = append(rt.closers, func() { _ = b.Close() })
	}

	switch cfg.Measurer {
	case config.MeasurerChrome:
		rt.measurer = measure.NewChromeMeasurer(rt.browser, cfg.Verbose)
	default:
		rt.measurer = measure.NewTextMetrics()
	}

	if !withStores {
		return rt, nil
	}

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		rt.db = database
		rt.closers = append(rt.closers, database.Close)
	}

	switch cfg.PrefsStore {
	case config.StoreRedis:
		store, err := prefs.NewRedisStore(ctx, prefs.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.prefs = store
		rt.closers = append(rt.closers, func() { _ = store.Close() })
	case config.StorePostgres:
		rt.prefs = prefs.NewPostgresStore(rt.db)
	default:
		rt.prefs = prefs.NewMemoryStore()
	}

	return rt, nil
}

// editorOptions builds session options from the runtime.
// Passes record their own estimate, so the fast path compares like with like even when the
// measurer is the browser.
func (rt *appRuntime) editorOptions() editor.Options {
	estimator, ok := rt.measurer.(*measure.TextMetrics)
	if !ok {
		estimator = measure.NewTextMetrics()
	}
	return editor.Options{
		Renderer:        rt.renderer,
		Measurer:        rt.measurer,
		Estimator:       estimator,
		Store:           rt.prefs,
		Debounce:        rt.cfg.Debounce(),
		FooterPx:        rt.cfg.PageFooterPx,
		MarginPx:        rt.cfg.PageMarginPx,
		CheckInvariants: rt.cfg.CheckInvariants || rt.cfg.Verbose,
		Verbose:         rt.cfg.Verbose,
		IdleTTL:         rt.cfg.SessionIdleTTL(),
	}
}

// Close releases everything in reverse start order.
func (rt *appRuntime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
	if rt.cfg != nil && rt.cfg.Verbose {
		log.Printf("[INFO] runtime closed")
	}
}
