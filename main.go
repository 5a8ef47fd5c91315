// Package main provides the entry point for the Expo Floor Plan application.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	fyneapp "fyne.io/fyne/v2/app"
	"go.uber.org/zap"

	"expo-floorplan/internal/app"
	"expo-floorplan/internal/config"
	"expo-floorplan/internal/exhibition"
	"expo-floorplan/internal/logging"
	"expo-floorplan/internal/recommend"
	"expo-floorplan/internal/store"
	"expo-floorplan/internal/version"
	"expo-floorplan/ui/mainwindow"
	"expo-floorplan/ui/prefs"
)

const appID = "com.example.expo-floorplan"

func main() {
	// An optional argument names the config file.
	var (
		cfg *config.Config
		err error
	)
	if len(os.Args) > 1 {
		cfg, err = config.LoadWithPath(os.Args[1])
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Application failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Starting "+version.Title, zap.String("version", version.Version))

	schema := cfg.Schema()
	adapter, err := store.Open(store.Options{
		Driver: cfg.Store.Driver,
		Path:   cfg.Store.Path,
		Schema: schema,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer adapter.Close()

	appPrefs := prefs.Load()
	mode := cfg.Mode()
	if m, ok := exhibition.ParseMode(appPrefs.String(prefs.KeyMode, "")); ok {
		mode = m
	}

	state := app.NewState(app.Options{
		Store:       adapter,
		Schema:      schema,
		Recommender: newRecommender(cfg, logger),
		Mode:        mode,
		Logger:      logger,
	})
	if err := state.Load(context.Background(), cfg.App.EventID); err != nil {
		return err
	}

	if file, ok := adapter.(*store.File); ok {
		w, err := app.NewWatcher(file.Path(cfg.App.EventID), 300*time.Millisecond, file.IsOwnWrite, logger)
		if err != nil {
			logger.Warn("File watching disabled", zap.Error(err))
		} else {
			w.OnChange(func() {
				if err := state.Reload(context.Background()); err != nil {
					logger.Warn("Reload after external change failed", zap.Error(err))
				}
			})
			w.Start()
			defer w.Stop()
		}
	}

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.FloorPlanTheme{})

	win, err := mainwindow.New(fyneApp, state, mainwindow.Options{
		Geometry:      cfg.Geometry(),
		MinBoxSize:    cfg.Canvas.MinBoxSize,
		ZoomFactor:    cfg.Canvas.ZoomFactor,
		TooltipFields: cfg.Stalls.Tooltip,
		Prefs:         appPrefs,
		Logger:        logger,
	})
	if err != nil {
		return err
	}
	win.ShowAndRun()
	return nil
}

func newRecommender(cfg *config.Config, logger *zap.Logger) *recommend.Service {
	var backend recommend.Recommender = recommend.Disabled{}
	if cfg.AI.Provider == "openai" {
		oa, err := recommend.NewOpenAI(recommend.OpenAIConfig{
			APIKey:  cfg.AI.APIKey,
			BaseURL: cfg.AI.BaseURL,
			Model:   cfg.AI.Model,
		})
		if err != nil {
			logger.Warn("Recommendations disabled", zap.Error(err))
		} else {
			backend = oa
		}
	}
	return recommend.NewService(backend, cfg.AI.Timeout, logger)
}
