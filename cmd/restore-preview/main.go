package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"photo-restorer/internal/app"
	"photo-restorer/internal/config"
	"photo-restorer/internal/logger"
	"photo-restorer/internal/pipeline"
	"photo-restorer/internal/pipeline/stages"
	"photo-restorer/internal/processing/filters"
	"photo-restorer/internal/shutdown"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "restore-preview:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	config.ConfigureRuntime(cfg.Workers, log)

	orchestrator := pipeline.NewOrchestrator(
		stages.NewLoader(log),
		stages.NewSaver(log, cfg.Output.JPEGQuality, cfg.Output.PNGCompression),
		filters.NewColorCorrector(filters.Capabilities()),
		log,
		pipeline.WithFullTuning(cfg.Restore),
	)

	application := app.NewApplication(orchestrator, cfg.Restore.Apply(), log)

	shutdownManager := shutdown.NewManager(log, cfg.Server.ShutdownTimeout)
	shutdownManager.Register("preview", application.Lifecycle())
	shutdownManager.Register("window", shutdown.ComponentFunc(func(context.Context) error {
		application.Quit()
		return nil
	}))
	shutdownManager.Listen()

	if err := application.Run(); err != nil {
		return err
	}

	// the window is gone; only the session still needs releasing
	_ = application.Lifecycle().Shutdown(context.Background())
	log.Info("Main", "application terminated", nil)
	return nil
}
