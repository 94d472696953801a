package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"photo-restorer/internal/app/handlers"
	"photo-restorer/internal/config"
	"photo-restorer/internal/logger"
	"photo-restorer/internal/models"
	"photo-restorer/internal/pipeline"
	"photo-restorer/internal/pipeline/stages"
	"photo-restorer/internal/processing/filters"
	"photo-restorer/internal/services"
	"photo-restorer/internal/shutdown"

	"golang.org/x/sync/errgroup"
)

func main() {
	args := os.Args[1:]
	var err error
	if len(args) > 0 && args[0] == "restore" {
		err = runRestore(args[1:])
	} else {
		err = runServe(args)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "photo-restorer:", err)
		os.Exit(1)
	}
}

func usage(fs *flag.FlagSet) func() {
	return func() {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  photo-restorer [-config cfg.yaml]")
		fmt.Fprintln(os.Stderr, "  photo-restorer restore -in photo.jpg -out restored.jpg [-mask mask.png] [-config cfg.yaml]")
		fs.PrintDefaults()
	}
}

// bootstrap loads configuration and assembles the pipeline.
func bootstrap(configPath string) (config.Config, logger.Logger, *pipeline.Orchestrator, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, nil, nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return cfg, nil, nil, err
	}

	config.ConfigureRuntime(cfg.Workers, log)

	capability := filters.Capabilities()
	if !capability.WhiteBalance {
		log.Warning("Main", "color correction unavailable, stage will pass images through", nil)
	}

	orchestrator := pipeline.NewOrchestrator(
		stages.NewLoader(log),
		stages.NewSaver(log, cfg.Output.JPEGQuality, cfg.Output.PNGCompression),
		filters.NewColorCorrector(capability),
		log,
		pipeline.WithFullTuning(cfg.Restore),
	)

	return cfg, log, orchestrator, nil
}

func runRestore(args []string) error {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	fs.Usage = usage(fs)
	inPath := fs.String("in", "", "source image")
	outPath := fs.String("out", "", "destination image, format by extension")
	maskPath := fs.String("mask", "", "optional blemish mask, white marks damage")
	configPath := fs.String("config", "", "YAML configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" || *outPath == "" {
		fs.Usage()
		return errors.New("missing required arguments")
	}

	_, log, orchestrator, err := bootstrap(*configPath)
	if err != nil {
		return err
	}

	var result *models.RestorationResult
	if *maskPath != "" {
		result, err = orchestrator.RestoreFullMasked(*inPath, *maskPath, *outPath)
	} else {
		result, err = orchestrator.RestoreFull(*inPath, *outPath)
	}
	if err != nil {
		return err
	}
	defer result.Release()

	if result.Persist.Err != nil {
		return result.Persist.Err
	}

	log.Info("Main", "restored", map[string]interface{}{
		"in":       *inPath,
		"out":      *outPath,
		"bytes":    result.Persist.Bytes,
		"total_ms": result.Total.Milliseconds(),
	})
	return nil
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("photo-restorer", flag.ContinueOnError)
	fs.Usage = usage(fs)
	configPath := fs.String("config", "", "YAML configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, log, orchestrator, err := bootstrap(*configPath)
	if err != nil {
		return err
	}

	service := services.NewRestorationService(orchestrator, cfg.Workers.Count, cfg.Output.TempDir, log)
	handler := handlers.NewRestoreHandler(service, log, handlers.Options{
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownManager := shutdown.NewManager(log, cfg.Server.ShutdownTimeout)
	shutdownManager.Register("http", shutdown.ComponentFunc(server.Shutdown))
	shutdownManager.Listen()

	g, ctx := errgroup.WithContext(shutdownManager.Context())

	g.Go(func() error {
		log.Info("Main", "listening", map[string]interface{}{
			"addr":             cfg.Server.Addr,
			"workers":          cfg.Workers.Count,
			"color_correction": service.ColorCorrectionAvailable(),
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownManager.Shutdown()
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("Main", "server stopped", nil)
	return nil
}
