package config

import (
	"os"
	"runtime"
	"runtime/debug"

	"photo-restorer/internal/logger"

	"gocv.io/x/gocv"
)

// ConfigureRuntime tunes the Go runtime and OpenCV for image workloads.
func ConfigureRuntime(cfg WorkerConfig, log logger.Logger) {
	runtime.GOMAXPROCS(runtime.NumCPU())

	// Higher GC threshold for large short-lived buffers.
	debug.SetGCPercent(cfg.GCPercent)

	if os.Getenv("GOMEMLIMIT") == "" {
		debug.SetMemoryLimit(4 << 30)
	}

	if cfg.OpenCVThreads > 0 {
		gocv.SetNumThreads(cfg.OpenCVThreads)
	}

	log.Info("Runtime", "runtime configured", map[string]interface{}{
		"gomaxprocs":     runtime.GOMAXPROCS(0),
		"gc_percent":     cfg.GCPercent,
		"opencv_threads": gocv.GetNumThreads(),
		"workers":        cfg.Count,
	})
}
