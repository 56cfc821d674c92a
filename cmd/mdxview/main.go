// Package main is the entry point for the mdxview model viewer.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/mdxview/internal/config"
	"github.com/Faultbox/mdxview/internal/logger"
	"github.com/Faultbox/mdxview/internal/viewer"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: mdxview [options] <model.mdx>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	modelPath := flag.Arg(0)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== mdxview ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	v, err := viewer.New(cfg, modelPath)
	if err != nil {
		logger.Error("failed to start viewer", zap.Error(err))
		os.Exit(1)
	}
	defer v.Close()

	if err := v.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}
