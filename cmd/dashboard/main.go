package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/marcojr93/cntrackerv1/internal/app"
	"github.com/marcojr93/cntrackerv1/internal/config"
)

func main() {
	configFile := flag.String("config", "", "path to a YAML config file (overrides "+config.ConfigFileEnv+")")
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configFile != "" {
		cfg, err = config.LoadFile(*configFile)
		if err != nil {
			slog.Error("Failed to load configuration", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	application, err := app.NewApplication(cfg)
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(context.Background()); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
