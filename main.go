package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/thalesmourabh/voxcode/cmd"
	"github.com/thalesmourabh/voxcode/internal/conf"
	"github.com/thalesmourabh/voxcode/internal/logging"
)

func main() {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if settings.Debug {
		level = slog.LevelDebug
	}
	logging.Init(level)

	if settings.Main.Log.Enabled && settings.Main.Log.Path != "" {
		rotation := logging.FileRotation{
			MaxSizeMB:  settings.Main.Log.MaxSize,
			MaxBackups: settings.Main.Log.MaxBackups,
			MaxAgeDays: settings.Main.Log.MaxAge,
		}
		if logger, closeLog, err := logging.NewFileLogger(settings.Main.Log.Path, settings.Main.Name, level, rotation); err != nil {
			fmt.Fprintf(os.Stderr, "error opening log file: %v\n", err)
		} else {
			slog.SetDefault(logger)
			defer func() { _ = closeLog() }()
		}
	}

	// First run: leave a config file behind for the user to edit.
	if path, err := conf.SaveDefault(); err == nil && settings.Debug {
		fmt.Printf("configuration file: %s\n", path)
	}

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
