// Package record implements the one-shot recording subcommand, mostly useful
// for tuning silence thresholds without the full pipeline.
package record

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thalesmourabh/voxcode/internal/capture"
	"github.com/thalesmourabh/voxcode/internal/conf"
	"github.com/thalesmourabh/voxcode/internal/provider"
)

// Command creates the record subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	var translate bool

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a single take and print the WAV path",
		Long: "Record from the microphone until silence is detected or Ctrl+C is " +
			"pressed, then print the saved file path. With --translate the take is " +
			"also sent to the configured AI provider.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(settings, translate)
		},
	}

	cmd.Flags().BoolVar(&translate, "translate", false, "Translate the take and print the text")
	cmd.Flags().StringVar(&settings.Audio.Export.Path, "output", viper.GetString("audio.export.path"), "Directory to save the recording in")
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		fmt.Printf("error binding flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

func runRecord(settings *conf.Settings, translate bool) error {
	engine := capture.NewEngine(
		&capture.MalgoOpener{Debug: settings.Debug},
		capture.WithExportDir(settings.Audio.Export.Path),
	)

	done := make(chan capture.Artifact, 1)
	cfg := capture.Config{
		Source:           settings.Audio.Source,
		SampleRate:       settings.Audio.SampleRate,
		Channels:         settings.Audio.Channels,
		SilenceThreshold: settings.Audio.Silence.Threshold,
		SilenceDuration:  time.Duration(settings.Audio.Silence.Duration * float64(time.Second)),
		MinRecordingTime: time.Duration(settings.Audio.Silence.MinRecording * float64(time.Second)),
		PollInterval:     settings.Audio.Silence.PollInterval,
	}

	err := engine.Start(cfg, capture.Callbacks{
		OnAutoStop: func(a capture.Artifact) { done <- a },
	})
	if err != nil {
		return err
	}
	fmt.Println("Recording... stop speaking or press Ctrl+C to finish.")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	var artifact capture.Artifact
	select {
	case artifact = <-done:
	case <-interrupt:
		stopped, err := engine.Stop()
		if err != nil {
			return err
		}
		artifact = *stopped
	}

	fmt.Printf("Saved %s (%.1fs)\n", artifact.Path, artifact.Duration.Seconds())

	if !translate {
		return nil
	}

	ctx := context.Background()
	prov, err := provider.New(ctx, &settings.Provider)
	if err != nil {
		return err
	}
	text, err := prov.Translate(ctx, artifact.Path,
		settings.Provider.LanguageFrom, settings.Provider.LanguageTo)
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}
