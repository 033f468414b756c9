package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thalesmourabh/voxcode/cmd/devices"
	"github.com/thalesmourabh/voxcode/cmd/listen"
	"github.com/thalesmourabh/voxcode/cmd/record"
	"github.com/thalesmourabh/voxcode/internal/conf"
)

// RootCommand creates and returns the root command.
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "voxcode",
		Short: "VoxCode CLI",
		Long:  "Voice dictation with automatic silence detection, AI translation and text injection.",
	}

	setupFlags(rootCmd, settings)

	rootCmd.AddCommand(
		listen.Command(settings),
		record.Command(settings),
		devices.Command(),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := cmd.Flags().Parse(args); err != nil {
			return err
		}
		return conf.ValidateSettings(settings)
	}

	return rootCmd
}

// setupFlags defines flags shared by every subcommand.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Audio.Source, "source", viper.GetString("audio.source"), "Audio capture source (\"sysdefault\", \"USB Audio\", etc.)")
	rootCmd.PersistentFlags().Float64Var(&settings.Audio.Silence.Threshold, "threshold", viper.GetFloat64("audio.silence.threshold"), "Normalized RMS amplitude below which audio counts as silence")
	rootCmd.PersistentFlags().Float64Var(&settings.Audio.Silence.Duration, "silence", viper.GetFloat64("audio.silence.duration"), "Seconds of continuous silence that stop a recording")
	rootCmd.PersistentFlags().Float64Var(&settings.Audio.Silence.MinRecording, "minrecording", viper.GetFloat64("audio.silence.minrecording"), "Seconds before auto-stop may trigger")
	rootCmd.PersistentFlags().StringVar(&settings.Provider.Name, "provider", viper.GetString("provider.name"), "AI provider (gemini, openai, claude)")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(fmt.Sprintf("error binding flags: %v", err))
	}
}
