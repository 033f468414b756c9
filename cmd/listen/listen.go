// Package listen implements the daemon subcommand: it keeps the microphone,
// AI provider, overlay bridge and injector running until interrupted.
package listen

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thalesmourabh/voxcode/internal/app"
	"github.com/thalesmourabh/voxcode/internal/conf"
)

// Command creates the listen subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Run the dictation daemon",
		Long: "Start VoxCode in daemon mode. Recording toggles on SIGUSR1 or on any " +
			"line from stdin; each take is translated and typed into the focused window.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, settings)
			if err != nil {
				return err
			}
			return a.Run(ctx)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().BoolVar(&settings.UI.Enabled, "ui", viper.GetBool("ui.enabled"), "Enable the overlay WebSocket bridge")
	cmd.Flags().IntVar(&settings.UI.Port, "uiport", viper.GetInt("ui.port"), "Overlay bridge port")
	cmd.Flags().BoolVar(&settings.Injection.Enabled, "inject", viper.GetBool("injection.enabled"), "Type translated text into the focused window")
	cmd.Flags().BoolVar(&settings.Telemetry.Enabled, "telemetry", viper.GetBool("telemetry.enabled"), "Enable Prometheus telemetry endpoint")
	cmd.Flags().StringVar(&settings.Telemetry.Listen, "listen", viper.GetString("telemetry.listen"), "Listen address and port of telemetry endpoint")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}
	return nil
}
