// Package devices implements the subcommand listing capture devices.
package devices

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thalesmourabh/voxcode/internal/capture"
)

// Command creates the devices subcommand.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List available audio capture devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			devices, err := capture.ListDevices()
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				fmt.Println("No capture devices found.")
				return nil
			}

			fmt.Println("Available capture devices:")
			for _, d := range devices {
				fmt.Printf("  %d: %s (%s)\n", d.Index, d.Name, d.ID)
			}
			return nil
		},
	}
}
