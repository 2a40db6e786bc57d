package cmd

import (
	"errors"
	"fmt"

	"github.com/leandrodaf/autobard/internal/sink/sinkserial"
	"github.com/leandrodaf/autobard/sdk/bard"
	"github.com/leandrodaf/autobard/sdk/contracts"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(devicesCmd)
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Lists MIDI inputs and serial ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}

		fmt.Println("MIDI inputs:")
		capturer, err := bard.NewCapturer(contracts.WithLogger(log))
		switch {
		case errors.Is(err, bard.ErrUnsupportedOS):
			fmt.Println("  live capture is not available on this OS")
		case err != nil:
			return err
		default:
			defer capturer.Stop()
			devices, err := capturer.ListDevices()
			if err != nil {
				fmt.Printf("  %v\n", err)
			}
			for i, d := range devices {
				fmt.Printf("  %d  %s", i, d.Name)
				if d.Manufacturer != "" {
					fmt.Printf(" (%s)", d.Manufacturer)
				}
				fmt.Println()
			}
		}

		fmt.Println("Serial ports:")
		ports, err := sinkserial.Ports()
		if err != nil {
			return err
		}
		if len(ports) == 0 {
			fmt.Println("  none")
		}
		for _, p := range ports {
			fmt.Printf("  %s\n", p)
		}
		return nil
	},
}
