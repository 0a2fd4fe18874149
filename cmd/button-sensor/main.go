// Command button-sensor polls a push button, classifies clicks and long
// presses, and publishes the events to MQTT, a websocket stream and an HTTP
// status page.
//
// Usage:
//
//	button-sensor run -c button.yaml          # Start the daemon
//	button-sensor validate -c button.yaml     # Validate configuration
//	button-sensor print-state -c button.yaml  # Print the current level and exit
//	button-sensor version                     # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set at build time via ldflags, e.g. -ldflags "-X main.version=1.0.0".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "button-sensor",
	Short: "Push button click and long press classifier",
	Long: `button-sensor samples a push button, debounces it and turns presses into
CLICK, DOUBLE_CLICK, MULTI_CLICK and long press events.

Levels can come from a GPIO pin (gpiocdev or rpio), the MQTT level topic,
POST /inject/{level} on the status server, or the keyboard.

Example config:
  name: desk
  source: { kind: gpiocdev, pin: 17, active_low: true, pull: up }
  timing: { debounce: 50ms, click: 400ms, long_press: 800ms }
  mqtt:   { broker: tcp://192.168.1.200:1883 }`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "button-sensor %s\n", version)
		fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", commit)
		fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// cobra has already printed the error
		os.Exit(1)
	}
}
