package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sweeney/button-sensor/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a button-sensor configuration file without opening the source.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	events, _ := cfg.EventTypes()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Name:       %s\n", cfg.Name)
	fmt.Fprintf(out, "  Source:     %s\n", describeSource(cfg.Source))
	fmt.Fprintf(out, "  Poll:       %s\n", cfg.Poll)
	fmt.Fprintf(out, "  Timing:     debounce=%s click=%s long_press=%s idle=%s during=%s\n",
		cfg.Timing.Debounce, cfg.Timing.Click, cfg.Timing.LongPress, cfg.Timing.Idle, cfg.Timing.DuringInterval)
	fmt.Fprintf(out, "  Events:     %v\n", events)
	if cfg.MQTT.Broker != "" {
		fmt.Fprintf(out, "  MQTT:       %s (prefix %s)\n", cfg.MQTT.Broker, cfg.MQTT.Prefix)
	} else {
		fmt.Fprintf(out, "  MQTT:       disabled\n")
	}
	if cfg.HTTP.Addr != "" {
		fmt.Fprintf(out, "  HTTP:       %s\n", cfg.HTTP.Addr)
	} else {
		fmt.Fprintf(out, "  HTTP:       disabled\n")
	}
	return nil
}

func describeSource(s config.SourceConfig) string {
	switch {
	case s.Kind.Hardware():
		return fmt.Sprintf("%s %s pin %d (active_low=%t pull=%s)", s.Kind, s.Chip, s.Pin, s.ActiveLow, s.Pull)
	case s.Kind == config.SourceKeyboard:
		return fmt.Sprintf("keyboard on %s", s.TTY)
	default:
		return string(s.Kind)
	}
}
