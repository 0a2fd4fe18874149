package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sweeney/button-sensor/internal/config"
)

var printStateCmd = &cobra.Command{
	Use:   "print-state",
	Short: "Print the current button level and exit",
	Long: `Read the configured hardware source once and print PRESSED or RELEASED.
Useful for checking wiring, pin polarity and pull configuration.`,
	RunE: runPrintState,
}

func init() {
	rootCmd.AddCommand(printStateCmd)

	printStateCmd.Flags().StringP("config", "c", "", "path to config file (defaults built in)")
}

func runPrintState(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cfg.Source.Kind.Hardware() {
		return fmt.Errorf("print-state needs a hardware source, got %q", cfg.Source.Kind)
	}

	src, err := openSource(cfg.Source)
	if err != nil {
		return err
	}
	defer src.reader.Close()

	pressed, err := src.reader.Read()
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", cfg.Name, levelString(pressed))
	return nil
}

func levelString(pressed bool) string {
	if pressed {
		return "PRESSED"
	}
	return "RELEASED"
}

// loadConfig loads the file named by --config, or the defaults when the flag
// is empty.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		cfg := config.Default()
		if err := cfg.Finalize(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
