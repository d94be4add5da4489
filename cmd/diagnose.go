package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// diagnoseCmd runs a one-shot diagnostics pass and prints the report as JSON
var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "diagnose App Links verification for a package on a connected device",
	Run: func(cmd *cobra.Command, _ []string) {
		err := diagnose(cmd)
		cobra.CheckErr(err)
	},
}

// init registers the diagnose command and its flags on the root command
func init() {
	rootCmd.AddCommand(diagnoseCmd)
	diagnoseCmd.Flags().String("device", "", "device serial to query")
	diagnoseCmd.Flags().String("package", "", "application package to diagnose")
	_ = diagnoseCmd.MarkFlagRequired("device")
	_ = diagnoseCmd.MarkFlagRequired("package")
}

// diagnose wires the engine from config and prints the diagnostics report
func diagnose(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	runner := setupRunner(cfg)
	validator := setupValidator(cfg)

	engine, err := setupEngine(cfg, runner, validator)
	if err != nil {
		return fmt.Errorf("setting up diagnostics engine: %w", err)
	}

	report, err := engine.AnalyzeVerification(cmd.Context(), k.String("device"), k.String("package"))
	if err != nil {
		return fmt.Errorf("diagnosing: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	return enc.Encode(report)
}
