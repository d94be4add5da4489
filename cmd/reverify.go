package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// reverifyCmd triggers the platform re-verification command for a package
var reverifyCmd = &cobra.Command{
	Use:   "reverify",
	Short: "trigger App Links re-verification for a package on a connected device",
	Run: func(cmd *cobra.Command, _ []string) {
		err := reverify(cmd)
		cobra.CheckErr(err)
	},
}

// init registers the reverify command and its flags on the root command
func init() {
	rootCmd.AddCommand(reverifyCmd)
	reverifyCmd.Flags().String("device", "", "device serial to target")
	reverifyCmd.Flags().String("package", "", "application package to re-verify")
	_ = reverifyCmd.MarkFlagRequired("device")
	_ = reverifyCmd.MarkFlagRequired("package")
}

// reverify wires the engine from config and issues the re-verification command
func reverify(cmd *cobra.Command) error {
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

	device := k.String("device")
	pkg := k.String("package")

	if err := engine.Reverify(cmd.Context(), device, pkg); err != nil {
		return fmt.Errorf("re-verifying: %w", err)
	}

	log.Info().Str("device", device).Str("package", pkg).Msg("re-verification requested")

	return nil
}
