package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// logsCmd streams the device's verification log lines to stdout
var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "stream the device's domain verification log",
	Run: func(cmd *cobra.Command, _ []string) {
		err := streamLogs(cmd)
		cobra.CheckErr(err)
	},
}

// init registers the logs command and its flags on the root command
func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.Flags().String("device", "", "device serial to stream from")
	_ = logsCmd.MarkFlagRequired("device")
}

// streamLogs resolves the generation-correct logcat tag and streams matching
// lines until interrupted
func streamLogs(cmd *cobra.Command) error {
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

	ctx := cmd.Context()
	device := k.String("device")

	filter, err := engine.VerificationLogFilter(ctx, device)
	if err != nil {
		return fmt.Errorf("resolving verification log tag: %w", err)
	}

	log.Info().Str("device", device).Str("tag", filter).Msg("streaming verification log")

	lines, err := runner.StreamLog(ctx, device, filter)
	if err != nil {
		return fmt.Errorf("streaming logcat: %w", err)
	}

	for line := range lines {
		fmt.Fprintln(os.Stdout, line)
	}

	return nil
}
