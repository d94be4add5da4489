package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tpakis/link-ops-sub001/config"
	"github.com/tpakis/link-ops-sub001/internal/adb"
	"github.com/tpakis/link-ops-sub001/internal/api"
	"github.com/tpakis/link-ops-sub001/internal/applinks"
	"github.com/tpakis/link-ops-sub001/internal/assetlinks"
	"github.com/tpakis/link-ops-sub001/internal/favorites"
	"github.com/tpakis/link-ops-sub001/internal/notify"
	"github.com/tpakis/link-ops-sub001/internal/rdapinfo"
)

// serveCmd is the cobra command that starts the linkops API server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the linkops api server",
	Run: func(cmd *cobra.Command, _ []string) {
		err := serve(cmd.Context())
		cobra.CheckErr(err)
	},
}

// init registers the serve command on the root command
func init() {
	rootCmd.AddCommand(serveCmd)
}

// serve initializes dependencies and starts the linkops API server
func serve(ctx context.Context) error {
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

	store := setupFavorites(cfg)
	notifier := setupNotifier(cfg)

	handler := api.NewRouter(api.RouterConfig{
		Engine:         engine,
		Devices:        runner,
		Validator:      validator,
		Favorites:      store,
		Notifier:       notifier,
		MaxBodySize:    cfg.Server.MaxBodySize,
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGracePeriod)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
		}
	}()

	log.Info().Str("listen", cfg.Server.Listen).Msg("starting linkops service")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}

	return nil
}

// loadConfig loads configuration and applies the logging flags onto it
func loadConfig() (*config.Config, error) {
	cfgPath := k.String("config")

	cfg, err := config.Load(&cfgPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	cfg.Server.Debug = k.Bool("debug")
	cfg.Server.Pretty = k.Bool("pretty")

	return cfg, nil
}

// setupRunner initializes the adb command runner from config
func setupRunner(cfg *config.Config) *adb.ExecRunner {
	return adb.NewExecRunner(
		adb.WithADBPath(cfg.ADB.Path),
		adb.WithCommandTimeout(cfg.ADB.CommandTimeout),
	)
}

// setupValidator initializes the trust file validator from config
func setupValidator(cfg *config.Config) *assetlinks.Validator {
	return assetlinks.NewValidator(
		assetlinks.WithTimeout(cfg.Validator.RequestTimeout),
		assetlinks.WithDNSServer(cfg.Validator.DNSServer),
		assetlinks.WithMaxRedirects(cfg.Validator.MaxRedirects),
	)
}

// setupEngine initializes the diagnostics engine, attaching the RDAP probe
// when enabled
func setupEngine(cfg *config.Config, runner *adb.ExecRunner, validator *assetlinks.Validator) (*applinks.Engine, error) {
	opts := []applinks.EngineOption{}

	if cfg.RDAP.Enabled {
		probe := rdapinfo.NewClient(rdapinfo.WithTimeout(cfg.RDAP.RequestTimeout))
		opts = append(opts, applinks.WithRegistrationProbe(probe))

		log.Info().Msg("rdap registration probe configured")
	}

	return applinks.NewEngine(runner, validator, opts...)
}

// setupFavorites initializes the favorites store from config, returning nil when disabled
func setupFavorites(cfg *config.Config) *favorites.Store {
	if cfg.Favorites.Path == "" {
		log.Info().Msg("favorites store not configured, skipping")
		return nil
	}

	store, err := favorites.NewStore(cfg.Favorites.Path)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize favorites store")
		return nil
	}

	return store
}

// setupNotifier initializes the webhook client from config, returning nil when unconfigured
func setupNotifier(cfg *config.Config) *notify.Client {
	if cfg.Slack.WebhookURL == "" {
		log.Info().Msg("webhook notifications not configured, skipping")
		return nil
	}

	client, err := notify.New(
		cfg.Slack.WebhookURL,
		notify.WithHTTPClient(&http.Client{Timeout: cfg.Slack.RequestTimeout}),
	)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize webhook client")
		return nil
	}

	log.Info().Msg("webhook notifications configured")

	return client
}
