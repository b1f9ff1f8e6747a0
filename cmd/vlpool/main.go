package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"vlpool/internal/config"
	"vlpool/internal/engine"
	"vlpool/internal/fetch"
	"vlpool/internal/httpapi"
	"vlpool/internal/models"
	"vlpool/internal/runner"
	"vlpool/pkg/types"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// rootOptions collects flag values shared by the one-shot command and serve.
type rootOptions struct {
	modelName  string
	task       string
	modality   string
	seed       int64
	configPath string
	engineURL  string
	apiKey     string
	localModel string
	ctxSize    int
	threads    int
	logLevel   string
}

func buildRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "vlpool",
		Short:         "Prompt formatting and pooling requests for vision-language models",
		Long:          "vlpool formats model-specific prompts for vision-language pooling models\nand runs a single embedding or scoring call against an inference engine.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd, opts)
		},
	}

	root.Flags().StringVarP(&opts.modelName, "model-name", "m", "vlm2vec",
		"Model key: "+strings.Join(models.Names(), "|"))
	root.Flags().StringVarP(&opts.task, "task", "t", runner.TaskEmbedding,
		"Task type: "+strings.Join(runner.Tasks(), "|"))
	root.Flags().StringVar(&opts.modality, "modality", string(types.ModalityImage),
		"Input modality: "+joinModalities())
	root.Flags().Int64Var(&opts.seed, "seed", 0, "Engine seed (omit to let the engine choose)")

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Optional config file (.yaml/.json/.toml)")
	root.PersistentFlags().StringVar(&opts.engineURL, "engine-url", "", "Pooling server base URL (defaults VLPOOL_ENGINE_URL or http://localhost:8000)")
	root.PersistentFlags().StringVar(&opts.apiKey, "api-key", "", "Bearer token for the pooling server")
	root.PersistentFlags().StringVar(&opts.localModel, "local-model", "", "Local gguf path for in-process text embedding (requires -tags=llama build)")
	root.PersistentFlags().IntVar(&opts.ctxSize, "ctx-size", 4096, "Context size for the local embedder")
	root.PersistentFlags().IntVar(&opts.threads, "threads", 4, "Threads for the local embedder")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level: debug|info|warn|error")

	root.AddCommand(buildServeCmd(opts))
	return root
}

func joinModalities() string {
	parts := make([]string, 0, 4)
	for _, m := range types.Modalities() {
		parts = append(parts, string(m))
	}
	return strings.Join(parts, "|")
}

// resolveConfig merges file config, env defaults, and flags. Flags win.
func resolveConfig(opts *rootOptions) (config.Config, error) {
	var cfg config.Config
	if opts.configPath != "" {
		var err error
		cfg, err = config.Load(opts.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
	}
	if opts.engineURL != "" {
		cfg.EngineURL = opts.engineURL
	}
	if cfg.EngineURL == "" {
		cfg.EngineURL = os.Getenv("VLPOOL_ENGINE_URL")
	}
	if cfg.EngineURL == "" {
		cfg.EngineURL = "http://localhost:8000"
	}
	if opts.apiKey != "" {
		cfg.APIKey = opts.apiKey
	}
	if cfg.RequestTimeoutSec <= 0 {
		cfg.RequestTimeoutSec = 300
	}
	if cfg.ConnectTimeoutSec <= 0 {
		cfg.ConnectTimeoutSec = 10
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	return cfg, nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
}

// buildFactory picks the engine: in-process llama when --local-model is
// set, otherwise the HTTP pooling server client.
func buildFactory(opts *rootOptions, cfg config.Config) engine.Factory {
	if opts.localModel != "" {
		return func(types.EngineArgs) (engine.Engine, error) {
			return engine.NewLocalEmbedder(opts.localModel, opts.ctxSize, opts.threads)
		}
	}
	return engine.HTTPFactory(engine.HTTPOptions{
		BaseURL:        cfg.EngineURL,
		APIKey:         cfg.APIKey,
		ReqTimeout:     time.Duration(cfg.RequestTimeoutSec) * time.Second,
		ConnectTimeout: time.Duration(cfg.ConnectTimeoutSec) * time.Second,
	})
}

func runOnce(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel)

	modality, err := types.ParseModality(opts.modality)
	if err != nil {
		return err
	}
	if _, err := models.Lookup(opts.modelName); err != nil {
		return fmt.Errorf("%w (choices: %s)", err, strings.Join(models.Names(), ", "))
	}

	var seed *int64
	if cmd.Flags().Changed("seed") {
		s := opts.seed
		seed = &s
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectTimeout := time.Duration(cfg.ConnectTimeoutSec) * time.Second
	return runner.Run(ctx, opts.task, runner.Options{
		Model:    opts.modelName,
		Modality: modality,
		Seed:     seed,
		Fetcher:  fetch.NewHTTPFetcher(connectTimeout),
		Factory:  buildFactory(opts, cfg),
		Out:      os.Stdout,
		Log:      log,
	})
}

func buildServeCmd(opts *rootOptions) *cobra.Command {
	var (
		addr        string
		corsEnabled bool
		corsOrigins []string
	)

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Expose the pooling pipeline over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(opts)
			if err != nil {
				return err
			}
			log := newLogger(cfg.LogLevel)

			if addr != "" {
				cfg.Addr = addr
			}
			if cfg.Addr == "" {
				cfg.Addr = os.Getenv("VLPOOL_ADDR")
			}
			if cfg.Addr == "" {
				cfg.Addr = ":8080"
			}

			httpapi.SetLogger(log)
			httpapi.SetCORSOptions(corsEnabled, corsOrigins)
			connectTimeout := time.Duration(cfg.ConnectTimeoutSec) * time.Second
			mux := httpapi.NewMux(httpapi.Deps{
				Fetcher: fetch.NewHTTPFetcher(connectTimeout),
				Factory: buildFactory(opts, cfg),
			})
			srv := &http.Server{Addr: cfg.Addr, Handler: mux}

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", cfg.Addr).Str("engine_url", cfg.EngineURL).Msg("vlpool listening")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			// Graceful shutdown (Ctrl+C / SIGTERM)
			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return err
			case <-stop:
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				log.Warn().Err(err).Msg("graceful shutdown error")
			}
			return nil
		},
	}

	serve.Flags().StringVar(&addr, "addr", "", "HTTP listen address (defaults VLPOOL_ADDR or :8080)")
	serve.Flags().BoolVar(&corsEnabled, "cors-enabled", false, "Enable CORS middleware")
	serve.Flags().StringSliceVar(&corsOrigins, "cors-origins", []string{"*"}, "Allowed CORS origins")
	return serve
}
