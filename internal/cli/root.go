// Package cli wires the cobra command tree: the TUI, the headless
// listener and version.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nhle/cloudconsole/internal/logging"
	"github.com/nhle/cloudconsole/internal/model"
)

// options holds the global flags.
type options struct {
	configPath string
	apiURL     string
	wsURL      string
	clientID   string
	logLevel   string
}

// NewRootCmd builds the command tree. Running it without a subcommand
// starts the TUI.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "cloudconsole",
		Short:         "Terminal console for the cloud services backend",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, opts)
		},
	}
	root.CompletionOptions.HiddenDefaultCmd = true

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", model.DefaultConfigPath(), "config file")
	flags.StringVar(&opts.apiURL, "api-url", "", "REST API base URL (overrides config)")
	flags.StringVar(&opts.wsURL, "ws-url", "", "notification channel URL (overrides config)")
	flags.StringVar(&opts.clientID, "client-id", "", "identity registered on the channel")
	flags.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(newListenCmd(opts), newVersionCmd())
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads .env (if present) and the config file, then applies
// flag overrides.
func loadConfig(opts *options) (*model.AppConfig, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := model.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	opts.apply(cfg)
	return cfg, nil
}

func (o *options) apply(cfg *model.AppConfig) {
	if o.apiURL != "" {
		cfg.API.BaseURL = strings.TrimRight(o.apiURL, "/")
	}
	if o.wsURL != "" {
		cfg.Channel.URL = o.wsURL
	}
	if o.clientID != "" {
		cfg.Channel.ClientID = o.clientID
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
}

// startLogging installs the file logger for the named command.
func startLogging(cfg *model.AppConfig, command string) (func() error, error) {
	return logging.Init(logging.Config{
		Level:   cfg.Log.Level,
		Path:    cfg.Log.File,
		Command: command,
	})
}

// clientID returns the configured identity or a fresh "user-xxxxxxxx".
func clientID(cfg *model.AppConfig) string {
	if id := strings.TrimSpace(cfg.Channel.ClientID); id != "" {
		return id
	}
	return "user-" + uuid.NewString()[:8]
}
