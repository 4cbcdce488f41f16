package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nhle/cloudconsole/internal/app"
	"github.com/nhle/cloudconsole/internal/backend"
	"github.com/nhle/cloudconsole/internal/credential"
	"github.com/nhle/cloudconsole/internal/model"
	"github.com/nhle/cloudconsole/internal/realtime"
	"github.com/nhle/cloudconsole/internal/theme"
)

func runTUI(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	closeLog, err := startLogging(cfg, "tui")
	if err != nil {
		return err
	}
	defer closeLog()

	if err := theme.Apply(cfg.Display.Theme); err != nil {
		log.Warn("falling back to the default theme", "err", err)
		_ = theme.Apply(theme.DefaultTheme)
	}

	secrets := credential.NewKeyring()
	token, err := credential.Lookup(secrets, credential.APITokenKey)
	if err != nil {
		// The console still works against backends without auth.
		log.Warn("reading API token from keyring", "err", err)
	}

	client := backend.NewClient(cfg.API.BaseURL, token, cfg.API.Timeout())
	channel := newChannel(cfg)

	root := app.New(app.Deps{
		Config:     *cfg,
		ConfigPath: opts.configPath,
		Client:     client,
		Channel:    channel,
		Secrets:    secrets,
		ClientID:   clientID(cfg),
	})

	log.Info("starting console", "api", cfg.API.BaseURL, "channel", cfg.Channel.URL)

	p := tea.NewProgram(root, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running console: %w", err)
	}
	return nil
}

func newChannel(cfg *model.AppConfig) *realtime.Client {
	return realtime.New(realtime.Options{
		URL:                  cfg.Channel.URL,
		MaxReconnectAttempts: cfg.Channel.Reconnect.MaxAttempts,
		InitialBackoff:       cfg.Channel.Reconnect.InitialBackoff(),
		MaxBackoff:           cfg.Channel.Reconnect.MaxBackoff(),
	})
}
