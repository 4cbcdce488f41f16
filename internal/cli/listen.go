package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nhle/cloudconsole/internal/model"
	"github.com/nhle/cloudconsole/internal/realtime"
)

func newListenCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Print channel notifications as they arrive",
		Long: `Connect to the notification channel and print every notification
until interrupted. Connection changes are printed as they happen.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			closeLog, err := startLogging(cfg, "listen")
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return listen(ctx, newChannel(cfg), clientID(cfg), cmd.OutOrStdout())
		},
	}
}

// listen connects ch as id and prints to w until ctx ends or the channel
// gives up reconnecting.
func listen(ctx context.Context, ch *realtime.Client, id string, w io.Writer) error {
	if err := ch.Connect(ctx, id); err != nil {
		return fmt.Errorf("connecting as %s: %w", id, err)
	}
	defer ch.Disconnect()

	fmt.Fprintf(w, "listening as %s\n", id)

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-ch.Notifications():
			printNotification(w, n)
		case s := <-ch.States():
			log.Info("channel state", "state", s)
			fmt.Fprintf(w, "-- %s\n", s)
			if s == realtime.Disconnected {
				return nil
			}
		}
	}
}

func printNotification(w io.Writer, n model.Notification) {
	fmt.Fprintf(w, "%s [%s] %s: %s\n",
		n.Timestamp.Local().Format(time.TimeOnly),
		n.Type,
		n.Title,
		n.Message,
	)
}
