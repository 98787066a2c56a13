package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexsearch/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/lexsearch/internal/adapters/driving/telegram"
	"github.com/custodia-labs/lexsearch/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Starts the JSON API for document uploads, search and question
answering. When a Telegram bot token is configured, the webhook endpoint
is mounted on the same listener.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides configuration)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, appOptions{withLLM: true})
	if err != nil {
		return err
	}
	defer a.Close()

	stopWatching := a.watchTopics()
	defer stopWatching()

	addr := a.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	server := httpapi.NewServer(httpapi.Config{
		Addr:      addr,
		UploadDir: a.cfg.UploadDir(),
	}, a.pipeline, a.retriever, a.answerer, a.store)

	if a.cfg.Telegram.BotToken != "" {
		bot, err := telegram.NewBot(telegram.BotConfig{Token: a.cfg.Telegram.BotToken})
		if err != nil {
			return err
		}
		webhook := telegram.NewWebhook(bot, a.answerer)
		server.Mount(webhook.Pattern(), webhook)
		logger.Info("Telegram webhook enabled")
	}

	cmd.Printf("Listening on %s\n", addr)
	return server.Start(ctx)
}
