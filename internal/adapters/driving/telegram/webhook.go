package telegram

import (
	"encoding/json"
	"net/http"

	"github.com/custodia-labs/lexsearch/internal/core/ports/driving"
	"github.com/custodia-labs/lexsearch/internal/logger"
)

const processingReply = "Procesando⏳"

// Update is the inbound webhook payload. Only text messages are handled;
// everything else is acknowledged and dropped.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is an incoming chat message.
type Message struct {
	Chat Chat   `json:"chat"`
	Text string `json:"text"`
}

// Chat identifies the conversation an update belongs to.
type Chat struct {
	ID int64 `json:"id"`
}

// Webhook handles Telegram updates by running them through the answer
// service and replying via the Bot API.
type Webhook struct {
	bot      *Bot
	answerer driving.Answerer
}

// NewWebhook creates the handler.
func NewWebhook(bot *Bot, answerer driving.Answerer) *Webhook {
	return &Webhook{bot: bot, answerer: answerer}
}

// Pattern returns the route the webhook must be mounted at. The bot token
// in the path is the shared secret Telegram authenticates with.
func (h *Webhook) Pattern() string {
	return "POST /telegram/webhook/" + h.bot.Token()
}

// ServeHTTP processes one update. Telegram retries anything that is not a
// 200, so every handled update acknowledges with 200 even when the reply
// could not be generated.
func (h *Webhook) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var update Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		logger.Warn("Ignoring malformed Telegram update: %v", err)
		w.WriteHeader(http.StatusOK)
		return
	}
	if update.Message == nil || update.Message.Text == "" {
		w.WriteHeader(http.StatusOK)
		return
	}

	chatID := update.Message.Chat.ID
	question := update.Message.Text
	logger.Debug("Telegram message from chat %d: %q", chatID, question)

	h.reply(r, chatID, EscapeMarkdownV2(processingReply))

	answer, err := h.answerer.Ask(r.Context(), question)
	if err != nil {
		logger.Warn("Answer generation failed for chat %d: %v", chatID, err)
		h.reply(r, chatID, EscapeMarkdownV2("Hubo un error al procesar tu pregunta. Por favor, intenta de nuevo más tarde."))
		w.WriteHeader(http.StatusOK)
		return
	}

	h.reply(r, chatID, FormatAnswer(answer))
	w.WriteHeader(http.StatusOK)
}

func (h *Webhook) reply(r *http.Request, chatID int64, text string) {
	if err := h.bot.SendMessage(r.Context(), chatID, text); err != nil {
		logger.Warn("Failed to send Telegram message to chat %d: %v", chatID, err)
	}
}
