package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"InsightStream/internal/ports"
)

// maxMessageRunes is Telegram's limit for a single text message.
const maxMessageRunes = 4096

// ErrMisconfigured is returned when the token or chat is missing.
var ErrMisconfigured = errors.New("telegram notifier misconfigured")

// Notifier sends digests to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	endpoint string
	client   *http.Client

	mu  sync.Mutex
	bot *tgbotapi.BotAPI
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier. The chat may be a
// numeric id or a public channel name such as @insightstream.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		endpoint: tgbotapi.APIEndpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// PublishDigest posts the digest as plain text, split across messages when
// it exceeds the size limit.
func (n *Notifier) PublishDigest(ctx context.Context, digest string) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return ErrMisconfigured
	}
	if strings.TrimSpace(digest) == "" {
		return nil
	}

	bot, err := n.connect()
	if err != nil {
		return err
	}

	for _, chunk := range splitMessage(digest, maxMessageRunes) {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg, err := n.message(chunk)
		if err != nil {
			return err
		}
		msg.DisableWebPagePreview = true
		if _, err := bot.Send(msg); err != nil {
			return fmt.Errorf("send message: %w", err)
		}
	}

	return nil
}

func (n *Notifier) connect() (*tgbotapi.BotAPI, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.bot != nil {
		return n.bot, nil
	}
	bot, err := tgbotapi.NewBotAPIWithClient(n.botToken, n.endpoint, n.client)
	if err != nil {
		return nil, fmt.Errorf("connect bot: %w", err)
	}
	n.bot = bot
	return bot, nil
}

func (n *Notifier) message(text string) (tgbotapi.MessageConfig, error) {
	if strings.HasPrefix(n.chatID, "@") {
		return tgbotapi.NewMessageToChannel(n.chatID, text), nil
	}
	id, err := strconv.ParseInt(n.chatID, 10, 64)
	if err != nil {
		return tgbotapi.MessageConfig{}, fmt.Errorf("chat id %q: %w", n.chatID, ErrMisconfigured)
	}
	return tgbotapi.NewMessage(id, text), nil
}

// splitMessage cuts text into pieces of at most limit runes, preferring
// line boundaries.
func splitMessage(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(runes) > limit {
		cut := limit
		for i := limit - 1; i > limit/2; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}
		chunks = append(chunks, strings.TrimRight(string(runes[:cut]), "\n"))
		runes = runes[cut:]
	}
	if rest := strings.TrimRight(string(runes), "\n"); rest != "" {
		chunks = append(chunks, rest)
	}
	return chunks
}
