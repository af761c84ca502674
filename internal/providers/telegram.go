package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"golang.org/x/time/rate"

	"surfalert-service/internal/logging"
	"surfalert-service/internal/models"
	"surfalert-service/internal/utils"
)

// TelegramReporter posts the per-cycle operator report to a Telegram chat.
type TelegramReporter struct {
	token     string
	chatID    int64
	serverURL string
	limiter   *rate.Limiter
	logger    *logging.Logger
}

// NewTelegramReporter returns nil when the bot token or chat ID is missing.
func NewTelegramReporter(token string, chatID int64, ratePerSecond int, logger *logging.Logger) *TelegramReporter {
	if token == "" || chatID == 0 {
		return nil
	}
	if ratePerSecond < 1 {
		ratePerSecond = 1
	}
	return &TelegramReporter{
		token:   token,
		chatID:  chatID,
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), ratePerSecond),
		logger:  logger,
	}
}

// Report sends the cycle summary, retrying transient failures.
func (r *TelegramReporter) Report(ctx context.Context, summary models.CycleSummary) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram rate limit exceeded: %w", err)
	}

	text := FormatReport(summary)
	return utils.Retry(ctx, r.logger, 3, time.Second, func() error {
		opts := []bot.Option{}
		if r.serverURL != "" {
			opts = append(opts, bot.WithServerURL(r.serverURL))
		}
		b, err := bot.New(r.token, opts...)
		if err != nil {
			return fmt.Errorf("failed to initialize Telegram bot: %w", err)
		}

		params := &bot.SendMessageParams{
			ChatID: r.chatID,
			Text:   text,
		}
		if _, err := b.SendMessage(ctx, params); err != nil {
			return fmt.Errorf("failed to send Telegram message to chat_id %d: %w", r.chatID, err)
		}
		return nil
	})
}

// FormatReport renders the cycle summary with the run duration.
func FormatReport(s models.CycleSummary) string {
	return fmt.Sprintf("%s\nDuration: %s", s.String(), s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond))
}
