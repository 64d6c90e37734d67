package notifier

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/solpool/backend/utils"
)

// Telegram pushes operator alerts to the admin chat. Alerts are
// fire-and-forget: a delivery failure is logged, never propagated.
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
	logger *utils.Logger
}

func NewTelegram(token string, chatID int64, logger *utils.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	logger.Infof("Telegram notifier connected as @%s", api.Self.UserName)

	return &Telegram{
		api:    api,
		chatID: chatID,
		logger: logger,
	}, nil
}

func (t *Telegram) StoreDivergence(walletAddress, poolID string, cause error) {
	text := fmt.Sprintf(
		"⚠️ Store divergence\nwallet: %s\npool: %s\nledger committed, document write failed: %v",
		walletAddress, poolID, cause,
	)

	if _, err := t.api.Send(tgbotapi.NewMessage(t.chatID, text)); err != nil {
		t.logger.Errorf("Failed to send divergence alert: %v", err)
	}
}
