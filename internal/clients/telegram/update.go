package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	types "github.com/yungbote/repurpose-bot/internal/domain"
)

// ToUpdate maps a Bot API update to the bot's tagged variant. Edits, channel
// posts, callbacks and messages without a command, text or voice note are unsupported.
func ToUpdate(u tgbotapi.Update) types.Update {
	out := types.Update{ID: int64(u.UpdateID), Kind: types.UpdateUnsupported}
	msg := u.Message
	if msg == nil || msg.Chat == nil {
		return out
	}
	out.ChatID = msg.Chat.ID
	if msg.From != nil {
		out.UserID = msg.From.ID
	} else {
		return out
	}

	switch {
	case msg.IsCommand():
		out.Kind = types.UpdateCommand
		out.Command = strings.ToLower(msg.Command())
		out.Argument = strings.TrimSpace(msg.CommandArguments())
	case msg.Voice != nil:
		out.Kind = types.UpdateVoice
		out.Voice = &types.Voice{
			FileID:   msg.Voice.FileID,
			MimeType: msg.Voice.MimeType,
		}
	case strings.TrimSpace(msg.Text) != "":
		out.Kind = types.UpdateText
		out.Body = msg.Text
	}
	return out
}
