package telegram

import (
	"context"

	"github.com/tallypaws/scrambl/internal/game"
)

const parseModeHTML = "HTML"

// Messenger adapts the Bot API client to the game's presentation sink.
type Messenger struct {
	client *Client
}

func NewMessenger(client *Client) *Messenger {
	return &Messenger{client: client}
}

func (m *Messenger) Send(ctx context.Context, channelID int64, v game.View) (int64, error) {
	markup := MarkupFor(v.Buttons)
	if v.Photo != nil {
		return m.client.SendPhoto(channelID, v.Photo, v.Text, parseModeHTML, orNil(markup))
	}
	return m.client.SendMessage(channelID, v.Text, parseModeHTML, 0, orNil(markup))
}

func (m *Messenger) Edit(ctx context.Context, channelID, messageID int64, v game.View) error {
	markup := MarkupFor(v.Buttons)
	switch {
	case v.Photo != nil:
		return m.client.EditMessageMedia(channelID, messageID, v.Photo, v.Text, parseModeHTML, orNil(markup))
	case v.Caption:
		return m.client.EditMessageCaption(channelID, messageID, v.Text, parseModeHTML, orNil(markup))
	default:
		return m.client.EditMessageText(channelID, messageID, v.Text, parseModeHTML, orNil(markup))
	}
}

func (m *Messenger) Reply(ctx context.Context, channelID, replyTo int64, v game.View) (int64, error) {
	return m.client.SendMessage(channelID, v.Text, parseModeHTML, replyTo, orNil(MarkupFor(v.Buttons)))
}

func (m *Messenger) React(ctx context.Context, channelID, messageID int64, emoji string) error {
	return m.client.SetMessageReaction(channelID, messageID, emoji)
}

// orNil keeps a nil *InlineKeyboardMarkup from becoming a non-nil interface.
func orNil(markup *InlineKeyboardMarkup) interface{} {
	if markup == nil {
		return nil
	}
	return markup
}
