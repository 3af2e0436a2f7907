package telegram

import "github.com/tallypaws/scrambl/internal/game"

// MarkupFor converts the game's buttons into an inline keyboard, one row.
// Returns nil when there are no buttons so callers can omit the field.
func MarkupFor(buttons []game.Button) *InlineKeyboardMarkup {
	if len(buttons) == 0 {
		return nil
	}
	row := make([]InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		row = append(row, InlineKeyboardButton{Text: b.Label, CallbackData: b.Data})
	}
	return &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{row}}
}

func linkConfirmKeyboard() *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{{
			{Text: "Yes", CallbackData: "link:yes"},
			{Text: "No", CallbackData: "link:no"},
		}},
	}
}
