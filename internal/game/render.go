package game

import (
	"fmt"
	"strings"
)

// View is the structured rendering payload handed to the presentation sink.
// The core assembles it but never interprets it.
type View struct {
	Text    string
	Photo   []byte // PNG; set for pixel-game sends and media updates
	Caption bool   // the target message is a photo, edit its caption
	Buttons []Button
}

// Button is one inline action. Data is the callback payload routed back into
// the game service.
type Button struct {
	Label string
	Data  string
}

// Callback payload grammar.
const (
	actionHint      = "hint"
	actionReshuffle = "reshuffle"
	actionGiveUp    = "giveup"
)

func callbackData(gameID, action string) string {
	return fmt.Sprintf("game:%s:%s", gameID, action)
}

// ParseCallback splits a game callback payload into game id and action.
func ParseCallback(data string) (gameID, action string, ok bool) {
	parts := strings.Split(data, ":")
	if len(parts) != 3 || parts[0] != "game" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

func playAgainData(mode Mode, cat Category) string {
	return fmt.Sprintf("again:%s:%s", mode, cat)
}

// ParsePlayAgain splits a play-again payload into mode and category.
func ParsePlayAgain(data string) (Mode, Category, bool) {
	parts := strings.Split(data, ":")
	if len(parts) != 3 || parts[0] != "again" {
		return "", "", false
	}
	return Mode(parts[1]), Category(parts[2]), true
}

// renderBody builds the shared puzzle text: scrambled answer, game header and
// the revealed hints, plus an optional status suffix.
func renderBody(s *Session, suffix string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<code>%s</code>\n\n", escapeHTML(s.Scrambled))

	label := "Jumble"
	if s.Mode == ModePixel {
		label = "Pixel"
	}
	category := s.Category
	if s.Mix {
		category = CategoryMix
	}
	fmt.Fprintf(&b, "%s <b>%s — Guess the %s</b>", colorEmoji(s.Color), label, category)
	if s.Mix {
		fmt.Fprintf(&b, " (%s)", s.Category)
	}

	for _, hint := range s.Hints.Revealed {
		b.WriteString("\n• ")
		b.WriteString(hint)
	}
	if suffix != "" {
		b.WriteString("\n\n")
		b.WriteString(suffix)
	}
	return b.String()
}

// renderActive builds the live-game view with its action buttons. The hint
// button relabels to Depixelate once text hints are exhausted but the image
// can still sharpen, and disappears when both are done.
func renderActive(s *Session, photo []byte, suffix string) View {
	v := View{
		Text:    renderBody(s, suffix),
		Photo:   photo,
		Caption: s.Mode == ModePixel,
	}

	hintLabel := "Add Hint"
	hintUsable := !s.Hints.Exhausted()
	if s.Mode == ModePixel && !hintUsable && s.PixelLevel > minPixelLevelValue {
		hintLabel = "Depixelate"
		hintUsable = true
	}
	if hintUsable {
		v.Buttons = append(v.Buttons, Button{Label: hintLabel, Data: callbackData(s.ID, actionHint)})
	}
	v.Buttons = append(v.Buttons,
		Button{Label: "Reshuffle", Data: callbackData(s.ID, actionReshuffle)},
		Button{Label: "Give Up", Data: callbackData(s.ID, actionGiveUp)},
	)
	return v
}

func (s *Session) answerWithAttribution() string {
	if s.By != "" {
		return fmt.Sprintf("<b>%s</b> by %s", escapeHTML(s.Answer), escapeHTML(s.By))
	}
	return fmt.Sprintf("<b>%s</b>", escapeHTML(s.Answer))
}

// renderWon is the in-place edit of the game message after a correct guess.
func renderWon(s *Session, photo []byte, winner string) View {
	return View{
		Text:    renderBody(s, fmt.Sprintf("%s <b>%s guessed it!</b>", colorEmoji(ColorCorrect), escapeHTML(winner))),
		Photo:   photo,
		Caption: s.Mode == ModePixel,
	}
}

// renderWinReply is the public celebration replied to the winning guess.
func renderWinReply(s *Session, winner string, elapsedSeconds float64) View {
	return View{
		Text: fmt.Sprintf("%s got it! The answer was %s.\nAnswered in %.2fs.",
			escapeHTML(winner), s.answerWithAttribution(), elapsedSeconds),
		Buttons: []Button{{Label: "Play Again", Data: playAgainData(s.Mode, s.Category)}},
	}
}

// renderGivenUp edits the game message after a give-up, answer revealed.
func renderGivenUp(s *Session, photo []byte, quitter string) View {
	v := View{
		Text: renderBody(s, fmt.Sprintf("%s <b>%s gave up!</b>\nThe answer was %s.",
			colorEmoji(ColorGiveUp), escapeHTML(quitter), s.answerWithAttribution())),
		Photo:   photo,
		Caption: s.Mode == ModePixel,
	}
	v.Buttons = []Button{{Label: "Play Again", Data: playAgainData(s.Mode, s.Category)}}
	return v
}

// renderTimedOut edits the game message once the deadline fires.
func renderTimedOut(s *Session, photo []byte) View {
	return View{
		Text:    renderBody(s, fmt.Sprintf("%s <b>Time's up!</b>\nIt was %s.", colorEmoji(ColorTimeout), s.answerWithAttribution())),
		Photo:   photo,
		Caption: s.Mode == ModePixel,
	}
}

// renderTimeoutReply is the separate "nobody guessed it" prompt with the
// play-again affordance bound to the resolved category.
func renderTimeoutReply(s *Session) View {
	return View{
		Text:    fmt.Sprintf("Nobody guessed it right. It was %s.", s.answerWithAttribution()),
		Buttons: []Button{{Label: "Play Again", Data: playAgainData(s.Mode, s.Category)}},
	}
}

// colorEmoji maps an accent color to the closest Telegram-renderable dot.
// Telegram has no embed colors, so the accents surface as emoji.
func colorEmoji(c int) string {
	switch c {
	case ColorCorrect:
		return "🟢"
	case ColorGiveUp:
		return "🔴"
	case ColorTimeout:
		return "⚪"
	case ColorStartUp:
		return "🔵"
	case categoryColors[CategoryArtist]:
		return "🟣"
	case categoryColors[CategoryAlbum]:
		return "🟠"
	case categoryColors[CategoryTrack]:
		return "🟢"
	case categoryColors[CategoryMix]:
		return "🟡"
	}
	return "⚫"
}

func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
