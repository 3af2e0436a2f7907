package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tallypaws/scrambl/internal/fm"
	"github.com/tallypaws/scrambl/internal/game"
	"github.com/tallypaws/scrambl/internal/services"
)

const handleTimeout = 60 * time.Second

// UpdateHandler routes incoming Bot API updates: commands start games or
// manage account links, plain chat messages become guesses, button presses
// feed the running game.
type UpdateHandler struct {
	client *Client
	games  *game.Service
	links  *services.LinkService
	fm     *fm.Client
	state  *linkState
}

func NewUpdateHandler(client *Client, games *game.Service, links *services.LinkService, fmClient *fm.Client) *UpdateHandler {
	return &UpdateHandler{
		client: client,
		games:  games,
		links:  links,
		fm:     fmClient,
		state:  newLinkState(),
	}
}

func (h *UpdateHandler) Handle(upd Update) {
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	if upd.CallbackQuery != nil {
		h.handleCallback(ctx, upd.CallbackQuery)
		return
	}
	if upd.Message != nil {
		h.handleMessage(ctx, upd.Message)
	}
}

func (h *UpdateHandler) handleMessage(ctx context.Context, msg *Message) {
	if msg.From == nil || msg.From.IsBot {
		return
	}
	userID := msg.From.ID
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	if cmd, args, ok := parseCommand(text); ok {
		switch cmd {
		case "start", "help":
			h.cmdStart(chatID)
		case "link":
			h.cmdLink(ctx, userID, chatID, args)
		case "jumble":
			h.startGame(ctx, chatID, userID, game.ModeJumble, game.ParseCategory(args, game.CategoryArtist))
		case "pixel":
			h.startGame(ctx, chatID, userID, game.ModePixel, game.ParseCategory(args, game.CategoryAlbum))
		}
		return
	}

	if text == "" {
		return
	}
	sentAt := time.Unix(msg.Date, 0)
	h.games.HandleMessage(ctx, chatID, msg.MessageID, msg.From.FirstName, text, sentAt)
}

// parseCommand splits "/cmd@botname args" into its parts.
func parseCommand(text string) (cmd, args string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	fields := strings.Fields(text[1:])
	if len(fields) == 0 {
		return "", "", false
	}
	cmd = strings.ToLower(strings.SplitN(fields[0], "@", 2)[0])
	return cmd, strings.Join(fields[1:], " "), true
}

func (h *UpdateHandler) cmdStart(chatID int64) {
	h.send(chatID, "I run music guessing games from your Last.fm history.\n\n"+
		"/link &lt;username&gt; — link your Last.fm account\n"+
		"/jumble [artist|album|track|mix] — unscramble a name\n"+
		"/pixel [artist|album|track|mix] — guess from a pixelated image")
}

func (h *UpdateHandler) cmdLink(ctx context.Context, userID, chatID int64, username string) {
	username = strings.TrimSpace(username)
	if username == "" {
		h.send(chatID, "Usage: /link &lt;lastfm username&gt;")
		return
	}

	if _, err := h.fm.TopArtists(ctx, username); err != nil {
		if errors.Is(err, fm.ErrUserNotFound) {
			h.send(chatID, fmt.Sprintf("There is no Last.fm user named <b>%s</b>.", username))
			return
		}
		log.Warn().Err(err).Str("user", username).Msg("link validation failed")
		h.send(chatID, "Couldn't reach Last.fm right now, try again later.")
		return
	}

	existing, err := h.links.Get(ctx, userID)
	switch {
	case err == nil:
		h.state.Put(userID, chatID, username, func(chatID int64) {
			h.send(chatID, "Link request expired.")
		})
		_, err := h.client.SendMessage(chatID,
			fmt.Sprintf("You are already linked to <b>%s</b>. Overwrite with <b>%s</b>?", existing, username),
			parseModeHTML, 0, linkConfirmKeyboard())
		if err != nil {
			log.Warn().Err(err).Msg("send link confirmation failed")
		}
	case errors.Is(err, game.ErrNotLinked):
		h.setLink(ctx, userID, chatID, username)
	default:
		log.Error().Err(err).Int64("user", userID).Msg("link lookup failed")
		h.send(chatID, "Something went wrong, try again later.")
	}
}

func (h *UpdateHandler) setLink(ctx context.Context, userID, chatID int64, username string) {
	if err := h.links.Set(ctx, userID, username); err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("link save failed")
		h.send(chatID, "Something went wrong, try again later.")
		return
	}
	h.send(chatID, fmt.Sprintf("✅ Linked to <b>%s</b>.", username))
}

func (h *UpdateHandler) startGame(ctx context.Context, chatID, userID int64, mode game.Mode, cat game.Category) bool {
	err := h.games.Start(ctx, chatID, userID, mode, cat)
	switch {
	case err == nil:
		return true
	case errors.Is(err, game.ErrChannelBusy):
		h.send(chatID, "There's already a game running in this chat.")
	case errors.Is(err, game.ErrNotLinked):
		h.send(chatID, "Link your Last.fm account first: /link &lt;username&gt;")
	case errors.Is(err, fm.ErrUserNotFound):
		h.send(chatID, "Your linked Last.fm account no longer exists. Relink with /link.")
	default:
		log.Error().Err(err).Int64("chat", chatID).Msg("start game failed")
		h.send(chatID, "Couldn't start a game, try again later.")
	}
	return false
}

func (h *UpdateHandler) handleCallback(ctx context.Context, cb *CallbackQuery) {
	defer func() {
		if err := h.client.AnswerCallbackQuery(cb.ID, "", false); err != nil {
			log.Debug().Err(err).Msg("answer callback failed")
		}
	}()

	if gameID, action, ok := game.ParseCallback(cb.Data); ok {
		h.gameAction(ctx, cb, gameID, action)
		return
	}
	if mode, cat, ok := game.ParsePlayAgain(cb.Data); ok {
		if cb.Message == nil {
			return
		}
		if h.startGame(ctx, cb.Message.Chat.ID, cb.From.ID, mode, cat) {
			h.retirePlayAgainPrompt(cb)
		}
		return
	}
	if strings.HasPrefix(cb.Data, "link:") {
		h.linkDecision(ctx, cb)
	}
}

func (h *UpdateHandler) gameAction(ctx context.Context, cb *CallbackQuery, gameID, action string) {
	var err error
	switch action {
	case "hint":
		err = h.games.AddHint(ctx, gameID)
	case "reshuffle":
		err = h.games.Reshuffle(ctx, gameID)
	case "giveup":
		err = h.games.GiveUp(ctx, gameID, cb.From.FirstName)
	default:
		return
	}
	if err != nil && !errors.Is(err, game.ErrGameNotFound) {
		log.Warn().Err(err).Str("game", gameID).Str("action", action).Msg("game action failed")
	}
}

// retirePlayAgainPrompt rewrites the prompt that carried the pressed Play
// Again button, dropping the button so it cannot start a second game. The
// original text comes back from the API entity-free, so the rewrite sends no
// parse mode.
func (h *UpdateHandler) retirePlayAgainPrompt(cb *CallbackQuery) {
	text := fmt.Sprintf("%s\n\n%s is playing again!", cb.Message.Text, cb.From.FirstName)
	if err := h.client.EditMessageText(cb.Message.Chat.ID, cb.Message.MessageID, text, "", nil); err != nil {
		log.Debug().Err(err).Msg("rewrite play-again prompt failed")
	}
}

func (h *UpdateHandler) linkDecision(ctx context.Context, cb *CallbackQuery) {
	pending := h.state.Take(cb.From.ID)
	if pending == nil {
		return
	}
	if cb.Data == "link:yes" {
		h.setLink(ctx, cb.From.ID, pending.chatID, pending.username)
		return
	}
	h.send(pending.chatID, "Kept the existing link.")
}

func (h *UpdateHandler) send(chatID int64, text string) {
	if _, err := h.client.SendMessage(chatID, text, parseModeHTML, 0, nil); err != nil {
		log.Warn().Err(err).Int64("chat", chatID).Msg("send failed")
	}
}
