package game

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/tallypaws/scrambl/internal/text"
)

var (
	// ErrChannelBusy rejects a start while the channel already has a live
	// game or a pending reservation.
	ErrChannelBusy = errors.New("a game is already running in this channel")
	// ErrNotLinked rejects a start for a user without a linked listening
	// account.
	ErrNotLinked = errors.New("no linked last.fm account")
	// ErrGameNotFound reports a button press against a game that has
	// already been torn down.
	ErrGameNotFound = errors.New("game not found")
)

const (
	// DefaultGuessTimeout bounds a game's lifetime from the moment it is
	// presented.
	DefaultGuessTimeout = 35 * time.Second

	// Weight exponents tuned per mode: jumble leans hard into the top of
	// the listening history, pixel flattens it out.
	jumbleWeightExponent = 4.0
	pixelWeightExponent  = 0.6

	// Pixel games retry selection when a candidate lacks a usable image.
	maxPixelSelectAttempts = 10
)

// History is the per-user listening-history provider.
type History interface {
	TopArtists(ctx context.Context, user string) ([]Candidate, error)
	TopAlbums(ctx context.Context, user string) ([]Candidate, error)
	TopTracks(ctx context.Context, user string) ([]Candidate, error)
}

// HintSource synthesizes the hint pool for a picked candidate.
type HintSource interface {
	HintsFor(ctx context.Context, cat Category, c Candidate) ([]string, error)
}

// Links resolves a chat user to their linked listening-history username.
// It returns ErrNotLinked for unknown users.
type Links interface {
	Get(ctx context.Context, userID int64) (string, error)
}

// Messenger is the presentation sink. The service assembles Views and never
// interprets what the transport does with them.
type Messenger interface {
	Send(ctx context.Context, channelID int64, v View) (int64, error)
	Edit(ctx context.Context, channelID, messageID int64, v View) error
	Reply(ctx context.Context, channelID, replyTo int64, v View) (int64, error)
	React(ctx context.Context, channelID, messageID int64, emoji string) error
}

// Images fetches and transforms puzzle images for pixel games.
type Images interface {
	FetchAndNormalize(ctx context.Context, url string) (image.Image, error)
	Pixelate(img image.Image, level float64) ([]byte, error)
	Encode(img image.Image) ([]byte, error)
}

// Service runs game sessions: it reserves channels, selects answers,
// presents puzzles and routes hint/reshuffle/guess/give-up events and the
// deadline timer through the session state machine.
type Service struct {
	registry *Registry
	recency  *RecencyFilter
	history  History
	hints    HintSource
	links    Links
	msgr     Messenger
	images   Images
	timeout  time.Duration

	rngMu sync.Mutex
	rng   *rand.Rand
	now   func() time.Time
}

func NewService(history History, hints HintSource, links Links, msgr Messenger, images Images, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = DefaultGuessTimeout
	}
	return &Service{
		registry: NewRegistry(),
		recency:  NewRecencyFilter(0),
		history:  history,
		hints:    hints,
		links:    links,
		msgr:     msgr,
		images:   images,
		timeout:  timeout,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
	}
}

// withRand serializes access to the shared random source.
func (s *Service) withRand(fn func(rng *rand.Rand)) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	fn(s.rng)
}

// Start runs the Selecting and Presenting phases for a new game. The channel
// reservation is taken synchronously before any upstream call, so a second
// start racing in during selection is rejected instead of double-booking the
// channel. Any failure before commit releases the reservation.
func (s *Service) Start(ctx context.Context, channelID, userID int64, mode Mode, cat Category) error {
	if !s.registry.TryReserve(channelID) {
		return ErrChannelBusy
	}

	sess, err := s.prepare(ctx, channelID, userID, mode, cat)
	if err != nil {
		s.registry.CancelReservation(channelID)
		return err
	}

	s.registry.Commit(sess)
	time.AfterFunc(s.timeout, func() { s.onDeadline(sess.ID) })

	log.Info().
		Str("game", sess.ID).
		Int64("channel", channelID).
		Str("category", string(sess.Category)).
		Msg("game started")
	return nil
}

func (s *Service) prepare(ctx context.Context, channelID, userID int64, mode Mode, cat Category) (*Session, error) {
	user, err := s.links.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	mix := cat == CategoryMix
	var resolved Category
	s.withRand(func(rng *rand.Rand) { resolved = ResolveMix(rng, cat) })

	list, err := s.fetchHistory(ctx, resolved, user)
	if err != nil {
		return nil, fmt.Errorf("fetch top %ss: %w", resolved, err)
	}

	var picked Candidate
	if mode == ModePixel {
		picked, err = s.pickWithImage(list, userID, resolved)
	} else {
		picked, err = s.pickCandidate(list, userID, resolved)
	}
	if err != nil {
		return nil, err
	}

	pool, err := s.hints.HintsFor(ctx, resolved, picked)
	if err != nil {
		return nil, fmt.Errorf("build hints: %w", err)
	}

	sess := &Session{
		ID:        newGameID(mode, s.now()),
		Mode:      mode,
		Category:  resolved,
		Mix:       mix,
		Answer:    picked.Name,
		By:        picked.Artist,
		ChannelID: channelID,
	}
	if mix {
		sess.Color = categoryColors[CategoryMix]
	} else {
		sess.Color = categoryColors[resolved]
	}
	s.withRand(func(rng *rand.Rand) {
		sess.Hints = NewHints(rng, pool, InitialHintCount)
		sess.Scrambled = strings.ToUpper(text.Scramble(rng, picked.Name, text.DefaultScrambleOptions()))
	})

	var photo []byte
	if mode == ModePixel {
		img, err := s.images.FetchAndNormalize(ctx, picked.ImageURL)
		if err != nil {
			return nil, fmt.Errorf("fetch puzzle image: %w", err)
		}
		sess.Image = img
		sess.PixelLevel = firstPixelLevel()
		photo, err = s.images.Pixelate(img, sess.PixelLevel)
		if err != nil {
			return nil, fmt.Errorf("pixelate: %w", err)
		}
	}

	note := fmt.Sprintf("%s Type your answer within %d seconds to make a guess",
		colorEmoji(ColorStartUp), int(s.timeout.Seconds()))
	msgID, err := s.msgr.Send(ctx, channelID, renderActive(sess, photo, note))
	if err != nil {
		return nil, fmt.Errorf("send game message: %w", err)
	}
	sess.MessageID = msgID
	sess.StartedAt = s.now()
	return sess, nil
}

func (s *Service) fetchHistory(ctx context.Context, cat Category, user string) ([]Candidate, error) {
	switch cat {
	case CategoryAlbum:
		return s.history.TopAlbums(ctx, user)
	case CategoryTrack:
		return s.history.TopTracks(ctx, user)
	default:
		return s.history.TopArtists(ctx, user)
	}
}

func (s *Service) pickCandidate(list []Candidate, userID int64, cat Category) (Candidate, error) {
	var picked Candidate
	var ok bool
	s.withRand(func(rng *rand.Rand) {
		picked, ok = s.recency.Select(rng, list, jumbleWeightExponent, userID, cat)
	})
	if !ok {
		return Candidate{}, fmt.Errorf("empty %s history", cat)
	}
	if !usable(picked, cat, false) {
		return Candidate{}, fmt.Errorf("invalid %s data", cat)
	}
	return picked, nil
}

func (s *Service) pickWithImage(list []Candidate, userID int64, cat Category) (Candidate, error) {
	withImages := lo.Filter(list, func(c Candidate, _ int) bool {
		return c.ImageURL != ""
	})
	for attempt := 0; attempt < maxPixelSelectAttempts; attempt++ {
		var picked Candidate
		var ok bool
		s.withRand(func(rng *rand.Rand) {
			picked, ok = s.recency.Select(rng, withImages, pixelWeightExponent, userID, cat)
		})
		if !ok {
			break
		}
		if usable(picked, cat, true) {
			return picked, nil
		}
	}
	return Candidate{}, fmt.Errorf("could not select a valid %s with a usable image", cat)
}

// usable validates the fields a game needs from a candidate.
func usable(c Candidate, cat Category, needImage bool) bool {
	if c.Name == "" || c.Playcount == 0 {
		return false
	}
	if cat != CategoryArtist && c.Artist == "" {
		return false
	}
	if needImage && c.ImageURL == "" {
		return false
	}
	return true
}

func newGameID(mode Mode, at time.Time) string {
	return fmt.Sprintf("%s-%d-%s", mode, at.UnixMilli(), uuid.NewString()[:8])
}

// AddHint reveals one more hint. In pixel mode it also advances the image one
// step sharper; the two move together under the one button.
func (s *Service) AddHint(ctx context.Context, gameID string) error {
	sess, ok := s.registry.Get(gameID)
	if !ok {
		return ErrGameNotFound
	}

	sess.mu.Lock()
	if sess.Answered {
		sess.mu.Unlock()
		return nil
	}
	s.withRand(func(rng *rand.Rand) { sess.Hints.RevealOne(rng) })

	var photo []byte
	if sess.Mode == ModePixel && sess.PixelLevel > minPixelLevelValue {
		sess.PixelLevel = nextPixelLevel(sess.PixelLevel)
		var err error
		photo, err = s.images.Pixelate(sess.Image, sess.PixelLevel)
		if err != nil {
			sess.mu.Unlock()
			return fmt.Errorf("pixelate: %w", err)
		}
	}
	v := renderActive(sess, photo, "")
	channelID, messageID := sess.ChannelID, sess.MessageID
	sess.mu.Unlock()

	return s.msgr.Edit(ctx, channelID, messageID, v)
}

// Reshuffle re-scrambles the answer text. Pixel games keep their image and
// level; the puzzle there is the image, the letters are only an overlay.
func (s *Service) Reshuffle(ctx context.Context, gameID string) error {
	sess, ok := s.registry.Get(gameID)
	if !ok {
		return ErrGameNotFound
	}

	sess.mu.Lock()
	if sess.Answered {
		sess.mu.Unlock()
		return nil
	}
	s.withRand(func(rng *rand.Rand) {
		sess.Scrambled = strings.ToUpper(text.Scramble(rng, sess.Answer, text.DefaultScrambleOptions()))
	})
	v := renderActive(sess, nil, "")
	channelID, messageID := sess.ChannelID, sess.MessageID
	sess.mu.Unlock()

	return s.msgr.Edit(ctx, channelID, messageID, v)
}

// GiveUp terminates the game on behalf of quitter, revealing the answer.
func (s *Service) GiveUp(ctx context.Context, gameID, quitter string) error {
	sess, ok := s.registry.Get(gameID)
	if !ok {
		return ErrGameNotFound
	}
	if !sess.finish() {
		return nil
	}
	s.registry.Release(sess.ChannelID, sess.ID)

	photo := s.fullImage(sess)
	sess.mu.Lock()
	v := renderGivenUp(sess, photo, quitter)
	sess.mu.Unlock()

	log.Info().Str("game", sess.ID).Msg("game given up")
	return s.msgr.Edit(ctx, sess.ChannelID, sess.MessageID, v)
}

// HandleMessage treats a chat message as a guess when its channel has a live
// game. Wildly mismatched lengths are ignored entirely, wrong and close
// guesses get reaction feedback, a correct guess wins and tears the game
// down.
func (s *Service) HandleMessage(ctx context.Context, channelID, messageID int64, author, content string, sentAt time.Time) {
	sess, ok := s.registry.FindByChannel(channelID)
	if !ok || sess.answered() {
		return
	}

	switch text.EvaluateGuess(content, sess.Answer) {
	case text.VerdictIgnore:
	case text.VerdictWrong:
		s.react(ctx, channelID, messageID, "❌")
	case text.VerdictClose:
		s.react(ctx, channelID, messageID, "🤏")
	case text.VerdictCorrect:
		if !sess.finish() {
			return
		}
		s.registry.Release(sess.ChannelID, sess.ID)

		elapsed := sentAt.Sub(sess.StartedAt).Seconds()
		photo := s.fullImage(sess)
		sess.mu.Lock()
		won := renderWon(sess, photo, author)
		sess.mu.Unlock()

		if err := s.msgr.Edit(ctx, sess.ChannelID, sess.MessageID, won); err != nil {
			log.Warn().Err(err).Str("game", sess.ID).Msg("edit after win failed")
		}
		s.react(ctx, channelID, messageID, "✅")
		if _, err := s.msgr.Reply(ctx, channelID, messageID, renderWinReply(sess, author, elapsed)); err != nil {
			log.Warn().Err(err).Str("game", sess.ID).Msg("win reply failed")
		}
		log.Info().Str("game", sess.ID).Float64("elapsed_s", elapsed).Msg("game won")
	}
}

// onDeadline is the timer transition. The answered guard makes it a no-op
// when a guess or give-up got there first.
func (s *Service) onDeadline(gameID string) {
	sess, ok := s.registry.Get(gameID)
	if !ok {
		return
	}
	if !sess.finish() {
		return
	}
	s.registry.Release(sess.ChannelID, sess.ID)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	photo := s.fullImage(sess)
	sess.mu.Lock()
	v := renderTimedOut(sess, photo)
	sess.mu.Unlock()

	if err := s.msgr.Edit(ctx, sess.ChannelID, sess.MessageID, v); err != nil {
		log.Warn().Err(err).Str("game", sess.ID).Msg("edit on timeout failed")
	}
	if _, err := s.msgr.Reply(ctx, sess.ChannelID, sess.MessageID, renderTimeoutReply(sess)); err != nil {
		log.Warn().Err(err).Str("game", sess.ID).Msg("timeout reply failed")
	}
	log.Info().Str("game", sess.ID).Msg("game timed out")
}

// fullImage returns the unpixelated image for terminal renders of pixel
// games, nil for jumble games.
func (s *Service) fullImage(sess *Session) []byte {
	if sess.Mode != ModePixel || sess.Image == nil {
		return nil
	}
	b, err := s.images.Encode(sess.Image)
	if err != nil {
		log.Warn().Err(err).Str("game", sess.ID).Msg("encode full image failed")
		return nil
	}
	return b
}

func (s *Service) react(ctx context.Context, channelID, messageID int64, emoji string) {
	if err := s.msgr.React(ctx, channelID, messageID, emoji); err != nil {
		log.Debug().Err(err).Int64("channel", channelID).Msg("reaction failed")
	}
}
