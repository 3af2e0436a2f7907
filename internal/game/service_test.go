package game

import (
	"context"
	"errors"
	"image"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeHistory struct {
	artists []Candidate
	albums  []Candidate
	tracks  []Candidate
	err     error
}

func (f *fakeHistory) TopArtists(ctx context.Context, user string) ([]Candidate, error) {
	return f.artists, f.err
}
func (f *fakeHistory) TopAlbums(ctx context.Context, user string) ([]Candidate, error) {
	return f.albums, f.err
}
func (f *fakeHistory) TopTracks(ctx context.Context, user string) ([]Candidate, error) {
	return f.tracks, f.err
}

type fakeHints struct{ pool []string }

func (f *fakeHints) HintsFor(ctx context.Context, cat Category, c Candidate) ([]string, error) {
	return f.pool, nil
}

type fakeLinks struct{ users map[int64]string }

func (f *fakeLinks) Get(ctx context.Context, userID int64) (string, error) {
	u, ok := f.users[userID]
	if !ok {
		return "", ErrNotLinked
	}
	return u, nil
}

type sentMessage struct {
	channelID int64
	messageID int64
	view      View
	kind      string // send, edit, reply
}

type fakeMessenger struct {
	mu       sync.Mutex
	nextID   int64
	messages []sentMessage
	reacts   []string
}

func (f *fakeMessenger) Send(ctx context.Context, channelID int64, v View) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.messages = append(f.messages, sentMessage{channelID, f.nextID, v, "send"})
	return f.nextID, nil
}

func (f *fakeMessenger) Edit(ctx context.Context, channelID, messageID int64, v View) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, sentMessage{channelID, messageID, v, "edit"})
	return nil
}

func (f *fakeMessenger) Reply(ctx context.Context, channelID, replyTo int64, v View) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.messages = append(f.messages, sentMessage{channelID, f.nextID, v, "reply"})
	return f.nextID, nil
}

func (f *fakeMessenger) React(ctx context.Context, channelID, messageID int64, emoji string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reacts = append(f.reacts, emoji)
	return nil
}

func (f *fakeMessenger) byKind(kind string) []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMessage
	for _, m := range f.messages {
		if m.kind == kind {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeMessenger) reactions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.reacts...)
}

type fakeImages struct{}

func (fakeImages) FetchAndNormalize(ctx context.Context, url string) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}
func (fakeImages) Pixelate(img image.Image, level float64) ([]byte, error) {
	return []byte("pixelated"), nil
}
func (fakeImages) Encode(img image.Image) ([]byte, error) {
	return []byte("full"), nil
}

func newTestService(msgr *fakeMessenger) *Service {
	history := &fakeHistory{
		artists: []Candidate{{Name: "Queen", Playcount: 100}},
		albums:  []Candidate{{Name: "Abbey Road", Artist: "The Beatles", Playcount: 50, ImageURL: "http://img"}},
		tracks:  []Candidate{{Name: "Dreams", Artist: "Fleetwood Mac", Playcount: 30, ImageURL: "http://img"}},
	}
	hints := &fakeHints{pool: []string{"h1", "h2", "h3", "h4", "h5"}}
	links := &fakeLinks{users: map[int64]string{7: "alice"}}
	return NewService(history, hints, links, msgr, fakeImages{}, time.Hour)
}

func TestStartPresentsGame(t *testing.T) {
	msgr := &fakeMessenger{}
	svc := newTestService(msgr)

	if err := svc.Start(context.Background(), 100, 7, ModeJumble, CategoryArtist); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	sends := msgr.byKind("send")
	if len(sends) != 1 {
		t.Fatalf("got %d sends, want 1", len(sends))
	}
	body := sends[0].view.Text
	if !strings.Contains(body, "<code>") {
		t.Fatalf("game message lacks the scrambled answer block:\n%s", body)
	}
	if !strings.Contains(body, "Guess the artist") {
		t.Fatalf("game message lacks the header:\n%s", body)
	}
	if !strings.Contains(body, "within 3600 seconds") {
		t.Fatalf("game message lacks the deadline note:\n%s", body)
	}
	if len(sends[0].view.Buttons) != 3 {
		t.Fatalf("got %d buttons, want hint/reshuffle/giveup", len(sends[0].view.Buttons))
	}

	sess, ok := svc.registry.FindByChannel(100)
	if !ok {
		t.Fatal("no session registered for the channel")
	}
	if sess.Answer != "Queen" {
		t.Fatalf("answer = %q, want Queen", sess.Answer)
	}
	if sortedRunesOf(sess.Scrambled) != sortedRunesOf("QUEEN") {
		t.Fatalf("scrambled %q is not a permutation of the answer", sess.Scrambled)
	}
}

func sortedRunesOf(s string) string {
	runes := []rune(s)
	for i := 1; i < len(runes); i++ {
		for j := i; j > 0 && runes[j-1] > runes[j]; j-- {
			runes[j-1], runes[j] = runes[j], runes[j-1]
		}
	}
	return string(runes)
}

func TestStartRejectsBusyChannel(t *testing.T) {
	msgr := &fakeMessenger{}
	svc := newTestService(msgr)

	if err := svc.Start(context.Background(), 100, 7, ModeJumble, CategoryArtist); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	err := svc.Start(context.Background(), 100, 7, ModeJumble, CategoryArtist)
	if !errors.Is(err, ErrChannelBusy) {
		t.Fatalf("got %v, want ErrChannelBusy", err)
	}
}

func TestStartUnlinkedUserReleasesReservation(t *testing.T) {
	msgr := &fakeMessenger{}
	svc := newTestService(msgr)

	err := svc.Start(context.Background(), 100, 999, ModeJumble, CategoryArtist)
	if !errors.Is(err, ErrNotLinked) {
		t.Fatalf("got %v, want ErrNotLinked", err)
	}
	// the failed start must not leave the channel blocked
	if err := svc.Start(context.Background(), 100, 7, ModeJumble, CategoryArtist); err != nil {
		t.Fatalf("start after failed attempt: %v", err)
	}
}

func TestCorrectGuessWinsGame(t *testing.T) {
	msgr := &fakeMessenger{}
	svc := newTestService(msgr)
	ctx := context.Background()

	if err := svc.Start(ctx, 100, 7, ModeJumble, CategoryArtist); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	sess, _ := svc.registry.FindByChannel(100)

	svc.HandleMessage(ctx, 100, 555, "bob", "queen", sess.StartedAt.Add(3*time.Second))

	if got := msgr.reactions(); len(got) != 1 || got[0] != "✅" {
		t.Fatalf("reactions = %v, want one ✅", got)
	}
	edits := msgr.byKind("edit")
	if len(edits) != 1 || !strings.Contains(edits[0].view.Text, "bob guessed it!") {
		t.Fatalf("win edit missing: %v", edits)
	}
	replies := msgr.byKind("reply")
	if len(replies) != 1 {
		t.Fatalf("got %d replies, want 1", len(replies))
	}
	reply := replies[0].view
	if !strings.Contains(reply.Text, "bob got it!") || !strings.Contains(reply.Text, "Answered in 3.00s.") {
		t.Fatalf("win reply text: %q", reply.Text)
	}
	if len(reply.Buttons) != 1 || reply.Buttons[0].Label != "Play Again" {
		t.Fatalf("win reply buttons: %v", reply.Buttons)
	}

	if _, ok := svc.registry.FindByChannel(100); ok {
		t.Fatal("channel still bound after win")
	}
	if err := svc.Start(ctx, 100, 7, ModeJumble, CategoryArtist); err != nil {
		t.Fatalf("channel should accept a new game after win: %v", err)
	}
}

func TestGuessFeedback(t *testing.T) {
	msgr := &fakeMessenger{}
	svc := newTestService(msgr)
	ctx := context.Background()

	if err := svc.Start(ctx, 100, 7, ModeJumble, CategoryArtist); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	now := time.Now()

	// wildly mismatched length: ignored outright
	svc.HandleMessage(ctx, 100, 1, "bob", "definitely not the answer", now)
	if got := msgr.reactions(); len(got) != 0 {
		t.Fatalf("length-gated guess reacted: %v", got)
	}

	// same length, far away: wrong
	svc.HandleMessage(ctx, 100, 2, "bob", "zzzzz", now)
	// a couple of edits away: close
	svc.HandleMessage(ctx, 100, 3, "bob", "queeze", now)

	if got := msgr.reactions(); len(got) != 2 || got[0] != "❌" || got[1] != "🤏" {
		t.Fatalf("reactions = %v, want ❌ then 🤏", got)
	}
	if _, ok := svc.registry.FindByChannel(100); !ok {
		t.Fatal("game should survive wrong guesses")
	}
}

func TestAddHintRevealsOne(t *testing.T) {
	msgr := &fakeMessenger{}
	svc := newTestService(msgr)
	ctx := context.Background()

	if err := svc.Start(ctx, 100, 7, ModeJumble, CategoryArtist); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	sess, _ := svc.registry.FindByChannel(100)

	before := len(sess.Hints.Revealed)
	if err := svc.AddHint(ctx, sess.ID); err != nil {
		t.Fatalf("add hint: %v", err)
	}
	if got := len(sess.Hints.Revealed); got != before+1 {
		t.Fatalf("revealed %d hints, want %d", got, before+1)
	}
	edits := msgr.byKind("edit")
	if len(edits) != 1 {
		t.Fatalf("got %d edits, want 1", len(edits))
	}
}

func TestReshuffleKeepsAnswerLetters(t *testing.T) {
	msgr := &fakeMessenger{}
	svc := newTestService(msgr)
	ctx := context.Background()

	if err := svc.Start(ctx, 100, 7, ModeJumble, CategoryArtist); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	sess, _ := svc.registry.FindByChannel(100)

	if err := svc.Reshuffle(ctx, sess.ID); err != nil {
		t.Fatalf("reshuffle: %v", err)
	}
	if sortedRunesOf(sess.Scrambled) != sortedRunesOf("QUEEN") {
		t.Fatalf("reshuffled %q is not a permutation of the answer", sess.Scrambled)
	}
}

func TestGiveUpRevealsAnswer(t *testing.T) {
	msgr := &fakeMessenger{}
	svc := newTestService(msgr)
	ctx := context.Background()

	if err := svc.Start(ctx, 100, 7, ModeJumble, CategoryArtist); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	sess, _ := svc.registry.FindByChannel(100)

	if err := svc.GiveUp(ctx, sess.ID, "carol"); err != nil {
		t.Fatalf("give up: %v", err)
	}
	edits := msgr.byKind("edit")
	if len(edits) != 1 {
		t.Fatalf("got %d edits, want 1", len(edits))
	}
	if !strings.Contains(edits[0].view.Text, "carol gave up!") ||
		!strings.Contains(edits[0].view.Text, "<b>Queen</b>") {
		t.Fatalf("give-up text: %q", edits[0].view.Text)
	}
	if _, ok := svc.registry.FindByChannel(100); ok {
		t.Fatal("channel still bound after give-up")
	}
}

func TestTerminalTransitionFiresOnce(t *testing.T) {
	msgr := &fakeMessenger{}
	svc := newTestService(msgr)
	ctx := context.Background()

	if err := svc.Start(ctx, 100, 7, ModeJumble, CategoryArtist); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	sess, _ := svc.registry.FindByChannel(100)

	if err := svc.GiveUp(ctx, sess.ID, "carol"); err != nil {
		t.Fatalf("give up: %v", err)
	}
	edits := len(msgr.byKind("edit"))

	// a timer firing late must not render a second ending
	svc.onDeadline(sess.ID)
	if got := len(msgr.byKind("edit")); got != edits {
		t.Fatalf("late deadline produced extra edits: %d -> %d", edits, got)
	}
	if got := len(msgr.byKind("reply")); got != 0 {
		t.Fatalf("late deadline produced a timeout reply: %d", got)
	}
}

func TestDeadlineTimesGameOut(t *testing.T) {
	msgr := &fakeMessenger{}
	svc := newTestService(msgr)
	ctx := context.Background()

	if err := svc.Start(ctx, 100, 7, ModeJumble, CategoryArtist); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	sess, _ := svc.registry.FindByChannel(100)

	svc.onDeadline(sess.ID)

	edits := msgr.byKind("edit")
	if len(edits) != 1 || !strings.Contains(edits[0].view.Text, "Time's up!") {
		t.Fatalf("timeout edit missing: %v", edits)
	}
	replies := msgr.byKind("reply")
	if len(replies) != 1 || !strings.Contains(replies[0].view.Text, "Nobody guessed it right.") {
		t.Fatalf("timeout reply missing: %v", replies)
	}
	if _, ok := svc.registry.FindByChannel(100); ok {
		t.Fatal("channel still bound after timeout")
	}

	// guesses after the timeout are dead
	svc.HandleMessage(ctx, 100, 9, "bob", "queen", time.Now())
	if got := msgr.reactions(); len(got) != 0 {
		t.Fatalf("post-timeout guess reacted: %v", got)
	}
}

func TestPixelGameLifecycle(t *testing.T) {
	msgr := &fakeMessenger{}
	svc := newTestService(msgr)
	ctx := context.Background()

	if err := svc.Start(ctx, 100, 7, ModePixel, CategoryAlbum); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	sends := msgr.byKind("send")
	if len(sends) != 1 || string(sends[0].view.Photo) != "pixelated" {
		t.Fatalf("pixel send missing photo: %v", sends)
	}

	sess, _ := svc.registry.FindByChannel(100)
	if sess.PixelLevel != 0.125 {
		t.Fatalf("initial pixel level = %v, want 0.125", sess.PixelLevel)
	}

	if err := svc.AddHint(ctx, sess.ID); err != nil {
		t.Fatalf("add hint: %v", err)
	}
	if sess.PixelLevel != 0.085 {
		t.Fatalf("pixel level after hint = %v, want 0.085", sess.PixelLevel)
	}
	edits := msgr.byKind("edit")
	if len(edits) != 1 || !edits[0].view.Caption {
		t.Fatalf("pixel hint should edit the caption: %v", edits)
	}
	if string(edits[0].view.Photo) != "pixelated" {
		t.Fatal("pixel hint should carry a re-pixelated photo")
	}

	svc.HandleMessage(ctx, 100, 5, "bob", "abbey road", sess.StartedAt.Add(time.Second))
	wins := msgr.byKind("edit")
	final := wins[len(wins)-1]
	if string(final.view.Photo) != "full" {
		t.Fatal("win should reveal the unpixelated image")
	}
	replies := msgr.byKind("reply")
	if len(replies) != 1 || !strings.Contains(replies[0].view.Text, "by The Beatles") {
		t.Fatalf("win reply should attribute the artist: %v", replies)
	}
}

func TestMixResolvesToConcreteCategory(t *testing.T) {
	msgr := &fakeMessenger{}
	svc := newTestService(msgr)

	if err := svc.Start(context.Background(), 100, 7, ModeJumble, CategoryMix); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	sess, _ := svc.registry.FindByChannel(100)
	switch sess.Category {
	case CategoryArtist, CategoryAlbum, CategoryTrack:
	default:
		t.Fatalf("mix resolved to %q", sess.Category)
	}
	if !sess.Mix {
		t.Fatal("mix flag lost after resolution")
	}
	if sess.Color != categoryColors[CategoryMix] {
		t.Fatalf("mix game color = %#x, want the mix accent", sess.Color)
	}
}
