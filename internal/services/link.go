package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tallypaws/scrambl/internal/game"
	"github.com/tallypaws/scrambl/internal/models"
)

// LinkService persists chat-user to Last.fm account bindings and notifies
// registered callbacks when a binding changes.
type LinkService struct {
	db *gorm.DB

	mu       sync.Mutex
	onChange []func(telegramID int64, lastfmUser string)
}

func NewLinkService(db *gorm.DB) *LinkService {
	return &LinkService{db: db}
}

// Get returns the linked Last.fm username, or game.ErrNotLinked.
func (s *LinkService) Get(ctx context.Context, telegramID int64) (string, error) {
	var acc models.LinkedAccount
	if err := s.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&acc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", game.ErrNotLinked
		}
		return "", err
	}
	return acc.LastfmUser, nil
}

// Set links or relinks the user.
func (s *LinkService) Set(ctx context.Context, telegramID int64, lastfmUser string) error {
	var acc models.LinkedAccount
	err := s.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&acc).Error
	switch {
	case err == nil:
		acc.LastfmUser = lastfmUser
		acc.UpdatedAt = time.Now()
		err = s.db.WithContext(ctx).Save(&acc).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		acc = models.LinkedAccount{TelegramID: telegramID, LastfmUser: lastfmUser}
		err = s.db.WithContext(ctx).Create(&acc).Error
	}
	if err != nil {
		return err
	}
	s.notify(telegramID, lastfmUser)
	return nil
}

// OnChange registers a callback invoked after every successful Set. Callbacks
// run synchronously; a panicking callback is recovered and logged.
func (s *LinkService) OnChange(fn func(telegramID int64, lastfmUser string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

func (s *LinkService) notify(telegramID int64, lastfmUser string) {
	s.mu.Lock()
	callbacks := append(([]func(int64, string))(nil), s.onChange...)
	s.mu.Unlock()

	for _, fn := range callbacks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Error().Interface("panic", r).Msg("link change callback panicked")
				}
			}()
			fn(telegramID, lastfmUser)
		}()
	}
}
