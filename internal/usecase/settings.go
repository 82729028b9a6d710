package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"InsightStream/internal/domain"
	"InsightStream/internal/ports"
)

// ErrSettingNotFound is returned when removing an id that is not stored.
var ErrSettingNotFound = errors.New("setting not found")

// SettingsService edits the keyword and subscription collections.
type SettingsService struct {
	store ports.SettingsStore
	newID func() string
}

// NewSettingsService wraps a settings store; new entries get uuid ids.
func NewSettingsService(store ports.SettingsStore) *SettingsService {
	return &SettingsService{store: store, newID: uuid.NewString}
}

// Keywords returns the current keyword collection.
func (s *SettingsService) Keywords(ctx context.Context) ([]domain.KeywordConfig, error) {
	return s.store.LoadKeywords(ctx)
}

// AddKeyword appends a keyword and returns it with its new id.
func (s *SettingsService) AddKeyword(ctx context.Context, term string, category domain.Category) (domain.KeywordConfig, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return domain.KeywordConfig{}, fmt.Errorf("keyword term is empty")
	}
	if category == "" || category == domain.CategoryAll {
		category = domain.CategoryDefensive
	}

	keywords, err := s.store.LoadKeywords(ctx)
	if err != nil {
		return domain.KeywordConfig{}, err
	}
	kw := domain.KeywordConfig{ID: s.newID(), Term: term, Category: category}
	if err := s.store.SaveKeywords(ctx, append(keywords, kw)); err != nil {
		return domain.KeywordConfig{}, err
	}
	return kw, nil
}

// RemoveKeyword deletes the keyword with the given id.
func (s *SettingsService) RemoveKeyword(ctx context.Context, id string) error {
	keywords, err := s.store.LoadKeywords(ctx)
	if err != nil {
		return err
	}
	kept := make([]domain.KeywordConfig, 0, len(keywords))
	for _, kw := range keywords {
		if kw.ID != id {
			kept = append(kept, kw)
		}
	}
	if len(kept) == len(keywords) {
		return fmt.Errorf("keyword %s: %w", id, ErrSettingNotFound)
	}
	return s.store.SaveKeywords(ctx, kept)
}

// Subscriptions returns the current subscription collection.
func (s *SettingsService) Subscriptions(ctx context.Context) ([]domain.SubscriptionConfig, error) {
	return s.store.LoadSubscriptions(ctx)
}

// AddSubscription appends a subscription and returns it with its new id.
func (s *SettingsService) AddSubscription(ctx context.Context, name, url string) (domain.SubscriptionConfig, error) {
	name, url = strings.TrimSpace(name), strings.TrimSpace(url)
	if name == "" || url == "" {
		return domain.SubscriptionConfig{}, fmt.Errorf("subscription needs a name and a url")
	}

	subs, err := s.store.LoadSubscriptions(ctx)
	if err != nil {
		return domain.SubscriptionConfig{}, err
	}
	sub := domain.SubscriptionConfig{ID: s.newID(), Name: name, URL: url}
	if err := s.store.SaveSubscriptions(ctx, append(subs, sub)); err != nil {
		return domain.SubscriptionConfig{}, err
	}
	return sub, nil
}

// RemoveSubscription deletes the subscription with the given id.
func (s *SettingsService) RemoveSubscription(ctx context.Context, id string) error {
	subs, err := s.store.LoadSubscriptions(ctx)
	if err != nil {
		return err
	}
	kept := make([]domain.SubscriptionConfig, 0, len(subs))
	for _, sub := range subs {
		if sub.ID != id {
			kept = append(kept, sub)
		}
	}
	if len(kept) == len(subs) {
		return fmt.Errorf("subscription %s: %w", id, ErrSettingNotFound)
	}
	return s.store.SaveSubscriptions(ctx, kept)
}
