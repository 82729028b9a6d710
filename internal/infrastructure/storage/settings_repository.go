package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"InsightStream/internal/domain"
	"InsightStream/internal/ports"
)

const (
	keywordsKey      = "insightstream_keywords"
	subscriptionsKey = "insightstream_rss"

	// undefinedValue is what a browser-era client wrote for an unset list.
	undefinedValue = "undefined"
)

// SettingsRepository keeps keyword and subscription lists as JSON values in
// a key/value table. Missing or unreadable values fall back to the seeds.
type SettingsRepository struct {
	db     *DB
	logger *slog.Logger
}

var _ ports.SettingsStore = (*SettingsRepository)(nil)

// NewSettingsRepository wires the settings table of db.
func NewSettingsRepository(db *DB, logger *slog.Logger) *SettingsRepository {
	return &SettingsRepository{db: db, logger: logger}
}

// LoadKeywords returns the stored keywords or the default seed list.
func (r *SettingsRepository) LoadKeywords(ctx context.Context) ([]domain.KeywordConfig, error) {
	var keywords []domain.KeywordConfig
	ok, err := r.load(ctx, keywordsKey, &keywords)
	if err != nil {
		return nil, err
	}
	if !ok || keywords == nil {
		return append([]domain.KeywordConfig(nil), domain.DefaultKeywords...), nil
	}
	return keywords, nil
}

// SaveKeywords replaces the stored keyword list.
func (r *SettingsRepository) SaveKeywords(ctx context.Context, keywords []domain.KeywordConfig) error {
	if keywords == nil {
		keywords = []domain.KeywordConfig{}
	}
	return r.save(ctx, keywordsKey, keywords)
}

// LoadSubscriptions returns the stored subscriptions or the default seed list.
func (r *SettingsRepository) LoadSubscriptions(ctx context.Context) ([]domain.SubscriptionConfig, error) {
	var subs []domain.SubscriptionConfig
	ok, err := r.load(ctx, subscriptionsKey, &subs)
	if err != nil {
		return nil, err
	}
	if !ok || subs == nil {
		return append([]domain.SubscriptionConfig(nil), domain.DefaultSubscriptions...), nil
	}
	return subs, nil
}

// SaveSubscriptions replaces the stored subscription list.
func (r *SettingsRepository) SaveSubscriptions(ctx context.Context, subscriptions []domain.SubscriptionConfig) error {
	if subscriptions == nil {
		subscriptions = []domain.SubscriptionConfig{}
	}
	return r.save(ctx, subscriptionsKey, subscriptions)
}

// load decodes the value under key into dst. It reports false when the
// value is absent or cannot be used.
func (r *SettingsRepository) load(ctx context.Context, key string, dst any) (bool, error) {
	query, args, err := r.db.builder.
		Select("value").
		From(settingsTable).
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build select %s: %w", key, err)
	}

	var raw string
	if err := r.db.conn.QueryRowContext(ctx, query, args...).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("select %s: %w", key, err)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" || raw == undefinedValue {
		r.warn("stored setting is empty, using defaults", "key", key)
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		r.warn("stored setting is corrupt, using defaults", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

func (r *SettingsRepository) save(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	query, args, err := r.db.builder.
		Insert(settingsTable).
		Columns("key", "value").
		Values(key, string(payload)).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = excluded.value").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert %s: %w", key, err)
	}

	if _, err := r.db.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (r *SettingsRepository) warn(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}
