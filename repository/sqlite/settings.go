package sqlite

import (
	"context"
	"time"

	"github.com/nijaru/summora/errors"
	"github.com/nijaru/summora/models"
)

// Row keys match the JSON field names of models.Settings.
const (
	settingProvider  = "provider"
	settingOpenAIKey = "openaiKey"
	settingClaudeKey = "claudeKey"
	settingGeminiKey = "geminiKey"
)

// SettingsStore keeps each setting as its own row, like a key-value
// storage area.
type SettingsStore struct {
	db *DB
}

func NewSettingsStore(db *DB) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) Load(ctx context.Context) (*models.Settings, error) {
	const op = "SQLiteSettingsStore.Load"

	rows, err := s.db.statements.listSettings.QueryContext(ctx)
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to query settings")
	}
	defer rows.Close()

	settings := &models.Settings{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, errors.Internal(op, err, "Failed to scan setting")
		}
		switch key {
		case settingProvider:
			settings.Provider = models.ProviderName(value)
		case settingOpenAIKey:
			settings.OpenAIKey = value
		case settingClaudeKey:
			settings.ClaudeKey = value
		case settingGeminiKey:
			settings.GeminiKey = value
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal(op, err, "Failed to read settings")
	}

	return settings, nil
}

// Save writes every field of settings, empty values included, in one
// transaction.
func (s *SettingsStore) Save(ctx context.Context, settings *models.Settings) error {
	const op = "SQLiteSettingsStore.Save"

	values := map[string]string{
		settingProvider:  string(settings.Provider),
		settingOpenAIKey: settings.OpenAIKey,
		settingClaudeKey: settings.ClaudeKey,
		settingGeminiKey: settings.GeminiKey,
	}

	err := s.db.withRetry(ctx, op, func() error {
		tx, err := s.db.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		stmt := tx.StmtContext(ctx, s.db.statements.upsertSetting)
		now := time.Now().UTC()
		for key, value := range values {
			if _, err := stmt.ExecContext(ctx, key, value, now); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return errors.Internal(op, err, "Failed to save settings")
	}
	return nil
}
