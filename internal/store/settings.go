package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"playerd/internal/model"
)

const settingUpsert = `INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting setting: %w", err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	if _, err := s.db.Exec(settingUpsert, key, value); err != nil {
		return fmt.Errorf("setting %q: %w", key, err)
	}
	return nil
}

// PlayerSettings returns the persisted playback settings. The second return
// is false when nothing has been persisted yet.
func (s *Store) PlayerSettings() (model.PlayerSettings, bool, error) {
	settings := model.DefaultSettings()

	raw, err := s.GetSetting("player.volume")
	if err != nil {
		return settings, false, err
	}
	if raw == "" {
		return settings, false, nil
	}
	if settings.Volume, err = strconv.ParseFloat(raw, 64); err != nil {
		return settings, false, fmt.Errorf("parsing persisted volume: %w", err)
	}

	if raw, err = s.GetSetting("player.muted"); err != nil {
		return settings, false, err
	}
	settings.Muted = raw == "1"

	if raw, err = s.GetSetting("player.rate"); err != nil {
		return settings, false, err
	}
	if raw != "" {
		if settings.Rate, err = strconv.ParseFloat(raw, 64); err != nil {
			return settings, false, fmt.Errorf("parsing persisted rate: %w", err)
		}
	}
	return settings, true, nil
}

func (s *Store) SavePlayerSettings(settings model.PlayerSettings) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	muted := "0"
	if settings.Muted {
		muted = "1"
	}
	for _, kv := range []struct{ k, v string }{
		{"player.volume", strconv.FormatFloat(settings.Volume, 'f', -1, 64)},
		{"player.muted", muted},
		{"player.rate", strconv.FormatFloat(settings.Rate, 'f', -1, 64)},
	} {
		if _, err := tx.Exec(settingUpsert, kv.k, kv.v); err != nil {
			return fmt.Errorf("setting %q: %w", kv.k, err)
		}
	}
	return tx.Commit()
}
