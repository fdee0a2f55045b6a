package jsonfile

import (
	"context"

	"github.com/snipstudio/snipstudio/apperror"
)

// GetSetting reads one key. An absent key is ErrNotFound.
func (s *Store) GetSetting(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.settings[key]
	if !ok {
		return "", apperror.NotFound("setting", key)
	}
	return value, nil
}

// SetSetting upserts a key, rolling back if the file write fails.
func (s *Store) SetSetting(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.settings[key]
	s.settings[key] = value
	if err := s.save(); err != nil {
		if had {
			s.settings[key] = prev
		} else {
			delete(s.settings, key)
		}
		return err
	}
	return nil
}

// DeleteSetting removes a key. Deleting an absent key is a no-op.
func (s *Store) DeleteSetting(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.settings[key]
	if !had {
		return nil
	}

	delete(s.settings, key)
	if err := s.save(); err != nil {
		s.settings[key] = prev
		return err
	}
	return nil
}
