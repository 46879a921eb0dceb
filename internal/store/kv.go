package store

import (
	"context"
	"database/sql"
	"errors"
)

// Get returns the value stored under key. It satisfies localstate.Backend.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data string
	err := s.queryRow(ctx, `SELECT data FROM kv WHERE name = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(data), true, nil
}

// Put replaces the value stored under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.exec(ctx,
		`INSERT INTO kv (name, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		key, string(value), s.timestamp())
	return err
}

// Delete removes key. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.exec(ctx, `DELETE FROM kv WHERE name = ?`, key)
	return err
}
