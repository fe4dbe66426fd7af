package postgres

import (
	"ad-mediation/internal/prefs"
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema - таблица настроек, по строке на пару (namespace, key)
const Schema = `
CREATE TABLE IF NOT EXISTS preferences (
	namespace TEXT NOT NULL,
	key       TEXT NOT NULL,
	value     TEXT NOT NULL,
	PRIMARY KEY (namespace, key)
)`

type PostgresStore struct {
	db *pgxpool.Pool
}

var _ prefs.Store = (*PostgresStore)(nil)

func New(connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse conn string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	return &PostgresStore{db: pool}, nil
}

// Migrate создает таблицу настроек, если ее нет
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create preferences table: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetString(ctx context.Context, namespace, key, def string) (string, error) {
	if namespace == "" {
		return "", prefs.ErrEmptyNamespace
	}

	var value string
	err := s.db.QueryRow(ctx, `
		SELECT value
		FROM preferences
		WHERE namespace = $1 AND key = $2`,
		namespace, key,
	).Scan(&value)

	if errors.Is(err, pgx.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get %s/%s: %w", namespace, key, err)
	}
	return value, nil
}

func (s *PostgresStore) PutString(ctx context.Context, namespace, key, value string) error {
	if namespace == "" {
		return prefs.ErrEmptyNamespace
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO preferences (namespace, key, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (namespace, key)
		DO UPDATE SET value = EXCLUDED.value`,
		namespace, key, value,
	)

	return err
}

func (s *PostgresStore) Remove(ctx context.Context, namespace, key string) error {
	if namespace == "" {
		return prefs.ErrEmptyNamespace
	}

	_, err := s.db.Exec(ctx, `
		DELETE FROM preferences
		WHERE namespace = $1 AND key = $2`,
		namespace, key,
	)

	return err
}

func (s *PostgresStore) Clear(ctx context.Context, namespace string) error {
	if namespace == "" {
		return prefs.ErrEmptyNamespace
	}

	_, err := s.db.Exec(ctx, `DELETE FROM preferences WHERE namespace = $1`, namespace)
	return err
}

func (s *PostgresStore) Contains(ctx context.Context, namespace, key string) (bool, error) {
	if namespace == "" {
		return false, prefs.ErrEmptyNamespace
	}

	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM preferences
			WHERE namespace = $1 AND key = $2
		)`,
		namespace, key,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check %s/%s: %w", namespace, key, err)
	}
	return exists, nil
}

func (s *PostgresStore) GetAll(ctx context.Context, namespace string) (map[string]string, error) {
	if namespace == "" {
		return nil, prefs.ErrEmptyNamespace
	}

	rows, err := s.db.Query(ctx, `
		SELECT key, value
		FROM preferences
		WHERE namespace = $1`,
		namespace,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query namespace %s: %w", namespace, err)
	}
	defer rows.Close()

	all := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		all[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return all, nil
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
