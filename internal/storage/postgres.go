package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/deusflow/factcheck/internal/logger"
	_ "github.com/lib/pq"
)

// PostgresStore implements UserStore and FavoriteStore on PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects, pings and creates the schema.
func NewPostgresStore(ctx context.Context, connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store, err := NewPostgresStoreFromDB(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("PostgreSQL store connected")
	return store, nil
}

// NewPostgresStoreFromDB wraps an open handle and creates the schema.
func NewPostgresStoreFromDB(ctx context.Context, db *sql.DB) (*PostgresStore, error) {
	s := &PostgresStore{db: db}
	if err := s.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		email TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		password TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS favorites (
		id SERIAL PRIMARY KEY,
		email TEXT NOT NULL,
		payload JSONB NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_favorites_email ON favorites(email);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	logger.Debug("database schema initialized")
	return nil
}

func (s *PostgresStore) GetUser(ctx context.Context, email string) (User, error) {
	u := User{Email: NormalizeEmail(email)}

	query := `SELECT username, password FROM users WHERE email = $1`
	err := s.db.QueryRowContext(ctx, query, u.Email).Scan(&u.Username, &u.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, u User) error {
	email := NormalizeEmail(u.Email)
	if email == "" {
		return ErrEmptyEmail
	}

	// ON CONFLICT keeps the first registration when two signups race.
	query := `
		INSERT INTO users (email, username, password)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO NOTHING
	`
	res, err := s.db.ExecContext(ctx, query, email, u.Username, u.Password)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	if n == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (s *PostgresStore) SaveFavorite(ctx context.Context, email string, payload json.RawMessage) error {
	email = NormalizeEmail(email)
	if email == "" {
		return ErrEmptyEmail
	}
	if !json.Valid(payload) {
		return fmt.Errorf("invalid favorite payload")
	}

	query := `INSERT INTO favorites (email, payload) VALUES ($1, $2)`
	if _, err := s.db.ExecContext(ctx, query, email, []byte(payload)); err != nil {
		return fmt.Errorf("failed to save favorite: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListFavorites(ctx context.Context, email string) ([]json.RawMessage, error) {
	favorites := []json.RawMessage{}
	email = NormalizeEmail(email)
	if email == "" {
		return favorites, nil
	}

	query := `SELECT payload FROM favorites WHERE email = $1 ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		favorites = append(favorites, json.RawMessage(payload))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return favorites, nil
}

// GetStats reports row counts for the health endpoint.
func (s *PostgresStore) GetStats(ctx context.Context) (map[string]int, error) {
	var users, favorites int
	query := `SELECT (SELECT COUNT(*) FROM users), (SELECT COUNT(*) FROM favorites)`
	if err := s.db.QueryRowContext(ctx, query).Scan(&users, &favorites); err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return map[string]int{"users": users, "favorites": favorites}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
