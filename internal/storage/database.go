package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Registers the sqlite driver

	"github.com/conorfennell/muraje/internal/domain"
)

// StateKey is the row the session state is stored under.
const StateKey = "muraje3-state"

// DB represents a wrapper around the SQL database connection.
type DB struct {
	conn *sql.DB
}

// Open creates a new database connection and ensures the schema is up to date.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// LoadState returns the stored state blob, or nil if none has been saved.
func (db *DB) LoadState() ([]byte, error) {
	var value string
	err := db.conn.QueryRow(`SELECT value FROM app_state WHERE key = ?`, StateKey).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	return []byte(value), nil
}

// SaveState overwrites the stored state blob.
func (db *DB) SaveState(data []byte) error {
	_, err := db.conn.Exec(`
		INSERT INTO app_state (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, StateKey, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// RecordReview appends a rating to the review log.
func (db *DB) RecordReview(log domain.ReviewLog) error {
	_, err := db.conn.Exec(`
		INSERT INTO review_logs (id, card_id, rating, review_date, interval_days, ease, next_review, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		uuid.NewString(),
		log.CardID,
		log.Rating.String(),
		string(log.Date),
		log.Interval,
		log.Ease,
		string(log.NextReview),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record review for card %d: %w", log.CardID, err)
	}
	return nil
}

// ReviewsForCard returns a card's review history, oldest first.
func (db *DB) ReviewsForCard(cardID int64) ([]domain.ReviewLog, error) {
	rows, err := db.conn.Query(`
		SELECT card_id, rating, review_date, interval_days, ease, next_review
		FROM review_logs WHERE card_id = ?
		ORDER BY rowid
	`, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews for card %d: %w", cardID, err)
	}
	defer rows.Close()

	var logs []domain.ReviewLog
	for rows.Next() {
		var (
			l                  domain.ReviewLog
			rating, date, next string
		)
		if err := rows.Scan(&l.CardID, &rating, &date, &l.Interval, &l.Ease, &next); err != nil {
			return nil, fmt.Errorf("failed to scan review row for card %d: %w", cardID, err)
		}
		if l.Rating, err = domain.ParseRating(rating); err != nil {
			return nil, fmt.Errorf("review row for card %d: %w", cardID, err)
		}
		l.Date = domain.Date(date)
		l.NextReview = domain.Date(next)
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// ReviewCount returns the number of logged reviews, optionally limited to one day.
// An empty day counts every review.
func (db *DB) ReviewCount(day domain.Date) (int, error) {
	query := `SELECT COUNT(*) FROM review_logs`
	var args []any
	if !day.IsZero() {
		query += ` WHERE review_date = ?`
		args = append(args, string(day))
	}

	var n int
	if err := db.conn.QueryRow(query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return n, nil
}
