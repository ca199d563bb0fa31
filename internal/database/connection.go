// Package database persists cards, scheduling records, review history,
// exercises, and detected error patterns behind small repositories. It
// speaks SQLite for single-user installs and PostgreSQL for hosted ones.
package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Connect opens the database selected by cfg and bootstraps the schema
func Connect(dbType, sqlitePath, postgresURL string) (*sqlx.DB, error) {
	var db *sqlx.DB
	var err error

	switch dbType {
	case "postgres":
		db, err = sqlx.Connect("postgres", postgresURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		// Postgres installs manage the schema through migrations.
		return db, nil
	default: // sqlite
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		db, err = sqlx.Connect("sqlite3", sqlitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
		}
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := initializeSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

// insertReturningID runs an INSERT and reports the generated row id.
// lib/pq does not implement LastInsertId, so the postgres path appends
// RETURNING id and scans it instead.
func insertReturningID(db *sqlx.DB, query string, args ...interface{}) (int64, error) {
	if db.DriverName() == "postgres" {
		var id int64
		if err := db.QueryRow(query+" RETURNING id", args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	result, err := db.Exec(query, args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	statements := []struct {
		table string
		ddl   string
	}{
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				email TEXT UNIQUE,
				native_language TEXT DEFAULT 'English',
				target_language TEXT DEFAULT 'Japanese',
				telegram_chat_id INTEGER DEFAULT 0,
				notification_enabled BOOLEAN DEFAULT true,
				notification_hour INTEGER DEFAULT 9,
				new_cards_per_day INTEGER DEFAULT 10,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`},
		{"cards", `
			CREATE TABLE IF NOT EXISTS cards (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				card_type TEXT NOT NULL,
				front TEXT NOT NULL,
				back TEXT NOT NULL,
				hint TEXT DEFAULT '',
				reading TEXT DEFAULT '',
				context_sentence TEXT DEFAULT '',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				UNIQUE(card_type, front)
			)
		`},
		{"srs_states", `
			CREATE TABLE IF NOT EXISTS srs_states (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL,
				card_id INTEGER NOT NULL,
				state TEXT NOT NULL DEFAULT 'new',
				"interval" INTEGER DEFAULT 0,
				ease_factor REAL DEFAULT 2.5,
				repetitions INTEGER DEFAULT 0,
				lapses INTEGER DEFAULT 0,
				stability REAL DEFAULT 1.0,
				adaptation_penalty REAL DEFAULT 0,
				learning_step_index INTEGER DEFAULT 0,
				due_date TIMESTAMP,
				last_reviewed_at TIMESTAMP,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (user_id) REFERENCES users(id),
				FOREIGN KEY (card_id) REFERENCES cards(id),
				UNIQUE(user_id, card_id)
			)
		`},
		{"review_logs", `
			CREATE TABLE IF NOT EXISTS review_logs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL,
				card_id INTEGER NOT NULL,
				quality INTEGER NOT NULL,
				was_correct BOOLEAN NOT NULL,
				response_time_ms INTEGER,
				srs_state_before TEXT DEFAULT '{}',
				srs_state_after TEXT DEFAULT '{}',
				reviewed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (user_id) REFERENCES users(id),
				FOREIGN KEY (card_id) REFERENCES cards(id)
			)
		`},
		{"exercises", `
			CREATE TABLE IF NOT EXISTS exercises (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				card_id INTEGER NOT NULL,
				exercise_type TEXT NOT NULL,
				prompt TEXT NOT NULL,
				expected_answer TEXT NOT NULL,
				context TEXT DEFAULT '',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (card_id) REFERENCES cards(id)
			)
		`},
		{"exercise_submissions", `
			CREATE TABLE IF NOT EXISTS exercise_submissions (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				exercise_id INTEGER NOT NULL,
				user_id INTEGER NOT NULL,
				user_answer TEXT NOT NULL,
				is_correct BOOLEAN NOT NULL,
				score REAL DEFAULT 0,
				response_time_ms INTEGER,
				error_category TEXT DEFAULT '',
				submitted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (exercise_id) REFERENCES exercises(id),
				FOREIGN KEY (user_id) REFERENCES users(id)
			)
		`},
		{"error_patterns", `
			CREATE TABLE IF NOT EXISTS error_patterns (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL,
				pattern_type TEXT NOT NULL,
				description TEXT DEFAULT '',
				"count" INTEGER DEFAULT 1,
				severity REAL DEFAULT 0.2,
				affected_card_ids TEXT DEFAULT '[]',
				is_active BOOLEAN DEFAULT true,
				first_detected_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				last_seen_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (user_id) REFERENCES users(id)
			)
		`},
	}

	for _, st := range statements {
		if _, err := db.Exec(st.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", st.table, err)
		}
	}
	return nil
}
