package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Migrate creates every table the application needs. Statements are written
// once with an %s placeholder for the autoincrement primary key, which is the
// only DDL difference between the supported drivers.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	pk := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.DriverName() == "pgx" {
		pk = "BIGSERIAL PRIMARY KEY"
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id %s,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			avatar_url TEXT NOT NULL DEFAULT '',
			last_login TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS words (
			id %s,
			text TEXT NOT NULL,
			phonetic TEXT NOT NULL DEFAULT '',
			audio_url TEXT NOT NULL DEFAULT '',
			definition TEXT NOT NULL,
			example TEXT NOT NULL DEFAULT '',
			difficulty REAL NOT NULL DEFAULT 1.0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS vocabulary_books (
			id %s,
			user_id BIGINT NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			level TEXT NOT NULL DEFAULT 'beginner',
			tags TEXT NOT NULL DEFAULT '',
			total_words INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS word_relations (
			id %s,
			word_id BIGINT NOT NULL,
			book_id BIGINT NOT NULL,
			position INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			UNIQUE (word_id, book_id)
		)`,
		`CREATE TABLE IF NOT EXISTS learning_records (
			id %s,
			user_id BIGINT NOT NULL,
			book_id BIGINT NOT NULL,
			word_id BIGINT NOT NULL,
			status TEXT NOT NULL DEFAULT 'learning',
			review_count INTEGER NOT NULL DEFAULT 0,
			mastery_level REAL NOT NULL DEFAULT 0,
			study_time REAL NOT NULL DEFAULT 0,
			session_start TIMESTAMP,
			last_review_time TIMESTAMP,
			next_review_time TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			UNIQUE (user_id, book_id, word_id)
		)`,
		`CREATE TABLE IF NOT EXISTS review_plans (
			id %s,
			user_id BIGINT NOT NULL,
			book_id BIGINT NOT NULL,
			word_id BIGINT NOT NULL,
			scheduled_time TIMESTAMP NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			completed_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS learning_goals (
			id %s,
			user_id BIGINT NOT NULL,
			book_id BIGINT NOT NULL,
			daily_words INTEGER NOT NULL,
			target_date TIMESTAMP NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS learning_plans (
			id %s,
			user_id BIGINT NOT NULL,
			book_id BIGINT NOT NULL,
			daily_words INTEGER NOT NULL,
			start_date TIMESTAMP NOT NULL,
			end_date TIMESTAMP NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS assessments (
			id %s,
			user_id BIGINT NOT NULL,
			book_id BIGINT NOT NULL,
			status TEXT NOT NULL DEFAULT 'in_progress',
			score REAL NOT NULL DEFAULT 0,
			completed_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS assessment_questions (
			id %s,
			assessment_id BIGINT NOT NULL,
			word_id BIGINT NOT NULL,
			word_text TEXT NOT NULL,
			options TEXT NOT NULL DEFAULT '[]',
			correct TEXT NOT NULL,
			user_answer TEXT,
			is_correct BOOLEAN,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tests (
			id %s,
			user_id BIGINT NOT NULL,
			book_id BIGINT NOT NULL DEFAULT 0,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			duration INTEGER NOT NULL DEFAULT 0,
			total_questions INTEGER NOT NULL DEFAULT 0,
			pass_score REAL NOT NULL DEFAULT 60,
			start_time TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS test_questions (
			id %s,
			test_id BIGINT NOT NULL,
			word_id BIGINT NOT NULL,
			type TEXT NOT NULL,
			prompt TEXT NOT NULL,
			options TEXT NOT NULL DEFAULT '[]',
			correct TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS test_records (
			id %s,
			test_id BIGINT NOT NULL,
			user_id BIGINT NOT NULL,
			score REAL NOT NULL DEFAULT 0,
			correct_count INTEGER NOT NULL DEFAULT 0,
			total_count INTEGER NOT NULL DEFAULT 0,
			is_passed BOOLEAN NOT NULL DEFAULT FALSE,
			time_spent INTEGER NOT NULL DEFAULT 0,
			completed_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS test_answers (
			id %s,
			record_id BIGINT NOT NULL,
			question_id BIGINT NOT NULL,
			answer TEXT NOT NULL,
			is_correct BOOLEAN NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_word_relations_book ON word_relations (book_id, position)`,
		`CREATE INDEX IF NOT EXISTS idx_learning_records_due ON learning_records (user_id, status, next_review_time)`,
		`CREATE INDEX IF NOT EXISTS idx_review_plans_user ON review_plans (user_id, status, scheduled_time)`,
		`CREATE INDEX IF NOT EXISTS idx_test_records_user ON test_records (user_id, completed_at)`,
	}

	for _, stmt := range statements {
		sql := stmt
		if strings.Contains(stmt, "%s") {
			sql = fmt.Sprintf(stmt, pk)
		}
		if _, err := db.ExecContext(ctx, sql); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
