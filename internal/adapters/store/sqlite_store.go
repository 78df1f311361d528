package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

var sqliteDialect = dialect{
	name: "SQLite",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS analysis_history (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			article_text TEXT NOT NULL,
			prediction TEXT NOT NULL,
			confidence_score REAL NOT NULL,
			explanation TEXT NOT NULL,
			key_factors TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analysis_user_created ON analysis_history(user_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS feedback (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			article_text TEXT NOT NULL,
			model_prediction TEXT NOT NULL,
			confidence_score REAL NOT NULL,
			user_rating INTEGER NOT NULL,
			user_feedback TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_feedback_user_created ON feedback(user_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS feedback_training (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			feedback_id TEXT NOT NULL,
			article_text TEXT NOT NULL,
			model_prediction TEXT NOT NULL,
			user_rating INTEGER NOT NULL,
			user_feedback TEXT NOT NULL,
			confidence_score REAL NOT NULL,
			training_weight REAL NOT NULL,
			text_features TEXT NOT NULL,
			prediction_accuracy TEXT NOT NULL,
			confidence_vs_rating REAL NOT NULL,
			processed_for_training BOOLEAN NOT NULL DEFAULT 0,
			model_type TEXT NOT NULL,
			insight TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_training_pending ON feedback_training(processed_for_training, training_weight)`,
		`CREATE TABLE IF NOT EXISTS user_settings (
			user_id TEXT PRIMARY KEY,
			ai_model_type TEXT NOT NULL,
			custom_endpoint TEXT NOT NULL,
			api_key TEXT NOT NULL,
			transformer_model TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
	},
	upsertSettings: `
		INSERT INTO user_settings (user_id, ai_model_type, custom_endpoint, api_key, transformer_model, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			ai_model_type = excluded.ai_model_type,
			custom_endpoint = excluded.custom_endpoint,
			api_key = excluded.api_key,
			transformer_model = excluded.transformer_model,
			updated_at = excluded.updated_at
	`,
}

// SQLiteStore is a SQLite implementation of the core.Repository interface
type SQLiteStore struct {
	*sqlStore
}

// NewSQLiteStore opens (creating if needed) the database at dbPath
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	store, err := newSQLStore(db, sqliteDialect, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("Opened SQLite store", zap.String("path", dbPath))
	return &SQLiteStore{sqlStore: store}, nil
}
