package store

import (
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

var mysqlDialect = dialect{
	name: "MySQL",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS analysis_history (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(255) NOT NULL,
			title TEXT NOT NULL,
			article_text MEDIUMTEXT NOT NULL,
			prediction VARCHAR(16) NOT NULL,
			confidence_score DOUBLE NOT NULL,
			explanation TEXT NOT NULL,
			key_factors TEXT NOT NULL,
			created_at VARCHAR(32) NOT NULL,
			INDEX idx_analysis_user_created (user_id, created_at)
		)`,
		`CREATE TABLE IF NOT EXISTS feedback (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(255) NOT NULL,
			article_text MEDIUMTEXT NOT NULL,
			model_prediction VARCHAR(16) NOT NULL,
			confidence_score DOUBLE NOT NULL,
			user_rating INT NOT NULL,
			user_feedback TEXT NOT NULL,
			created_at VARCHAR(32) NOT NULL,
			INDEX idx_feedback_user_created (user_id, created_at)
		)`,
		`CREATE TABLE IF NOT EXISTS feedback_training (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(255) NOT NULL,
			feedback_id VARCHAR(36) NOT NULL,
			article_text MEDIUMTEXT NOT NULL,
			model_prediction VARCHAR(16) NOT NULL,
			user_rating INT NOT NULL,
			user_feedback TEXT NOT NULL,
			confidence_score DOUBLE NOT NULL,
			training_weight DOUBLE NOT NULL,
			text_features TEXT NOT NULL,
			prediction_accuracy VARCHAR(32) NOT NULL,
			confidence_vs_rating DOUBLE NOT NULL,
			processed_for_training BOOLEAN NOT NULL DEFAULT FALSE,
			model_type VARCHAR(32) NOT NULL,
			insight TEXT NOT NULL,
			created_at VARCHAR(32) NOT NULL,
			updated_at VARCHAR(32) NOT NULL,
			INDEX idx_training_pending (processed_for_training, training_weight)
		)`,
		`CREATE TABLE IF NOT EXISTS user_settings (
			user_id VARCHAR(255) PRIMARY KEY,
			ai_model_type VARCHAR(32) NOT NULL,
			custom_endpoint TEXT NOT NULL,
			api_key TEXT NOT NULL,
			transformer_model VARCHAR(255) NOT NULL,
			created_at VARCHAR(32) NOT NULL,
			updated_at VARCHAR(32) NOT NULL
		)`,
	},
	upsertSettings: `
		INSERT INTO user_settings (user_id, ai_model_type, custom_endpoint, api_key, transformer_model, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			ai_model_type = VALUES(ai_model_type),
			custom_endpoint = VALUES(custom_endpoint),
			api_key = VALUES(api_key),
			transformer_model = VALUES(transformer_model),
			updated_at = VALUES(updated_at)
	`,
}

// MySQLStore is a MySQL implementation of the core.Repository interface
type MySQLStore struct {
	*sqlStore
}

// NewMySQLStore connects to the database named by dsn and creates missing tables
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid MySQL DSN: %w", err)
	}

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	store, err := newSQLStore(db, mysqlDialect, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("Connected to MySQL store",
		zap.String("address", cfg.Addr),
		zap.String("database", cfg.DBName))
	return &MySQLStore{sqlStore: store}, nil
}
