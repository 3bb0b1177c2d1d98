package database

import (
	"fmt"
	"log/slog" // use slog for structured logging
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"npcfinder/internal/config"
	"npcfinder/internal/http-api/models"
)

// ConnectDB opens the Postgres connection and applies schema migrations.
func ConnectDB(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Verify the connection
	if err := sqlDB.Ping(); err != nil {
		// close the db handle if ping fails to avoid resource leak
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	// Run migrations
	if err := runMigrations(db); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Connected to the database successfully")
	return db, nil
}

func runMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.MovieItem{},
		&models.BookItem{},
		&models.GameItem{},
		&models.MusicItem{},
		&models.MovieRecommendation{},
		&models.BookRecommendation{},
		&models.GameRecommendation{},
		&models.MusicRecommendation{},
		&models.Connection{},
		&models.Notification{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// Partial unique indexes: GORM tags cannot express the WHERE clause, so the
	// duplicate-pending constraint is created by hand. One pending row at most
	// per (sender, recipient, external item) regardless of media kind.
	for _, table := range []string{
		"movie_recommendations",
		"book_recommendations",
		"game_recommendations",
		"music_recommendations",
	} {
		stmt := fmt.Sprintf(
			"CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_pending ON %s (sender_id, recipient_id, external_id) WHERE status = 'pending'",
			table, table,
		)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create pending index on %s: %w", table, err)
		}
	}

	return nil
}
