package db

import (
	"fmt"
	"time"

	"KPlayer/config"
	"KPlayer/logger"
	"KPlayer/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ConnectGormDB opens the document store connection and configures the pool.
func ConnectGormDB(cfg *config.Config) (*gorm.DB, error) {
	gormDB, err := gorm.Open(mysql.Open(DSN(cfg)), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Warn),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database with GORM: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Successfully connected to the database with GORM")
	return gormDB, nil
}

// CloseGormDB closes the pool behind gormDB.
func CloseGormDB(gormDB *gorm.DB) error {
	if gormDB == nil {
		return nil
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// AutoMigrate creates or updates the playlists, playlist_tracks, songs and users tables.
func AutoMigrate(gormDB *gorm.DB) error {
	if gormDB == nil {
		return fmt.Errorf("GORM database not initialized")
	}

	err := gormDB.AutoMigrate(
		&model.Playlist{},
		&model.Track{},
		&model.Song{},
		&model.User{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}

	logger.Info("Models migrated successfully with GORM")
	return nil
}
