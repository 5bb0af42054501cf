package database

import (
	"fmt"
	"os"
	"path/filepath"

	"darkops-lab/pkg/models"
	"darkops-lab/server/internal/config"
	logging "darkops-lab/server/internal/logging"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Init opens the database selected by config.Conf.Database and migrates it.
func Init(log *zap.Logger) error {
	dialector, err := dialectorFor(config.Conf.Database)
	if err != nil {
		return err
	}
	return Open(dialector, log)
}

func dialectorFor(dbConf config.DatabaseConfig) (gorm.Dialector, error) {
	switch dbConf.Driver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			dbConf.Host, dbConf.User, dbConf.Password, dbConf.DBName, dbConf.Port)
		return postgres.Open(dsn), nil
	case "sqlite", "":
		if dir := filepath.Dir(dbConf.Path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		return sqlite.Open(dbConf.Path + "?_foreign_keys=on"), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", dbConf.Driver)
	}
}

// Open connects through dialector, installs it as DB and runs migrations.
func Open(dialector gorm.Dialector, log *zap.Logger) error {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logging.NewGormZapLogger(log),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if dialector.Name() == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		// SQLite doesn't support multiple writers
		sqlDB.SetMaxOpenConns(1)
	}
	DB = db
	log.Info("Database connection established successfully.", zap.String("dialect", dialector.Name()))

	return runMigrations(log)
}

// OpenInMemory installs a private in-memory SQLite database. Used by tests.
func OpenInMemory(log *zap.Logger) error {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	return Open(sqlite.Open(dsn), log)
}

func runMigrations(log *zap.Logger) error {
	// AutoMigrate creates the (session_id, attack_id) unique index declared
	// on Progress.
	err := DB.AutoMigrate(
		&models.Session{},
		&models.Progress{},
		&models.QuizResult{},
	)
	if err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	log.Info("Database migrations completed successfully.")
	return nil
}

// Close releases the underlying connection pool.
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
