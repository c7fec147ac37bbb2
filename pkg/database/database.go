package database

import (
	"fmt"
	"log"

	"messaging-service/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// DBConfig holds the database configuration
type DBConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime int
	LogLevel        logger.LogLevel
}

// Initialize initializes the database connection with the provided configuration
func Initialize(dsn string, maxIdle, maxOpen int, logLevel logger.LogLevel) error {
	var err error

	// Set default log level if not specified
	if logLevel == 0 {
		logLevel = logger.Info
	}

	// Connect with PreferSimpleProtocol to prevent "prepared statement already exists" errors
	pgConfig := postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}

	DB, err = gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})

	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		return err
	}

	// Configure connection pool
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("Failed to get database connection: %v", err)
		return err
	}

	if maxIdle > 0 {
		sqlDB.SetMaxIdleConns(maxIdle)
	}

	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}

	// AutoMigrate will automatically create or update the table structure based on our models
	err = DB.AutoMigrate(
		&model.Tenant{},
		&model.Customer{},
		&model.ConsentLog{},
		&model.Message{},
		&model.Appointment{},
		&model.SenderNumber{},
	)
	if err != nil {
		log.Printf("Failed to migrate database: %v", err)
		return err
	}

	fmt.Println("Database connected and migrated successfully")
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
