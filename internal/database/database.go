package database

import (
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DeWolfRobin/tf2autobot/internal/models"
)

func Initialize(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	// sqlite has a single writer
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	// Auto migrate the schema
	err = db.AutoMigrate(
		&models.Price{},
		&models.LoginKey{},
	)
	if err != nil {
		return nil, err
	}

	logrus.WithField("database", databaseURL).Info("Database initialized successfully")
	return db, nil
}
