package config

import (
	"log"

	"application-evaluator-api/models"
)

// MigrateDB keeps the schema in sync with the domain models. Join tables for
// the many-to-many relations are created by gorm alongside their owners.
func MigrateDB() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.ApplicationRound{},
		&models.CriterionGroup{},
		&models.Criterion{},
		&models.Application{},
		&models.Score{},
		&models.Comment{},
		&models.ApplicationRoundSubmittal{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database schema:", err)
	}

	log.Println("Database schema migrated")
}
