package main

import (
	"fmt"
	"log"

	"github.com/ekrako/AcadeMaster/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Dev tool: migrate the model set into an in-memory sqlite database and
// dump the DDL GORM generates, indexes included.
func main() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		log.Fatal(err)
	}

	if err := db.AutoMigrate(
		&models.HourType{},
		&models.Scenario{},
		&models.HourBank{},
		&models.Teacher{},
		&models.Class{},
		&models.Allocation{},
	); err != nil {
		log.Fatal(err)
	}

	type entry struct {
		Name string
		SQL  string
	}
	var entries []entry
	db.Raw("SELECT name, sql FROM sqlite_master WHERE type IN ('table','index') AND sql IS NOT NULL ORDER BY type, name").Scan(&entries)

	for _, e := range entries {
		fmt.Printf("\n=== %s ===\n%s\n", e.Name, e.SQL)
	}
}
