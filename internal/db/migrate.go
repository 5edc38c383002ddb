package db

import (
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

//go:embed migrations/*/*.sql
var migrations embed.FS

// Direction selects which goose command Migrate runs.
type Direction string

const (
	Up     Direction = "up"
	Down   Direction = "down"
	Status Direction = "status"
)

// Migrate runs the embedded migrations for driver against db.
func Migrate(db *gorm.DB, driver string, dir Direction) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(driver); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	path := "migrations/" + driver
	switch dir {
	case Up:
		err = goose.Up(sqlDB, path)
	case Down:
		err = goose.Down(sqlDB, path)
	case Status:
		err = goose.Status(sqlDB, path)
	default:
		return fmt.Errorf("unknown migration direction %q", dir)
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", dir, err)
	}
	return nil
}
