package db

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/alwiirfani/chemicals-sub000/config"
	"github.com/alwiirfani/chemicals-sub000/models"
)

func ConnectDB(cfg config.DatabaseConfig) *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode,
	)

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	if err := Migrate(conn); err != nil {
		log.Fatal("Failed to migrate models: ", err)
	}
	log.Println("Database connected")
	return conn
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Chemical{},
		&models.SDSDocument{},
		&models.Borrowing{},
		&models.BorrowingItem{},
		&models.UsageHistory{},
	); err != nil {
		return err
	}

	// 每个化学品同一请求只允许一行
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_line_per_chemical
	  ON %s (borrowing_id, chemical_id);
	`, models.BorrowingItemTable, models.BorrowingItemTable)).Error; err != nil {
		return err
	}

	// 待审批列表查询更快
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_pending_requestedat_desc
	  ON %s (requested_at DESC)
	  WHERE status = 'PENDING';
	`, models.BorrowingTable, models.BorrowingTable)).Error; err != nil {
		return err
	}

	return nil
}
