package migration

import (
	"Go-Receipt-Vault/entities"
	"fmt"
	"log"

	"gorm.io/gorm"
)

// searchIndex must cover exactly the columns the search repository
// ranks on, with the same expression, or Postgres will not use it.
const searchIndex = `CREATE INDEX IF NOT EXISTS idx_receipts_search ON receipts USING GIN (to_tsvector('english', coalesce(raw_text,'') || ' ' || coalesce(merchant_name,'') || ' ' || coalesce(notes,'') || ' ' || coalesce(tags,'')))`

func Migrate(db *gorm.DB) error {
	db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\";")

	if err := db.AutoMigrate(&entities.User{}); err != nil {
		log.Fatalf("Error migrating user database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.Product{}); err != nil {
		log.Fatalf("Error migrating product database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.Receipt{}); err != nil {
		log.Fatalf("Error migrating receipt database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.ReceiptItem{}); err != nil {
		log.Fatalf("Error migrating receipt item database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.SearchHistory{}); err != nil {
		log.Fatalf("Error migrating search history database: %v", err)
		return err
	}

	if err := db.Exec(searchIndex).Error; err != nil {
		log.Fatalf("Error creating receipt search index: %v", err)
		return err
	}

	fmt.Println("Database migration complete")
	return nil
}
