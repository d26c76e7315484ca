package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample groups and users for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := initGorm(sqlDB)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"document_destinations", "documents", "users", "groups", "config"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		seedGroup(db, "Secretariat", true)
		seedGroup(db, "Finance", false)
		seedGroup(db, "Human Resources", false)
		seedGroup(db, "Legal", false)

		hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)

		seedUser(db, "secretary", string(hash), "Secretariat", false)
		seedUser(db, "finance.head", string(hash), "Finance", true)
		seedUser(db, "finance.clerk", string(hash), "Finance", false)
		seedUser(db, "hr.clerk", string(hash), "Human Resources", false)

		var configRows int64
		db.Raw("SELECT COUNT(*) FROM config").Scan(&configRows)
		if configRows == 0 {
			if err := db.Exec("INSERT INTO config (paging_nb) VALUES (10)").Error; err != nil {
				log.Fatalf("failed to seed config: %v", err)
			}
			fmt.Println("Seeded config with paging_nb=10")
		}
	},
}

func seedGroup(db *gorm.DB, name string, isAdminGroup bool) {
	var exists int
	row := db.Raw("SELECT 1 FROM groups WHERE name = ?", name).Row()
	if err := row.Scan(&exists); err == nil {
		fmt.Printf("group %s already exists\n", name)
		return
	}
	if err := db.Exec("INSERT INTO groups (name, is_admin_group) VALUES (?, ?)", name, isAdminGroup).Error; err != nil {
		log.Fatalf("failed to insert group %s: %v", name, err)
	}
	fmt.Println("Seeded group:", name)
}

func seedUser(db *gorm.DB, username, passwordHash, groupName string, isGroupAdmin bool) {
	var exists int
	row := db.Raw("SELECT 1 FROM users WHERE username = ?", username).Row()
	if err := row.Scan(&exists); err == nil {
		fmt.Printf("user %s already exists\n", username)
		return
	}

	var groupID int64
	row = db.Raw("SELECT id FROM groups WHERE name = ?", groupName).Row()
	if err := row.Scan(&groupID); err != nil {
		log.Fatalf("group %s not found for user %s: %v", groupName, username, err)
	}

	if err := db.Exec(
		"INSERT INTO users (username, password_hash, group_id, is_group_admin) VALUES (?, ?, ?, ?)",
		username, passwordHash, groupID, isGroupAdmin,
	).Error; err != nil {
		log.Fatalf("failed to insert user %s: %v", username, err)
	}
	fmt.Println("Seeded user:", username)
}
