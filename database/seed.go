package database

import (
	"log"
	"shop_manager/constants"
	"shop_manager/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func SeedData(db *gorm.DB) {
	bytes, err := bcrypt.GenerateFromPassword([]byte("123456sc"), 10)
	HashPassword := string(bytes)
	if err != nil {
		HashPassword = "123456sc"
	}
	accounts := []model.Account{
		{Username: "Administration", Password: HashPassword, Active: true, Role: constants.ROLE_ADMIN},
	}

	for _, account := range accounts {
		if err := db.Where(model.Account{Username: account.Username}).FirstOrCreate(&account).Error; err != nil {
			log.Println("failed to seed data for account:", account.Username, "error:", err)
		}
	}
}
