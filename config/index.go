package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

var loadEnvOnce sync.Once

// Config reads an env variable, loading .env once if present
func Config(key string) string {
	loadEnvOnce.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Println(".env файл олдсонгүй, системийн орчны хувьсагч ашиглана...")
		}
	})
	return os.Getenv(key)
}
