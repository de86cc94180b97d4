package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadENV reads the .env file when present. A missing file is not an error;
// deployed environments set variables directly.
func LoadENV() error {
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load()
}
