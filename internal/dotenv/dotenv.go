// Package dotenv loads the bot's .env file (PRIVATE_KEY, API_KEY,
// ALCHEMY_API_URL and friends) from the working directory before flags are
// parsed.
package dotenv

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Load reads .env into the process environment. Running without a .env file
// is supported; a missing file is not an error.
func Load() error {
	if err := godotenv.Load(); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}
