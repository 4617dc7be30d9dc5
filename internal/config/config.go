package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config carries every environment-provided setting the bot needs.
type Config struct {
	BotToken          string
	AdminID           int64 // super admin chat ID
	DatabaseURL       string
	GroupLink         string
	SiteLink          string
	AIBoostLink       string
	VerificationGroup string
	DailyTaskLink     string
	ChannelID         int64 // broadcast channel, 0 disables the channel handler
}

// Load reads configuration from the environment, with .env support.
// BOT_TOKEN, ADMIN_ID and DATABASE_URL are required.
func Load() (*Config, error) {
	godotenv.Load()

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("BOT_TOKEN not set")
	}

	adminID, err := strconv.ParseInt(os.Getenv("ADMIN_ID"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("ADMIN_ID not set or invalid: %w", err)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL not set")
	}

	var channelID int64
	if v := os.Getenv("CHANNEL_ID"); v != "" {
		channelID, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("CHANNEL_ID invalid: %w", err)
		}
	}

	return &Config{
		BotToken:          token,
		AdminID:           adminID,
		DatabaseURL:       databaseURL,
		GroupLink:         getEnvOrDefault("GROUP_LINK", "@etherealplus"),
		SiteLink:          getEnvOrDefault("SITE_LINK", "https://etherealweb.site/signup?ref=Bigscott"),
		AIBoostLink:       getEnvOrDefault("AI_BOOST_LINK", "https://etherealweb.site/account/social-boost"),
		VerificationGroup: getEnvOrDefault("VERIFICATION_GROUP", "@taskchecked"),
		DailyTaskLink:     getEnvOrDefault("DAILY_TASK_LINK", "https://etherealweb.site/account/social/snapchat-streak"),
		ChannelID:         channelID,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
