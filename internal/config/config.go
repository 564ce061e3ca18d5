package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	TelegramBotToken string
	AdminUserID      int64
	SupportGroupID   int64
	PrivateChannelID int64

	DatabaseURL string
	RedisURL    string

	StarsPrice       int
	StarsTitle       string
	StarsDescription string

	HTTPAddr         string
	GateBaseURL      string
	ChartCandleLimit int
	MoversLimit      int
}

func Load() *Config {
	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
	}

	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set")
	}
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}

	cfg.AdminUserID = parseID(os.Getenv("ADMIN_USER_ID"))
	if cfg.AdminUserID == 0 {
		log.Println("Warning: ADMIN_USER_ID not set, admin panel disabled")
	}
	cfg.SupportGroupID = parseID(os.Getenv("SUPPORT_GROUP_ID"))
	if cfg.SupportGroupID == 0 {
		log.Println("Warning: SUPPORT_GROUP_ID not set, ticket relay disabled")
	}
	cfg.PrivateChannelID = parseID(os.Getenv("PRIVATE_CHANNEL_ID"))

	cfg.StarsPrice = 199
	if v := strings.TrimSpace(os.Getenv("STARS_PRICE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.StarsPrice = n
		}
	}

	cfg.StarsTitle = strings.TrimSpace(os.Getenv("STARS_TITLE"))
	if cfg.StarsTitle == "" {
		cfg.StarsTitle = "Access 30 days"
	}
	cfg.StarsDescription = strings.TrimSpace(os.Getenv("STARS_DESCRIPTION"))
	if cfg.StarsDescription == "" {
		cfg.StarsDescription = "Trading bot access for 30 days"
	}

	cfg.HTTPAddr = strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	cfg.GateBaseURL = strings.TrimSpace(os.Getenv("GATE_BASE_URL"))
	if cfg.GateBaseURL == "" {
		cfg.GateBaseURL = "https://api.gateio.ws/api/v4"
	}

	cfg.ChartCandleLimit = 220
	if v := strings.TrimSpace(os.Getenv("CHART_CANDLE_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ChartCandleLimit = n
		}
	}

	cfg.MoversLimit = 10
	if v := strings.TrimSpace(os.Getenv("MOVERS_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MoversLimit = n
		}
	}

	return cfg
}

func parseID(raw string) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Printf("Warning: invalid chat id %q ignored", raw)
		return 0
	}
	return n
}
