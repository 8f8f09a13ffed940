package app

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"
)

type GSheetConfig struct {
	Unit            string `toml:"unit"`
	SheetID         string `toml:"sheet_id"`
	SheetName       string `toml:"sheet_name"`
	Schedule        string `toml:"schedule"`
	CredentialsPath string `toml:"credentials_path"`
}

type Config struct {
	Server struct {
		Port            string `toml:"port"`
		EnableAuth      bool   `toml:"enable_auth"`
		DebugUserHeader string `toml:"debug_user_header"`
	} `toml:"server"`

	Auth struct {
		RedisURL        string `toml:"redis_url"`
		SessionHeader   string `toml:"session_header"`
		SessionTTLHours int    `toml:"session_ttl_hours"`
	} `toml:"auth"`

	Database struct {
		DSN           string `toml:"dsn"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`

	Uploads struct {
		Bucket            string   `toml:"bucket"`
		CDNDomain         string   `toml:"cdn_domain"`
		CredentialsPath   string   `toml:"credentials_path"`
		MaxFileBytes      int64    `toml:"max_file_bytes"`
		AllowedExtensions []string `toml:"allowed_extensions"`
	} `toml:"uploads"`

	EmojiVariants []string       `toml:"emoji_variants"`
	GSheet        []GSheetConfig `toml:"gsheet"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf(
			"error reading config file %s\n> Error: %w\n> Content:\n%s",
			path,
			err,
			string(data),
		)
	}

	if config.Server.Port == "" {
		return nil, fmt.Errorf("Server port is not specified in config, use a value like :9999")
	}

	if config.Server.DebugUserHeader == "" {
		config.Server.DebugUserHeader = "X-Semla-User"
	}
	if config.Auth.SessionHeader == "" {
		config.Auth.SessionHeader = "Authorization"
	}
	if config.Auth.SessionTTLHours == 0 {
		config.Auth.SessionTTLHours = 24 * 7
	}
	if config.Uploads.MaxFileBytes == 0 {
		config.Uploads.MaxFileBytes = 10 << 20
	}
	if len(config.Uploads.AllowedExtensions) == 0 {
		config.Uploads.AllowedExtensions = []string{"pdf", "doc", "docx", "png", "jpg", "jpeg", "txt"}
	}
	if len(config.EmojiVariants) == 0 {
		config.EmojiVariants = []string{"🧁", "🥐", "🍰"}
	}

	logger.Debug.Printf("Loaded uploads config: %+v", config.Uploads)

	return &config, nil
}
