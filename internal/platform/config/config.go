package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"local"`
	BotToken    string `env:"BOT_TOKEN,required"`
	PostgresDSN string `env:"POSTGRES_DSN,required"`

	// Ordered mirror host lists per platform. An empty list sends the
	// platform straight to fallback resolution.
	TikTokMirrorHosts    []string `env:"TIKTOK_MIRROR_HOSTS" envSeparator:"," envDefault:"a.tnktok.com,tfxktok.com"`
	InstagramMirrorHosts []string `env:"INSTAGRAM_MIRROR_HOSTS" envSeparator:"," envDefault:"ddinstagram.com"`
	FacebookMirrorHosts  []string `env:"FACEBOOK_MIRROR_HOSTS" envSeparator:","`

	EmbedPollInterval   time.Duration `env:"EMBED_POLL_INTERVAL" envDefault:"500ms"`
	FirstMirrorTimeout  time.Duration `env:"FIRST_MIRROR_TIMEOUT" envDefault:"10s"`
	BackupMirrorTimeout time.Duration `env:"BACKUP_MIRROR_TIMEOUT" envDefault:"5s"`
	ErrorNoticeLifetime time.Duration `env:"ERROR_NOTICE_LIFETIME" envDefault:"30s"`
	GalleryLimit        int           `env:"GALLERY_LIMIT" envDefault:"5"`

	WebFetchRPS     float64       `env:"WEB_FETCH_RPS" envDefault:"2"`
	WebFetchTimeout time.Duration `env:"WEB_FETCH_TIMEOUT" envDefault:"30s"`

	HealthPort int `env:"HEALTH_PORT" envDefault:"8080"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
