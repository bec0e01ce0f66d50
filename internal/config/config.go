package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	PongWait   time.Duration `mapstructure:"pong_wait"`
	Secret     string        `mapstructure:"secret"`

	// SendBuffer is the per-connection outbound frame buffer; frames
	// past it are dropped (presence relay, not a durable queue).
	SendBuffer int `mapstructure:"send_buffer"`

	// TypingTimeout is the inactivity window that closes a typing burst.
	TypingTimeout time.Duration `mapstructure:"typing_timeout"`

	// SignalRateLimit inbound frames per SignalRateInterval per user.
	SignalRateLimit    int           `mapstructure:"signal_rate_limit"`
	SignalRateInterval time.Duration `mapstructure:"signal_rate_interval"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("pong_wait", "60s")
	v.SetDefault("send_buffer", 32)
	v.SetDefault("typing_timeout", "3s")
	v.SetDefault("signal_rate_limit", 60)
	v.SetDefault("signal_rate_interval", "10s")
}
