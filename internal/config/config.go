package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env-default:"8080"`
	StaticDir  string `yaml:"static-dir" env-default:"./public"`
	Redis      Redis  `yaml:"redis"`
	Game       Game   `yaml:"game"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
}

type Game struct {
	// RoomTTL bounds how long an abandoned room survives in storage.
	RoomTTL time.Duration `yaml:"room-ttl" env-default:"24h"`
	// StartDelay paces the "game started" announcement after the second
	// player joins.
	StartDelay time.Duration `yaml:"start-delay" env-default:"2s"`
	// EvaluateDelay paces outcome evaluation after an accepted move.
	EvaluateDelay time.Duration `yaml:"evaluate-delay" env-default:"500ms"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
