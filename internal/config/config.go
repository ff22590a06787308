package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort          string `env:"HTTP_PORT" envDefault:"8080"`
	SessionSecret     string `env:"SESSION_SECRET,required"`
	SessionTTLMinutes int    `env:"SESSION_TTL_MINUTES" envDefault:"720"`

	UsersFile     string `env:"USERS_FILE" envDefault:"users.json"`
	OnlineFile    string `env:"ONLINE_FILE" envDefault:"online.json"`
	StaticDir     string `env:"STATIC_DIR" envDefault:"static"`
	UploadDir     string `env:"UPLOAD_DIR" envDefault:"static/uploads"`
	TemplatesGlob string `env:"TEMPLATES_GLOB" envDefault:"web/templates/*.html"`

	OnlineTimeoutSeconds      int `env:"ONLINE_TIMEOUT_SECONDS" envDefault:"300"`
	AvatarFetchTimeoutSeconds int `env:"AVATAR_FETCH_TIMEOUT_SECONDS" envDefault:"5"`

	LoginWindowMinutes int `env:"LOGIN_WINDOW_MINUTES" envDefault:"10"`
	LoginMaxAttempts   int `env:"LOGIN_MAX_ATTEMPTS" envDefault:"10"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
