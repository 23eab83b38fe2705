// config предоставляет структуру конфигурации сервиса и функции
// загрузки из файла/переменных окружения с предсказуемым приоритетом.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config — корневая конфигурация сервиса.
// Источники значений (по убыванию приоритета):
//  1. явный путь через флаг --config;
//  2. путь в переменной окружения CONFIG_PATH;
//  3. файл local.yaml из рабочей директории;
//  4. переменные окружения (cleanenv).
type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig    `yaml:"http"`
	Auth     AuthConfig    `yaml:"auth"`
	DB       DBConfig      `yaml:"db"`
	Redis    RedisConfig   `yaml:"redis"`
	Cache    CacheConfig   `yaml:"cache"`
	Posts    PostsConfig   `yaml:"posts"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// HTTPConfig — сетевые настройки HTTP-сервера.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// AuthConfig содержит параметры выпуска и валидации токенов.
//
// ВАЖНО: access- и refresh-токены подписываются разными секретами,
// поэтому токен одного вида никогда не проходит проверку другого.
type AuthConfig struct {
	AccessSecret    string         `yaml:"access_secret" env:"ACCESS_SECRET" env-required:"true"`
	RefreshSecret   string         `yaml:"refresh_secret" env:"REFRESH_SECRET" env-required:"true"`
	AccessTokenTTL  time.Duration  `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTokenTTL time.Duration  `yaml:"refresh_token_ttl" env:"REFRESH_TOKEN_TTL" env-default:"168h"`
	RevocationTTL   time.Duration  `yaml:"revocation_ttl" env:"REVOCATION_TTL" env-default:"24h"`
	Issuer          string         `yaml:"issuer" env:"ISSUER" env-default:"blog-service"`
	Password        PasswordPolicy `yaml:"password"`
}

// PasswordPolicy — настраиваемая политика паролей.
// AlnumOnly ограничивает алфавит латиницей и цифрами (историческое
// правило исходной системы); по умолчанию выключено.
type PasswordPolicy struct {
	MinLength int  `yaml:"min_length" env:"PASSWORD_MIN_LENGTH" env-default:"8"`
	AlnumOnly bool `yaml:"alnum_only" env:"PASSWORD_ALNUM_ONLY" env-default:"false"`
}

// DBConfig — настройки подключения к базе данных.
type DBConfig struct {
	DatabaseURL string `yaml:"db_url" env:"DATABASE_URL" env-required:"true"`
}

// RedisConfig — настройки подключения к Redis (кэш и отзыв токенов).
type RedisConfig struct {
	RedisURL string `yaml:"redis_url" env:"REDIS_URL" env-required:"true"`
}

// CacheConfig — TTL кэшей и таймаут одной операции с Redis.
// Таймаут нужен, чтобы недоступный кэш не задерживал запрос дольше,
// чем занимает fallback в БД.
type CacheConfig struct {
	UserTTL   time.Duration `yaml:"user_ttl" env:"USER_CACHE_TTL" env-default:"15m"`
	PostsTTL  time.Duration `yaml:"posts_ttl" env:"POSTS_CACHE_TTL" env-default:"5m"`
	OpTimeout time.Duration `yaml:"op_timeout" env:"CACHE_OP_TIMEOUT" env-default:"200ms"`
}

// PostsConfig — ограничения контента.
type PostsConfig struct {
	MaxContentBytes int64 `yaml:"max_content_bytes" env:"MAX_POST_SIZE_BYTES" env-default:"1048576"`
}

// TimeoutConfig — таймауты сервиса.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"5s"`
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// После чтения файла накладываем ENV-переменные поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config

	// чтение файла + overlay ENV.
	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	load := func() (*Config, error) {
		// 1) Явный путь.
		if path != "" {
			return tryRead(path)
		}

		// 2) CONFIG_PATH.
		if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
			return tryRead(envPath)
		}

		// 3) ./local.yaml.
		if _, err := os.Stat("local.yaml"); err == nil {
			return tryRead("local.yaml")
		}

		// 4) Только ENV.
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
		}

		return &cfg, nil
	}

	c, err := load()
	if err != nil {
		return nil, err
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// validate проверяет инварианты, которые cleanenv выразить не может.
func (c *Config) validate() error {
	// Раздельные секреты — обязательное условие: иначе refresh-токен
	// можно было бы предъявить как access-токен.
	if c.Auth.AccessSecret == c.Auth.RefreshSecret {
		return errors.New("auth: access_secret and refresh_secret must differ")
	}

	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 {
		return errors.New("auth: token TTLs must be positive")
	}

	if c.Auth.RevocationTTL <= 0 {
		return errors.New("auth: revocation_ttl must be positive")
	}

	if c.Auth.Password.MinLength < 1 {
		return errors.New("auth: password min_length must be >= 1")
	}

	if c.Posts.MaxContentBytes <= 0 {
		return errors.New("posts: max_content_bytes must be positive")
	}

	return nil
}
