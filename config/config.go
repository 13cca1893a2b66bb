package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode   string `mapstructure:"mode"`
	Server struct {
		HTTPPort    string        `mapstructure:"HTTPPort"`
		MetricsPort string        `mapstructure:"MetricsPort"`
		Timeout     time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Repositories struct {
		Postgres struct {
			Host     string `mapstructure:"host"`
			Port     string `mapstructure:"port"`
			Username string `mapstructure:"username"`
			Password string `mapstructure:"password"`
			DB       string `mapstructure:"db"`
			SSLMODE  string `mapstructure:"SSLMODE"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	JWT   JWTConfig  `mapstructure:"jwt"`
	Auth  AuthConfig `mapstructure:"auth"`
	OAuth struct {
		GoogleClientID     string `mapstructure:"googleClientID"`
		GoogleClientSecret string `mapstructure:"googleClientSecret"`
		GitHubClientID     string `mapstructure:"githubClientID"`
		GitHubClientSecret string `mapstructure:"githubClientSecret"`
		SessionSecret      string `mapstructure:"sessionSecret"`
		CallbackURL        string `mapstructure:"callbackURL"`
		FrontendURL        string `mapstructure:"frontendURL"`
	} `mapstructure:"oauth"`
	SMTP struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		From     string `mapstructure:"from"`
	} `mapstructure:"smtp"`
}

// JWTConfig holds token signing material. The two secrets are independent so
// a leaked access secret cannot mint refresh tokens.
type JWTConfig struct {
	SecretKey        string        `mapstructure:"secretKey"`
	RefreshSecretKey string        `mapstructure:"refreshSecretKey"`
	Issuer           string        `mapstructure:"issuer"`
	Audience         string        `mapstructure:"audience"`
	AccessTTL        time.Duration `mapstructure:"accessTTL"`
	RefreshTTL       time.Duration `mapstructure:"refreshTTL"`
}

// AuthConfig holds auth flow tunables.
type AuthConfig struct {
	OTPWindow       time.Duration `mapstructure:"otpWindow"`
	SessionPageSize int           `mapstructure:"sessionPageSize"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Secrets never live in the YAML; bind them to env explicitly.
	v.AutomaticEnv()
	for key, env := range map[string]string{
		"jwt.secretKey":            "JWT_SECRET_KEY",
		"jwt.refreshSecretKey":     "JWT_REFRESH_SECRET_KEY",
		"oauth.googleClientID":     "GOOGLE_CLIENT_ID",
		"oauth.googleClientSecret": "GOOGLE_CLIENT_SECRET",
		"oauth.githubClientID":     "GITHUB_CLIENT_ID",
		"oauth.githubClientSecret": "GITHUB_CLIENT_SECRET",
		"oauth.sessionSecret":      "OAUTH_SESSION_SECRET",
		"smtp.host":                "SMTP_HOST",
		"smtp.username":            "SMTP_USERNAME",
		"smtp.password":            "SMTP_PASSWORD",
		"repositories.postgres.password": "POSTGRES_PASSWORD",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	return config, nil
}
