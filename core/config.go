package core

import (
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env      string
		Debug    bool
		TestMode bool
		AppName  string
		Build    string
		WorkDir  string

		// SecretKey signs session tokens. Mandatory; no default.
		SecretKey []byte

		FrontendBaseURL string

		Server   ServerConfig
		Database DatabaseConfig
		Mail     MailConfig
		Razorpay RazorpayConfig
		Rollbar  RollbarConfig
	}

	ServerConfig struct {
		Host                string
		Port                string
		JWTExpirationDelta  time.Duration
		OTPExpirationDelta  time.Duration
		ShutdownGracePeriod time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          string
		DisableTLS    bool
	}

	MailConfig struct {
		SendgridAPIKey   string
		DefaultFromEmail mail.Address
	}

	RazorpayConfig struct {
		KeyID     string
		KeySecret string
	}

	RollbarConfig struct {
		Token string
	}
)

// Enabled reports whether an outbound mail transport is configured.
// When false, OTP requests fail loudly instead of silently dropping codes.
// Debug deployments bypass this check; the console transport needs no key.
func (c MailConfig) Enabled() bool { return c.SendgridAPIKey != "" }

// Enabled reports whether the payment gateway is configured.
// When false, order creation and verification run in demo mode.
func (c RazorpayConfig) Enabled() bool { return c.KeyID != "" && c.KeySecret != "" }

func (c DatabaseConfig) Address() string { return c.Host + ":" + c.Port }

func (c ServerConfig) Address() string { return c.Host + ":" + c.Port }

// NewConfig loads configuration from the environment (and an optional
// config/.env.<env> file), applying defaults for everything but SecretKey.
func NewConfig(workDir string) (*Config, error) {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	v.SetDefault("debug", true)
	v.SetDefault("appName", "Mtihani")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("otpExpirationDelta", 10*time.Minute)
	v.SetDefault("shutdownGracePeriod", 20*time.Second)
	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverPort", "8000")
	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbName", "mtihani")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("dbDisableTLS", true)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}
	v.AutomaticEnv()

	secret := v.GetString("secretKey")
	if secret == "" {
		return nil, errors.New("config: SECRET_KEY is not set")
	}

	conf := &Config{
		Env:             env,
		Debug:           v.GetBool("debug"),
		TestMode:        env == "TEST",
		AppName:         v.GetString("appName"),
		Build:           v.GetString("build"),
		WorkDir:         workDir,
		SecretKey:       []byte(secret),
		FrontendBaseURL: v.GetString("frontendBaseURL"),
		Server: ServerConfig{
			Host:                v.GetString("serverHost"),
			Port:                v.GetString("serverPort"),
			JWTExpirationDelta:  v.GetDuration("jwtExpirationDelta"),
			OTPExpirationDelta:  v.GetDuration("otpExpirationDelta"),
			ShutdownGracePeriod: v.GetDuration("shutdownGracePeriod"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("dbEngine"),
			Name:          v.GetString("dbName"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetString("dbPort"),
			DisableTLS:    v.GetBool("dbDisableTLS"),
		},
		Mail: MailConfig{
			SendgridAPIKey:   v.GetString("sendgridApiKey"),
			DefaultFromEmail: mail.Address{Name: v.GetString("appName"), Address: v.GetString("defaultFromEmail")},
		},
		Razorpay: RazorpayConfig{
			KeyID:     v.GetString("razorpayKeyId"),
			KeySecret: v.GetString("razorpayKeySecret"),
		},
		Rollbar: RollbarConfig{
			Token: v.GetString("rollbarToken"),
		},
	}
	return conf, nil
}
