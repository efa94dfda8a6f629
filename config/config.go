package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds everything the app reads from the environment (or an
// optional config.yaml next to the binary). Mail and OpenAI settings may
// be empty, in which case the relevant features degrade instead of failing
// at startup.
type Config struct {
	Addr       string `mapstructure:"addr"`
	DBPath     string `mapstructure:"db_path"`
	UploadRoot string `mapstructure:"upload_root"`
	SecretKey  string `mapstructure:"secret_key"`

	MailHost      string `mapstructure:"mail_host"`
	MailPort      int    `mapstructure:"mail_port"`
	MailUsername  string `mapstructure:"mail_username"`
	MailPassword  string `mapstructure:"mail_password"`
	MailSender    string `mapstructure:"mail_sender"`
	MailRecipient string `mapstructure:"mail_recipient"`

	OpenAIAPIKey string `mapstructure:"openai_api_key"`
}

func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("addr", ":6835")
	v.SetDefault("db_path", "vendhan.db")
	v.SetDefault("upload_root", "uploads")
	v.SetDefault("mail_port", 587)

	v.SetEnvPrefix("VENDHAN")
	v.AutomaticEnv()

	// keys need to be registered for AutomaticEnv to pick them up on Unmarshal
	for _, key := range []string{
		"addr", "db_path", "upload_root", "secret_key",
		"mail_host", "mail_port", "mail_username", "mail_password",
		"mail_sender", "mail_recipient", "openai_api_key",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// MailConfigured reports whether the SMTP transport has enough settings to
// actually send. OTP requests are rejected outright when it returns false.
func (c *Config) MailConfigured() bool {
	return c.MailHost != "" && c.MailUsername != ""
}
