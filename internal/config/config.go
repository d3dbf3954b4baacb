package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/yukikurage/project-task-api/internal/constants"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPath     string

	RedisHost     string
	RedisPort     string
	SessionStore  string
	SessionSecret string

	GinMode        string
	Port           string
	AllowedOrigins []string

	SentimentProvider string
	HuggingFaceURL    string
	HuggingFaceToken  string
	OpenAIAPIKey      string
	ClassifierTimeout time.Duration

	LogLevel  string
	LogFormat string
	LogFile   string
}

const defaultHuggingFaceURL = "https://api-inference.huggingface.co/models/cardiffnlp/twitter-roberta-base-sentiment-latest"

// SetDefaults registers every configuration key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_USER", "taskuser")
	v.SetDefault("DB_PASSWORD", "taskpassword")
	v.SetDefault("DB_NAME", "task_management")
	v.SetDefault("DB_PATH", "tasks.db")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("SESSION_STORE", "redis")
	v.SetDefault("SESSION_SECRET", "default-secret-key-change-me")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("PORT", "8080")
	v.SetDefault("ALLOW_ORIGINS", "http://localhost:3000")
	v.SetDefault("SENTIMENT_PROVIDER", "huggingface")
	v.SetDefault("HUGGINGFACE_URL", defaultHuggingFaceURL)
	v.SetDefault("HUGGINGFACE_TOKEN", "")
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("CLASSIFIER_TIMEOUT", constants.DefaultClassifierTimeout.String())
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_FILE", "")
}

// NewViper returns a viper instance carrying the defaults and bound to the
// environment, after loading an optional .env file. Callers may layer a
// config file or command-line flags on top before calling FromViper.
func NewViper() *viper.Viper {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment and defaults")
	}

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return v
}

// Load reads configuration from the environment.
func Load() *Config {
	return FromViper(NewViper())
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	timeout := v.GetDuration("CLASSIFIER_TIMEOUT")
	if timeout <= 0 {
		timeout = constants.DefaultClassifierTimeout
	}

	return &Config{
		DBDriver:          strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:            v.GetString("DB_HOST"),
		DBPort:            v.GetString("DB_PORT"),
		DBUser:            v.GetString("DB_USER"),
		DBPassword:        v.GetString("DB_PASSWORD"),
		DBName:            v.GetString("DB_NAME"),
		DBPath:            v.GetString("DB_PATH"),
		RedisHost:         v.GetString("REDIS_HOST"),
		RedisPort:         v.GetString("REDIS_PORT"),
		SessionStore:      strings.ToLower(v.GetString("SESSION_STORE")),
		SessionSecret:     v.GetString("SESSION_SECRET"),
		GinMode:           v.GetString("GIN_MODE"),
		Port:              v.GetString("PORT"),
		AllowedOrigins:    splitList(v.GetString("ALLOW_ORIGINS")),
		SentimentProvider: strings.ToLower(v.GetString("SENTIMENT_PROVIDER")),
		HuggingFaceURL:    v.GetString("HUGGINGFACE_URL"),
		HuggingFaceToken:  v.GetString("HUGGINGFACE_TOKEN"),
		OpenAIAPIKey:      v.GetString("OPENAI_API_KEY"),
		ClassifierTimeout: timeout,
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFormat:         v.GetString("LOG_FORMAT"),
		LogFile:           v.GetString("LOG_FILE"),
	}
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
