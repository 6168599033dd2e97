package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port        string
	CorsOrigins string
	LogVerbose  bool

	DBDriver   string // postgres, mysql or sqlite
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	SQLitePath string

	JWTKey    string
	JWTTTL    time.Duration
	SaltRound int

	Translator          string // google, openai or none
	TranslateURL        string
	TranslateSourceLang string
	TranslateTargetLang string

	InferenceBackend string // openai or http
	InferenceURL     string
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIModel      string
	HTTPTimeout      time.Duration

	GenerationTimeout    time.Duration
	SweeperSchedule      string
	GenerationStaleAfter time.Duration

	SendGridAPIKey string
	EmailSender    string
}

// staleMargin is how much longer than GENERATION_TIMEOUT a flag must be
// held before the sweeper may clear it.
const staleMargin = 5 * time.Minute

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:        getEnv("PORT", "3000"),
		CorsOrigins: getEnv("CORS_ORIGINS", "*"),
		LogVerbose:  getEnvBool("LOG_VERBOSE", false),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "quizgen"),
		DBPort:     getEnv("DB_PORT", "5432"),
		SQLitePath: getEnv("SQLITE_PATH", "quizgen.db"),

		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		JWTTTL:    getEnvDuration("JWT_TTL", 24*time.Hour),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		Translator:          strings.ToLower(getEnv("TRANSLATOR", "google")),
		TranslateURL:        getEnv("TRANSLATE_URL", "https://translate.googleapis.com"),
		TranslateSourceLang: getEnv("TRANSLATE_SOURCE_LANG", "vi"),
		TranslateTargetLang: getEnv("TRANSLATE_TARGET_LANG", "en"),

		InferenceBackend: strings.ToLower(getEnv("INFERENCE_BACKEND", "http")),
		InferenceURL:     getEnv("INFERENCE_URL", "http://localhost:8000"),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o"),
		HTTPTimeout:      getEnvDuration("HTTP_TIMEOUT", 120*time.Second),

		GenerationTimeout:    getEnvDuration("GENERATION_TIMEOUT", 20*time.Minute),
		SweeperSchedule:      getEnv("SWEEPER_SCHEDULE", "*/5 * * * *"),
		GenerationStaleAfter: getEnvDuration("GENERATION_STALE_AFTER", 30*time.Minute),

		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		EmailSender:    getEnv("EMAIL_SENDER", "no-reply@quizgen.local"),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.GenerationTimeout <= 0 {
		log.Println("Warning: GENERATION_TIMEOUT must be positive. Using 20m.")
		AppConfig.GenerationTimeout = 20 * time.Minute
	}
	// the sweeper must never clear the flag of a run that can still be alive
	if AppConfig.GenerationStaleAfter <= AppConfig.GenerationTimeout {
		raised := AppConfig.GenerationTimeout + staleMargin
		log.Printf("Warning: GENERATION_STALE_AFTER (%s) must exceed GENERATION_TIMEOUT (%s). Using %s.",
			AppConfig.GenerationStaleAfter, AppConfig.GenerationTimeout, raised)
		AppConfig.GenerationStaleAfter = raised
	}
	if AppConfig.InferenceBackend == "openai" && AppConfig.OpenAIAPIKey == "" {
		log.Println("Warning: INFERENCE_BACKEND=openai but OPENAI_API_KEY is empty.")
	}
	if AppConfig.SendGridAPIKey == "" {
		log.Println("Warning: SENDGRID_API_KEY not set. Welcome emails are disabled.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to bool: %v", key, err)
		return defaultValue
	}
	return boolValue
}

// getEnvDuration accepts Go duration strings such as "90s" or "30m".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to duration: %v", key, err)
		return defaultValue
	}
	return d
}
