package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ProjectName string
	ServerPort  int
	Database    DatabaseConfig
	Auth        AuthConfig
	SMTP        SMTPConfig
	Storage     StorageConfig
	Queue       QueueConfig
	Redis       RedisConfig
	Chatbot     ChatbotConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

// AuthConfig carries the token signing secret and lifetimes. RevocationBackend
// selects where the revocation list lives: "postgres" (default) or "redis".
type AuthConfig struct {
	JWTSecret           string
	AccessTokenTTL      time.Duration
	BlockRevocationTTL  time.Duration
	DeleteRevocationTTL time.Duration
	SweepInterval       time.Duration
	RevocationBackend   string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// StorageConfig selects the object storage backend: "minio" (default) or "gcs".
type StorageConfig struct {
	Backend string
	Minio   MinioConfig
	GCS     GCSConfig
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type GCSConfig struct {
	Bucket          string
	ProjectID       string
	CredentialsFile string
}

// QueueConfig selects the broker for the outbound email queue: "none"
// (in-process dispatch, the default), "rabbitmq" or "pubsub".
type QueueConfig struct {
	Backend      string
	EmailChannel string
	RabbitMQ     RabbitMQConfig
	PubSub       PubSubConfig
}

type RabbitMQConfig struct {
	URL             string
	QueueDurable    bool
	QueueAutoDelete bool
	PrefetchCount   int
}

type PubSubConfig struct {
	ProjectID       string
	CredentialsFile string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type ChatbotConfig struct {
	APIURL string
	APIKey string
	Model  string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "modelhub"),
		Password: getEnv("DB_PASSWORD", "password"),
		DBName:   getEnv("DB_NAME", "modelhub_db"),
		UseSSL:   getEnvBool("DB_USE_SSL", false),
	}

	authConfig := AuthConfig{
		JWTSecret:           getEnv("JWT_SECRET", ""),
		AccessTokenTTL:      time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		BlockRevocationTTL:  time.Duration(getEnvInt("BLOCK_REVOCATION_DAYS", 365)) * 24 * time.Hour,
		DeleteRevocationTTL: time.Duration(getEnvInt("DELETE_REVOCATION_DAYS", 7)) * 24 * time.Hour,
		SweepInterval:       time.Duration(getEnvInt("REVOCATION_SWEEP_MINUTES", 60)) * time.Minute,
		RevocationBackend:   getEnv("REVOCATION_BACKEND", "postgres"),
	}

	smtpConfig := SMTPConfig{
		Host:     getEnv("MAIL_SERVER", "localhost"),
		Port:     getEnvInt("MAIL_PORT", 587),
		Username: getEnv("MAIL_USERNAME", ""),
		Password: getEnv("MAIL_PASSWORD", ""),
		From:     getEnv("MAIL_FROM", "no-reply@modelhub.local"),
		FromName: getEnv("MAIL_FROM_NAME", "ModelHub"),
	}

	storageConfig := StorageConfig{
		Backend: getEnv("STORAGE_BACKEND", "minio"),
		Minio: MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "modelhub-uploads"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		GCS: GCSConfig{
			Bucket:          getEnv("GCS_BUCKET", ""),
			ProjectID:       getEnv("GCS_PROJECT_ID", ""),
			CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
		},
	}

	queueConfig := QueueConfig{
		Backend:      getEnv("QUEUE_BACKEND", "none"),
		EmailChannel: getEnv("QUEUE_EMAIL_CHANNEL", "outbound-email"),
		RabbitMQ: RabbitMQConfig{
			URL:             getEnv("RABBITMQ_URL", ""),
			QueueDurable:    getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
			QueueAutoDelete: getEnvBool("RABBITMQ_QUEUE_AUTO_DELETE", false),
			PrefetchCount:   getEnvInt("RABBITMQ_PREFETCH_COUNT", 8),
		},
		PubSub: PubSubConfig{
			ProjectID:       getEnv("PUBSUB_PROJECT_ID", ""),
			CredentialsFile: getEnv("PUBSUB_CREDENTIALS_FILE", ""),
		},
	}

	redisConfig := RedisConfig{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	chatbotConfig := ChatbotConfig{
		APIURL: getEnv("TOGETHER_API_URL", "https://api.together.xyz/v1/completions"),
		APIKey: getEnv("TOGETHER_API_KEY", ""),
		Model:  getEnv("TOGETHER_MODEL", "meta-llama/Llama-3.3-70B-Instruct-Turbo-Free"),
	}

	return Config{
		ProjectName: getEnv("PROJECT_NAME", "ModelHub"),
		ServerPort:  getEnvInt("SERVER_PORT", 8080),
		Database:    dbConfig,
		Auth:        authConfig,
		SMTP:        smtpConfig,
		Storage:     storageConfig,
		Queue:       queueConfig,
		Redis:       redisConfig,
		Chatbot:     chatbotConfig,
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		return valueStr == "true" || valueStr == "1"
	}
	return defaultValue
}
