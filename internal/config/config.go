package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config armazena as configurações da aplicação
type Config struct {
	Port     string
	GinMode  string
	LogLevel string
	LogJSON  bool

	// Token estático da API (rotas protegidas)
	TokenAPI string

	// Banco de dados
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Provedores de IA
	LLMProvider    string // "deepseek" ou "gemini"
	DeepSeekAPIKey string
	GeminiAPIKey   string
	OpenAIAPIKey   string

	// Vector store
	QdrantURL    string
	QdrantAPIKey string

	// Estimativa: número de amostras independentes por rodada
	SampleCount int

	// Ingestão
	ChunkSize    int
	ChunkOverlap int
	BatchSize    int
	MaxRetries   int
	RetryDelay   time.Duration

	// Timeout de chamadas externas
	RequestTimeout time.Duration
}

// ErrMissingAPIKey indica que a chave do provedor configurado não foi definida
var ErrMissingAPIKey = errors.New("chave de API do provedor não configurada")

// Load carrega as configurações do ambiente
func Load() (*Config, error) {
	// Tenta carregar .env de múltiplos locais
	_ = godotenv.Load()          // ./backend/.env
	_ = godotenv.Load("../.env") // ./.env (raiz do projeto)

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", "debug"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogJSON:  getEnvBool("LOG_JSON", true),

		TokenAPI: os.Getenv("TOKEN_API"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "teamsync"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "teamsync"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		LLMProvider:    getEnv("LLM_PROVIDER", "deepseek"),
		DeepSeekAPIKey: os.Getenv("DEEPSEEK_API_KEY"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),

		QdrantURL:    getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantAPIKey: os.Getenv("QDRANT_API_KEY"),

		SampleCount: getEnvInt("ESTIMATE_SAMPLES", 3),

		ChunkSize:    getEnvInt("CHUNK_SIZE", 500),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 100),
		BatchSize:    getEnvInt("UPLOAD_BATCH_SIZE", 5),
		MaxRetries:   getEnvInt("UPLOAD_MAX_RETRIES", 3),
		RetryDelay:   getEnvDuration("UPLOAD_RETRY_DELAY", 2*time.Second),

		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
	}

	// Validações obrigatórias
	if cfg.TokenAPI == "" {
		return nil, errors.New("TOKEN_API não configurado")
	}

	switch cfg.LLMProvider {
	case "deepseek", "default":
		if cfg.DeepSeekAPIKey == "" {
			return nil, ErrMissingAPIKey
		}
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, ErrMissingAPIKey
		}
	default:
		return nil, errors.New("LLM_PROVIDER inválido: " + cfg.LLMProvider)
	}

	// Sanidade dos parâmetros de ingestão
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, errors.New("CHUNK_OVERLAP deve ser menor que CHUNK_SIZE")
	}
	if cfg.SampleCount < 1 {
		cfg.SampleCount = 1
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
