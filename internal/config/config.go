// 서비스 전체 설정을 환경변수에서 로드
//
// main에서 godotenv로 .env 파일을 먼저 읽은 뒤 Load()를 호출한다.
// 각 필드는 env 태그의 환경변수 이름과 envDefault 기본값을 가진다.

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Worker   WorkerConfig
	LLM      LLMConfig
	MCP      MCPConfig
	Scan     ScanConfig
}

type ServerConfig struct {
	Port               string   `env:"PORT" envDefault:"8080"`
	Mode               string   `env:"GIN_MODE" envDefault:"debug"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

type LoggerConfig struct {
	Level    string `env:"LOG_LEVEL" envDefault:"info"`
	Mode     string `env:"LOG_MODE" envDefault:"development"`
	Encoding string `env:"LOG_ENCODING" envDefault:"console"`
}

// PostgresConfig - DATABASE_URL 이 없으면 PG* 값으로 DSN 조립
type PostgresConfig struct {
	DatabaseURL string `env:"DATABASE_URL"`
	Host        string `env:"PGHOST" envDefault:"localhost"`
	Port        string `env:"PGPORT" envDefault:"5432"`
	User        string `env:"PGUSER"`
	Password    string `env:"PGPASSWORD"`
	Database    string `env:"PGDATABASE"`
	SSLMode     string `env:"PGSSLMODE" envDefault:"disable"`
}

type RedisConfig struct {
	Addr           string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password       string        `env:"REDIS_PASSWORD"`
	DB             int           `env:"REDIS_DB" envDefault:"0"`
	QueueKey       string        `env:"REMEDIATION_QUEUE" envDefault:"remediation_queue"`
	ProcessingKey  string        `env:"REMEDIATION_PROCESSING_QUEUE" envDefault:"remediation_queue:processing"`
	IdempotencyTTL time.Duration `env:"REMEDIATION_IDEMPOTENCY_TTL" envDefault:"24h"`
}

// WorkerConfig - Redis 블로킹 명령의 타임아웃은 초 단위라 PopTimeout 은 최소 1s
type WorkerConfig struct {
	PopTimeout time.Duration `env:"WORKER_POP_TIMEOUT" envDefault:"1s"`
}

// LLMConfig - Provider 는 ollama | gemini
type LLMConfig struct {
	Provider     string        `env:"LLM_PROVIDER" envDefault:"ollama"`
	OllamaURL    string        `env:"OLLAMA_API_URL" envDefault:"http://localhost:11434"`
	OllamaModel  string        `env:"OLLAMA_MODEL" envDefault:"llama2"`
	GeminiAPIKey string        `env:"AI_API_KEY"`
	GeminiModel  string        `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	Timeout      time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`
}

// MCPConfig - 도메인별 백엔드(MCP 서버) 주소
type MCPConfig struct {
	KubernetesURL         string        `env:"MCP_KUBERNETES_HTTP_URL" envDefault:"http://localhost:3001"`
	PrometheusURL         string        `env:"MCP_PROMETHEUS_HTTP_URL" envDefault:"http://localhost:3002"`
	PrometheusToolsConfig string        `env:"MCP_PROMETHEUS_TOOLS_CONFIG"`
	GrafanaURL            string        `env:"MCP_GRAFANA_HTTP_URL" envDefault:"http://localhost:3003"`
	ESXiURL               string        `env:"MCP_ESXI_HTTP_URL" envDefault:"http://localhost:3004"`
	HealthTimeout         time.Duration `env:"MCP_HEALTH_TIMEOUT" envDefault:"5s"`
	CallTimeout           time.Duration `env:"MCP_CALL_TIMEOUT" envDefault:"30s"`
}

type ScanConfig struct {
	DefaultSubnet string        `env:"SCAN_DEFAULT_SUBNET" envDefault:"192.168.1.0/24"`
	Ports         []int         `env:"SCAN_PORTS" envSeparator:"," envDefault:"22,80,443,902,3306,5432,6379,6443,8080,9090,10250"`
	DialTimeout   time.Duration `env:"SCAN_DIAL_TIMEOUT" envDefault:"500ms"`
	Concurrency   int           `env:"SCAN_CONCURRENCY" envDefault:"64"`
	MaxHosts      int           `env:"SCAN_MAX_HOSTS" envDefault:"1024"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse env config: %w", err)
	}

	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	switch cfg.LLM.Provider {
	case "ollama", "gemini":
	default:
		return Config{}, fmt.Errorf("unsupported LLM_PROVIDER: %q", cfg.LLM.Provider)
	}
	if cfg.Worker.PopTimeout <= 0 {
		cfg.Worker.PopTimeout = time.Second
	}
	if cfg.Worker.PopTimeout < time.Second {
		return Config{}, fmt.Errorf("WORKER_POP_TIMEOUT must be at least 1s, got %s", cfg.Worker.PopTimeout)
	}
	return cfg, nil
}
