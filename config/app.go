package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// App holds the orchestrator settings read from the environment.
type App struct {
	Port     string
	LogLevel string

	AgentTimeout   time.Duration
	SummaryTimeout time.Duration
	EnrichTimeout  time.Duration
	LockTTL        time.Duration

	LLMProvider    string // vertex|openai
	VertexProject  string
	VertexLocation string
	VertexModel    string
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	OpenAIModel    string
	LLMTimeout     time.Duration
	LLMMaxAttempts int

	SearchAPIKey   string
	SearchCX       string
	SearchCacheTTL time.Duration

	ReportBucket     string
	ReportWorkers    int
	QuestionBankPath string
	RedisKeyPrefix   string
}

func LoadApp() (App, error) {
	var errs []string
	dur := func(key string, def time.Duration) time.Duration {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			return def
		}
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Sprintf("%s: invalid duration %q", key, v))
			return def
		}
		return d
	}
	num := func(key string, def int) int {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			return def
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			errs = append(errs, fmt.Sprintf("%s: invalid number %q", key, v))
			return def
		}
		return n
	}

	a := App{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AgentTimeout:   dur("AGENT_TIMEOUT", 15*time.Second),
		SummaryTimeout: dur("SUMMARY_TIMEOUT", 45*time.Second),
		EnrichTimeout:  dur("ENRICH_TIMEOUT", 10*time.Second),
		LockTTL:        dur("SESSION_LOCK_TTL", 2*time.Minute),

		LLMProvider:    strings.ToLower(getEnv("LLM_PROVIDER", "vertex")),
		VertexProject:  getEnv("VERTEX_PROJECT", os.Getenv("GOOGLE_CLOUD_PROJECT")),
		VertexLocation: getEnv("VERTEX_LOCATION", "us-central1"),
		VertexModel:    getEnv("VERTEX_MODEL", "gemini-2.0-flash"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:  os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		LLMTimeout:     dur("LLM_TIMEOUT", 20*time.Second),
		LLMMaxAttempts: num("LLM_MAX_ATTEMPTS", 2),

		SearchAPIKey:   os.Getenv("SEARCH_API_KEY"),
		SearchCX:       os.Getenv("SEARCH_CX"),
		SearchCacheTTL: dur("SEARCH_CACHE_TTL", 24*time.Hour),

		ReportBucket:     os.Getenv("REPORT_BUCKET"),
		ReportWorkers:    num("REPORT_WORKERS", 2),
		QuestionBankPath: os.Getenv("QUESTION_BANK_PATH"),
		RedisKeyPrefix:   getEnv("REDIS_KEY_PREFIX", "yoointerview:"),
	}

	switch a.LLMProvider {
	case "vertex":
		if a.VertexProject == "" {
			errs = append(errs, "VERTEX_PROJECT is required when LLM_PROVIDER=vertex")
		}
	case "openai":
		if a.OpenAIAPIKey == "" {
			errs = append(errs, "OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
	default:
		errs = append(errs, fmt.Sprintf("LLM_PROVIDER: unknown provider %q", a.LLMProvider))
	}

	if len(errs) > 0 {
		return a, fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return a, nil
}

// SearchEnabled reports whether resource enrichment is configured.
func (a App) SearchEnabled() bool { return a.SearchAPIKey != "" && a.SearchCX != "" }

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
