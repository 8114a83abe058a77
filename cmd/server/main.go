package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"decision-eval/backend/internal/ai"
	"decision-eval/backend/internal/api"
	"decision-eval/backend/internal/cache"
	"decision-eval/backend/internal/engine"
)

func main() {
	baseDir, err := os.Getwd()
	if err != nil {
		logrus.Fatalf("determine working directory: %v", err)
	}

	dataDir := filepath.Join(baseDir, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		logrus.Fatalf("create data directory: %v", err)
	}

	if level, err := logrus.ParseLevel(strings.TrimSpace(os.Getenv("LOG_LEVEL"))); err == nil {
		logrus.SetLevel(level)
	}

	aiCfg := ai.Config{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		Model:   os.Getenv("OPENAI_MODEL"),
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
	}
	if temp := os.Getenv("OPENAI_TEMPERATURE"); temp != "" {
		if v, err := strconv.ParseFloat(temp, 64); err == nil {
			aiCfg.Temperature = v
		}
	}
	if maxTokens := os.Getenv("OPENAI_MAX_TOKENS"); maxTokens != "" {
		if v, err := strconv.Atoi(maxTokens); err == nil {
			aiCfg.MaxTokens = v
		}
	}

	retry := ai.RetryPolicy{}
	if v := strings.TrimSpace(os.Getenv("OPENAI_RETRIES")); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			retry.Attempts = val
		}
	}

	retrievalLimit := 3
	if v := strings.TrimSpace(os.Getenv("RETRIEVAL_LIMIT")); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			retrievalLimit = val
		}
	}

	workers := 0
	if v := strings.TrimSpace(os.Getenv("WORKERS")); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			workers = val
		}
	}

	var redisOpts *cache.Options
	if addr := strings.TrimSpace(os.Getenv("REDIS_ADDR")); addr != "" {
		opts := cache.DefaultOptions()
		opts.Address = addr
		opts.Password = os.Getenv("REDIS_PASSWORD")
		if db := os.Getenv("REDIS_DB"); db != "" {
			if v, err := strconv.Atoi(db); err == nil {
				opts.DB = v
			}
		}
		if ttl := os.Getenv("CACHE_TTL"); ttl != "" {
			if d, err := time.ParseDuration(ttl); err == nil {
				opts.TTL = d
			}
		}
		redisOpts = &opts
	}

	origins := []string{
		"http://localhost:1000",
		"http://127.0.0.1:1000",
	}
	if v := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); v != "" {
		origins = origins[:0]
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
	}

	disableAI := strings.EqualFold(strings.TrimSpace(os.Getenv("DISABLE_AI")), "true")

	cfg := api.Config{
		DBPath:         filepath.Join(dataDir, "decisions.db"),
		AllowedOrigins: origins,
		Engine: engine.Setup{
			KnowledgePath:  strings.TrimSpace(os.Getenv("KNOWLEDGE_PATH")),
			RulesPath:      strings.TrimSpace(os.Getenv("RULES_PATH")),
			RetrievalLimit: retrievalLimit,
			AI:             aiCfg,
			DisableAI:      disableAI,
			Retry:          retry,
		},
		Redis:   redisOpts,
		Workers: workers,
	}

	if override := strings.TrimSpace(os.Getenv("DECISION_DB_PATH")); override != "" {
		cfg.DBPath = override
	}

	server, err := api.NewServer(cfg)
	if err != nil {
		logrus.Fatalf("create server: %v", err)
	}
	defer server.Close()

	router, err := server.Router()
	if err != nil {
		logrus.Fatalf("configure router: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "2000"
	}

	logrus.Infof("starting decision-eval backend on :%s", port)
	if err := router.Run(":" + port); err != nil {
		logrus.Fatalf("server exited: %v", err)
	}
}
