package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"decision-eval/backend/internal/cache"
	"decision-eval/backend/internal/decision"
	"decision-eval/backend/internal/engine"
	"decision-eval/backend/internal/knowledge"
	"decision-eval/backend/internal/store"
)

// Config defines server dependencies.
type Config struct {
	DBPath         string
	AllowedOrigins []string
	SilentDB       bool
	Engine         engine.Setup
	// Redis enables the result cache when non-nil.
	Redis   *cache.Options
	Workers int
}

// Server wires HTTP handlers with persistence and the decision engine.
type Server struct {
	db             *store.Database
	engine         *engine.Engine
	knowledge      *knowledge.StaticStore
	cache          *cache.Cache
	allowedOrigins []string
	workers        int
	evalNotifier   *EvaluationNotifier
	jobMu          sync.Mutex
	activeJob      *evaluationJob
}

// NewServer constructs the API server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.DBPath == "" {
		return nil, errors.New("db path required")
	}
	db, err := store.Open(cfg.DBPath, cfg.SilentDB)
	if err != nil {
		return nil, err
	}

	eng, kb, err := engine.Build(cfg.Engine)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("decision engine: %w", err)
	}

	var resultCache *cache.Cache
	if cfg.Redis != nil {
		resultCache = cache.New(*cfg.Redis)
		logrus.WithFields(logrus.Fields{
			"addr": cfg.Redis.Address,
			"ttl":  cfg.Redis.TTL,
		}).Info("redis result cache enabled")
	}

	return &Server{
		db:             db,
		engine:         eng,
		knowledge:      kb,
		cache:          resultCache,
		allowedOrigins: cfg.AllowedOrigins,
		workers:        cfg.Workers,
		evalNotifier:   NewEvaluationNotifier(),
	}, nil
}

// Close releases the database and cache connections.
func (s *Server) Close() error {
	s.jobMu.Lock()
	if s.activeJob != nil {
		s.activeJob.cancel()
	}
	s.jobMu.Unlock()
	return errors.Join(s.cache.Close(), s.db.Close())
}

// Router configures gin routes.
func (s *Server) Router() (*gin.Engine, error) {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowCredentials = true
	if len(s.allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = s.allowedOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsCfg.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	r.GET("/api/healthz", s.handleHealth)
	r.GET("/api/config", s.handleConfig)

	api := r.Group("/api")
	{
		api.POST("/decisions/evaluate", s.handleEvaluateDecision)
		api.POST("/decisions/score", s.handleScore)
		api.POST("/decisions/validate", s.handleValidate)
		api.GET("/decisions", s.handleListDecisions)
		api.GET("/decisions/:id", s.handleGetDecision)
		api.GET("/decisions/:id/report", s.handleDecisionReport)
		api.GET("/decisions/:id/audit", s.handleDecisionAudit)

		api.GET("/knowledge/namespaces", s.handleListNamespaces)
		api.GET("/knowledge/namespaces/:id", s.handleGetNamespace)
		api.GET("/knowledge/namespaces/:id/search", s.handleSearchNamespace)
		api.GET("/knowledge/principles", s.handlePrinciples)

		api.POST("/batches", s.handleUpload)
		api.GET("/batches", s.handleListBatches)
		api.GET("/batches/:id", s.handleGetBatch)
		api.GET("/batches/:id/results", s.handleBatchResults)
		api.GET("/requests/:id/status", s.handleRequestStatus)

		api.POST("/jobs", s.handleStartJob)
		api.GET("/jobs/status", s.handleJobStatus)
		api.DELETE("/jobs/:jobID", s.handleCancelJob)
		api.GET("/jobs/stream", s.handleJobStream)

		api.GET("/export.csv", s.handleExportCSV)
		api.GET("/export.json", s.handleExportJSON)
	}

	return r, nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ai_enabled":            s.engine.AIEnabled(),
		"cache_enabled":         s.cache != nil,
		"custom_rules":          s.engine.RuleCount(),
		"rules_fingerprint":     s.engine.RulesFingerprint(),
		"retrieval_limit":       s.engine.RetrievalLimit(),
		"knowledge_fingerprint": s.knowledge.Fingerprint(),
		"namespaces":            s.knowledge.Namespaces(),
		"formula":               decision.Formula,
	})
}

func (s *Server) handleJobStream(c *gin.Context) {
	upgrader := websocket.Upgrader{
		HandshakeTimeout:  5 * time.Second,
		EnableCompression: true,
		CheckOrigin: func(r *http.Request) bool {
			if len(s.allowedOrigins) == 0 {
				return true
			}
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			for _, allowed := range s.allowedOrigins {
				if strings.EqualFold(origin, allowed) {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("upgrade websocket")
		return
	}

	sub := s.evalNotifier.Subscribe(conn)
	logrus.WithField("remote", conn.RemoteAddr().String()).Info("evaluation websocket connected")
	done := make(chan struct{})
	defer func() {
		close(done)
		s.evalNotifier.Unsubscribe(sub)
	}()
	go s.evalNotifier.KeepAlive(sub, done)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithField("remote", conn.RemoteAddr().String()).Info("evaluation websocket closed")
			} else {
				logrus.WithError(err).Warn("evaluation websocket unexpected close")
			}
			break
		}
	}
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

// audit records an action; failures are logged and never fail the request.
func (s *Server) audit(c *gin.Context, action, resourceID, details string) {
	entry := &store.AuditLog{
		Action:     action,
		ResourceID: resourceID,
		RemoteAddr: c.ClientIP(),
		Details:    details,
	}
	if err := s.db.RecordAudit(entry); err != nil {
		logrus.WithError(err).WithField("action", action).Warn("record audit entry")
	}
}

func saveFormFile(header *multipart.FileHeader) (string, func(), error) {
	if header == nil {
		return "", nil, errors.New("file header is nil")
	}
	src, err := header.Open()
	if err != nil {
		return "", nil, err
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		return "", nil, err
	}
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, err
	}
	if err := tmp.Close(); err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }
	return tmp.Name(), cleanup, nil
}

func parseUintParam(value string) (uint, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, errors.New("identifier is required")
	}
	parsed, err := strconv.ParseUint(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid identifier: %w", err)
	}
	if parsed == 0 {
		return 0, errors.New("identifier must be greater than zero")
	}
	return uint(parsed), nil
}

// parseBatchQuery reads an optional batch_id (or batchId) query value.
func parseBatchQuery(c *gin.Context) (uint, error) {
	value := firstNonEmpty(c.Query("batch_id"), c.Query("batchId"))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return 0, fmt.Errorf("invalid batch_id: %s", value)
	}
	return uint(parsed), nil
}

// pagination reads page/pageSize, falling back to limit/offset.
func pagination(c *gin.Context, defaultSize int) (offset, limit int) {
	limit, _ = strconv.Atoi(firstNonEmpty(c.Query("pageSize"), c.Query("limit")))
	if limit <= 0 {
		limit = defaultSize
	}
	if limit > 500 {
		limit = 500
	}
	if raw := c.Query("offset"); raw != "" {
		offset, _ = strconv.Atoi(raw)
	} else {
		page, _ := strconv.Atoi(c.Query("page"))
		offset = page * limit
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
