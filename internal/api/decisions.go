package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"decision-eval/backend/internal/cache"
	"decision-eval/backend/internal/decision"
	"decision-eval/backend/internal/report"
	"decision-eval/backend/internal/scoring"
	"decision-eval/backend/internal/store"
	"decision-eval/backend/internal/util"
)

func (s *Server) handleEvaluateDecision(c *gin.Context) {
	var req EvaluateDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	if err := decision.ValidateQuestion(req.Question); err != nil {
		s.renderError(c, http.StatusUnprocessableEntity, err)
		return
	}
	if err := req.Context.Validate(); err != nil {
		s.renderError(c, http.StatusUnprocessableEntity, err)
		return
	}

	timer := util.StartTimer()
	res, cached := s.evaluate(c.Request.Context(), req.Question, req.Context)

	rec := &store.DecisionRecord{Question: strings.TrimSpace(req.Question), ProcessingTimeMs: timer.ElapsedMs()}
	rec.SetContext(req.Context)
	rec.SetResult(res)
	if err := s.db.SaveDecision(rec); err != nil {
		s.renderError(c, http.StatusInternalServerError, fmt.Errorf("save decision: %w", err))
		return
	}
	s.audit(c, "decision.evaluated", rec.ID, fmt.Sprintf("question=%q score=%.2f decision=%s verdict=%s",
		truncateRunes(rec.Question, 50), rec.Score, rec.Decision, rec.Verdict))

	dto := FromModel(*rec)
	dto.Cached = cached
	c.JSON(http.StatusOK, dto)
}

// evaluate runs the engine, serving deterministic results from the cache
// when one is configured and no generative diagnoser is in play.
func (s *Server) evaluate(ctx context.Context, question string, bc decision.Context) (decision.Result, bool) {
	useCache := s.cache != nil && !s.engine.AIEnabled()
	var key string
	if useCache {
		key = cache.Key(question, bc, s.cacheVersion())
		res, err := s.cache.GetResult(ctx, key)
		if err == nil {
			logrus.WithField("key", key).Debug("decision served from cache")
			return res, true
		}
		if !errors.Is(err, cache.ErrMiss) {
			logrus.WithError(err).Warn("read decision cache")
		}
	}

	res := s.engine.Evaluate(ctx, question, bc)

	if useCache {
		if err := s.cache.SetResult(ctx, key, res); err != nil {
			logrus.WithError(err).Warn("write decision cache")
		}
	}
	return res, false
}

// cacheVersion ties cached results to the knowledge, rules and retrieval
// limit they were computed under.
func (s *Server) cacheVersion() cache.Version {
	return cache.Version{
		Knowledge:      s.knowledge.Fingerprint(),
		Rules:          s.engine.RulesFingerprint(),
		RetrievalLimit: s.engine.RetrievalLimit(),
	}
}

func (s *Server) handleScore(c *gin.Context) {
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	if err := decision.ValidateDimensions(req.Impact, req.Risk, req.Urgency); err != nil {
		s.renderError(c, http.StatusUnprocessableEntity, err)
		return
	}
	score := decision.NewScore(req.Impact, req.Risk, req.Urgency)
	c.JSON(http.StatusOK, ScoreResponse{
		Score:    score,
		Decision: scoring.MapDecision(score.Value()),
		Formula:  decision.Formula,
	})
}

func (s *Server) handleValidate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	action, err := decision.ParseAction(req.Decision)
	if err != nil {
		s.renderError(c, http.StatusUnprocessableEntity, err)
		return
	}
	if err := decision.ValidateDimensions(req.Score.Impact, req.Score.Risk, req.Score.Urgency); err != nil {
		s.renderError(c, http.StatusUnprocessableEntity, err)
		return
	}
	if err := req.Context.Validate(); err != nil {
		s.renderError(c, http.StatusUnprocessableEntity, err)
		return
	}
	score := decision.NewScore(req.Score.Impact, req.Score.Risk, req.Score.Urgency)
	v := s.engine.CrossValidate(action, req.Diagnosis, score, req.Context)
	s.audit(c, "decision.validated", "", fmt.Sprintf("decision=%s verdict=%s", action, v.Verdict))
	c.JSON(http.StatusOK, v)
}

func (s *Server) handleListDecisions(c *gin.Context) {
	offset, limit := pagination(c, 20)
	batchID, err := parseBatchQuery(c)
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	rows, total, err := s.db.ListDecisions(store.DecisionQuery{
		Category: c.Query("category"),
		Decision: c.Query("decision"),
		Verdict:  c.Query("verdict"),
		BatchID:  batchID,
		Sort:     c.Query("sort"),
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, DecisionsResponse{Items: decisionDTOs(rows), Total: total})
}

func (s *Server) handleGetDecision(c *gin.Context) {
	rec, ok := s.loadDecision(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, FromModel(*rec))
}

func (s *Server) handleDecisionReport(c *gin.Context) {
	rec, ok := s.loadDecision(c)
	if !ok {
		return
	}
	s.audit(c, "decision.report", rec.ID, "")
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown(rec.Result())))
}

func (s *Server) handleDecisionAudit(c *gin.Context) {
	rec, ok := s.loadDecision(c)
	if !ok {
		return
	}
	rows, err := s.db.ListAudit(rec.ID)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	items := make([]AuditDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, auditFromModel(row))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) loadDecision(c *gin.Context) (*store.DecisionRecord, bool) {
	id := strings.TrimSpace(c.Param("id"))
	rec, err := s.db.GetDecision(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.renderError(c, http.StatusNotFound, fmt.Errorf("decision %s not found", id))
		} else {
			s.renderError(c, http.StatusInternalServerError, err)
		}
		return nil, false
	}
	return rec, true
}

func decisionDTOs(rows []store.DecisionRecord) []DecisionDTO {
	dtos := make([]DecisionDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, FromModel(row))
	}
	return dtos
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
