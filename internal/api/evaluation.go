package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"decision-eval/backend/internal/store"
	"decision-eval/backend/internal/util"
)

const (
	evaluationThrottle = 500 * time.Millisecond
	defaultChunkSize   = 1000
	maxChunkSize       = 5000
)

// evaluationJob tracks the state of a running batch evaluation.
type evaluationJob struct {
	id        string
	cancel    context.CancelFunc
	startedAt time.Time
	total     int64
	batchID   uint
	batchName string
	requestID uint
	done      chan struct{}
}

type rowResult struct {
	Record store.DecisionRecord
	Cached bool
}

func (s *Server) handleStartJob(c *gin.Context) {
	var req EvaluateBatchRequest
	if c.Request.Body != nil {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			s.renderError(c, http.StatusBadRequest, err)
			return
		}
	}
	if req.BatchID == 0 {
		s.renderError(c, http.StatusBadRequest, errors.New("batch_id is required"))
		return
	}

	batch, err := s.db.GetQuestionBatch(req.BatchID)
	if err != nil {
		s.renderError(c, http.StatusNotFound, fmt.Errorf("batch %d not found", req.BatchID))
		return
	}

	total, err := s.db.CountBatchQuestions(batch.ID)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	if total == 0 {
		s.renderError(c, http.StatusBadRequest, errors.New("batch has no questions to evaluate"))
		return
	}

	s.jobMu.Lock()
	defer s.jobMu.Unlock()
	if s.activeJob != nil {
		s.renderError(c, http.StatusConflict, errors.New("evaluation already running"))
		return
	}

	job, err := s.startEvaluation(req, batch, int64(total))
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	s.audit(c, "batch.evaluation_started", job.id, fmt.Sprintf("batch_id=%d total=%d", batch.ID, total))

	c.JSON(http.StatusAccepted, StartEvaluationResponse{
		JobID:     job.id,
		BatchID:   batch.ID,
		RequestID: job.requestID,
		Total:     job.total,
		StartedAt: job.startedAt,
	})
}

func (s *Server) handleCancelJob(c *gin.Context) {
	jobID := strings.TrimSpace(c.Param("jobID"))
	if jobID == "" {
		s.renderError(c, http.StatusBadRequest, errors.New("job id required"))
		return
	}

	s.jobMu.Lock()
	defer s.jobMu.Unlock()
	if s.activeJob == nil {
		s.renderError(c, http.StatusNotFound, errors.New("no evaluation running"))
		return
	}
	if s.activeJob.id != jobID {
		s.renderError(c, http.StatusNotFound, errors.New("job not found"))
		return
	}

	s.activeJob.cancel()
	logrus.WithField("job", jobID).Info("evaluation cancellation requested")
	s.evalNotifier.Broadcast(EvaluationEvent{
		Type:    "progress",
		JobID:   s.activeJob.id,
		BatchID: s.activeJob.batchID,
		Total:   s.activeJob.total,
		Message: "cancellation requested",
	})
	s.audit(c, "batch.evaluation_cancelled", jobID, "")

	c.JSON(http.StatusAccepted, gin.H{"status": "cancelling"})
}

func (s *Server) handleJobStatus(c *gin.Context) {
	s.jobMu.Lock()
	job := s.activeJob
	s.jobMu.Unlock()

	resp := EvaluateStatusResponse{Running: job != nil}
	if job != nil {
		resp.JobID = job.id
		resp.BatchID = job.batchID
		resp.RequestID = job.requestID
		resp.Total = job.total
	}

	if status := s.evalNotifier.LastStatus(); status != nil {
		resp.State = status.Type
		resp.Message = status.Message
		if resp.JobID == "" {
			resp.JobID = status.JobID
		}
		if status.Processed != 0 {
			resp.Processed = status.Processed
		}
		if status.Total != 0 {
			resp.Total = status.Total
		}
		if status.BatchID != 0 {
			resp.BatchID = status.BatchID
		}
		if status.Decision != nil {
			last := *status.Decision
			resp.LastDecision = &last
		}
	}

	c.JSON(http.StatusOK, resp)
}

// startEvaluation launches a new asynchronous evaluation job. The caller must
// hold s.jobMu prior to invoking this function.
func (s *Server) startEvaluation(req EvaluateBatchRequest, batch *store.QuestionBatch, total int64) (*evaluationJob, error) {
	if s.activeJob != nil {
		return nil, errors.New("evaluation already running")
	}

	ctx, cancel := context.WithCancel(context.Background())
	job := &evaluationJob{
		id:        uuid.NewString(),
		cancel:    cancel,
		startedAt: time.Now().UTC(),
		total:     total,
		batchID:   batch.ID,
		batchName: batch.Name,
		done:      make(chan struct{}),
	}

	request, err := s.db.CreateBatchRequest(batch.ID, "evaluate", store.RequestRunning, job.id)
	if err != nil {
		job.cancel()
		return nil, fmt.Errorf("create batch request: %w", err)
	}
	job.requestID = request.ID

	s.activeJob = job
	go s.runEvaluation(ctx, job, req)
	return job, nil
}

func (s *Server) runEvaluation(ctx context.Context, job *evaluationJob, req EvaluateBatchRequest) {
	finishStatus := store.RequestCompleted

	defer func() {
		if err := s.db.UpdateBatchRequest(job.requestID, finishStatus); err != nil {
			logrus.WithError(err).WithField("batch_id", job.batchID).Warn("update batch request")
		}
		if err := s.db.UpdateBatchProcessingInfo(job.batchID); err != nil {
			logrus.WithError(err).WithField("batch_id", job.batchID).Warn("refresh batch processing info")
		}
		s.jobMu.Lock()
		s.activeJob = nil
		s.jobMu.Unlock()
		close(job.done)
	}()

	fail := func(message string, err error) {
		finishStatus = store.RequestFailed
		s.evalNotifier.Broadcast(EvaluationEvent{
			Type:    "error",
			JobID:   job.id,
			BatchID: job.batchID,
			Message: fmt.Sprintf("%s: %v", message, err),
		})
		logrus.WithError(err).WithField("job", job.id).Error(message)
		job.cancel()
	}

	skipExisting := req.Resume && !req.Force
	existing := make(map[int]struct{})
	totalProcessed := 0
	if skipExisting {
		evaluated, err := s.db.EvaluatedRowsForBatch(job.batchID)
		if err != nil {
			fail("load existing decisions", err)
			return
		}
		for _, row := range evaluated {
			existing[row] = struct{}{}
		}
		totalProcessed = len(existing)
	}

	workerCount := s.determineWorkerCount()
	logrus.WithFields(logrus.Fields{
		"job":        job.id,
		"batch_id":   job.batchID,
		"batch_name": job.batchName,
		"total":      job.total,
		"processed":  totalProcessed,
		"resume":     req.Resume,
		"workers":    workerCount,
	}).Info("evaluation job started")

	s.evalNotifier.Broadcast(EvaluationEvent{
		Type:      "started",
		JobID:     job.id,
		BatchID:   job.batchID,
		Total:     job.total,
		Processed: totalProcessed,
		Message:   "evaluation started",
	})

	chunkSize := req.Limit
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if chunkSize > maxChunkSize {
		chunkSize = maxChunkSize
	}

	taskCh := make(chan store.BatchQuestion, workerCount*4)
	resultCh := make(chan rowResult, workerCount*4)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(taskCh)
		offset := req.Offset
		for {
			rows, err := s.db.ListBatchQuestions(job.batchID, offset, chunkSize)
			if err != nil {
				return fmt.Errorf("list batch questions: %w", err)
			}
			for _, row := range rows {
				if _, ok := existing[row.RowIndex]; ok {
					continue
				}
				select {
				case taskCh <- row:
				case <-gctx.Done():
					return nil
				}
			}
			offset += len(rows)
			if len(rows) < chunkSize {
				return nil
			}
		}
	})
	for i := 0; i < workerCount; i++ {
		g.Go(func() error {
			for task := range taskCh {
				res := s.evaluateRow(gctx, job.batchID, task)
				select {
				case resultCh <- res:
				case <-gctx.Done():
					return nil
				}
			}
			return nil
		})
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- g.Wait()
		close(resultCh)
	}()

	var (
		lastEmit     time.Time
		hasPending   bool
		pendingEvent EvaluationEvent
	)
	flush := func(force bool) {
		if !hasPending {
			return
		}
		if !force && !lastEmit.IsZero() && time.Since(lastEmit) < evaluationThrottle {
			return
		}
		s.evalNotifier.Broadcast(pendingEvent)
		lastEmit = time.Now()
		hasPending = false
	}

	for res := range resultCh {
		if ctx.Err() != nil {
			continue
		}
		rec := res.Record
		if err := s.db.SaveDecision(&rec); err != nil {
			flush(true)
			fail("save decision", err)
			continue
		}
		totalProcessed++
		dto := FromModel(rec)
		dto.Cached = res.Cached
		pendingEvent = EvaluationEvent{
			Type:      "decision",
			JobID:     job.id,
			BatchID:   job.batchID,
			Total:     job.total,
			Processed: totalProcessed,
			Decision:  &dto,
		}
		hasPending = true
		logrus.WithFields(logrus.Fields{
			"job":           job.id,
			"row":           rec.RowIndex,
			"processing_ms": rec.ProcessingTimeMs,
		}).Debug("batch row evaluated")
		flush(false)
	}
	flush(true)

	if err := <-waitErr; err != nil && finishStatus != store.RequestFailed {
		fail("evaluate batch", err)
	}
	if finishStatus == store.RequestFailed {
		return
	}
	if ctx.Err() != nil {
		finishStatus = store.RequestCancelled
		s.evalNotifier.Broadcast(EvaluationEvent{
			Type:      "cancelled",
			JobID:     job.id,
			BatchID:   job.batchID,
			Total:     job.total,
			Processed: totalProcessed,
			Message:   "evaluation cancelled",
		})
		logrus.WithField("job", job.id).WithField("batch_id", job.batchID).Warn("evaluation job cancelled")
		return
	}
	job.cancel()

	duration := time.Since(job.startedAt).Round(time.Millisecond)
	s.evalNotifier.Broadcast(EvaluationEvent{
		Type:      "complete",
		JobID:     job.id,
		BatchID:   job.batchID,
		Total:     job.total,
		Processed: totalProcessed,
		Message:   fmt.Sprintf("evaluation finished in %s", duration),
	})
	logrus.WithFields(logrus.Fields{
		"job":       job.id,
		"batch_id":  job.batchID,
		"processed": totalProcessed,
		"duration":  duration,
	}).Info("evaluation job completed")
}

func (s *Server) evaluateRow(ctx context.Context, batchID uint, row store.BatchQuestion) rowResult {
	timer := util.StartTimer()
	bc := row.Context()
	res, cached := s.evaluate(ctx, row.Question, bc)

	id := batchID
	rec := store.DecisionRecord{BatchID: &id, RowIndex: row.RowIndex, Question: row.Question}
	rec.SetContext(bc)
	rec.SetResult(res)
	rec.ProcessingTimeMs = timer.ElapsedMs()
	return rowResult{Record: rec, Cached: cached}
}

func (s *Server) determineWorkerCount() int {
	if s.workers > 0 {
		return s.workers
	}
	workers := runtime.NumCPU()
	if workers < 2 {
		workers = 2
	}
	if workers > 12 {
		workers = 12
	}
	return workers
}
