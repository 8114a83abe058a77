package api

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"decision-eval/backend/internal/decision"
	"decision-eval/backend/internal/store"
)

func (s *Server) handleUpload(c *gin.Context) {
	batchName := strings.TrimSpace(c.PostForm("batch_name"))
	if batchName == "" {
		s.renderError(c, http.StatusBadRequest, errors.New("batch_name is required"))
		return
	}
	ownerName := strings.TrimSpace(c.PostForm("owner_name"))

	fileHeader, err := c.FormFile("questions")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			s.renderError(c, http.StatusBadRequest, errors.New("questions csv file is required"))
		} else {
			s.renderError(c, http.StatusBadRequest, err)
		}
		return
	}

	path, cleanup, err := saveFormFile(fileHeader)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	if cleanup != nil {
		defer cleanup()
	}

	parsed, err := parseQuestionCSV(path)
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	if len(parsed.rows) == 0 {
		s.renderError(c, http.StatusBadRequest, errors.New("no valid questions detected in csv"))
		return
	}

	batch, err := s.db.CreateQuestionBatch(batchName, ownerName, fileHeader.Filename)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	if err := s.db.ReplaceBatchQuestions(batch.ID, parsed.rows); err != nil {
		s.renderError(c, http.StatusInternalServerError, fmt.Errorf("store batch questions: %w", err))
		return
	}
	if err := s.db.UpdateQuestionBatchStats(batch.ID, len(parsed.rows), parsed.skipped, 0); err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	s.audit(c, "batch.uploaded", strconv.FormatUint(uint64(batch.ID), 10),
		fmt.Sprintf("rows=%d skipped=%d file=%s", len(parsed.rows), parsed.skipped, fileHeader.Filename))

	c.JSON(http.StatusOK, UploadResponse{
		BatchID:     batch.ID,
		BatchName:   batch.Name,
		Owner:       batch.Owner,
		RowCount:    len(parsed.rows),
		SkippedRows: parsed.skipped,
	})
}

func (s *Server) handleListBatches(c *gin.Context) {
	offset, limit := pagination(c, 25)
	rows, total, err := s.db.ListQuestionBatches(offset, limit)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	dtos := make([]BatchDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, BatchFromModel(row))
	}
	c.JSON(http.StatusOK, BatchesResponse{Items: dtos, Total: total})
}

func (s *Server) handleGetBatch(c *gin.Context) {
	batch, ok := s.loadBatch(c)
	if !ok {
		return
	}
	processed, err := s.db.CountBatchResults(batch.ID)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	dto := BatchFromModel(*batch)
	dto.ProcessedQuestions = processed
	c.JSON(http.StatusOK, dto)
}

func (s *Server) handleBatchResults(c *gin.Context) {
	batch, ok := s.loadBatch(c)
	if !ok {
		return
	}
	offset, limit := pagination(c, 100)
	sort := c.Query("sort")
	if sort == "" {
		sort = "row_asc"
	}
	rows, total, err := s.db.ListDecisions(store.DecisionQuery{
		BatchID:  batch.ID,
		Decision: c.Query("decision"),
		Verdict:  c.Query("verdict"),
		Category: c.Query("category"),
		Sort:     sort,
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, DecisionsResponse{Items: decisionDTOs(rows), Total: total})
}

func (s *Server) handleRequestStatus(c *gin.Context) {
	requestID, err := parseUintParam(c.Param("id"))
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}

	request, err := s.db.GetBatchRequest(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.renderError(c, http.StatusNotFound, fmt.Errorf("request %d not found", requestID))
		} else {
			s.renderError(c, http.StatusInternalServerError, err)
		}
		return
	}

	c.JSON(http.StatusOK, BatchRequestFromModel(*request))
}

func (s *Server) loadBatch(c *gin.Context) (*store.QuestionBatch, bool) {
	batchID, err := parseUintParam(c.Param("id"))
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return nil, false
	}
	batch, err := s.db.GetQuestionBatch(batchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.renderError(c, http.StatusNotFound, fmt.Errorf("batch %d not found", batchID))
		} else {
			s.renderError(c, http.StatusInternalServerError, err)
		}
		return nil, false
	}
	return batch, true
}

var exportHeaders = []string{
	"id", "batch_id", "row_index", "question", "decision_type", "impact", "risk", "urgency",
	"score", "interpretation", "decision", "validation_verdict", "hidden_risks", "next_step",
}

func (s *Server) handleExportCSV(c *gin.Context) {
	batchID, err := parseBatchQuery(c)
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	rows, _, err := s.db.ListDecisions(store.DecisionQuery{BatchID: batchID, Sort: "row_asc"})
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=decisions-export.csv")
	c.Header("Content-Type", "text/csv")

	writer := csv.NewWriter(c.Writer)
	if err := writer.Write(exportHeaders); err != nil {
		return
	}
	for _, row := range rows {
		res := row.Result()
		batch := ""
		if row.BatchID != nil {
			batch = strconv.FormatUint(uint64(*row.BatchID), 10)
		}
		line := []string{
			row.ID,
			batch,
			strconv.Itoa(row.RowIndex),
			row.Question,
			res.Category.String(),
			strconv.Itoa(res.Score.Impact()),
			strconv.Itoa(res.Score.Risk()),
			strconv.Itoa(res.Score.Urgency()),
			strconv.FormatFloat(res.Score.Value(), 'f', 2, 64),
			string(res.Score.Interpretation()),
			res.Decision.String(),
			res.Verdict.String(),
			strings.Join(res.HiddenRisks, " | "),
			res.NextStep,
		}
		if err := writer.Write(line); err != nil {
			return
		}
	}
	writer.Flush()
}

func (s *Server) handleExportJSON(c *gin.Context) {
	batchID, err := parseBatchQuery(c)
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	rows, _, err := s.db.ListDecisions(store.DecisionQuery{BatchID: batchID, Sort: "row_asc"})
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=decisions-export.json")
	c.JSON(http.StatusOK, decisionDTOs(rows))
}

type csvParseResult struct {
	rows    []store.BatchQuestion
	skipped int
}

type csvColumns struct {
	question int
	metrics  map[string]int
}

var metricColumns = map[string]string{
	"company_stage":   "company_stage",
	"stage":           "company_stage",
	"decision_type":   "decision_type",
	"category":        "decision_type",
	"revenue_monthly": "revenue_monthly",
	"revenue":         "revenue_monthly",
	"churn_rate":      "churn_rate",
	"churn":           "churn_rate",
	"cac":             "cac",
	"ltv":             "ltv",
	"gross_margin":    "gross_margin",
	"burn_rate":       "burn_rate",
}

// parseQuestionCSV reads one question per row. A header naming a question
// column enables metric columns; without one the first column is the
// question. Rows with malformed metrics or too-short questions are skipped.
func parseQuestionCSV(path string) (*csvParseResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var (
		cols            = csvColumns{question: 0}
		headerProcessed bool
		out             = &csvParseResult{}
		rowIndex        int
	)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if len(record) == 0 {
			continue
		}
		record[0] = strings.TrimPrefix(record[0], "\ufeff")

		if !headerProcessed {
			headerProcessed = true
			if detected, ok := detectColumns(record); ok {
				cols = detected
				continue
			}
		}

		if cols.question >= len(record) {
			out.skipped++
			continue
		}
		question := strings.TrimSpace(record[cols.question])
		if question == "" {
			continue
		}
		rowIndex++

		bc, err := contextFromRecord(record, cols)
		if err == nil {
			err = decision.ValidateQuestion(question)
		}
		if err != nil {
			logrus.WithError(err).WithField("row", rowIndex).Debug("skip csv row")
			out.skipped++
			continue
		}

		row := store.BatchQuestion{RowIndex: rowIndex, Question: question}
		row.SetContext(bc)
		out.rows = append(out.rows, row)
	}
	return out, nil
}

func detectColumns(record []string) (csvColumns, bool) {
	cols := csvColumns{question: -1, metrics: map[string]int{}}
	for idx, value := range record {
		normalized := strings.ToLower(strings.TrimSpace(value))
		switch normalized {
		case "question", "questions", "pergunta", "prompt":
			cols.question = idx
			continue
		}
		if field, ok := metricColumns[normalized]; ok {
			cols.metrics[field] = idx
		}
	}
	return cols, cols.question >= 0
}

func contextFromRecord(record []string, cols csvColumns) (decision.Context, error) {
	var bc decision.Context
	value := func(field string) string {
		idx, ok := cols.metrics[field]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}
	number := func(field string) (*float64, error) {
		raw := value(field)
		if raw == "" {
			return nil, nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		return &v, nil
	}

	var err error
	if bc.Stage, err = decision.ParseStage(value("company_stage")); err != nil {
		return bc, err
	}
	if bc.Category, err = decision.ParseCategory(value("decision_type")); err != nil {
		return bc, err
	}
	targets := []struct {
		field string
		dst   **float64
	}{
		{"revenue_monthly", &bc.RevenueMonthly},
		{"churn_rate", &bc.ChurnRate},
		{"cac", &bc.CAC},
		{"ltv", &bc.LTV},
		{"gross_margin", &bc.GrossMargin},
		{"burn_rate", &bc.BurnRate},
	}
	for _, t := range targets {
		if *t.dst, err = number(t.field); err != nil {
			return bc, err
		}
	}
	return bc, bc.Validate()
}
