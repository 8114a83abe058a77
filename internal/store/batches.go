package store

import (
	"time"

	"gorm.io/gorm"
)

// CreateQuestionBatch inserts a new batch record.
func (d *Database) CreateQuestionBatch(name, owner, filename string) (*QuestionBatch, error) {
	batch := &QuestionBatch{Name: name, Owner: owner, OriginalFilename: filename}
	if err := d.gorm.Create(batch).Error; err != nil {
		return nil, err
	}
	return batch, nil
}

// UpdateQuestionBatchStats updates aggregate statistics for a batch.
func (d *Database) UpdateQuestionBatchStats(batchID uint, rowCount, skipped, processed int) error {
	return d.gorm.Model(&QuestionBatch{}).
		Where("id = ?", batchID).
		Updates(map[string]any{
			"row_count":           rowCount,
			"skipped_rows":        skipped,
			"processed_questions": processed,
		}).Error
}

// ReplaceBatchQuestions replaces all rows associated with a batch.
func (d *Database) ReplaceBatchQuestions(batchID uint, rows []BatchQuestion) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("batch_id = ?", batchID).Delete(&BatchQuestion{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		for i := range rows {
			rows[i].BatchID = batchID
		}
		return tx.CreateInBatches(rows, 250).Error
	})
}

// CountBatchQuestions returns the number of rows in a batch.
func (d *Database) CountBatchQuestions(batchID uint) (int, error) {
	var count int64
	if err := d.gorm.Model(&BatchQuestion{}).Where("batch_id = ?", batchID).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// ListBatchQuestions returns a page of batch rows in upload order.
func (d *Database) ListBatchQuestions(batchID uint, offset, limit int) ([]BatchQuestion, error) {
	query := d.gorm.Where("batch_id = ?", batchID).Order("row_index ASC").Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []BatchQuestion
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountBatchResults returns how many rows of a batch already have a decision.
func (d *Database) CountBatchResults(batchID uint) (int, error) {
	var count int64
	if err := d.gorm.Model(&DecisionRecord{}).Where("batch_id = ?", batchID).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// EvaluatedRowsForBatch returns the row indexes that already have a decision.
func (d *Database) EvaluatedRowsForBatch(batchID uint) ([]int, error) {
	var rows []int
	if err := d.gorm.Model(&DecisionRecord{}).Where("batch_id = ?", batchID).Pluck("row_index", &rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateBatchRequest records a new evaluation request for a batch.
func (d *Database) CreateBatchRequest(batchID uint, requestType, status, jobID string) (*BatchRequest, error) {
	request := &BatchRequest{
		BatchID:   batchID,
		Type:      requestType,
		Status:    status,
		JobID:     jobID,
		StartedAt: time.Now(),
	}
	if err := d.gorm.Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

// UpdateBatchRequest updates the status and timestamps of a batch request.
func (d *Database) UpdateBatchRequest(requestID uint, status string) error {
	updates := map[string]any{"status": status}
	if RequestTerminal(status) {
		now := time.Now()
		updates["finished_at"] = &now
	}
	return d.gorm.Model(&BatchRequest{}).Where("id = ?", requestID).Updates(updates).Error
}

// UpdateBatchProcessingInfo refreshes processed counts and timestamp for a batch.
func (d *Database) UpdateBatchProcessingInfo(batchID uint) error {
	processed, err := d.CountBatchResults(batchID)
	if err != nil {
		return err
	}
	now := time.Now()
	return d.gorm.Model(&QuestionBatch{}).
		Where("id = ?", batchID).
		Updates(map[string]any{
			"processed_questions": processed,
			"last_evaluated_at":   &now,
		}).Error
}

// ListQuestionBatches returns batches ordered by creation time.
func (d *Database) ListQuestionBatches(offset, limit int) ([]QuestionBatch, int64, error) {
	var total int64
	if err := d.gorm.Model(&QuestionBatch{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query := d.gorm.Model(&QuestionBatch{}).Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Offset(offset).Limit(limit)
	}
	var batches []QuestionBatch
	if err := query.Find(&batches).Error; err != nil {
		return nil, 0, err
	}
	return batches, total, nil
}

// GetQuestionBatch retrieves a batch by ID.
func (d *Database) GetQuestionBatch(batchID uint) (*QuestionBatch, error) {
	var batch QuestionBatch
	if err := d.gorm.First(&batch, batchID).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

// GetBatchRequest fetches a batch request record by ID.
func (d *Database) GetBatchRequest(requestID uint) (*BatchRequest, error) {
	var request BatchRequest
	if err := d.gorm.First(&request, requestID).Error; err != nil {
		return nil, err
	}
	return &request, nil
}
