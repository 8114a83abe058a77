package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Database wraps the GORM DB handle and exposes repository helpers.
type Database struct {
	gorm *gorm.DB
	mu   sync.Mutex
}

// Open initializes the SQLite-backed database at the provided path.
func Open(path string, silent bool) (*Database, error) {
	cfg := &gorm.Config{}
	if silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&DecisionRecord{}, &AuditLog{}, &QuestionBatch{}, &BatchQuestion{}, &BatchRequest{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		logrus.WithError(err).Warn("enable WAL mode")
	}
	if err := db.Exec("PRAGMA synchronous=NORMAL").Error; err != nil {
		logrus.WithError(err).Warn("set synchronous pragma")
	}
	if err := applyIndexes(db); err != nil {
		return nil, fmt.Errorf("apply indexes: %w", err)
	}
	return &Database{gorm: db}, nil
}

// GORM exposes the raw gorm.DB handle.
func (d *Database) GORM() *gorm.DB {
	return d.gorm
}

// Close closes the underlying database connection.
func (d *Database) Close() error {
	if d == nil {
		return nil
	}
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveDecision inserts a decision record, assigning an id when missing. Batch
// rows replace any earlier result for the same row.
func (d *Database) SaveDecision(rec *DecisionRecord) error {
	if rec == nil {
		return errors.New("decision record is nil")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if rec.BatchID == nil {
		return d.gorm.Create(rec).Error
	}
	return d.gorm.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "batch_id"}, {Name: "row_index"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"question", "category", "stage", "context_json", "diagnosis",
			"key_metrics_json", "hidden_risks_json", "strategic_principle",
			"impact", "risk", "urgency", "score", "interpretation",
			"decision", "verdict", "next_step", "processing_time_ms",
		}),
	}).Create(rec).Error
}

// GetDecision fetches one record; gorm.ErrRecordNotFound when absent.
func (d *Database) GetDecision(id string) (*DecisionRecord, error) {
	var rec DecisionRecord
	if err := d.gorm.Where("id = ?", strings.TrimSpace(id)).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// DecisionQuery encapsulates filters and pagination for listing decisions.
type DecisionQuery struct {
	Category string
	Decision string
	Verdict  string
	BatchID  uint
	Sort     string
	Offset   int
	Limit    int
}

// ListDecisions returns paginated decision records, newest first by default.
func (d *Database) ListDecisions(opts DecisionQuery) ([]DecisionRecord, int64, error) {
	base := d.gorm.Model(&DecisionRecord{})
	if opts.BatchID > 0 {
		base = base.Where("batch_id = ?", opts.BatchID)
	}
	if cat := strings.TrimSpace(opts.Category); cat != "" {
		base = base.Where("category = ?", strings.ToLower(cat))
	}
	if dec := strings.TrimSpace(opts.Decision); dec != "" {
		base = base.Where("decision = ?", strings.ToUpper(dec))
	}
	if v := strings.TrimSpace(opts.Verdict); v != "" {
		base = base.Where("verdict = ?", strings.ToUpper(v))
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := base.Order(orderForSort(opts.Sort)).Offset(opts.Offset)
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	var rows []DecisionRecord
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func orderForSort(sort string) string {
	switch strings.ToLower(strings.TrimSpace(sort)) {
	case "score_desc":
		return "decision_records.score DESC, decision_records.rowid DESC"
	case "score_asc":
		return "decision_records.score ASC, decision_records.rowid DESC"
	case "row_asc":
		return "decision_records.row_index ASC"
	case "created_asc":
		return "decision_records.created_at ASC, decision_records.rowid ASC"
	default:
		return "decision_records.created_at DESC, decision_records.rowid DESC"
	}
}

// RecordAudit appends an audit entry.
func (d *Database) RecordAudit(entry *AuditLog) error {
	if entry == nil {
		return errors.New("audit entry is nil")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Create(entry).Error
}

// ListAudit returns the audit trail for a resource, oldest first.
func (d *Database) ListAudit(resourceID string) ([]AuditLog, error) {
	var rows []AuditLog
	if err := d.gorm.Where("resource_id = ?", resourceID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func applyIndexes(db *gorm.DB) error {
	stmts := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_decision_records_batch_row ON decision_records(batch_id, row_index)",
		"CREATE INDEX IF NOT EXISTS idx_decision_records_created ON decision_records(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_batch_questions_batch_row ON batch_questions(batch_id, row_index)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_action_created ON audit_logs(action, created_at)",
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
