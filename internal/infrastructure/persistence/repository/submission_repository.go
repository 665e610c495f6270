package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/frosty865/VOFC-Engine-sub003/internal/errs"
	"github.com/frosty865/VOFC-Engine-sub003/internal/infrastructure/persistence/model"
	"github.com/frosty865/VOFC-Engine-sub003/internal/ports"
)

type SubmissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (r *SubmissionRepository) CreateSubmission(ctx context.Context, record ports.SubmissionRecord) (ports.SubmissionRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.SubmissionRecord{}, err
	}

	row := model.Submission{
		SubmissionID: record.SubmissionID,
		Type:         record.Type,
		Status:       record.Status,
		Data:         datatypes.JSON(record.Data),
		Source:       record.Source,
		Comments:     record.Comments,
		Version:      1,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.SubmissionRecord{}, errs.Wrap(err, "insert submission")
	}
	return mapSubmission(row), nil
}

func (r *SubmissionRepository) GetSubmission(ctx context.Context, submissionID string) (ports.SubmissionRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.SubmissionRecord{}, err
	}
	return getSubmissionByID(db, submissionID)
}

func (r *SubmissionRepository) ListSubmissions(ctx context.Context, filter ports.SubmissionFilter) ([]ports.SubmissionRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Submission{})
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if subType := strings.TrimSpace(filter.Type); subType != "" {
		query = query.Where("type = ?", subType)
	}
	if source := strings.TrimSpace(filter.Source); source != "" {
		query = query.Where("source = ?", source)
	}

	var rows []model.Submission
	if err := query.Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query submissions")
	}

	items := make([]ports.SubmissionRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapSubmission(row))
	}
	return items, nil
}

// UpdateSubmissionData is conditional on the version column; zero rows
// affected means another writer got there first.
func (r *SubmissionRepository) UpdateSubmissionData(ctx context.Context, submissionID string, data json.RawMessage, expectedVersion uint64, updatedAt string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	res := db.Model(&model.Submission{}).
		Where("submission_id = ? AND version = ?", submissionID, expectedVersion).
		Updates(map[string]any{
			"data":       datatypes.JSON(data),
			"version":    expectedVersion + 1,
			"updated_at": updatedAt,
		})
	if res.Error != nil {
		return errs.Wrap(res.Error, "update submission data")
	}
	if res.RowsAffected == 0 {
		if _, err := getSubmissionByID(db, submissionID); err != nil {
			return err
		}
		return ports.ErrVersionConflict
	}
	return nil
}

// UpdateSubmissionStatus is a compare-and-swap on the status column. A
// matched zero-row update distinguishes a missing submission from a lost
// race so double approvals come back as ErrStatusConflict.
func (r *SubmissionRepository) UpdateSubmissionStatus(ctx context.Context, change ports.StatusChange) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	updates := map[string]any{
		"status":     change.ToStatus,
		"updated_at": change.UpdatedAt,
	}
	if change.Comments != nil {
		updates["comments"] = *change.Comments
	}
	if change.ReviewedAt != nil {
		updates["reviewed_at"] = *change.ReviewedAt
	}

	res := db.Model(&model.Submission{}).
		Where("submission_id = ? AND status = ?", change.SubmissionID, change.FromStatus).
		Updates(updates)
	if res.Error != nil {
		return errs.Wrap(res.Error, "update submission status")
	}
	if res.RowsAffected == 0 {
		if _, err := getSubmissionByID(db, change.SubmissionID); err != nil {
			return err
		}
		return ports.ErrStatusConflict
	}
	return nil
}

func (r *SubmissionRepository) Ping(ctx context.Context) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return errs.Wrap(err, "get sql db")
	}
	return sqlDB.PingContext(ctx)
}

func getSubmissionByID(db *gorm.DB, submissionID string) (ports.SubmissionRecord, error) {
	var row model.Submission
	if err := db.Where("submission_id = ?", submissionID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.SubmissionRecord{}, ports.ErrSubmissionNotFound
		}
		return ports.SubmissionRecord{}, errs.Wrap(err, "query submission")
	}
	return mapSubmission(row), nil
}

func mapSubmission(row model.Submission) ports.SubmissionRecord {
	return ports.SubmissionRecord{
		SubmissionID: row.SubmissionID,
		Type:         row.Type,
		Status:       row.Status,
		Data:         []byte(row.Data),
		Source:       row.Source,
		Comments:     row.Comments,
		Version:      row.Version,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		ReviewedAt:   row.ReviewedAt,
	}
}
