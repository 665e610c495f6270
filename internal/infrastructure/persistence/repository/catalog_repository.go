package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/frosty865/VOFC-Engine-sub003/internal/errs"
	"github.com/frosty865/VOFC-Engine-sub003/internal/infrastructure/persistence/model"
	"github.com/frosty865/VOFC-Engine-sub003/internal/ports"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
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

func (r *CatalogRepository) CreateVulnerability(ctx context.Context, record ports.VulnerabilityRecord) (ports.VulnerabilityRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.VulnerabilityRecord{}, err
	}

	row := model.Vulnerability{
		Vulnerability: record.Vulnerability,
		Discipline:    record.Discipline,
		Severity:      record.Severity,
		Source:        record.Source,
		CreatedAt:     record.CreatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.VulnerabilityRecord{}, errs.Wrap(err, "insert vulnerability")
	}
	return mapVulnerability(row), nil
}

func (r *CatalogRepository) FindVulnerabilityByTitle(ctx context.Context, title string) (ports.VulnerabilityRecord, bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.VulnerabilityRecord{}, false, err
	}

	var row model.Vulnerability
	err = db.Where("lower(vulnerability) = ?", strings.ToLower(strings.TrimSpace(title))).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ports.VulnerabilityRecord{}, false, nil
	}
	if err != nil {
		return ports.VulnerabilityRecord{}, false, errs.Wrap(err, "query vulnerability by title")
	}
	return mapVulnerability(row), true, nil
}

func (r *CatalogRepository) ListVulnerabilities(ctx context.Context) ([]ports.VulnerabilityRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Vulnerability
	if err := db.Order("vulnerability_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query vulnerabilities")
	}

	items := make([]ports.VulnerabilityRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapVulnerability(row))
	}
	return items, nil
}

func (r *CatalogRepository) CreateOFC(ctx context.Context, record ports.OFCRecord) (ports.OFCRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.OFCRecord{}, err
	}

	row := model.OptionForConsideration{
		OptionText:      record.OptionText,
		Discipline:      record.Discipline,
		VulnerabilityID: record.VulnerabilityID,
		Source:          record.Source,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.CreatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.OFCRecord{}, errs.Wrap(err, "insert option for consideration")
	}
	return mapOFC(row), nil
}

func (r *CatalogRepository) GetOFC(ctx context.Context, ofcID uint64) (ports.OFCRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.OFCRecord{}, err
	}

	var row model.OptionForConsideration
	if err := db.Where("ofc_id = ?", ofcID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.OFCRecord{}, ports.ErrOFCNotFound
		}
		return ports.OFCRecord{}, errs.Wrap(err, "query option for consideration")
	}
	return mapOFC(row), nil
}

func (r *CatalogRepository) ListOFCs(ctx context.Context) ([]ports.OFCRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.OptionForConsideration
	if err := db.Order("ofc_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query options for consideration")
	}

	items := make([]ports.OFCRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapOFC(row))
	}
	return items, nil
}

func (r *CatalogRepository) UpdateOFC(ctx context.Context, ofcID uint64, update ports.OFCUpdate, updatedAt string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	updates := map[string]any{"updated_at": updatedAt}
	if update.OptionText != nil {
		updates["option_text"] = *update.OptionText
	}
	if update.Discipline != nil {
		updates["discipline"] = *update.Discipline
	}

	res := db.Model(&model.OptionForConsideration{}).
		Where("ofc_id = ?", ofcID).
		Updates(updates)
	if res.Error != nil {
		return errs.Wrap(res.Error, "update option for consideration")
	}
	if res.RowsAffected == 0 {
		return ports.ErrOFCNotFound
	}
	return nil
}

func (r *CatalogRepository) DeleteOFC(ctx context.Context, ofcID uint64) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	res := db.Where("ofc_id = ?", ofcID).Delete(&model.OptionForConsideration{})
	if res.Error != nil {
		return errs.Wrap(res.Error, "delete option for consideration")
	}
	if res.RowsAffected == 0 {
		return ports.ErrOFCNotFound
	}
	return nil
}

func (r *CatalogRepository) CreateVulnerabilityOFCLink(ctx context.Context, record ports.VulnerabilityOFCLinkRecord) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.VulnerabilityOFCLink{
		VulnerabilityID: record.VulnerabilityID,
		OFCID:           record.OFCID,
		LinkType:        record.LinkType,
		ConfidenceScore: record.ConfidenceScore,
		CreatedAt:       record.CreatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert vulnerability-ofc link")
	}
	return nil
}

func (r *CatalogRepository) CreateSource(ctx context.Context, record ports.SourceRecord) (ports.SourceRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.SourceRecord{}, err
	}

	row := model.Source{
		SourceText:      record.SourceText,
		URL:             record.URL,
		Organization:    record.Organization,
		ReferenceNumber: record.ReferenceNumber,
		CreatedAt:       record.CreatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.SourceRecord{}, errs.Wrap(err, "insert source")
	}
	record.SourceID = row.SourceID
	return record, nil
}

func (r *CatalogRepository) LinkSourceToOFC(ctx context.Context, sourceID uint64, ofcID uint64, createdAt string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.OFCSourceLink{
		OFCID:     ofcID,
		SourceID:  sourceID,
		CreatedAt: createdAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert ofc-source link")
	}
	return nil
}

func mapVulnerability(row model.Vulnerability) ports.VulnerabilityRecord {
	return ports.VulnerabilityRecord{
		VulnerabilityID: row.VulnerabilityID,
		Vulnerability:   row.Vulnerability,
		Discipline:      row.Discipline,
		Severity:        row.Severity,
		Source:          row.Source,
		CreatedAt:       row.CreatedAt,
	}
}

func mapOFC(row model.OptionForConsideration) ports.OFCRecord {
	return ports.OFCRecord{
		OFCID:           row.OFCID,
		OptionText:      row.OptionText,
		Discipline:      row.Discipline,
		VulnerabilityID: row.VulnerabilityID,
		Source:          row.Source,
		CreatedAt:       row.CreatedAt,
	}
}
