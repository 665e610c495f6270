package model

// Production tables populated exclusively by the promotion step.

type Vulnerability struct {
	VulnerabilityID uint64  `gorm:"column:vulnerability_id;primaryKey;autoIncrement"`
	Vulnerability   string  `gorm:"column:vulnerability;type:text;not null;index"`
	Discipline      string  `gorm:"column:discipline;type:text;not null"`
	Severity        *string `gorm:"column:severity;type:text"`
	Source          string  `gorm:"column:source;type:text;not null"`
	CreatedAt       string  `gorm:"column:created_at;type:text;not null"`
}

func (Vulnerability) TableName() string {
	return "vulnerabilities"
}

type OptionForConsideration struct {
	OFCID           uint64  `gorm:"column:ofc_id;primaryKey;autoIncrement"`
	OptionText      string  `gorm:"column:option_text;type:text;not null"`
	Discipline      string  `gorm:"column:discipline;type:text;not null"`
	VulnerabilityID *uint64 `gorm:"column:vulnerability_id;index"`
	Source          string  `gorm:"column:source;type:text;not null"`
	CreatedAt       string  `gorm:"column:created_at;type:text;not null"`
	UpdatedAt       string  `gorm:"column:updated_at;type:text;not null"`
}

func (OptionForConsideration) TableName() string {
	return "options_for_consideration"
}

type VulnerabilityOFCLink struct {
	LinkID          uint64  `gorm:"column:link_id;primaryKey;autoIncrement"`
	VulnerabilityID uint64  `gorm:"column:vulnerability_id;not null;index;uniqueIndex:idx_vuln_ofc"`
	OFCID           uint64  `gorm:"column:ofc_id;not null;index;uniqueIndex:idx_vuln_ofc"`
	LinkType        string  `gorm:"column:link_type;type:text;not null"`
	ConfidenceScore float64 `gorm:"column:confidence_score;not null"`
	CreatedAt       string  `gorm:"column:created_at;type:text;not null"`
}

func (VulnerabilityOFCLink) TableName() string {
	return "vulnerability_ofc_links"
}

type Source struct {
	SourceID        uint64 `gorm:"column:source_id;primaryKey;autoIncrement"`
	SourceText      string `gorm:"column:source_text;type:text;not null"`
	URL             string `gorm:"column:url;type:text"`
	Organization    string `gorm:"column:organization;type:text"`
	ReferenceNumber string `gorm:"column:reference_number;type:text"`
	CreatedAt       string `gorm:"column:created_at;type:text;not null"`
}

func (Source) TableName() string {
	return "sources"
}

type OFCSourceLink struct {
	LinkID    uint64 `gorm:"column:link_id;primaryKey;autoIncrement"`
	OFCID     uint64 `gorm:"column:ofc_id;not null;index;uniqueIndex:idx_ofc_source"`
	SourceID  uint64 `gorm:"column:source_id;not null;index;uniqueIndex:idx_ofc_source"`
	CreatedAt string `gorm:"column:created_at;type:text;not null"`
}

func (OFCSourceLink) TableName() string {
	return "ofc_source_links"
}
