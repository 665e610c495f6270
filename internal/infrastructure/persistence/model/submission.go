package model

import "gorm.io/datatypes"

// Submission is the intake aggregate. The data column holds the whole
// working JSON document for the submission; version backs optimistic
// concurrency on blob writes.
type Submission struct {
	SubmissionID string         `gorm:"column:submission_id;type:text;primaryKey"`
	Type         string         `gorm:"column:type;type:text;not null;index"`
	Status       string         `gorm:"column:status;type:text;not null;index"`
	Data         datatypes.JSON `gorm:"column:data"`
	Source       string         `gorm:"column:source;type:text;not null;index"`
	Comments     *string        `gorm:"column:comments;type:text"`
	Version      uint64         `gorm:"column:version;not null;default:1"`
	CreatedAt    string         `gorm:"column:created_at;type:text;not null"`
	UpdatedAt    string         `gorm:"column:updated_at;type:text;not null"`
	ReviewedAt   *string        `gorm:"column:reviewed_at;type:text"`
}

func (Submission) TableName() string {
	return "submissions"
}
