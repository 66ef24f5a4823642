package store

import "time"

// GORM models used for persistence.
type ReviewModel struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	Name       string `gorm:"size:255;not null"`
	Role       string `gorm:"size:255"`
	Content    string `gorm:"type:text;not null"`
	Rating     int    `gorm:"not null"`
	IsApproved bool   `gorm:"not null;default:false;index"`
	CreatedAt  time.Time
}

func (ReviewModel) TableName() string { return "reviews" }

type SharedSummaryModel struct {
	ID        string `gorm:"primaryKey;size:255"`
	Content   string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

func (SharedSummaryModel) TableName() string { return "shared_summaries" }

type ContactSubmissionModel struct {
	ID            string `gorm:"primaryKey;size:255"`
	Name          string `gorm:"size:255;not null"`
	Email         string `gorm:"size:255;not null"`
	Subject       string `gorm:"size:255"`
	Description   string `gorm:"type:text"`
	Timestamp     time.Time
	IssueResolved int `gorm:"not null;default:0"`
}

func (ContactSubmissionModel) TableName() string { return "contact_submissions" }
