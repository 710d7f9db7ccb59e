package models

import (
	"time"
)

// OutreachMessage is a local record of a message sent or logged from the dashboard.
type OutreachMessage struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Kind           string    `gorm:"size:20;not null;index" json:"kind"` // sent, logged
	PostID         string    `gorm:"size:64;index" json:"post_id"`
	InfluencerName string    `gorm:"size:255" json:"influencer_name"`
	ContactNumber  string    `gorm:"size:64" json:"contact_number"`
	NormalizedTo   string    `gorm:"size:32" json:"normalized_to"` // E.164 when parsable
	Message        string    `gorm:"type:text;not null" json:"message"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// AuditRun records the outcome of one audit webhook trigger.
type AuditRun struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	TaskID       string     `gorm:"size:36;uniqueIndex;not null" json:"task_id"`
	CampaignID   string     `gorm:"size:64;not null;index" json:"campaign_id"`
	CampaignName string     `gorm:"size:255" json:"campaign_name"`
	State        string     `gorm:"size:20;not null" json:"state"`
	StatusCode   int        `json:"status_code"`
	Error        string     `gorm:"type:text" json:"error"`
	StartedAt    time.Time  `gorm:"not null" json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
