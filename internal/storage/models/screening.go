package models

import (
	"time"

	"gorm.io/datatypes"
)

// 筛选状态
const (
	ScreeningStatusSuccess = "SUCCESS"
	ScreeningStatusFailed  = "FAILED"
)

// ScreeningRecord 一份简历在一次批量筛选中的结果
type ScreeningRecord struct {
	ID             uint64         `gorm:"primaryKey;autoIncrement"`
	BatchID        string         `gorm:"type:char(36);not null;index:idx_screening_batch"`
	ObjectKey      string         `gorm:"type:varchar(512);not null"`
	FileName       string         `gorm:"type:varchar(255)"`
	FileID         string         `gorm:"type:varchar(64);index:idx_screening_file"`
	Status         string         `gorm:"type:varchar(20);not null;index:idx_screening_status"`
	FailedStage    string         `gorm:"type:varchar(20)"` // 失败的阶段：open, upload, analyze
	ErrorMessage   string         `gorm:"type:text"`
	CandidateName  string         `gorm:"type:varchar(255)"`
	Score          *float64       `gorm:"type:decimal(6,2)"`
	ResultJSON     datatypes.JSON `gorm:"type:json"`
	JobDescription string         `gorm:"type:text"`
	DurationMS     int64
	CreatedAt      time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
}

func (ScreeningRecord) TableName() string {
	return "resume_screenings"
}
