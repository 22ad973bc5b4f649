package entities

import (
	"time"

	"github.com/SalieeriW/FIB-NETFLIX/constant"
)

type Course struct {
	ID                int64                 `json:"id" gorm:"primaryKey"`
	Title             string                `json:"title"`
	PrimaryLanguage   string                `json:"primary_language"`
	VideoID           *int64                `json:"video_id"`
	DocumentPath      *string               `json:"document_path"`
	Status            constant.CourseStatus `json:"status"`
	DetectedLanguages *string               `json:"detected_languages"`
	CreatedAt         time.Time             `json:"created_at"`
}

func (Course) TableName() string {
	return "courses"
}
