package entities

import (
	"time"

	"github.com/SalieeriW/FIB-NETFLIX/constant"
)

type Video struct {
	ID            int64                `json:"id" gorm:"primaryKey"`
	Title         string               `json:"title"`
	Description   string               `json:"description"`
	Uploader      string               `json:"uploader"`
	OriginalPath  string               `json:"original_path"`
	ProcessedPath *string              `json:"processed_path"`
	Status        constant.VideoStatus `json:"status"`
	Duration      *int                 `json:"duration"`
	Views         int64                `json:"views"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

func (Video) TableName() string {
	return "videos"
}
