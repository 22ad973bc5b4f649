package entities

import "time"

// Transcript is written at most once per successful transcription run and
// never mutated afterward. Segments carries the raw segment payload from the
// analysis peer untouched.
type Transcript struct {
	ID                   int64     `json:"id" gorm:"primaryKey"`
	CourseID             int64     `json:"course_id"`
	FullText             string    `json:"full_text"`
	Segments             string    `json:"segments"`
	Language             string    `json:"language"`
	LanguageDistribution *string   `json:"language_distribution"`
	CreatedAt            time.Time `json:"created_at"`
}

func (Transcript) TableName() string {
	return "transcripts"
}
