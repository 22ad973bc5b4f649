package entities

import "time"

// CourseNotes holds one text field per supported language. A nil field means
// the notes for that language were not generated yet, not that a run failed.
type CourseNotes struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	CourseID  int64     `json:"course_id"`
	NotesEn   *string   `json:"notes_en"`
	NotesEs   *string   `json:"notes_es"`
	NotesCa   *string   `json:"notes_ca"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CourseNotes) TableName() string {
	return "course_notes"
}
