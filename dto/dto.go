package dto

import "github.com/google/uuid"

type TranscodeMessage struct {
	MessageId uuid.UUID `json:"messageId"`
	VideoId   int64     `json:"videoId"`
}

type CourseMessage struct {
	MessageId uuid.UUID `json:"messageId"`
	CourseId  int64     `json:"courseId"`
	Language  string    `json:"language"`
}
