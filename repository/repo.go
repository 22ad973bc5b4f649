package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SalieeriW/FIB-NETFLIX/constant"
	"github.com/SalieeriW/FIB-NETFLIX/entities"
)

type Repository interface {
	Transaction(ctx context.Context, callback func(ctx context.Context) error, opts ...*sql.TxOptions) error
	GetDB() *gorm.DB

	FindVideoByID(ctx context.Context, id int64) (*entities.Video, error)
	UpdateVideoStatus(ctx context.Context, id int64, status constant.VideoStatus) error
	UpdateVideoDuration(ctx context.Context, id int64, seconds int) error
	UpdateVideoProcessedPath(ctx context.Context, id int64, path string) error
	IncrementVideoViews(ctx context.Context, id int64) error

	FindCourseByID(ctx context.Context, id int64) (*entities.Course, error)
	UpdateCourseStatus(ctx context.Context, id int64, status constant.CourseStatus) error
	UpdateCourseDetectedLanguages(ctx context.Context, id int64, summary string) error

	InsertTranscript(ctx context.Context, transcript *entities.Transcript) error
	FindTranscriptByCourseID(ctx context.Context, courseID int64) (*entities.Transcript, error)

	UpsertCourseNotes(ctx context.Context, courseID int64, language, notes string) error
	FindNotesByCourseID(ctx context.Context, courseID int64) (*entities.CourseNotes, error)
}

type repo struct {
	db *gorm.DB
}

func NewRepo(db *sql.DB) Repository {
	gormDB, _ := gorm.Open(postgres.New(postgres.Config{
		Conn: db}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		},
	)
	return &repo{
		db: gormDB,
	}
}

func (r *repo) GetDB() *gorm.DB {
	return r.db
}

func (r *repo) Transaction(ctx context.Context, callback func(ctx context.Context) error, opts ...*sql.TxOptions) error {
	return r.GetDB().Transaction(func(tx *gorm.DB) error {
		return callback(ctx)
	}, opts...)
}

func (r *repo) FindVideoByID(ctx context.Context, id int64) (*entities.Video, error) {
	video := &entities.Video{}
	err := r.GetDB().WithContext(ctx).First(video, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return video, nil
}

func (r *repo) UpdateVideoStatus(ctx context.Context, id int64, status constant.VideoStatus) error {
	return r.GetDB().WithContext(ctx).Model(&entities.Video{}).Where("id = ?", id).Update("status", status).Error
}

func (r *repo) UpdateVideoDuration(ctx context.Context, id int64, seconds int) error {
	return r.GetDB().WithContext(ctx).Model(&entities.Video{}).Where("id = ?", id).Update("duration", seconds).Error
}

func (r *repo) UpdateVideoProcessedPath(ctx context.Context, id int64, path string) error {
	return r.GetDB().WithContext(ctx).Model(&entities.Video{}).Where("id = ?", id).Update("processed_path", path).Error
}

func (r *repo) IncrementVideoViews(ctx context.Context, id int64) error {
	return r.GetDB().WithContext(ctx).Model(&entities.Video{}).Where("id = ?", id).
		Update("views", gorm.Expr("views + 1")).Error
}

func (r *repo) FindCourseByID(ctx context.Context, id int64) (*entities.Course, error) {
	course := &entities.Course{}
	err := r.GetDB().WithContext(ctx).First(course, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return course, nil
}

func (r *repo) UpdateCourseStatus(ctx context.Context, id int64, status constant.CourseStatus) error {
	return r.GetDB().WithContext(ctx).Model(&entities.Course{}).Where("id = ?", id).Update("status", status).Error
}

func (r *repo) UpdateCourseDetectedLanguages(ctx context.Context, id int64, summary string) error {
	return r.GetDB().WithContext(ctx).Model(&entities.Course{}).Where("id = ?", id).
		Update("detected_languages", summary).Error
}

func (r *repo) InsertTranscript(ctx context.Context, transcript *entities.Transcript) error {
	return r.GetDB().WithContext(ctx).Create(transcript).Error
}

func (r *repo) FindTranscriptByCourseID(ctx context.Context, courseID int64) (*entities.Transcript, error) {
	transcript := &entities.Transcript{}
	err := r.GetDB().WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at DESC").
		First(transcript).Error
	if err != nil {
		return nil, err
	}
	return transcript, nil
}

// UpsertCourseNotes sets exactly one language column, leaving the other two
// untouched. Absence of a language's note means "not yet generated".
func (r *repo) UpsertCourseNotes(ctx context.Context, courseID int64, language, notes string) error {
	column, err := notesColumn(language)
	if err != nil {
		return err
	}

	existing := &entities.CourseNotes{}
	err = r.GetDB().WithContext(ctx).Where("course_id = ?", courseID).First(existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row := &entities.CourseNotes{CourseID: courseID}
		switch column {
		case "notes_en":
			row.NotesEn = &notes
		case "notes_es":
			row.NotesEs = &notes
		case "notes_ca":
			row.NotesCa = &notes
		}
		return r.GetDB().WithContext(ctx).Create(row).Error
	}
	if err != nil {
		return err
	}

	return r.GetDB().WithContext(ctx).Model(existing).Update(column, notes).Error
}

func (r *repo) FindNotesByCourseID(ctx context.Context, courseID int64) (*entities.CourseNotes, error) {
	notes := &entities.CourseNotes{}
	err := r.GetDB().WithContext(ctx).Where("course_id = ?", courseID).First(notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

func notesColumn(language string) (string, error) {
	switch language {
	case "en":
		return "notes_en", nil
	case "es":
		return "notes_es", nil
	case "ca":
		return "notes_ca", nil
	default:
		return "", fmt.Errorf("unsupported notes language: %s", language)
	}
}
