package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/SalieeriW/FIB-NETFLIX/config"
	"github.com/SalieeriW/FIB-NETFLIX/constant"
	"github.com/SalieeriW/FIB-NETFLIX/dto"
	"github.com/SalieeriW/FIB-NETFLIX/entities"
	"github.com/SalieeriW/FIB-NETFLIX/pkg/analysis"
	"github.com/SalieeriW/FIB-NETFLIX/pkg/ffmpeg"
	"github.com/SalieeriW/FIB-NETFLIX/repository"
)

// CourseService drives the content pipeline for one course: audio extraction
// -> transcription -> optional document text -> chunking -> embeddings ->
// notes in each supported language. Audio extraction, transcription and
// embedding failures abort the run; everything else degrades.
type CourseService interface {
	Process(ctx context.Context, message dto.CourseMessage) error
	Submit(courseID int64, language string) *Task
}

type courseService struct {
	repo     repository.Repository
	cfg      *config.Config
	runner   ffmpeg.Runner
	analysis *analysis.Client
	pool     *Dispatcher
}

func NewCourseService(repo repository.Repository, cfg *config.Config, runner ffmpeg.Runner, client *analysis.Client, pool *Dispatcher) CourseService {
	return &courseService{
		repo:     repo,
		cfg:      cfg,
		runner:   runner,
		analysis: client,
		pool:     pool,
	}
}

func (s *courseService) Process(ctx context.Context, message dto.CourseMessage) error {
	zerolog.Ctx(ctx).Info().
		Str("message_id", message.MessageId.String()).
		Int64("course_id", message.CourseId).
		Str("language", message.Language).
		Msg("received course processing request")
	s.Submit(message.CourseId, message.Language)
	return nil
}

func (s *courseService) Submit(courseID int64, language string) *Task {
	return s.pool.Submit(func(ctx context.Context) {
		s.run(ctx, courseID, language)
	})
}

func (s *courseService) run(ctx context.Context, courseID int64, language string) {
	logger := zerolog.Ctx(ctx).With().Int64("course_id", courseID).Logger()
	ctx = logger.WithContext(ctx)

	course, err := s.repo.FindCourseByID(ctx, courseID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to find course")
		return
	}
	if language == "" {
		language = course.PrimaryLanguage
	}

	logger.Info().Str("language", language).Msg("starting course processing")
	if err := s.repo.UpdateCourseStatus(ctx, courseID, constant.CourseStatusProcessing); err != nil {
		logger.Error().Err(err).Msg("failed to update course status")
		return
	}

	audioPath, ok := s.extractAudio(ctx, course)
	if !ok {
		s.fail(ctx, courseID)
		return
	}
	logger.Info().Str("audio", audioPath).Msg("audio extracted")

	transcription, err := s.analysis.Transcribe(ctx, audioPath, language)
	if err != nil {
		logger.Error().Err(err).Str("stage", "transcribe").Msg("transcription failed")
		s.fail(ctx, courseID)
		return
	}
	logger.Info().Str("detected_language", transcription.Language).Msg("audio transcribed")

	distribution := languageDistribution(transcription.Segments)
	transcript := &entities.Transcript{
		CourseID: courseID,
		FullText: transcription.Text,
		Segments: string(transcription.Segments),
		Language: transcription.Language,
	}
	if distribution != "" {
		transcript.LanguageDistribution = &distribution
	}
	if err := s.repo.InsertTranscript(ctx, transcript); err != nil {
		logger.Error().Err(err).Msg("failed to persist transcript")
		s.fail(ctx, courseID)
		return
	}

	// Informational metadata only, never a gate on later stages.
	summary := transcription.Language
	if distribution != "" {
		summary = distribution
	}
	if err := s.repo.UpdateCourseDetectedLanguages(ctx, courseID, summary); err != nil {
		logger.Warn().Err(err).Msg("failed to persist detected languages")
	}

	documentText := ""
	if course.DocumentPath != nil && *course.DocumentPath != "" {
		documentText = s.extractDocumentText(ctx, courseID, *course.DocumentPath)
	}

	chunks := buildChunks(transcription.Text, documentText)
	logger.Info().Int("chunks", len(chunks)).Msg("text chunked")

	if err := s.analysis.CreateEmbeddings(ctx, courseID, chunks); err != nil {
		logger.Error().Err(err).Str("stage", "embeddings").Msg("embedding creation failed")
		s.fail(ctx, courseID)
		return
	}
	logger.Info().Msg("embeddings stored")

	// Each language is attempted independently; one failure never blocks or
	// rolls back the others.
	for _, lang := range constant.NoteLanguages {
		notes, err := s.analysis.GenerateNotes(ctx, courseID, lang, true)
		if err != nil {
			logger.Warn().Err(err).Str("stage", "notes").Str("notes_language", lang).Msg("notes generation failed")
			continue
		}
		if err := s.repo.UpsertCourseNotes(ctx, courseID, lang, notes); err != nil {
			logger.Warn().Err(err).Str("notes_language", lang).Msg("failed to persist notes")
			continue
		}
		logger.Info().Str("notes_language", lang).Msg("notes saved")
	}

	if err := s.repo.UpdateCourseStatus(ctx, courseID, constant.CourseStatusReady); err != nil {
		logger.Error().Err(err).Msg("failed to update course status")
		return
	}
	logger.Info().Msg("course processing complete")
}

func (s *courseService) extractAudio(ctx context.Context, course *entities.Course) (string, bool) {
	logger := zerolog.Ctx(ctx)
	if course.VideoID == nil {
		logger.Error().Str("stage", "extract_audio").Msg("course has no associated video")
		return "", false
	}

	video, err := s.repo.FindVideoByID(ctx, *course.VideoID)
	if err != nil {
		logger.Error().Err(err).Str("stage", "extract_audio").Msg("failed to find course video")
		return "", false
	}

	audioDir := filepath.Join(s.cfg.Media.Root, "audio")
	if err := os.MkdirAll(audioDir, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("stage", "extract_audio").Msg("failed to create audio directory")
		return "", false
	}

	audioPath := filepath.Join(audioDir, fmt.Sprintf("course_%d.mp3", course.ID))
	res := ffmpeg.ExtractAudio(ctx, s.runner, video.OriginalPath, audioPath)
	if !res.Succeeded {
		logger.Error().
			Str("stage", "extract_audio").
			Int("exit_code", res.ExitCode).
			Str("output", tail(res.Output)).
			Msg("audio extraction failed")
		return "", false
	}
	return audioPath, true
}

// extractDocumentText converts the companion document to plain text. Failure
// just means no document-derived chunks.
func (s *courseService) extractDocumentText(ctx context.Context, courseID int64, documentPath string) string {
	logger := zerolog.Ctx(ctx)

	textDir := filepath.Join(s.cfg.Media.Root, "docs")
	if err := os.MkdirAll(textDir, os.ModePerm); err != nil {
		logger.Warn().Err(err).Str("stage", "document_text").Msg("failed to create docs directory")
		return ""
	}

	textPath := filepath.Join(textDir, fmt.Sprintf("course_%d.txt", courseID))
	res := s.runner.Run(ctx, "pdftotext", documentPath, textPath)
	if !res.Succeeded {
		logger.Warn().
			Str("stage", "document_text").
			Int("exit_code", res.ExitCode).
			Msg("document text extraction failed")
		return ""
	}

	data, err := os.ReadFile(textPath)
	if err != nil {
		logger.Warn().Err(err).Str("stage", "document_text").Msg("failed to read extracted text")
		return ""
	}
	return string(data)
}

func (s *courseService) fail(ctx context.Context, courseID int64) {
	if err := s.repo.UpdateCourseStatus(ctx, courseID, constant.CourseStatusError); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to mark course as errored")
	}
}

// languageDistribution summarises per-segment detected languages as
// "lang:count" pairs, e.g. "en:42,es:3". Unknown segment shapes yield "".
func languageDistribution(segments json.RawMessage) string {
	if len(segments) == 0 {
		return ""
	}

	var parsed []struct {
		DetectedLang string `json:"detected_lang"`
	}
	if err := json.Unmarshal(segments, &parsed); err != nil {
		return ""
	}

	counts := make(map[string]int)
	for _, segment := range parsed {
		if segment.DetectedLang != "" {
			counts[segment.DetectedLang]++
		}
	}
	if len(counts) == 0 {
		return ""
	}

	languages := make([]string, 0, len(counts))
	for lang := range counts {
		languages = append(languages, lang)
	}
	sort.Slice(languages, func(i, j int) bool {
		if counts[languages[i]] != counts[languages[j]] {
			return counts[languages[i]] > counts[languages[j]]
		}
		return languages[i] < languages[j]
	})

	parts := make([]string, 0, len(languages))
	for _, lang := range languages {
		parts = append(parts, fmt.Sprintf("%s:%d", lang, counts[lang]))
	}
	return strings.Join(parts, ",")
}
