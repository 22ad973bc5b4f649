package service

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/SalieeriW/FIB-NETFLIX/constant"
	"github.com/SalieeriW/FIB-NETFLIX/entities"
	"github.com/SalieeriW/FIB-NETFLIX/pkg/ffmpeg"
)

// fakeRunner classifies each invocation by its argument grammar and returns a
// canned result, recording every call for assertions.
type toolCall struct {
	name string
	args []string
}

func (c toolCall) argString() string {
	return strings.Join(c.args, " ")
}

type fakeRunner struct {
	mu             sync.Mutex
	calls          []toolCall
	failStages     map[string]bool
	hasAudio       bool
	durationOutput string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		failStages:     make(map[string]bool),
		hasAudio:       true,
		durationOutput: "123.4\n",
	}
}

func (f *fakeRunner) fail(stage string) *fakeRunner {
	f.failStages[stage] = true
	return f
}

func classify(name string, args []string) string {
	joined := strings.Join(args, " ")
	switch {
	case name == "pdftotext":
		return "pdftotext"
	case name == "ffprobe" && strings.Contains(joined, "format=duration"):
		return "probe_duration"
	case name == "ffprobe" && strings.Contains(joined, "a:0"):
		return "probe_audio"
	case strings.Contains(joined, "-vframes"):
		return "thumbnail"
	case strings.Contains(joined, "-vn"):
		return "extract_audio"
	case strings.Contains(joined, "-f dash"):
		return "manifest"
	case strings.Contains(joined, "scale=640:360"):
		return "encode_360p"
	case strings.Contains(joined, "scale=1280:720"):
		return "encode_720p"
	case strings.Contains(joined, "scale=1920:1080"):
		return "encode_1080p"
	default:
		return "unknown"
	}
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ffmpeg.Result {
	f.record(name, args)
	stage := classify(name, args)

	if f.failStages[stage] {
		return ffmpeg.Result{ExitCode: 1, Output: stage + " failed\n"}
	}

	switch stage {
	case "probe_duration":
		return ffmpeg.Result{Succeeded: true, Output: f.durationOutput}
	case "probe_audio":
		if f.hasAudio {
			return ffmpeg.Result{Succeeded: true, Output: "aac\n"}
		}
		return ffmpeg.Result{Succeeded: true, Output: "\n"}
	case "extract_audio":
		// Last arg is the output path; the transcribe stage reads it back.
		_ = mustWriteFile(args[len(args)-1], "fake audio")
	case "pdftotext":
		_ = mustWriteFile(args[len(args)-1], "Doc sentence one. Doc sentence two.")
	}
	return ffmpeg.Result{Succeeded: true}
}

func (f *fakeRunner) record(name string, args []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, toolCall{name: name, args: append([]string(nil), args...)})
}

func (f *fakeRunner) callsFor(stage string) []toolCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []toolCall
	for _, c := range f.calls {
		if classify(c.name, c.args) == stage {
			out = append(out, c)
		}
	}
	return out
}

// fakeRepo is an in-memory Repository recording status history per entity.
type fakeRepo struct {
	mu sync.Mutex

	videos  map[int64]*entities.Video
	courses map[int64]*entities.Course

	transcripts []*entities.Transcript
	notes       map[int64]*entities.CourseNotes

	videoStatuses  map[int64][]constant.VideoStatus
	courseStatuses map[int64][]constant.CourseStatus

	processedPathWrites int
	detectedLanguages   map[int64]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		videos:            make(map[int64]*entities.Video),
		courses:           make(map[int64]*entities.Course),
		notes:             make(map[int64]*entities.CourseNotes),
		videoStatuses:     make(map[int64][]constant.VideoStatus),
		courseStatuses:    make(map[int64][]constant.CourseStatus),
		detectedLanguages: make(map[int64]string),
	}
}

func (r *fakeRepo) Transaction(ctx context.Context, callback func(ctx context.Context) error, opts ...*sql.TxOptions) error {
	return callback(ctx)
}

func (r *fakeRepo) GetDB() *gorm.DB {
	return nil
}

func (r *fakeRepo) FindVideoByID(ctx context.Context, id int64) (*entities.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	video, ok := r.videos[id]
	if !ok {
		return nil, fmt.Errorf("video %d not found", id)
	}
	copied := *video
	return &copied, nil
}

func (r *fakeRepo) UpdateVideoStatus(ctx context.Context, id int64, status constant.VideoStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if video, ok := r.videos[id]; ok {
		video.Status = status
	}
	r.videoStatuses[id] = append(r.videoStatuses[id], status)
	return nil
}

func (r *fakeRepo) UpdateVideoDuration(ctx context.Context, id int64, seconds int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if video, ok := r.videos[id]; ok {
		video.Duration = &seconds
	}
	return nil
}

func (r *fakeRepo) UpdateVideoProcessedPath(ctx context.Context, id int64, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if video, ok := r.videos[id]; ok {
		video.ProcessedPath = &path
	}
	r.processedPathWrites++
	return nil
}

func (r *fakeRepo) IncrementVideoViews(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if video, ok := r.videos[id]; ok {
		video.Views++
	}
	return nil
}

func (r *fakeRepo) FindCourseByID(ctx context.Context, id int64) (*entities.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	course, ok := r.courses[id]
	if !ok {
		return nil, fmt.Errorf("course %d not found", id)
	}
	copied := *course
	return &copied, nil
}

func (r *fakeRepo) UpdateCourseStatus(ctx context.Context, id int64, status constant.CourseStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if course, ok := r.courses[id]; ok {
		course.Status = status
	}
	r.courseStatuses[id] = append(r.courseStatuses[id], status)
	return nil
}

func (r *fakeRepo) UpdateCourseDetectedLanguages(ctx context.Context, id int64, summary string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detectedLanguages[id] = summary
	return nil
}

func (r *fakeRepo) InsertTranscript(ctx context.Context, transcript *entities.Transcript) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *transcript
	r.transcripts = append(r.transcripts, &copied)
	return nil
}

func (r *fakeRepo) FindTranscriptByCourseID(ctx context.Context, courseID int64) (*entities.Transcript, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.transcripts) - 1; i >= 0; i-- {
		if r.transcripts[i].CourseID == courseID {
			copied := *r.transcripts[i]
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("transcript for course %d not found", courseID)
}

func (r *fakeRepo) UpsertCourseNotes(ctx context.Context, courseID int64, language, notes string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.notes[courseID]
	if !ok {
		row = &entities.CourseNotes{CourseID: courseID}
		r.notes[courseID] = row
	}
	switch language {
	case "en":
		row.NotesEn = &notes
	case "es":
		row.NotesEs = &notes
	case "ca":
		row.NotesCa = &notes
	default:
		return fmt.Errorf("unsupported notes language: %s", language)
	}
	return nil
}

func (r *fakeRepo) FindNotesByCourseID(ctx context.Context, courseID int64) (*entities.CourseNotes, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.notes[courseID]
	if !ok {
		return nil, fmt.Errorf("notes for course %d not found", courseID)
	}
	copied := *row
	return &copied, nil
}

func mustWriteFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
