package service

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/SalieeriW/FIB-NETFLIX/config"
	"github.com/SalieeriW/FIB-NETFLIX/constant"
	"github.com/SalieeriW/FIB-NETFLIX/dto"
	"github.com/SalieeriW/FIB-NETFLIX/pkg/ffmpeg"
	"github.com/SalieeriW/FIB-NETFLIX/repository"
)

// TranscodeService drives the progressive DASH pipeline for one video:
// probe -> thumbnail -> 360p -> partial manifest -> 720p -> partial manifest
// -> 1080p -> final manifest, persisting a status transition at each
// milestone. The asset becomes externally playable at PARTIAL_READY.
type TranscodeService interface {
	Process(ctx context.Context, message dto.TranscodeMessage) error
	Submit(videoID int64) *Task
}

type transcodeService struct {
	repo   repository.Repository
	cfg    *config.Config
	runner ffmpeg.Runner
	pool   *Dispatcher
}

func NewTranscodeService(repo repository.Repository, cfg *config.Config, runner ffmpeg.Runner, pool *Dispatcher) TranscodeService {
	return &transcodeService{
		repo:   repo,
		cfg:    cfg,
		runner: runner,
		pool:   pool,
	}
}

func (s *transcodeService) Process(ctx context.Context, message dto.TranscodeMessage) error {
	zerolog.Ctx(ctx).Info().
		Str("message_id", message.MessageId.String()).
		Int64("video_id", message.VideoId).
		Msg("received transcode request")
	s.Submit(message.VideoId)
	return nil
}

// Submit occupies one worker-pool slot for the video's entire sequential
// pipeline and returns a handle without waiting.
func (s *transcodeService) Submit(videoID int64) *Task {
	return s.pool.Submit(func(ctx context.Context) {
		s.run(ctx, videoID)
	})
}

func (s *transcodeService) run(ctx context.Context, videoID int64) {
	logger := zerolog.Ctx(ctx).With().Int64("video_id", videoID).Logger()
	ctx = logger.WithContext(ctx)

	video, err := s.repo.FindVideoByID(ctx, videoID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to find video")
		return
	}

	logger.Info().Msg("starting transcoding")
	if err := s.repo.UpdateVideoStatus(ctx, videoID, constant.VideoStatusProcessing); err != nil {
		logger.Error().Err(err).Msg("failed to update video status")
		return
	}

	if _, err := os.Stat(video.OriginalPath); err != nil {
		logger.Error().Err(err).Str("stage", "input").Str("path", video.OriginalPath).Msg("source file not found")
		s.fail(ctx, videoID)
		return
	}

	outputDir := filepath.Join(s.cfg.Media.Root, "videos", "processed", strconv.FormatInt(videoID, 10))
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("stage", "output_dir").Msg("failed to create output directory")
		s.fail(ctx, videoID)
		return
	}

	baseName := strings.TrimSuffix(filepath.Base(video.OriginalPath), filepath.Ext(video.OriginalPath))
	manifestPath := filepath.Join(outputDir, "manifest.mpd")

	if duration := ffmpeg.ProbeDuration(ctx, s.runner, video.OriginalPath); duration != nil {
		logger.Info().Int("seconds", *duration).Msg("video duration detected")
		if err := s.repo.UpdateVideoDuration(ctx, videoID, *duration); err != nil {
			logger.Warn().Err(err).Msg("failed to persist duration")
		}
	}

	if ok := ffmpeg.GenerateThumbnail(ctx, s.runner, video.OriginalPath, filepath.Join(outputDir, "thumbnail.jpg")); !ok {
		logger.Warn().Str("stage", "thumbnail").Msg("thumbnail generation failed")
	}

	// 360p is the only fatal tier: without it no playable output ever existed.
	if res := encodeTier(ctx, s.runner, video.OriginalPath, outputDir, baseName, qualityLadder[0]); !res.Succeeded {
		logger.Error().
			Str("stage", "encode_360p").
			Int("exit_code", res.ExitCode).
			Str("output", tail(res.Output)).
			Msg("lowest tier encode failed")
		s.fail(ctx, videoID)
		return
	}

	hasAudio := ffmpeg.HasAudioStream(ctx, s.runner, filepath.Join(outputDir, tierFilename(baseName, qualityLadder[0])))

	// Only tiers whose encode actually succeeded are ever referenced by a
	// manifest.
	available := []Tier{qualityLadder[0]}
	if res := buildManifest(ctx, s.runner, outputDir, baseName, manifestPath, available, hasAudio); res.Succeeded {
		if err := s.repo.UpdateVideoProcessedPath(ctx, videoID, outputDir); err != nil {
			logger.Warn().Err(err).Msg("failed to persist processed path")
		}
		if err := s.repo.UpdateVideoStatus(ctx, videoID, constant.VideoStatusPartialReady); err != nil {
			logger.Warn().Err(err).Msg("failed to update video status")
		}
		logger.Info().Msg("360p ready, video is playable")
	} else {
		logger.Error().Str("stage", "partial_manifest").Str("output", tail(res.Output)).Msg("partial manifest build failed")
	}

	if res := encodeTier(ctx, s.runner, video.OriginalPath, outputDir, baseName, qualityLadder[1]); res.Succeeded {
		available = append(available, qualityLadder[1])
		if res := buildManifest(ctx, s.runner, outputDir, baseName, manifestPath, available, hasAudio); !res.Succeeded {
			logger.Error().Str("stage", "partial_manifest").Str("output", tail(res.Output)).Msg("partial manifest rebuild failed")
		}
		logger.Info().Msg("720p completed")
	} else {
		logger.Warn().Str("stage", "encode_720p").Int("exit_code", res.ExitCode).Msg("720p encode failed, continuing")
	}

	if res := encodeTier(ctx, s.runner, video.OriginalPath, outputDir, baseName, qualityLadder[2]); res.Succeeded {
		available = append(available, qualityLadder[2])
		if res := buildManifest(ctx, s.runner, outputDir, baseName, manifestPath, available, hasAudio); res.Succeeded {
			if err := s.repo.UpdateVideoStatus(ctx, videoID, constant.VideoStatusReady); err != nil {
				logger.Warn().Err(err).Msg("failed to update video status")
			}
			logger.Info().Msg("full transcoding completed")
		} else {
			logger.Error().Str("stage", "final_manifest").Str("output", tail(res.Output)).Msg("final manifest build failed")
		}
	} else {
		// A failed top tier is not a job failure: the tiers already encoded
		// constitute a complete asset with a lower resolution ceiling.
		logger.Warn().Str("stage", "encode_1080p").Int("exit_code", res.ExitCode).Msg("1080p encode failed")
		if err := s.repo.UpdateVideoStatus(ctx, videoID, constant.VideoStatusReady); err != nil {
			logger.Warn().Err(err).Msg("failed to update video status")
		}
		logger.Info().Msg("transcoding completed without 1080p")
	}

	s.mirror(ctx, videoID, outputDir)
}

func (s *transcodeService) fail(ctx context.Context, videoID int64) {
	if err := s.repo.UpdateVideoStatus(ctx, videoID, constant.VideoStatusError); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to mark video as errored")
	}
}

// mirror uploads the processed directory to object storage. Local paths stay
// authoritative; this is best-effort.
func (s *transcodeService) mirror(ctx context.Context, videoID int64, outputDir string) {
	if s.cfg.Storage == nil || s.cfg.MinIOBucket == "" {
		return
	}
	remotePrefix := "videos/processed/" + strconv.FormatInt(videoID, 10)
	if err := uploadDirectory(ctx, s.cfg.Storage, s.cfg.MinIOBucket, outputDir, remotePrefix); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to mirror processed directory")
		return
	}
	zerolog.Ctx(ctx).Info().Str("prefix", remotePrefix).Msg("processed directory mirrored")
}

// tail keeps log lines readable when a tool dumped pages of output.
func tail(output string) string {
	const max = 2048
	if len(output) <= max {
		return output
	}
	return output[len(output)-max:]
}
