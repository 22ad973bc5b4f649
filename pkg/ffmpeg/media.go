package ffmpeg

import (
	"context"

	"github.com/rs/zerolog"
)

// GenerateThumbnail grabs a single frame at the 5 second mark, falling back to
// 1 second for clips shorter than that. Best-effort: a false return never
// fails the surrounding job.
func GenerateThumbnail(ctx context.Context, run Runner, inputPath, thumbnailPath string) bool {
	for _, seek := range []string{"00:00:05", "00:00:01"} {
		res := run.Run(ctx, "ffmpeg",
			"-i", inputPath,
			"-ss", seek,
			"-vframes", "1",
			"-vf", "scale=640:-1",
			"-q:v", "2",
			"-y",
			thumbnailPath,
		)
		if res.Succeeded {
			return true
		}
		zerolog.Ctx(ctx).Warn().Str("seek", seek).Int("exit_code", res.ExitCode).Msg("thumbnail attempt failed")
	}
	return false
}

// ExtractAudio strips the audio track into a 16 kHz mp3 suitable for speech
// recognition.
func ExtractAudio(ctx context.Context, run Runner, inputPath, audioPath string) Result {
	return run.Run(ctx, "ffmpeg",
		"-i", inputPath,
		"-vn",
		"-acodec", "libmp3lame",
		"-ar", "16000",
		"-y",
		audioPath,
	)
}
