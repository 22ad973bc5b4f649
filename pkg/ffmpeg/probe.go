package ffmpeg

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// ProbeDuration asks ffprobe for the container duration and returns it rounded
// to whole seconds. Any failure returns nil; the probe is best-effort.
func ProbeDuration(ctx context.Context, run Runner, inputPath string) *int {
	res := run.Run(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		inputPath,
	)
	if !res.Succeeded {
		zerolog.Ctx(ctx).Warn().Int("exit_code", res.ExitCode).Msg("duration probe failed")
		return nil
	}

	return parseDurationOutput(res.Output)
}

func parseDurationOutput(output string) *int {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		secs, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil
		}
		rounded := int(math.Round(secs))
		return &rounded
	}
	return nil
}

// HasAudioStream reports whether the file carries at least one audio stream.
// Presence of any non-blank ffprobe output line means audio exists. Errors are
// treated as "no audio" so a later mux never declares streams it cannot map.
func HasAudioStream(ctx context.Context, run Runner, inputPath string) bool {
	res := run.Run(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "stream=codec_name",
		"-of", "default=noprint_wrappers=1:nokey=1",
		inputPath,
	)
	if !res.Succeeded {
		return false
	}

	for _, line := range strings.Split(res.Output, "\n") {
		if strings.TrimSpace(line) != "" {
			return true
		}
	}
	return false
}
