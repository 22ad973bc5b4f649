package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/SalieeriW/FIB-NETFLIX/pkg/ffmpeg"
)

const manifestSegmentSeconds = "4"

// manifestArgs builds the DASH mux invocation for the tiers encoded so far.
// The same grammar serves both the partial manifest (subset of tiers,
// regenerated as tiers complete) and the final one: the partial manifest is a
// strict playable subset of the final, so a client never sees an incompatible
// swap. Audio maps and the audio adaptation set are omitted entirely when the
// source has no audio track; a broken mux is worse than a silent one.
func manifestArgs(outputDir, baseName, manifestPath string, tiers []Tier, hasAudio bool) []string {
	var args []string
	for _, tier := range tiers {
		args = append(args, "-i", filepath.Join(outputDir, tierFilename(baseName, tier)))
	}

	for i := range tiers {
		args = append(args, "-map", fmt.Sprintf("%d:v", i))
	}
	if hasAudio {
		// The trailing ? marks the stream optional so one tier missing audio
		// does not abort the whole mux.
		for i := range tiers {
			args = append(args, "-map", fmt.Sprintf("%d:a?", i))
		}
	}

	args = append(args,
		"-c", "copy",
		"-f", "dash",
		"-seg_duration", manifestSegmentSeconds,
		"-use_template", "1",
		"-use_timeline", "1",
		"-adaptation_sets", adaptationSets(len(tiers), hasAudio),
		manifestPath,
		"-y",
	)
	return args
}

func adaptationSets(tierCount int, hasAudio bool) string {
	var b strings.Builder
	b.WriteString("id=0,streams=")
	for i := 0; i < tierCount; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, "%d", i)
	}
	if hasAudio {
		b.WriteString(" id=1,streams=")
		for i := 0; i < tierCount; i++ {
			if i > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, "%d", tierCount+i)
		}
	}
	return b.String()
}

func buildManifest(ctx context.Context, run ffmpeg.Runner, outputDir, baseName, manifestPath string, tiers []Tier, hasAudio bool) ffmpeg.Result {
	return run.Run(ctx, "ffmpeg", manifestArgs(outputDir, baseName, manifestPath, tiers, hasAudio)...)
}
