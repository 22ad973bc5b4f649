package service

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/SalieeriW/FIB-NETFLIX/pkg/ffmpeg"
)

type Tier struct {
	Label     string
	Width     int
	Height    int
	Bitrate   string // e.g., "800k"
	AudioRate string // e.g., "96k"
}

// qualityLadder is encoded strictly low-to-high so the lowest tier becomes
// playable as early as possible.
var qualityLadder = []Tier{
	{Label: "360p", Width: 640, Height: 360, Bitrate: "800k", AudioRate: "96k"},
	{Label: "720p", Width: 1280, Height: 720, Bitrate: "2500k", AudioRate: "128k"},
	{Label: "1080p", Width: 1920, Height: 1080, Bitrate: "5000k", AudioRate: "192k"},
}

func tierFilename(baseName string, tier Tier) string {
	return fmt.Sprintf("%s_%s.mp4", baseName, tier.Label)
}

func encodeTierArgs(inputPath, outputPath string, tier Tier) []string {
	return []string{
		"-i", inputPath,
		"-vf", fmt.Sprintf("scale=%d:%d", tier.Width, tier.Height),
		"-c:v", "libx264",
		"-b:v", tier.Bitrate,
		"-preset", "fast",
		"-c:a", "aac",
		"-b:a", tier.AudioRate,
		outputPath,
		"-y",
	}
}

// encodeTier runs one independent encode invocation for a single rung of the
// ladder. A failed tier never invalidates tiers already encoded.
func encodeTier(ctx context.Context, run ffmpeg.Runner, inputPath, outputDir, baseName string, tier Tier) ffmpeg.Result {
	outputPath := filepath.Join(outputDir, tierFilename(baseName, tier))
	return run.Run(ctx, "ffmpeg", encodeTierArgs(inputPath, outputPath, tier)...)
}
