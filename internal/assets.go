package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// AssetGenerator produces placeholder videos and backdrop images through the
// external ffmpeg binary.
type AssetGenerator struct {
	FFmpegPath string
}

func overwriteFlag(overwrite bool) string {
	if overwrite {
		return "-y"
	}
	return "-n"
}

// CreateBlackVideo writes a solid-black placeholder video of the given
// duration and resolution.
func (g *AssetGenerator) CreateBlackVideo(outPath string, duration int, resolution string, overwrite bool) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return err
	}
	args := []string{
		overwriteFlag(overwrite),
		"-f", "lavfi", "-i", fmt.Sprintf("color=c=black:s=%s:r=30", resolution),
		"-t", strconv.Itoa(duration), "-c:v", "libx264", "-pix_fmt", "yuv420p",
		"-loglevel", "error", outPath,
	}
	_, stderr, err := commandRunner.Run(g.FFmpegPath, args)
	if err != nil {
		return fmt.Errorf("ffmpeg placeholder failed (%s): %w", lastStderrLine(stderr), err)
	}
	return nil
}

// CreateBackdropImage writes a single-frame solid-black still image.
func (g *AssetGenerator) CreateBackdropImage(outPath, resolution string, overwrite bool) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return err
	}
	args := []string{
		overwriteFlag(overwrite),
		"-f", "lavfi", "-i", fmt.Sprintf("color=c=black:s=%s", resolution),
		"-vframes", "1", "-q:v", "2", "-loglevel", "error", outPath,
	}
	_, stderr, err := commandRunner.Run(g.FFmpegPath, args)
	if err != nil {
		return fmt.Errorf("ffmpeg backdrop failed (%s): %w", lastStderrLine(stderr), err)
	}
	return nil
}
