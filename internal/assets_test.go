package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCreateBlackVideoArgs(t *testing.T) {
	runner := &fakeRunner{}
	withFakeRunner(t, runner)

	out := filepath.Join(t.TempDir(), "Movie (2020)", "Movie (2020).mp4")
	g := &AssetGenerator{FFmpegPath: "ffmpeg"}
	if err := g.CreateBlackVideo(out, 1, "1920x1080", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if runner.callCount() != 1 || runner.calls[0][0] != "ffmpeg" {
		t.Fatalf("calls: %v", runner.calls)
	}
	joined := strings.Join(runner.calls[0], " ")
	for _, want := range []string{"-n", "color=c=black:s=1920x1080:r=30", "-t 1", "libx264", out} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q in %q", want, joined)
		}
	}
	// Parent folder is created before ffmpeg runs.
	if _, err := os.Stat(filepath.Dir(out)); err != nil {
		t.Fatalf("parent folder missing: %v", err)
	}
}

func TestCreateBackdropImageArgs(t *testing.T) {
	runner := &fakeRunner{}
	withFakeRunner(t, runner)

	out := filepath.Join(t.TempDir(), "Movie (2020)", BackdropFilename)
	g := &AssetGenerator{FFmpegPath: "ffmpeg"}
	if err := g.CreateBackdropImage(out, "1920x1080", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	joined := strings.Join(runner.calls[0], " ")
	for _, want := range []string{"-y", "color=c=black:s=1920x1080", "-vframes 1", out} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q in %q", want, joined)
		}
	}
}
