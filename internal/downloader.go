package internal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"
)

const downloadAttempts = 3

// downloadBackoff scales the linear retry delay; tests set it to zero.
var downloadBackoff = 2 * time.Second

// Downloader acquires trailer videos through the external yt-dlp binary,
// falling back to the native YouTube client when the binary is missing.
type Downloader struct {
	YtDlpPath string
}

func (d *Downloader) watchURL(youtubeKey string) string {
	return "https://www.youtube.com/watch?v=" + youtubeKey
}

func (d *Downloader) buildArgs(youtubeKey, outTemplate string) []string {
	return []string{
		"--sponsorblock-remove", "interaction,outro",
		"--quiet",
		"-f", "bestvideo[height<=1080]+bestaudio/best",
		"--merge-output-format", "mp4",
		"-o", outTemplate,
		d.watchURL(youtubeKey),
	}
}

// DownloadTrailer fetches the video for youtubeKey into outTemplate
// (a yt-dlp output template with extension negotiation). Up to three
// attempts with linearly increasing backoff; the tool's last stderr line is
// logged on each failure.
func (d *Downloader) DownloadTrailer(youtubeKey, outTemplate, title string) error {
	var lastErr error
	for attempt := 1; attempt <= downloadAttempts; attempt++ {
		_, stderr, err := commandRunner.Run(d.YtDlpPath, d.buildArgs(youtubeKey, outTemplate))
		if err == nil {
			UmmLog(INFO, "Download", "Downloaded successfully: %s (%s)", title, d.watchURL(youtubeKey))
			return nil
		}
		if errors.Is(err, exec.ErrNotFound) {
			UmmLog(WARN, "Download", "%s not found in PATH, falling back to native YouTube client.", d.YtDlpPath)
			return d.downloadNative(youtubeKey, outTemplate, title)
		}
		lastErr = err
		if attempt < downloadAttempts {
			wait := time.Duration(attempt) * downloadBackoff
			UmmLog(WARN, "Download", "Download failed (attempt %d/%d) for %s. Retrying in %v...", attempt, downloadAttempts, title, wait)
			if line := lastStderrLine(stderr); line != "" {
				UmmLog(INFO, "Download", "Reason: %s", line)
			}
			time.Sleep(wait)
		}
	}
	UmmLog(ERROR, "Download", "Failed to download trailer after %d attempts: %s", downloadAttempts, title)
	return fmt.Errorf("download failed after %d attempts: %w", downloadAttempts, lastErr)
}

func lastStderrLine(stderr string) string {
	lines := Filter(strings.Split(strings.TrimSpace(stderr), "\n"), func(s string) bool {
		return strings.TrimSpace(s) != ""
	})
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}

// downloadNative streams the video through the youtube client instead of
// yt-dlp. The %(ext)s placeholder in the template resolves to mp4.
func (d *Downloader) downloadNative(youtubeKey, outTemplate, title string) error {
	client := youtube.Client{}
	video, err := client.GetVideo(youtubeKey)
	if err != nil {
		return fmt.Errorf("failed to get video info for %s: %w", youtubeKey, err)
	}
	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return fmt.Errorf("no downloadable format with audio for %s", youtubeKey)
	}
	stream, _, err := client.GetStream(video, &formats[0])
	if err != nil {
		return fmt.Errorf("failed to get stream for %s: %w", youtubeKey, err)
	}
	defer stream.Close()

	outPath := strings.ReplaceAll(outTemplate, "%(ext)s", "mp4")
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outPath, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, stream); err != nil {
		return fmt.Errorf("failed to save video to %s: %w", outPath, err)
	}
	UmmLog(INFO, "Download", "Downloaded natively: %s -> %s", title, outPath)
	return nil
}
