package services

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/viraltrack/viraltrack-backend/internal/logger"
)

// MediaToolsService is the glue around system binaries:
//
// REQUIRED BINARIES in worker runtime:
// - yt-dlp for fetching the source video from a public URL
// - ffmpeg for video -> mono audio suitable for speech recognition
//
// This service is synchronous and should be called from the transcription
// worker, not request handlers.
type MediaToolsService interface {
	AssertReady(ctx context.Context) error

	DownloadVideo(ctx context.Context, videoURL string, outDir string) (videoPath string, err error)
	ExtractAudio(ctx context.Context, videoPath string, outPath string, opts AudioExtractOptions) (string, error)
}

type AudioExtractOptions struct {
	SampleRateHz int    // e.g., 16000
	Channels     int    // 1
	Format       string // "wav" or "flac"
}

type mediaToolsService struct {
	log *logger.Logger

	ytdlpPath  string
	ffmpegPath string

	defaultTimeout time.Duration
}

func NewMediaToolsService(log *logger.Logger) MediaToolsService {
	return &mediaToolsService{
		log:            log.With("service", "MediaToolsService"),
		ytdlpPath:      "yt-dlp",
		ffmpegPath:     "ffmpeg",
		defaultTimeout: 10 * time.Minute,
	}
}

func (m *mediaToolsService) AssertReady(ctx context.Context) error {
	for _, bin := range []string{m.ytdlpPath, m.ffmpegPath} {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("missing required binary %q in PATH: %w", bin, err)
		}
	}
	return nil
}

// DownloadVideo fetches the video behind videoURL into outDir and returns the
// path of the downloaded file. The output template is fixed so the result can
// be located without parsing yt-dlp output.
func (m *mediaToolsService) DownloadVideo(ctx context.Context, videoURL string, outDir string) (string, error) {
	if videoURL == "" {
		return "", fmt.Errorf("videoURL required")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir outDir: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, m.defaultTimeout)
	defer cancel()

	outTemplate := filepath.Join(outDir, "video.%(ext)s")
	args := []string{
		"--no-playlist",
		"--quiet",
		"--no-warnings",
		"-f", "mp4/best",
		"-o", outTemplate,
		videoURL,
	}
	cmd := exec.CommandContext(ctx, m.ytdlpPath, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("yt-dlp download failed: %w; out=%s", err, string(out))
	}

	matches, err := filepath.Glob(filepath.Join(outDir, "video.*"))
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("downloaded video missing in %s", outDir)
	}
	return matches[0], nil
}

// ExtractAudio converts a downloaded video to mono audio. Defaults to
// 16kHz mono FLAC, the cheapest format speech recognition accepts losslessly.
func (m *mediaToolsService) ExtractAudio(ctx context.Context, videoPath string, outPath string, opts AudioExtractOptions) (string, error) {
	if videoPath == "" {
		return "", fmt.Errorf("videoPath required")
	}
	if outPath == "" {
		return "", fmt.Errorf("outPath required")
	}

	sr := opts.SampleRateHz
	if sr <= 0 {
		sr = 16000
	}
	ch := opts.Channels
	if ch <= 0 {
		ch = 1
	}
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "flac"
	}
	if format != "wav" && format != "flac" {
		return "", fmt.Errorf("unsupported audio format: %s", format)
	}

	ctx, cancel := context.WithTimeout(ctx, m.defaultTimeout)
	defer cancel()

	// ffmpeg -i in.mp4 -vn -ac 1 -ar 16000 -f flac out.flac
	args := []string{
		"-y",
		"-i", videoPath,
		"-vn",
		"-ac", strconv.Itoa(ch),
		"-ar", strconv.Itoa(sr),
		"-f", format,
		outPath,
	}
	cmd := exec.CommandContext(ctx, m.ffmpegPath, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg extract audio failed: %w; out=%s", err, string(out))
	}

	if _, err := os.Stat(outPath); err != nil {
		return "", fmt.Errorf("audio output missing at %s", outPath)
	}
	return outPath, nil
}
