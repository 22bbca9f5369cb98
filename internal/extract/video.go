package extract

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/clarusedu/studybuddy/internal/domain"
)

// frameInterval is the sampling rate for visual text extraction: one frame
// every N seconds of video.
const frameInterval = 5

// maxFrames caps the number of sampled frames per video to bound vision
// model spend.
const maxFrames = 6

var videoExtensions = map[string]struct{}{
	".mp4": {}, ".mov": {}, ".mkv": {}, ".avi": {}, ".webm": {},
}

// VideoExtractor runs two extractions per video: text read from sampled
// frames, and a speech-to-text transcript of the audio track. Both operate
// on temp copies that are removed whether or not extraction succeeds.
type VideoExtractor struct {
	reader      ImageTextReader
	transcriber Transcriber
	tempDir     string
	ffmpeg      string
	logger      *zap.Logger
}

// NewVideoExtractor creates a video extractor. ffmpegPath "" means "ffmpeg"
// resolved from PATH.
func NewVideoExtractor(reader ImageTextReader, transcriber Transcriber, tempDir, ffmpegPath string, logger *zap.Logger) *VideoExtractor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &VideoExtractor{
		reader:      reader,
		transcriber: transcriber,
		tempDir:     tempDir,
		ffmpeg:      ffmpegPath,
		logger:      logger,
	}
}

// Extract stages the uploaded video in a scoped temp dir and returns frame
// text documents followed by the audio transcript document.
func (e *VideoExtractor) Extract(ctx context.Context, filename string, data []byte) ([]domain.Document, error) {
	if _, ok := videoExtensions[strings.ToLower(filepath.Ext(filename))]; !ok {
		return nil, fmt.Errorf("%s: %w", filename, domain.ErrUnsupportedFormat)
	}

	workDir, err := os.MkdirTemp(e.tempDir, "video-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	videoPath := filepath.Join(workDir, "input"+strings.ToLower(filepath.Ext(filename)))
	if err := os.WriteFile(videoPath, data, 0o600); err != nil {
		return nil, fmt.Errorf("stage video: %w", err)
	}

	var docs []domain.Document

	frameDocs, err := e.extractFrameText(ctx, videoPath, filename, workDir)
	if err != nil {
		return nil, err
	}
	docs = append(docs, frameDocs...)

	transcript, err := e.transcribeAudio(ctx, videoPath, workDir)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(transcript) != "" {
		docs = append(docs, domain.Document{
			Text: transcript,
			Meta: domain.Metadata{Source: filename},
		})
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%s: %w", filename, domain.ErrEmptyText)
	}
	return docs, nil
}

// extractFrameText samples frames with ffmpeg and reads text from each via
// the vision model.
func (e *VideoExtractor) extractFrameText(ctx context.Context, videoPath, filename, workDir string) ([]domain.Document, error) {
	framesDir := filepath.Join(workDir, "frames")
	if err := os.Mkdir(framesDir, 0o700); err != nil {
		return nil, fmt.Errorf("create frames dir: %w", err)
	}

	args := []string{
		"-i", videoPath,
		"-vf", fmt.Sprintf("fps=1/%d", frameInterval),
		"-frames:v", fmt.Sprintf("%d", maxFrames),
		filepath.Join(framesDir, "frame-%02d.png"),
	}
	if err := runCommand(ctx, e.ffmpeg, args...); err != nil {
		return nil, fmt.Errorf("sample frames: %w", err)
	}

	frames, err := filepath.Glob(filepath.Join(framesDir, "frame-*.png"))
	if err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}
	sort.Strings(frames)

	var docs []domain.Document
	for _, frame := range frames {
		data, err := os.ReadFile(frame)
		if err != nil {
			return nil, fmt.Errorf("read frame: %w", err)
		}
		text, err := e.reader.ExtractImageText(ctx, data, "image/png")
		if err != nil {
			return nil, fmt.Errorf("read frame text: %w", err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		docs = append(docs, domain.Document{
			Text: text,
			Meta: domain.Metadata{Source: filename},
		})
	}
	return docs, nil
}

// transcribeAudio pulls the audio track out with ffmpeg and transcribes it.
func (e *VideoExtractor) transcribeAudio(ctx context.Context, videoPath, workDir string) (string, error) {
	audioPath := filepath.Join(workDir, "audio.mp3")

	args := []string{"-i", videoPath, "-vn", "-acodec", "libmp3lame", "-q:a", "4", audioPath}
	if err := runCommand(ctx, e.ffmpeg, args...); err != nil {
		// Videos without an audio stream are fine; only the frame text is used.
		e.logger.Warn("audio extraction failed, skipping transcript", zap.Error(err))
		return "", nil
	}

	transcript, err := e.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}
	return transcript, nil
}

// runCommand executes an external tool, folding stderr into the error.
func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > 500 {
			msg = msg[len(msg)-500:]
		}
		return fmt.Errorf("%s: %w: %s", name, err, msg)
	}
	return nil
}
