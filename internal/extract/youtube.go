package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/clarusedu/studybuddy/internal/domain"
)

// YouTubeExtractor downloads the audio of a YouTube URL into a scoped temp
// dir and transcribes it. The dir is removed on all exit paths.
type YouTubeExtractor struct {
	transcriber Transcriber
	tempDir     string
	ytdlp       string
	logger      *zap.Logger
}

// NewYouTubeExtractor creates a YouTube extractor. ytdlpPath "" means
// "yt-dlp" resolved from PATH.
func NewYouTubeExtractor(transcriber Transcriber, tempDir, ytdlpPath string, logger *zap.Logger) *YouTubeExtractor {
	if ytdlpPath == "" {
		ytdlpPath = "yt-dlp"
	}
	return &YouTubeExtractor{
		transcriber: transcriber,
		tempDir:     tempDir,
		ytdlp:       ytdlpPath,
		logger:      logger,
	}
}

// Extract downloads and transcribes the audio for url. Returned documents
// carry the URL as their source.
func (e *YouTubeExtractor) Extract(ctx context.Context, url string) ([]domain.Document, error) {
	workDir, err := os.MkdirTemp(e.tempDir, "youtube-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	args := []string{
		"--extract-audio",
		"--audio-format", "mp3",
		"--no-playlist",
		"--output", filepath.Join(workDir, "%(id)s.%(ext)s"),
		url,
	}
	if err := runCommand(ctx, e.ytdlp, args...); err != nil {
		return nil, fmt.Errorf("download audio: %w: %w", domain.ErrUpstream, err)
	}

	audioFiles, err := filepath.Glob(filepath.Join(workDir, "*.mp3"))
	if err != nil {
		return nil, fmt.Errorf("list audio files: %w", err)
	}
	if len(audioFiles) == 0 {
		return nil, fmt.Errorf("%s: %w", url, domain.ErrEmptyText)
	}
	sort.Strings(audioFiles)

	var docs []domain.Document
	for _, audio := range audioFiles {
		e.logger.Info("transcribing youtube audio", zap.String("url", url), zap.String("file", filepath.Base(audio)))
		transcript, err := e.transcriber.Transcribe(ctx, audio)
		if err != nil {
			return nil, fmt.Errorf("transcribe %s: %w", filepath.Base(audio), err)
		}
		if strings.TrimSpace(transcript) == "" {
			continue
		}
		docs = append(docs, domain.Document{
			Text: transcript,
			Meta: domain.Metadata{Source: url},
		})
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%s: %w", url, domain.ErrEmptyText)
	}
	return docs, nil
}
