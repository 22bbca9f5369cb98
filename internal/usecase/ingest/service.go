package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/clarusedu/studybuddy/internal/domain"
)

// File is an uploaded file pending ingestion.
type File struct {
	Name string
	Data []byte
}

// Service turns uploaded material into embedded chunks. Files in a batch
// are processed sequentially; the first failure aborts the batch so the
// caller sees exactly which upload broke.
type Service struct {
	store   ChunkWriter
	chunker Chunker
	embed   domain.BatchEmbedder
	pdfs    FileExtractor
	images  FileExtractor
	videos  FileExtractor
	youtube URLExtractor
	logger  *zap.Logger
}

// New creates an ingestion service.
func New(
	store ChunkWriter,
	chunker Chunker,
	embed domain.BatchEmbedder,
	pdfs, images, videos FileExtractor,
	youtube URLExtractor,
	logger *zap.Logger,
) *Service {
	return &Service{
		store:   store,
		chunker: chunker,
		embed:   embed,
		pdfs:    pdfs,
		images:  images,
		videos:  videos,
		youtube: youtube,
		logger:  logger,
	}
}

// IngestPDFs extracts, chunks, and stores a batch of PDF uploads.
// Returns the number of chunks stored.
func (s *Service) IngestPDFs(ctx context.Context, files []File) (int, error) {
	return s.ingestFiles(ctx, files, s.pdfs, "pdf")
}

// IngestImages runs image uploads through vision-based text extraction.
func (s *Service) IngestImages(ctx context.Context, files []File) (int, error) {
	return s.ingestFiles(ctx, files, s.images, "image")
}

// IngestVideos transcribes and samples video uploads.
func (s *Service) IngestVideos(ctx context.Context, files []File) (int, error) {
	return s.ingestFiles(ctx, files, s.videos, "video")
}

// IngestYouTube downloads and transcribes a YouTube URL.
func (s *Service) IngestYouTube(ctx context.Context, url string) (int, error) {
	docs, err := s.youtube.Extract(ctx, url)
	if err != nil {
		return 0, fmt.Errorf("extract %s: %w", url, err)
	}

	stored, err := s.storeDocs(ctx, docs)
	if err != nil {
		return 0, err
	}

	if err := s.store.Persist(ctx); err != nil {
		return 0, err
	}

	s.logger.Info("youtube ingested", zap.String("url", url), zap.Int("chunks", stored))
	return stored, nil
}

func (s *Service) ingestFiles(ctx context.Context, files []File, ex FileExtractor, kind string) (int, error) {
	if len(files) == 0 {
		return 0, nil
	}

	var total int
	for _, f := range files {
		docs, err := ex.Extract(ctx, f.Name, f.Data)
		if err != nil {
			return 0, fmt.Errorf("extract %s: %w", f.Name, err)
		}

		stored, err := s.storeDocs(ctx, docs)
		if err != nil {
			return 0, fmt.Errorf("ingest %s: %w", f.Name, err)
		}
		total += stored
	}

	if err := s.store.Persist(ctx); err != nil {
		return 0, err
	}

	s.logger.Info("batch ingested",
		zap.String("kind", kind),
		zap.Int("files", len(files)),
		zap.Int("chunks", total),
	)
	return total, nil
}

func (s *Service) storeDocs(ctx context.Context, docs []domain.Document) (int, error) {
	chunks := s.chunker.Split(docs)
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	result, err := s.embed.BatchEmbed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed %d chunks: %w", len(chunks), err)
	}
	if len(result.Embeddings) != len(chunks) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d chunks", len(result.Embeddings), len(chunks))
	}

	if _, err := s.store.Add(ctx, chunks, result.Embeddings); err != nil {
		return 0, err
	}
	return len(chunks), nil
}
