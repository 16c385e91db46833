package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"studyplanner/internal/logger"
	"studyplanner/internal/model"
	"studyplanner/internal/rag"
	"studyplanner/internal/repository"
)

const (
	defaultSearchTopK = 5
	maxSearchTopK     = 20
)

// SyllabusIndex is the vector index over the current syllabus.
type SyllabusIndex interface {
	Index(ctx context.Context, text, sourceLabel string) (int, error)
	Search(ctx context.Context, query string, topK int) []rag.Result
}

// TextExtractor returns the plain text of the document at path.
type TextExtractor func(path string) (string, error)

type SyllabusService struct {
	repo      *repository.SyllabusRepository
	index     SyllabusIndex
	extract   TextExtractor
	uploadDir string
	log       *logger.Logger
}

func NewSyllabusService(
	repo *repository.SyllabusRepository,
	index SyllabusIndex,
	extract TextExtractor,
	uploadDir string,
	log *logger.Logger,
) *SyllabusService {
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SyllabusService{
		repo:      repo,
		index:     index,
		extract:   extract,
		uploadDir: uploadDir,
		log:       log.With("component", "syllabus_service"),
	}
}

type UploadResult struct {
	SyllabusID    uint   `json:"syllabus_id"`
	Filename      string `json:"filename"`
	ChunksIndexed int    `json:"chunks_indexed"`
}

// Upload stores the file under the upload directory, extracts its text,
// records the syllabus and replaces the index with its chunks.
func (s *SyllabusService) Upload(ctx context.Context, filename string, content io.Reader) (*UploadResult, error) {
	safeName := SecureFilename(filename)
	if safeName == "" {
		return nil, fmt.Errorf("%w: empty filename", ErrInvalidInput)
	}

	path, err := s.save(safeName, content)
	if err != nil {
		return nil, err
	}

	text, err := s.extract(path)
	if err != nil {
		s.log.Warn("syllabus text extraction failed", "filename", safeName, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrEmptyExtractedText, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyExtractedText
	}

	syllabus := &model.Syllabus{Filename: safeName, Content: text}
	if err := s.repo.Create(ctx, syllabus); err != nil {
		return nil, err
	}

	chunks, err := s.index.Index(ctx, text, safeName)
	if err != nil {
		return nil, fmt.Errorf("index syllabus failed: %w", err)
	}

	s.log.Info("syllabus uploaded", "filename", safeName, "syllabus_id", syllabus.ID, "chunks", chunks)
	return &UploadResult{
		SyllabusID:    syllabus.ID,
		Filename:      safeName,
		ChunksIndexed: chunks,
	}, nil
}

type SyllabusSummary struct {
	ID         uint      `json:"id"`
	Filename   string    `json:"filename"`
	Characters int       `json:"characters"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Current describes the most recently uploaded syllabus.
func (s *SyllabusService) Current(ctx context.Context) (*SyllabusSummary, error) {
	syllabus, err := s.repo.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if syllabus == nil {
		return nil, ErrNoSyllabus
	}
	return &SyllabusSummary{
		ID:         syllabus.ID,
		Filename:   syllabus.Filename,
		Characters: utf8.RuneCountInString(syllabus.Content),
		UploadedAt: syllabus.CreatedAt,
	}, nil
}

// Search queries the index directly.
func (s *SyllabusService) Search(ctx context.Context, query string, topK int) ([]rag.Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty", ErrInvalidInput)
	}
	if topK <= 0 {
		topK = defaultSearchTopK
	}
	if topK > maxSearchTopK {
		topK = maxSearchTopK
	}
	return s.index.Search(ctx, query, topK), nil
}

func (s *SyllabusService) save(name string, content io.Reader) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir failed: %w", err)
	}
	path := filepath.Join(s.uploadDir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file failed: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, content); err != nil {
		return "", fmt.Errorf("write upload file failed: %w", err)
	}
	return path, nil
}
