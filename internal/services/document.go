package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/modelhub-api/apiserver/internal/storage"
	"github.com/modelhub-api/apiserver/types"
)

// fileExtensions maps a declared file kind to its accepted extensions.
// Shared by the document and model upload paths.
var fileExtensions = map[string][]string{
	"json": {".json"},
	"csv":  {".csv"},
	"text": {".txt", ".text"},
}

func allowedExtension(kind, ext string) bool {
	for _, allowed := range fileExtensions[kind] {
		if ext == allowed {
			return true
		}
	}
	return false
}

// DocumentRepository defines persistence operations for RAG documents.
type DocumentRepository interface {
	List(ctx context.Context, offset, limit int) ([]types.Document, int, error)
	ListWithContent(ctx context.Context) ([]types.Document, error)
	Get(ctx context.Context, id string) (types.Document, error)
	Create(ctx context.Context, doc types.Document) (types.Document, error)
	Delete(ctx context.Context, id string) error
}

// DocumentUpload carries an uploaded knowledge-base file.
type DocumentUpload struct {
	Name         string
	Description  string
	DocumentType types.DocumentType
	Filename     string
	ContentType  string
	Content      []byte
}

// DocumentService manages the chatbot knowledge-base documents: upload
// with text extraction, listing and deletion.
type DocumentService struct {
	repo    DocumentRepository
	storage *storage.Storage
	logger  *slog.Logger
}

func NewDocumentService(repo DocumentRepository, objectStorage *storage.Storage, logger *slog.Logger) *DocumentService {
	return &DocumentService{repo: repo, storage: objectStorage, logger: logger}
}

// Upload validates the file against its declared type, extracts its
// text content for retrieval, stores the object and records the row.
func (s *DocumentService) Upload(ctx context.Context, upload DocumentUpload) (types.Document, error) {
	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if !allowedExtension(string(upload.DocumentType), ext) {
		return types.Document{}, ErrUnsupportedFile
	}

	text, err := extractText(string(upload.DocumentType), upload.Content)
	if err != nil {
		return types.Document{}, err
	}

	key := storage.ObjectKey("documents", upload.Name, ext)
	size := int64(len(upload.Content))
	if err := s.storage.Put(ctx, key, bytes.NewReader(upload.Content), size, upload.ContentType); err != nil {
		return types.Document{}, fmt.Errorf("store document object: %w", err)
	}

	doc, err := s.repo.Create(ctx, types.Document{
		Name:         upload.Name,
		Description:  upload.Description,
		DocumentType: upload.DocumentType,
		ObjectKey:    key,
		ContentType:  upload.ContentType,
		TextContent:  text,
	})
	if err != nil {
		// The row is the source of truth; drop the orphaned object.
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.Error("delete orphaned document object", "key", key, "error", delErr)
		}
		return types.Document{}, err
	}
	return doc, nil
}

// List returns a page of documents without their extracted text.
func (s *DocumentService) List(ctx context.Context, offset, limit int) ([]types.Document, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, offset, limit)
}

func (s *DocumentService) Get(ctx context.Context, id string) (types.Document, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Document{}, err
	}
	// Extracted text is internal to retrieval.
	doc.TextContent = ""
	return doc, nil
}

// Delete removes the stored object and the row.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, doc.ObjectKey); err != nil {
		s.logger.Error("delete document object", "key", doc.ObjectKey, "error", err)
	}
	return s.repo.Delete(ctx, id)
}

// extractText validates the payload against its declared kind and
// returns the plain text indexed for retrieval.
func extractText(kind string, content []byte) (string, error) {
	switch kind {
	case "json":
		if !json.Valid(content) {
			return "", ErrUnsupportedFile
		}
		return string(content), nil
	case "csv":
		reader := csv.NewReader(bytes.NewReader(content))
		reader.FieldsPerRecord = -1
		var b strings.Builder
		for {
			record, err := reader.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				return "", ErrUnsupportedFile
			}
			b.WriteString(strings.Join(record, " "))
			b.WriteByte('\n')
		}
		return b.String(), nil
	case "text":
		if !utf8.Valid(content) {
			return "", ErrUnsupportedFile
		}
		return string(content), nil
	default:
		return "", ErrUnsupportedFile
	}
}
