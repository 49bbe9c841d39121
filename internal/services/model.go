package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/modelhub-api/apiserver/internal/storage"
	"github.com/modelhub-api/apiserver/types"
)

// maxModelsPerUser caps uploads for non-admin accounts.
const maxModelsPerUser = 3

// ModelRepository defines persistence operations for AI models.
type ModelRepository interface {
	List(ctx context.Context, offset, limit int, userID, category string) ([]types.Model, int, error)
	Get(ctx context.Context, id string) (types.Model, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	Create(ctx context.Context, model types.Model) (types.Model, error)
	Update(ctx context.Context, model types.Model) (types.Model, error)
	Delete(ctx context.Context, id string) error
}

// ModelUpload carries an uploaded model file and its metadata.
type ModelUpload struct {
	Name        string
	Description string
	ModelType   types.ModelType
	Category    string
	Filename    string
	ContentType string
	Content     []byte
}

// ModelUpdate carries the metadata fields an admin may change.
type ModelUpdate struct {
	Name        string
	Description string
	ModelType   types.ModelType
	Category    string
}

// ModelService manages the user model repository. Non-admin users only
// see and touch their own models; admins see everything.
type ModelService struct {
	repo    ModelRepository
	storage *storage.Storage
	logger  *slog.Logger
}

func NewModelService(repo ModelRepository, objectStorage *storage.Storage, logger *slog.Logger) *ModelService {
	return &ModelService{repo: repo, storage: objectStorage, logger: logger}
}

// Upload validates and stores a model file for the user. Non-admins are
// limited to a fixed number of models.
func (s *ModelService) Upload(ctx context.Context, user types.User, upload ModelUpload) (types.Model, error) {
	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if !allowedExtension(string(upload.ModelType), ext) {
		return types.Model{}, ErrUnsupportedFile
	}
	if _, err := extractText(string(upload.ModelType), upload.Content); err != nil {
		return types.Model{}, err
	}

	if !user.IsAdmin {
		count, err := s.repo.CountByUser(ctx, user.ID)
		if err != nil {
			return types.Model{}, err
		}
		if count >= maxModelsPerUser {
			return types.Model{}, ErrModelLimitReached
		}
	}

	key := storage.ObjectKey("models", upload.Name, ext)
	size := int64(len(upload.Content))
	if err := s.storage.Put(ctx, key, bytes.NewReader(upload.Content), size, upload.ContentType); err != nil {
		return types.Model{}, fmt.Errorf("store model object: %w", err)
	}

	model, err := s.repo.Create(ctx, types.Model{
		Name:        upload.Name,
		Description: upload.Description,
		ModelType:   upload.ModelType,
		Category:    upload.Category,
		ObjectKey:   key,
		ContentType: upload.ContentType,
		UserID:      user.ID,
	})
	if err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.Error("delete orphaned model object", "key", key, "error", delErr)
		}
		return types.Model{}, err
	}
	return model, nil
}

// List returns the user's models; admins get every model.
func (s *ModelService) List(ctx context.Context, user types.User, offset, limit int) ([]types.Model, int, error) {
	userID := user.ID
	if user.IsAdmin {
		userID = ""
	}
	return s.repo.List(ctx, normalizeOffset(offset), normalizeLimit(limit), userID, "")
}

// ListByCategory filters models by category, scoped to the user's own
// models unless they are an admin.
func (s *ModelService) ListByCategory(ctx context.Context, user types.User, category string, offset, limit int) ([]types.Model, int, error) {
	userID := user.ID
	if user.IsAdmin {
		userID = ""
	}
	return s.repo.List(ctx, normalizeOffset(offset), normalizeLimit(limit), userID, category)
}

// Get loads a model the user is allowed to see.
func (s *ModelService) Get(ctx context.Context, user types.User, id string) (types.Model, error) {
	model, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Model{}, err
	}
	if model.UserID != user.ID && !user.IsAdmin {
		return types.Model{}, ErrAccessDenied
	}
	return model, nil
}

// Download opens the stored object for a model the user may access.
// The caller owns the returned reader.
func (s *ModelService) Download(ctx context.Context, user types.User, id string) (types.Model, io.ReadCloser, error) {
	model, err := s.Get(ctx, user, id)
	if err != nil {
		return types.Model{}, nil, err
	}

	reader, err := s.storage.Get(ctx, model.ObjectKey)
	if err != nil {
		return types.Model{}, nil, fmt.Errorf("open model object: %w", err)
	}
	return model, reader, nil
}

// Delete removes a model the user owns (admins may delete any model),
// along with its stored object.
func (s *ModelService) Delete(ctx context.Context, user types.User, id string) error {
	model, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if model.UserID != user.ID && !user.IsAdmin {
		return ErrAccessDenied
	}

	if err := s.storage.Delete(ctx, model.ObjectKey); err != nil {
		s.logger.Error("delete model object", "key", model.ObjectKey, "error", err)
	}
	return s.repo.Delete(ctx, id)
}

// ListAll returns every model regardless of owner. Admin surface.
func (s *ModelService) ListAll(ctx context.Context, offset, limit int) ([]types.Model, int, error) {
	return s.repo.List(ctx, normalizeOffset(offset), normalizeLimit(limit), "", "")
}

// AdminUpdate rewrites a model's metadata. The stored object is
// untouched.
func (s *ModelService) AdminUpdate(ctx context.Context, id string, update ModelUpdate) (types.Model, error) {
	model, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Model{}, err
	}

	if update.Name != "" {
		model.Name = update.Name
	}
	if update.Description != "" {
		model.Description = update.Description
	}
	if update.ModelType != "" {
		model.ModelType = update.ModelType
	}
	if update.Category != "" {
		model.Category = update.Category
	}

	return s.repo.Update(ctx, model)
}

// AdminDelete removes any model and its stored object.
func (s *ModelService) AdminDelete(ctx context.Context, id string) error {
	model, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, model.ObjectKey); err != nil {
		s.logger.Error("delete model object", "key", model.ObjectKey, "error", err)
	}
	return s.repo.Delete(ctx, id)
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}
