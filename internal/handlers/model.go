package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/modelhub-api/apiserver/internal/services"
	"github.com/modelhub-api/apiserver/types"
)

// ModelHandler provides the AI-model repository endpoints.
type ModelHandler struct {
	modelService *services.ModelService
}

func NewModelHandler(modelService *services.ModelService) *ModelHandler {
	return &ModelHandler{modelService: modelService}
}

// ModelRouter registers model routes. All routes require auth; the
// /admin subtree requires an admin.
func ModelRouter(r chi.Router, modelService *services.ModelService, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	handler := NewModelHandler(modelService)

	r.Use(authMiddleware)

	r.Post("/", handler.UploadModel)
	r.Get("/", handler.ListModels)
	r.Get("/category/{category}", handler.ListModelsByCategory)

	r.Route("/admin", func(r chi.Router) {
		r.Use(adminMiddleware)
		r.Get("/all", handler.ListAllModels)
		r.Put("/{modelID}", handler.AdminUpdateModel)
		r.Delete("/{modelID}", handler.AdminDeleteModel)
	})

	r.Route("/{modelID}", func(r chi.Router) {
		r.Get("/", handler.GetModel)
		r.Get("/download", handler.DownloadModel)
		r.Delete("/", handler.DeleteModel)
	})
}

type ModelListResponse struct {
	Items []types.Model `json:"items"`
	Total int           `json:"total"`
	Skip  int           `json:"skip"`
	Limit int           `json:"limit"`
}

type AdminModelUpdateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ModelType   string `json:"model_type"`
	Category    string `json:"category"`
}

func (h *ModelHandler) UploadModel(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMem); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	category := strings.TrimSpace(r.FormValue("category"))
	if name == "" || category == "" {
		writeError(w, http.StatusBadRequest, "name and category are required")
		return
	}

	file, err := parseUploadedFile(r, "file")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	model, err := h.modelService.Upload(r.Context(), user, services.ModelUpload{
		Name:        name,
		Description: strings.TrimSpace(r.FormValue("description")),
		ModelType:   types.ModelType(strings.TrimSpace(r.FormValue("model_type"))),
		Category:    category,
		Filename:    file.Filename,
		ContentType: file.ContentType,
		Content:     file.Data,
	})
	if err != nil {
		writeServiceError(w, err, "failed to upload model")
		return
	}

	writeJSON(w, http.StatusCreated, model)
}

func (h *ModelHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	skip, limit, err := parseSkipLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	models, total, err := h.modelService.List(r.Context(), user, skip, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list models")
		return
	}

	writeJSON(w, http.StatusOK, ModelListResponse{Items: models, Total: total, Skip: skip, Limit: limit})
}

func (h *ModelHandler) ListModelsByCategory(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	skip, limit, err := parseSkipLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	category := chi.URLParam(r, "category")
	models, total, err := h.modelService.ListByCategory(r.Context(), user, category, skip, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list models")
		return
	}

	writeJSON(w, http.StatusOK, ModelListResponse{Items: models, Total: total, Skip: skip, Limit: limit})
}

func (h *ModelHandler) GetModel(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	model, err := h.modelService.Get(r.Context(), user, chi.URLParam(r, "modelID"))
	if err != nil {
		writeServiceError(w, err, "failed to fetch model")
		return
	}
	writeJSON(w, http.StatusOK, model)
}

func (h *ModelHandler) DownloadModel(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	model, reader, err := h.modelService.Download(r.Context(), user, chi.URLParam(r, "modelID"))
	if err != nil {
		writeServiceError(w, err, "failed to download model")
		return
	}
	defer reader.Close()

	contentType := model.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(model.ObjectKey)))
	_, _ = io.Copy(w, reader)
}

func (h *ModelHandler) DeleteModel(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.modelService.Delete(r.Context(), user, chi.URLParam(r, "modelID")); err != nil {
		writeServiceError(w, err, "failed to delete model")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ModelHandler) ListAllModels(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := parseSkipLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	models, total, err := h.modelService.ListAll(r.Context(), skip, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list models")
		return
	}

	writeJSON(w, http.StatusOK, ModelListResponse{Items: models, Total: total, Skip: skip, Limit: limit})
}

func (h *ModelHandler) AdminUpdateModel(w http.ResponseWriter, r *http.Request) {
	var req AdminModelUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	model, err := h.modelService.AdminUpdate(r.Context(), chi.URLParam(r, "modelID"), services.ModelUpdate{
		Name:        req.Name,
		Description: req.Description,
		ModelType:   types.ModelType(req.ModelType),
		Category:    req.Category,
	})
	if err != nil {
		writeServiceError(w, err, "failed to update model")
		return
	}
	writeJSON(w, http.StatusOK, model)
}

func (h *ModelHandler) AdminDeleteModel(w http.ResponseWriter, r *http.Request) {
	if err := h.modelService.AdminDelete(r.Context(), chi.URLParam(r, "modelID")); err != nil {
		writeServiceError(w, err, "failed to delete model")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
