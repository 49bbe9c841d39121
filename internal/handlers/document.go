package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/modelhub-api/apiserver/internal/services"
	"github.com/modelhub-api/apiserver/types"
)

// DocumentHandler provides the knowledge-base document endpoints.
type DocumentHandler struct {
	documentService *services.DocumentService
}

func NewDocumentHandler(documentService *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// DocumentRouter registers document routes. Reads require auth; writes
// require an admin.
func DocumentRouter(r chi.Router, documentService *services.DocumentService, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	handler := NewDocumentHandler(documentService)

	r.Use(authMiddleware)
	r.Get("/", handler.ListDocuments)
	r.Get("/{documentID}", handler.GetDocument)
	r.With(adminMiddleware).Post("/", handler.UploadDocument)
	r.With(adminMiddleware).Delete("/{documentID}", handler.DeleteDocument)
}

type DocumentListResponse struct {
	Items []types.Document `json:"items"`
	Total int              `json:"total"`
	Skip  int              `json:"skip"`
	Limit int              `json:"limit"`
}

// uploadedFile is a parsed multipart file field.
type uploadedFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

func parseUploadedFile(r *http.Request, field string) (uploadedFile, error) {
	if r.MultipartForm == nil {
		return uploadedFile{}, errors.New("missing form data")
	}

	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return uploadedFile{}, errors.New("file is required")
	}
	if len(files) > 1 {
		return uploadedFile{}, errors.New("only one file is allowed")
	}

	header := files[0]
	file, err := header.Open()
	if err != nil {
		return uploadedFile{}, errors.New("failed to read upload")
	}
	data, err := readFileLimited(file, maxUploadBytes)
	_ = file.Close()
	if err != nil {
		return uploadedFile{}, err
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return uploadedFile{Filename: header.Filename, ContentType: contentType, Data: data}, nil
}

func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMem); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	docType := types.DocumentType(strings.TrimSpace(r.FormValue("document_type")))

	file, err := parseUploadedFile(r, "file")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.documentService.Upload(r.Context(), services.DocumentUpload{
		Name:         name,
		Description:  strings.TrimSpace(r.FormValue("description")),
		DocumentType: docType,
		Filename:     file.Filename,
		ContentType:  file.ContentType,
		Content:      file.Data,
	})
	if err != nil {
		writeServiceError(w, err, "failed to upload document")
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := parseSkipLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	docs, total, err := h.documentService.List(r.Context(), skip, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}

	writeJSON(w, http.StatusOK, DocumentListResponse{Items: docs, Total: total, Skip: skip, Limit: limit})
}

func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.documentService.Get(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		writeServiceError(w, err, "failed to fetch document")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.documentService.Delete(r.Context(), chi.URLParam(r, "documentID")); err != nil {
		writeServiceError(w, err, "failed to delete document")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
