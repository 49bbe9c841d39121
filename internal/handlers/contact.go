package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/modelhub-api/apiserver/internal/services"
	"github.com/modelhub-api/apiserver/types"
)

// ContactHandler provides the contact-form endpoints.
type ContactHandler struct {
	contactService *services.ContactService
}

func NewContactHandler(contactService *services.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// ContactRouter registers contact routes. Submission is public; the
// /admin subtree requires an authenticated admin.
func ContactRouter(r chi.Router, contactService *services.ContactService, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	handler := NewContactHandler(contactService)

	r.Post("/", handler.SubmitReport)

	r.Route("/admin/reports", func(r chi.Router) {
		r.Use(authMiddleware, adminMiddleware)
		r.Get("/", handler.ListReports)
		r.Post("/{reportID}/respond", handler.RespondToReport)
		r.Put("/{reportID}/status", handler.UpdateReportStatus)
	})
}

type ContactRequest struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone,omitempty"`
	Message   string  `json:"message"`
}

type RespondRequest struct {
	Response string `json:"response"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func (h *ContactHandler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	if req.FirstName == "" || req.Email == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	report, err := h.contactService.Submit(r.Context(), types.ContactReport{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Message:   req.Message,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to submit contact form")
		return
	}

	writeJSON(w, http.StatusCreated, report)
}

func (h *ContactHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.contactService.ListReports(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func (h *ContactHandler) RespondToReport(w http.ResponseWriter, r *http.Request) {
	admin, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(req.Response) == "" {
		writeError(w, http.StatusBadRequest, "response is required")
		return
	}

	report, err := h.contactService.Respond(r.Context(), chi.URLParam(r, "reportID"), req.Response, admin)
	if err != nil {
		writeServiceError(w, err, "failed to respond to report")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *ContactHandler) UpdateReportStatus(w http.ResponseWriter, r *http.Request) {
	admin, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	report, err := h.contactService.UpdateStatus(r.Context(), chi.URLParam(r, "reportID"), types.ContactStatus(req.Status), admin)
	if err != nil {
		writeServiceError(w, err, "failed to update report status")
		return
	}
	writeJSON(w, http.StatusOK, report)
}
