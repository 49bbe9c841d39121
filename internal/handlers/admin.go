package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/modelhub-api/apiserver/internal/services"
	"github.com/modelhub-api/apiserver/types"
)

// AdminHandler provides the admin user-management endpoints.
type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// AdminRouter registers admin user routes. Every route requires an
// authenticated admin.
func AdminRouter(r chi.Router, adminService *services.AdminService, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	handler := NewAdminHandler(adminService)

	r.Use(authMiddleware, adminMiddleware)

	r.Route("/users", func(r chi.Router) {
		r.Post("/", handler.CreateUser)
		r.Get("/", handler.ListUsers)
		r.Route("/{userID}", func(r chi.Router) {
			r.Get("/", handler.GetUser)
			r.Put("/", handler.UpdateUser)
			r.Delete("/", handler.DeleteUser)
			r.Post("/block", handler.BlockUser)
			r.Post("/unblock", handler.UnblockUser)
		})
	})
}

type AdminUserRequest struct {
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	Password   string `json:"password"`
	IsActive   bool   `json:"is_active"`
	IsVerified bool   `json:"is_verified"`
	IsAdmin    bool   `json:"is_admin"`
}

type UserListResponse struct {
	Items []types.User `json:"items"`
	Total int          `json:"total"`
	Skip  int          `json:"skip"`
	Limit int          `json:"limit"`
}

type BlockUserRequest struct {
	Reason string `json:"reason"`
}

func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req AdminUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	user, err := h.adminService.CreateUser(r.Context(), services.AdminUserInput{
		Email:      req.Email,
		FullName:   req.FullName,
		Password:   req.Password,
		IsActive:   req.IsActive,
		IsVerified: req.IsVerified,
		IsAdmin:    req.IsAdmin,
	})
	if err != nil {
		writeServiceError(w, err, "failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := parseSkipLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	search := strings.TrimSpace(r.URL.Query().Get("search"))

	users, total, err := h.adminService.ListUsers(r.Context(), skip, limit, search)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	writeJSON(w, http.StatusOK, UserListResponse{Items: users, Total: total, Skip: skip, Limit: limit})
}

func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.adminService.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeServiceError(w, err, "failed to fetch user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req AdminUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.adminService.UpdateUser(r.Context(), chi.URLParam(r, "userID"), services.AdminUserInput{
		Email:      req.Email,
		FullName:   req.FullName,
		Password:   req.Password,
		IsActive:   req.IsActive,
		IsVerified: req.IsVerified,
		IsAdmin:    req.IsAdmin,
	})
	if err != nil {
		writeServiceError(w, err, "failed to update user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.adminService.DeleteUser(r.Context(), chi.URLParam(r, "userID")); err != nil {
		writeServiceError(w, err, "failed to delete user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) BlockUser(w http.ResponseWriter, r *http.Request) {
	var req BlockUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.adminService.Block(r.Context(), chi.URLParam(r, "userID"), req.Reason)
	if err != nil {
		writeServiceError(w, err, "failed to block user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) UnblockUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.adminService.Unblock(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeServiceError(w, err, "failed to unblock user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
