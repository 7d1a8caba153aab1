package handler

import (
	"encoding/json"
	"net/http"

	"formgate/internal/app/service"
	"formgate/internal/common"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(as *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.login)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	token, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), "Invalid credentials")
		return
	}

	common.RespondWithJSON(w, http.StatusOK, loginResponse{Success: true, Token: token})
}
