package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"formgate/internal/app/service"
	"formgate/internal/common"
	"formgate/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type FormHandler struct {
	submissionService *service.SubmissionService
}

func NewFormHandler(ss *service.SubmissionService) *FormHandler {
	return &FormHandler{submissionService: ss}
}

func (h *FormHandler) RegisterRoutes(r chi.Router) {
	r.Post("/submit", h.submitForm)
}

type submitResponse struct {
	Success      bool   `json:"success"`
	SubmissionID string `json:"submissionId"`
}

func (h *FormHandler) submitForm(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	metadata := model.SubmissionMetadata{
		IPAddress: common.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
	if referrer := r.Referer(); referrer != "" {
		metadata.Referrer = &referrer
	}

	id, err := h.submissionService.SubmitForm(r.Context(), body, metadata)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			common.RespondWithError(w, http.StatusBadRequest, "Invalid request: formId is required")
			return
		}
		log.Printf("Submit form error: %v", err)
		common.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	common.RespondWithJSON(w, http.StatusOK, submitResponse{Success: true, SubmissionID: id})
}
