package handler

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"formgate/internal/app/service"
	"formgate/internal/common"
	"formgate/internal/domain/model"

	"github.com/go-chi/chi/v5"
	"github.com/gosimple/slug"
)

type AdminHandler struct {
	submissionService *service.SubmissionService
}

func NewAdminHandler(ss *service.SubmissionService) *AdminHandler {
	return &AdminHandler{submissionService: ss}
}

func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/submissions", h.listSubmissions)
	r.Get("/submissions/export", h.exportSubmissions)
	r.Get("/submissions/{id}", h.getSubmission)
	r.Delete("/submissions/{id}", h.deleteSubmission)
	r.Get("/forms", h.listForms)
}

func listQueryFromRequest(r *http.Request) model.ListQuery {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return model.ListQuery{
		Page:      page,
		Limit:     limit,
		FormID:    q.Get("formId"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		Search:    q.Get("search"),
	}
}

func (h *AdminHandler) listSubmissions(w http.ResponseWriter, r *http.Request) {
	result, err := h.submissionService.ListSubmissions(r.Context(), listQueryFromRequest(r))
	if err != nil {
		respondServiceError(w, "List submissions", err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}

func (h *AdminHandler) getSubmission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	submission, err := h.submissionService.GetSubmission(r.Context(), id)
	if err != nil {
		respondServiceError(w, "Get submission", err)
		return
	}
	if submission == nil {
		common.RespondWithError(w, http.StatusNotFound, "Not found")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, submission)
}

func (h *AdminHandler) deleteSubmission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted, err := h.submissionService.DeleteSubmission(r.Context(), id)
	if err != nil {
		respondServiceError(w, "Delete submission", err)
		return
	}
	if !deleted {
		common.RespondWithError(w, http.StatusNotFound, "Not found")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AdminHandler) exportSubmissions(w http.ResponseWriter, r *http.Request) {
	query := listQueryFromRequest(r)

	var buf bytes.Buffer
	if err := h.submissionService.ExportCSV(r.Context(), query, &buf); err != nil {
		respondServiceError(w, "Export submissions", err)
		return
	}

	name := "submissions"
	if query.FormID != "" {
		name = "submissions-" + slug.Make(query.FormID)
	}
	filename := name + "-" + time.Now().UTC().Format("2006-01-02") + ".csv"

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *AdminHandler) listForms(w http.ResponseWriter, r *http.Request) {
	forms, err := h.submissionService.ListForms(r.Context())
	if err != nil {
		respondServiceError(w, "List forms", err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, forms)
}

// respondServiceError maps service errors to responses. Store failures are
// logged server-side and surfaced as an opaque 500; validation errors carry
// their message through.
func respondServiceError(w http.ResponseWriter, op string, err error) {
	status := common.HTTPStatusFromError(err)
	if status >= http.StatusInternalServerError {
		log.Printf("%s error: %v", op, err)
		common.RespondWithError(w, status, "Internal server error")
		return
	}
	if errors.Is(err, common.ErrValidation) {
		common.RespondWithError(w, status, err.Error())
		return
	}
	common.RespondWithError(w, status, http.StatusText(status))
}
