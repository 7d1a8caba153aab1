package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"time"

	"formgate/internal/common"
	"formgate/internal/domain/model"
	"formgate/internal/domain/repository"
	"formgate/internal/platform/config"

	"github.com/google/uuid"
)

// createdAtLayout is UTC RFC3339 with milliseconds. Lexicographic order of
// these strings equals temporal order, which the date-range filters rely on.
const createdAtLayout = "2006-01-02T15:04:05.000Z07:00"

const (
	defaultPage  = 1
	defaultLimit = 20
)

type SubmissionService struct {
	repo repository.SubmissionRepository
}

func NewSubmissionService(repo repository.SubmissionRepository) *SubmissionService {
	return &SubmissionService{repo: repo}
}

type ListResult struct {
	Data       []model.Submission `json:"data"`
	Pagination model.Pagination   `json:"pagination"`
}

// SubmitForm admits one submission: it assigns the id and timestamp, strips
// formId out of the request map, and stores everything else untouched. The
// payload shape is never interpreted here; tenants own their schemas.
func (s *SubmissionService) SubmitForm(ctx context.Context, request map[string]interface{}, metadata model.SubmissionMetadata) (string, error) {
	formID, ok := request["formId"].(string)
	if !ok || formID == "" {
		return "", common.Errorf("formId is required: %w", common.ErrValidation)
	}

	data := make(map[string]interface{}, len(request)-1)
	for key, value := range request {
		if key == "formId" {
			continue
		}
		data[key] = value
	}

	submission := &model.Submission{
		ID:        uuid.NewString(),
		FormID:    formID,
		Data:      data,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC().Format(createdAtLayout),
	}

	if err := s.repo.Create(ctx, submission); err != nil {
		return "", err
	}
	return submission.ID, nil
}

// ListSubmissions sanitizes the paging inputs, delegates to the repository
// and turns the raw total into pagination metadata. currentPage echoes the
// request even past the end; such a page just has an empty data slice.
func (s *SubmissionService) ListSubmissions(ctx context.Context, query model.ListQuery) (*ListResult, error) {
	if query.Page <= 0 {
		query.Page = defaultPage
	}
	if query.Limit <= 0 {
		query.Limit = defaultLimit
	}
	if max := config.AppConfig.MaxPageLimit; max > 0 && query.Limit > max {
		query.Limit = max
	}
	if max := config.AppConfig.MaxSearchLength; max > 0 && len(query.Search) > max {
		return nil, common.Errorf("search term exceeds %d bytes: %w", max, common.ErrValidation)
	}

	submissions, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, err
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + query.Limit - 1) / query.Limit
	}

	return &ListResult{
		Data: submissions,
		Pagination: model.Pagination{
			CurrentPage: query.Page,
			TotalPages:  totalPages,
			TotalItems:  total,
			Limit:       query.Limit,
		},
	}, nil
}

// GetSubmission returns nil when no submission has that id.
func (s *SubmissionService) GetSubmission(ctx context.Context, id string) (*model.Submission, error) {
	return s.repo.FindByID(ctx, id)
}

// DeleteSubmission reports whether anything was removed, so deleting an
// already-deleted id is a normal false result rather than an error.
func (s *SubmissionService) DeleteSubmission(ctx context.Context, id string) (bool, error) {
	return s.repo.Delete(ctx, id)
}

func (s *SubmissionService) ListForms(ctx context.Context) ([]model.FormSummary, error) {
	return s.repo.ListForms(ctx)
}

// ExportCSV writes every submission matching the filters as CSV. The data
// payload is emitted as its serialized JSON text in a single column.
func (s *SubmissionService) ExportCSV(ctx context.Context, query model.ListQuery, w io.Writer) error {
	if max := config.AppConfig.MaxSearchLength; max > 0 && len(query.Search) > max {
		return common.Errorf("search term exceeds %d bytes: %w", max, common.ErrValidation)
	}

	submissions, err := s.repo.ListAll(ctx, query)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "formId", "createdAt", "ipAddress", "userAgent", "referrer", "data"}); err != nil {
		return common.Errorf("write csv header: %w", err)
	}
	for _, sub := range submissions {
		data, err := json.Marshal(sub.Data)
		if err != nil {
			return common.Errorf("serialize submission %s: %w", sub.ID, err)
		}
		referrer := ""
		if sub.Metadata.Referrer != nil {
			referrer = *sub.Metadata.Referrer
		}
		record := []string{sub.ID, sub.FormID, sub.CreatedAt, sub.Metadata.IPAddress, sub.Metadata.UserAgent, referrer, string(data)}
		if err := cw.Write(record); err != nil {
			return common.Errorf("write csv record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
