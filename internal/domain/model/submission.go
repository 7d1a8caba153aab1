package model

// Submission is one stored instance of form data plus request metadata.
// Immutable once created; removed only by an explicit admin delete.
type Submission struct {
	ID        string                 `json:"id"`
	FormID    string                 `json:"formId"`
	Data      map[string]interface{} `json:"data"`
	Metadata  SubmissionMetadata     `json:"metadata"`
	CreatedAt string                 `json:"createdAt"` // ISO-8601, assigned by the service
}

type SubmissionMetadata struct {
	IPAddress string  `json:"ipAddress"`
	UserAgent string  `json:"userAgent"`
	Referrer  *string `json:"referrer,omitempty"`
}

// ListQuery carries the admin list filters. Zero values mean "no
// constraint". Dates are compared lexicographically against the stored
// ISO-8601 created_at text, so callers must supply normalized ISO-8601.
type ListQuery struct {
	Page      int
	Limit     int
	FormID    string
	StartDate string
	EndDate   string
	Search    string
}

type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	TotalItems  int `json:"totalItems"`
	Limit       int `json:"limit"`
}

// FormSummary aggregates submissions per formId for the admin filter UI.
type FormSummary struct {
	FormID        string `json:"formId"`
	Count         int    `json:"count"`
	LastCreatedAt string `json:"lastCreatedAt"`
}
