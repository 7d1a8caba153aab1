package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"formgate/internal/common"
	"formgate/internal/domain/model"
	"formgate/internal/platform/database"
)

// SubmissionRepository is the only component that talks to the store.
type SubmissionRepository interface {
	Create(ctx context.Context, sub *model.Submission) error
	// List returns one page of matching submissions plus the total count
	// ignoring pagination, both from the same snapshot.
	List(ctx context.Context, query model.ListQuery) ([]model.Submission, int, error)
	// ListAll returns every submission matching the filters, for exports.
	ListAll(ctx context.Context, query model.ListQuery) ([]model.Submission, error)
	ListForms(ctx context.Context) ([]model.FormSummary, error)
	// FindByID returns (nil, nil) when no row matches; absence is not an error.
	FindByID(ctx context.Context, id string) (*model.Submission, error)
	// Delete reports whether a row was actually removed.
	Delete(ctx context.Context, id string) (bool, error)
}

type sqlSubmissionRepository struct {
	db      *sql.DB
	dialect database.Dialect
}

func NewSQLSubmissionRepository(db *sql.DB, dialect database.Dialect) SubmissionRepository {
	return &sqlSubmissionRepository{db: db, dialect: dialect}
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, common.ErrStore, err)
}

const submissionColumns = "id, form_id, data, ip_address, user_agent, referrer, created_at"

func (r *sqlSubmissionRepository) Create(ctx context.Context, sub *model.Submission) error {
	data, err := json.Marshal(sub.Data)
	if err != nil {
		return storeErr("sqlSubmissionRepository.Create: serialize data", err)
	}

	var ipAddress, userAgent interface{}
	if sub.Metadata.IPAddress != "" {
		ipAddress = sub.Metadata.IPAddress
	}
	if sub.Metadata.UserAgent != "" {
		userAgent = sub.Metadata.UserAgent
	}

	query := database.Rebind(r.dialect, `INSERT INTO form_submissions (`+submissionColumns+`)
	          VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err = r.db.ExecContext(ctx, query,
		sub.ID, sub.FormID, string(data), ipAddress, userAgent, sub.Metadata.Referrer, sub.CreatedAt,
	)
	if err != nil {
		return storeErr("sqlSubmissionRepository.Create", err)
	}
	return nil
}

// buildWhere translates the optional filters into a WHERE clause. All
// filters are AND-combined; the search term matches form_id OR the raw
// JSON text of data as a literal substring. Date bounds are inclusive and
// compared lexicographically against the stored ISO-8601 text.
func buildWhere(query model.ListQuery) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if query.FormID != "" {
		conditions = append(conditions, "form_id = ?")
		args = append(args, query.FormID)
	}
	if query.StartDate != "" {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, query.StartDate)
	}
	if query.EndDate != "" {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, query.EndDate)
	}
	if query.Search != "" {
		conditions = append(conditions, "(form_id LIKE ? OR data LIKE ?)")
		pattern := "%" + query.Search + "%"
		args = append(args, pattern, pattern)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (r *sqlSubmissionRepository) List(ctx context.Context, query model.ListQuery) ([]model.Submission, int, error) {
	where, args := buildWhere(query)
	offset := (query.Page - 1) * query.Limit

	// Count and page come from a single transaction so the reported
	// total matches the page under concurrent writes.
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, storeErr("sqlSubmissionRepository.List: begin", err)
	}
	defer tx.Rollback()

	var total int
	countQuery := database.Rebind(r.dialect, "SELECT COUNT(*) FROM form_submissions"+where)
	if err := tx.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, storeErr("sqlSubmissionRepository.List: count", err)
	}

	var pageQuery strings.Builder
	pageQuery.WriteString("SELECT " + submissionColumns + " FROM form_submissions")
	pageQuery.WriteString(where)
	// id DESC breaks created_at ties so pagination stays stable.
	pageQuery.WriteString(" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?")
	pageArgs := append(append([]interface{}{}, args...), query.Limit, offset)

	rows, err := tx.QueryContext(ctx, database.Rebind(r.dialect, pageQuery.String()), pageArgs...)
	if err != nil {
		return nil, 0, storeErr("sqlSubmissionRepository.List: query", err)
	}
	defer rows.Close()

	submissions, err := scanSubmissions(rows)
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, storeErr("sqlSubmissionRepository.List: commit", err)
	}
	return submissions, total, nil
}

func (r *sqlSubmissionRepository) ListAll(ctx context.Context, query model.ListQuery) ([]model.Submission, error) {
	where, args := buildWhere(query)

	q := database.Rebind(r.dialect,
		"SELECT "+submissionColumns+" FROM form_submissions"+where+" ORDER BY created_at DESC, id DESC")
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, storeErr("sqlSubmissionRepository.ListAll", err)
	}
	defer rows.Close()

	return scanSubmissions(rows)
}

func (r *sqlSubmissionRepository) ListForms(ctx context.Context) ([]model.FormSummary, error) {
	query := `SELECT form_id, COUNT(*), MAX(created_at)
	          FROM form_submissions GROUP BY form_id ORDER BY MAX(created_at) DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storeErr("sqlSubmissionRepository.ListForms", err)
	}
	defer rows.Close()

	summaries := []model.FormSummary{}
	for rows.Next() {
		var s model.FormSummary
		if err := rows.Scan(&s.FormID, &s.Count, &s.LastCreatedAt); err != nil {
			return nil, storeErr("sqlSubmissionRepository.ListForms: scan", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("sqlSubmissionRepository.ListForms: rows", err)
	}
	return summaries, nil
}

func (r *sqlSubmissionRepository) FindByID(ctx context.Context, id string) (*model.Submission, error) {
	query := database.Rebind(r.dialect,
		"SELECT "+submissionColumns+" FROM form_submissions WHERE id = ?")

	row := r.db.QueryRowContext(ctx, query, id)
	sub, err := scanSubmission(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storeErr("sqlSubmissionRepository.FindByID", err)
	}
	return sub, nil
}

func (r *sqlSubmissionRepository) Delete(ctx context.Context, id string) (bool, error) {
	query := database.Rebind(r.dialect, "DELETE FROM form_submissions WHERE id = ?")
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, storeErr("sqlSubmissionRepository.Delete", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, storeErr("sqlSubmissionRepository.Delete: rows affected", err)
	}
	return affected > 0, nil
}

func scanSubmission(scan func(dest ...interface{}) error) (*model.Submission, error) {
	var (
		sub       model.Submission
		data      string
		ipAddress sql.NullString
		userAgent sql.NullString
		referrer  sql.NullString
	)
	if err := scan(&sub.ID, &sub.FormID, &data, &ipAddress, &userAgent, &referrer, &sub.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(data), &sub.Data); err != nil {
		return nil, fmt.Errorf("deserialize data: %w", err)
	}
	sub.Metadata.IPAddress = ipAddress.String
	sub.Metadata.UserAgent = userAgent.String
	if referrer.Valid {
		sub.Metadata.Referrer = &referrer.String
	}
	return &sub, nil
}

func scanSubmissions(rows *sql.Rows) ([]model.Submission, error) {
	submissions := []model.Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows.Scan)
		if err != nil {
			return nil, storeErr("scanSubmissions", err)
		}
		submissions = append(submissions, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("scanSubmissions: rows", err)
	}
	return submissions, nil
}
