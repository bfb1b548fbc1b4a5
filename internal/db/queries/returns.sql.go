package queries

import (
	"context"
	"database/sql"
	"time"
)

const createReturnRequest = `
INSERT INTO return_requests (applicant, tracking_number, reason, media_urls, submitted_at)
VALUES (?, ?, ?, ?, ?)
`

type CreateReturnRequestParams struct {
	Applicant      string
	TrackingNumber string
	Reason         sql.NullString
	MediaUrls      sql.NullString
	SubmittedAt    time.Time
}

func (q *Queries) CreateReturnRequest(ctx context.Context, arg CreateReturnRequestParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, createReturnRequest,
		arg.Applicant,
		arg.TrackingNumber,
		arg.Reason,
		arg.MediaUrls,
		arg.SubmittedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const listReturnRequests = `
SELECT id, applicant, tracking_number, reason, media_urls, submitted_at
FROM return_requests
ORDER BY submitted_at DESC, id DESC
`

func (q *Queries) ListReturnRequests(ctx context.Context) ([]ReturnRequest, error) {
	rows, err := q.db.QueryContext(ctx, listReturnRequests)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ReturnRequest{}
	for rows.Next() {
		var i ReturnRequest
		if err := rows.Scan(
			&i.ID,
			&i.Applicant,
			&i.TrackingNumber,
			&i.Reason,
			&i.MediaUrls,
			&i.SubmittedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getReturnRequestMedia = `
SELECT media_urls FROM return_requests WHERE id = ?
`

func (q *Queries) GetReturnRequestMedia(ctx context.Context, id int64) (sql.NullString, error) {
	row := q.db.QueryRowContext(ctx, getReturnRequestMedia, id)
	var media sql.NullString
	err := row.Scan(&media)
	return media, err
}

const updateReturnRequest = `
UPDATE return_requests
SET tracking_number = ?, reason = ?, applicant = ?
WHERE id = ?
`

type UpdateReturnRequestParams struct {
	TrackingNumber string
	Reason         sql.NullString
	Applicant      string
	ID             int64
}

// UpdateReturnRequest returns the number of matched rows.
func (q *Queries) UpdateReturnRequest(ctx context.Context, arg UpdateReturnRequestParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateReturnRequest,
		arg.TrackingNumber,
		arg.Reason,
		arg.Applicant,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteReturnRequest = `
DELETE FROM return_requests WHERE id = ?
`

func (q *Queries) DeleteReturnRequest(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteReturnRequest, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
