package queries

import (
	"context"
	"database/sql"
	"time"
)

const createRepairRequest = `
INSERT INTO repair_requests
    (repair_id, receive_date, repair_date, purpose, order_id, variation, issue, actions, applicant, media, submitted_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateRepairRequestParams struct {
	RepairID    string
	ReceiveDate sql.NullTime
	RepairDate  sql.NullTime
	Purpose     sql.NullString
	OrderID     sql.NullString
	Variation   sql.NullString
	Issue       sql.NullString
	Actions     sql.NullString
	Applicant   string
	Media       sql.NullString
	SubmittedAt time.Time
}

func (q *Queries) CreateRepairRequest(ctx context.Context, arg CreateRepairRequestParams) error {
	_, err := q.db.ExecContext(ctx, createRepairRequest,
		arg.RepairID,
		arg.ReceiveDate,
		arg.RepairDate,
		arg.Purpose,
		arg.OrderID,
		arg.Variation,
		arg.Issue,
		arg.Actions,
		arg.Applicant,
		arg.Media,
		arg.SubmittedAt,
	)
	return err
}

const listRepairRequests = `
SELECT repair_id, receive_date, repair_date, purpose, order_id, variation, issue, actions, applicant, media, submitted_at
FROM repair_requests
ORDER BY submitted_at DESC, repair_id DESC
`

func (q *Queries) ListRepairRequests(ctx context.Context) ([]RepairRequest, error) {
	rows, err := q.db.QueryContext(ctx, listRepairRequests)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []RepairRequest{}
	for rows.Next() {
		var i RepairRequest
		if err := rows.Scan(
			&i.RepairID,
			&i.ReceiveDate,
			&i.RepairDate,
			&i.Purpose,
			&i.OrderID,
			&i.Variation,
			&i.Issue,
			&i.Actions,
			&i.Applicant,
			&i.Media,
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

const repairRequestExists = `
SELECT COUNT(*) FROM repair_requests WHERE repair_id = ?
`

func (q *Queries) RepairRequestExists(ctx context.Context, repairID string) (bool, error) {
	row := q.db.QueryRowContext(ctx, repairRequestExists, repairID)
	var n int64
	if err := row.Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

const getRepairRequestMedia = `
SELECT media FROM repair_requests WHERE repair_id = ?
`

func (q *Queries) GetRepairRequestMedia(ctx context.Context, repairID string) (sql.NullString, error) {
	row := q.db.QueryRowContext(ctx, getRepairRequestMedia, repairID)
	var media sql.NullString
	err := row.Scan(&media)
	return media, err
}

const updateRepairRequest = `
UPDATE repair_requests
SET receive_date = ?, repair_date = ?, purpose = ?, order_id = ?,
    variation = ?, issue = ?, actions = ?, applicant = ?
WHERE repair_id = ?
`

type UpdateRepairRequestParams struct {
	ReceiveDate sql.NullTime
	RepairDate  sql.NullTime
	Purpose     sql.NullString
	OrderID     sql.NullString
	Variation   sql.NullString
	Issue       sql.NullString
	Actions     sql.NullString
	Applicant   string
	RepairID    string
}

// UpdateRepairRequest returns the number of matched rows.
func (q *Queries) UpdateRepairRequest(ctx context.Context, arg UpdateRepairRequestParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateRepairRequest,
		arg.ReceiveDate,
		arg.RepairDate,
		arg.Purpose,
		arg.OrderID,
		arg.Variation,
		arg.Issue,
		arg.Actions,
		arg.Applicant,
		arg.RepairID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteRepairRequest = `
DELETE FROM repair_requests WHERE repair_id = ?
`

func (q *Queries) DeleteRepairRequest(ctx context.Context, repairID string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteRepairRequest, repairID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
