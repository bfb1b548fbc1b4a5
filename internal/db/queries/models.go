package queries

import (
	"database/sql"
	"time"
)

type ReturnRequest struct {
	ID             int64          `json:"id"`
	Applicant      string         `json:"applicant"`
	TrackingNumber string         `json:"tracking_number"`
	Reason         sql.NullString `json:"reason"`
	MediaUrls      sql.NullString `json:"media_urls"`
	SubmittedAt    time.Time      `json:"submitted_at"`
}

type RepairRequest struct {
	RepairID    string         `json:"repair_id"`
	ReceiveDate sql.NullTime   `json:"receive_date"`
	RepairDate  sql.NullTime   `json:"repair_date"`
	Purpose     sql.NullString `json:"purpose"`
	OrderID     sql.NullString `json:"order_id"`
	Variation   sql.NullString `json:"variation"`
	Issue       sql.NullString `json:"issue"`
	Actions     sql.NullString `json:"actions"`
	Applicant   string         `json:"applicant"`
	Media       sql.NullString `json:"media"`
	SubmittedAt time.Time      `json:"submitted_at"`
}
