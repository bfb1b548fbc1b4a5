package email

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const receiptEmailTimeout = 5 * time.Second

type Receipt struct {
	Subject string
	Body    string
}

type ReturnReceiptDetails struct {
	ID             int64
	TrackingNumber string
	Reason         string
	MediaCount     int
	SubmittedAt    time.Time
}

type RepairReceiptDetails struct {
	RepairID    string
	OrderID     string
	Variation   string
	Issue       string
	ReceiveDate string
	MediaCount  int
	SubmittedAt time.Time
}

func BuildReturnReceipt(d ReturnReceiptDetails) Receipt {
	var b strings.Builder
	b.WriteString("Your return request has been received.\n\n")
	fmt.Fprintf(&b, "Request #: %d\n", d.ID)
	fmt.Fprintf(&b, "Tracking number: %s\n", d.TrackingNumber)
	if d.Reason != "" {
		fmt.Fprintf(&b, "Reason: %s\n", d.Reason)
	}
	fmt.Fprintf(&b, "Attachments: %d\n", d.MediaCount)
	fmt.Fprintf(&b, "Submitted: %s\n", d.SubmittedAt.Format("02/01/2006 15:04 MST"))
	return Receipt{
		Subject: fmt.Sprintf("Return request received (%s)", d.TrackingNumber),
		Body:    b.String(),
	}
}

func BuildRepairReceipt(d RepairReceiptDetails) Receipt {
	var b strings.Builder
	b.WriteString("Your repair request has been received.\n\n")
	fmt.Fprintf(&b, "Repair ID: %s\n", d.RepairID)
	for _, field := range []struct{ label, value string }{
		{"Order ID", d.OrderID},
		{"Variation", d.Variation},
		{"Issue", d.Issue},
		{"Received", d.ReceiveDate},
	} {
		if field.value != "" {
			fmt.Fprintf(&b, "%s: %s\n", field.label, field.value)
		}
	}
	fmt.Fprintf(&b, "Attachments: %d\n", d.MediaCount)
	fmt.Fprintf(&b, "Submitted: %s\n", d.SubmittedAt.Format("02/01/2006 15:04 MST"))
	return Receipt{
		Subject: fmt.Sprintf("Repair request %s received", d.RepairID),
		Body:    b.String(),
	}
}

// LooksLikeEmail reports whether applicant parses as a bare address.
func LooksLikeEmail(applicant string) bool {
	applicant = strings.TrimSpace(applicant)
	if applicant == "" || !strings.Contains(applicant, "@") {
		return false
	}
	addr, err := mail.ParseAddress(applicant)
	return err == nil && addr.Address == applicant
}

// SendReceipt sends a receipt asynchronously. It returns false when nothing
// was sent because the sender is nil or the recipient is not an address.
func SendReceipt(ctx context.Context, sender EmailSender, recipient string, receipt Receipt, logger *zerolog.Logger) bool {
	if sender == nil || receipt.Subject == "" || receipt.Body == "" {
		return false
	}
	recipient = strings.TrimSpace(recipient)
	if !LooksLikeEmail(recipient) {
		return false
	}

	go func() {
		sendCtx, cancel := newEmailContext(ctx, receiptEmailTimeout)
		defer cancel()
		if err := sender.Send(sendCtx, recipient, receipt.Subject, receipt.Body); err != nil && logger != nil {
			logger.Error().Err(err).Str("recipient", recipient).Msg("Failed to send receipt email")
		}
	}()
	return true
}
