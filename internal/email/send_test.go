package email

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type fakeEmailSender struct {
	sendCalls   int32
	sendStarted chan struct{}
	sendCtxErr  chan error
	recipient   atomic.Value
}

func newFakeEmailSender() *fakeEmailSender {
	return &fakeEmailSender{
		sendStarted: make(chan struct{}, 1),
		sendCtxErr:  make(chan error, 1),
	}
}

func (f *fakeEmailSender) Send(ctx context.Context, recipient, subject, body string) error {
	atomic.AddInt32(&f.sendCalls, 1)
	f.recipient.Store(recipient)
	select {
	case f.sendStarted <- struct{}{}:
	default:
	}
	select {
	case <-ctx.Done():
		f.sendCtxErr <- ctx.Err()
		return ctx.Err()
	case <-time.After(50 * time.Millisecond):
		f.sendCtxErr <- nil
		return nil
	}
}

func waitForSignal(t *testing.T, ch <-chan struct{}, message string) {
	t.Helper()

	select {
	case <-ch:
	case <-time.After(200 * time.Millisecond):
		t.Fatal(message)
	}
}

func TestSendReceipt_ParentCancelDoesNotAbortSend(t *testing.T) {
	sender := newFakeEmailSender()
	ctx, cancel := context.WithCancel(context.Background())

	sent := SendReceipt(ctx, sender, "ops@example.com", Receipt{Subject: "S", Body: "B"}, nil)
	if !sent {
		t.Fatal("SendReceipt() = false, want true")
	}
	waitForSignal(t, sender.sendStarted, "expected receipt send to start")
	cancel()

	select {
	case err := <-sender.sendCtxErr:
		if err != nil {
			t.Fatalf("send context error = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("send did not finish")
	}
	if got := sender.recipient.Load(); got != "ops@example.com" {
		t.Fatalf("recipient = %v", got)
	}
}

func TestSendReceipt_SkipsNonAddresses(t *testing.T) {
	sender := newFakeEmailSender()
	for _, applicant := range []string{"", "anonymous", "Ops Team <ops@example.com>", "not an@address"} {
		if SendReceipt(context.Background(), sender, applicant, Receipt{Subject: "S", Body: "B"}, nil) {
			t.Fatalf("SendReceipt(%q) = true, want false", applicant)
		}
	}
	if SendReceipt(context.Background(), nil, "ops@example.com", Receipt{Subject: "S", Body: "B"}, nil) {
		t.Fatal("SendReceipt(nil sender) = true, want false")
	}
	if atomic.LoadInt32(&sender.sendCalls) != 0 {
		t.Fatalf("send calls = %d, want 0", sender.sendCalls)
	}
}

func TestBuildRepairReceipt(t *testing.T) {
	r := BuildRepairReceipt(RepairReceiptDetails{
		RepairID:    "REP-250303-X1Z",
		OrderID:     "240303ABC",
		MediaCount:  2,
		SubmittedAt: time.Date(2025, time.March, 3, 14, 5, 0, 0, time.UTC),
	})
	if !strings.Contains(r.Subject, "REP-250303-X1Z") {
		t.Fatalf("subject = %q", r.Subject)
	}
	for _, want := range []string{"Repair ID: REP-250303-X1Z", "Order ID: 240303ABC", "Attachments: 2", "03/03/2025 14:05 UTC"} {
		if !strings.Contains(r.Body, want) {
			t.Fatalf("body missing %q:\n%s", want, r.Body)
		}
	}
	if strings.Contains(r.Body, "Variation") {
		t.Fatalf("body should omit empty fields:\n%s", r.Body)
	}
}

func TestBuildReturnReceipt(t *testing.T) {
	r := BuildReturnReceipt(ReturnReceiptDetails{ID: 7, TrackingNumber: "TRK-9", Reason: "wrong size"})
	if r.Subject != "Return request received (TRK-9)" {
		t.Fatalf("subject = %q", r.Subject)
	}
	if !strings.Contains(r.Body, "Request #: 7") || !strings.Contains(r.Body, "Reason: wrong size") {
		t.Fatalf("body = %q", r.Body)
	}
}
