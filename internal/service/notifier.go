package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"fintel-wallet-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Notification event types.
const (
	EventTransferCompleted = "TRANSFER_COMPLETED"
	EventTransferFailed    = "TRANSFER_FAILED"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NotificationPayload is the JSON structure delivered for a resolved transfer.
type NotificationPayload struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Reason    string          `json:"reason,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// TransferNotifier implements ports.NotificationSink. Delivery is
// fire-and-forget: it runs on its own goroutine with its own deadline and
// failures are logged, never propagated. With no webhook URL configured it
// degrades to a log line, which keeps development setups dependency-free.
type TransferNotifier struct {
	webhookURL string
	timeout    time.Duration
	httpClient HTTPClient
	log        zerolog.Logger
}

// NewTransferNotifier creates a TransferNotifier.
func NewTransferNotifier(webhookURL string, timeout time.Duration, httpClient HTTPClient, log zerolog.Logger) *TransferNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TransferNotifier{
		webhookURL: webhookURL,
		timeout:    timeout,
		httpClient: httpClient,
		log:        log,
	}
}

// TransferResolved notifies about a terminal transfer without blocking the
// caller. The transfer is copied so the coordinator can move on.
func (n *TransferNotifier) TransferResolved(_ context.Context, transfer *domain.Transfer) {
	if transfer == nil {
		return
	}
	snapshot := *transfer
	go n.deliver(snapshot)
}

func (n *TransferNotifier) deliver(t domain.Transfer) {
	eventType := EventTransferCompleted
	if t.Status == domain.TransferStatusFailed {
		eventType = EventTransferFailed
	}

	payload := NotificationPayload{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Reference: t.Reference,
		Status:    string(t.Status),
		Amount:    t.Amount,
		Currency:  t.Currency,
		Reason:    t.FailureReason,
		Timestamp: time.Now().Unix(),
	}

	if n.webhookURL == "" {
		n.log.Info().
			Str("event_type", eventType).
			Str("reference", t.Reference).
			Msg("transfer notification (no webhook configured)")
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		n.log.Error().Err(err).Str("reference", t.Reference).Msg("notification: marshal payload")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		n.log.Error().Err(err).Str("reference", t.Reference).Msg("notification: build request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.log.Warn().Err(err).Str("reference", t.Reference).Msg("notification: delivery failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		n.log.Warn().
			Int("status", resp.StatusCode).
			Str("reference", t.Reference).
			Msg("notification: non-2xx response")
		return
	}

	n.log.Debug().Str("reference", t.Reference).Msg("notification delivered")
}
