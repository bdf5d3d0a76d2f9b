package refunds

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/karimnasser/propflow-backend/pkg/config"
)

// HTTPRail submits disbursement orders to the bank's disbursement API.
// Rejections come back in the response body; transport failures surface as
// errors so the message is redelivered.
type HTTPRail struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPRail builds the rail adapter from configuration.
func NewHTTPRail(cfg config.RailConfig) (*HTTPRail, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("rail base url required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("rail api key required")
	}
	return &HTTPRail{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type railRequest struct {
	IdempotencyKey string `json:"idempotency_key"`
	Amount         string `json:"amount"`
	Currency       string `json:"currency"`
	Method         string `json:"method"`
	BankAccountRef string `json:"bank_account_ref,omitempty"`
	ChequeNumber   string `json:"cheque_number,omitempty"`
}

type railResponse struct {
	Status    string `json:"status"`
	Reference string `json:"reference"`
	Reason    string `json:"reason"`
	Retryable bool   `json:"retryable"`
}

// Disburse submits the order. The refund id doubles as the rail-side
// idempotency key so resubmissions never pay twice.
func (r *HTTPRail) Disburse(ctx context.Context, order DisbursementOrder) (*DisbursementResult, error) {
	body, err := json.Marshal(railRequest{
		IdempotencyKey: order.RefundID.String(),
		Amount:         order.Amount.StringFixed(2),
		Currency:       "AED",
		Method:         order.Method.String(),
		BankAccountRef: order.BankAccountRef,
		ChequeNumber:   order.ChequeNumber,
	})
	if err != nil {
		return nil, fmt.Errorf("encode disbursement request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/disbursements", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build disbursement request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit disbursement: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("rail returned %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read rail response: %w", err)
	}
	var decoded railResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode rail response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest || decoded.Status != "accepted" {
		reason := decoded.Reason
		if reason == "" {
			reason = fmt.Sprintf("rail rejected with status %d", resp.StatusCode)
		}
		return &DisbursementResult{
			Succeeded:     false,
			FailureReason: reason,
			Retryable:     decoded.Retryable,
		}, nil
	}

	return &DisbursementResult{Succeeded: true, Reference: decoded.Reference}, nil
}
