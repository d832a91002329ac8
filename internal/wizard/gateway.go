package wizard

import "context"

// GenericSubmissionError is shown when the gateway gives no usable message.
const GenericSubmissionError = "Store registration failed. Please try again."

// SubmissionRequest is the payload sent to the store-creation gateway.
// The idempotency key is fixed for the lifetime of one wizard session.
type SubmissionRequest struct {
	IdempotencyKey string      `json:"-"`
	BasicInfo      BasicInfo   `json:"basicInfo"`
	LineSetup      LineSetup   `json:"lineSetup"`
	GoogleSetup    GoogleSetup `json:"googleSetup"`
	AISetup        AISetup     `json:"aiSetup"`
}

// SubmissionResult mirrors the gateway's response body.
type SubmissionResult struct {
	Success bool   `json:"success"`
	StoreID string `json:"storeId,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Gateway persists a finished wizard as a new store.
type Gateway interface {
	CreateStore(ctx context.Context, req SubmissionRequest) (SubmissionResult, error)
}

// GatewayFunc adapts a function to Gateway.
type GatewayFunc func(ctx context.Context, req SubmissionRequest) (SubmissionResult, error)

func (f GatewayFunc) CreateStore(ctx context.Context, req SubmissionRequest) (SubmissionResult, error) {
	return f(ctx, req)
}

// normalizeResult folds transport errors and unsuccessful responses into one
// (storeID, message) outcome. An empty message means success.
func normalizeResult(res SubmissionResult, err error) (string, string) {
	if err != nil {
		return "", GenericSubmissionError
	}
	if !res.Success || res.StoreID == "" {
		if res.Error != "" {
			return "", res.Error
		}
		return "", GenericSubmissionError
	}
	return res.StoreID, ""
}
