package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ds124wfegd/eventmarket/internal/entity"
)

type Client interface {
	ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*entity.ResolvedAccount, error)
	CreateRecipient(ctx context.Context, req RecipientRequest) (string, error)
	ListBanks(ctx context.Context) ([]entity.Bank, error)
}

type RecipientRequest struct {
	Name          string
	AccountNumber string
	BankCode      string
}

// Observer is told about every call made to the API; used for metrics.
type Observer func(operation string, status int, duration time.Duration)

type client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
	observe    Observer
}

func NewClient(baseURL, secretKey string, timeout time.Duration, observe Observer) Client {
	if observe == nil {
		observe = func(string, int, time.Duration) {}
	}
	return &client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: timeout},
		observe:    observe,
	}
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type resolveData struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
}

type recipientData struct {
	RecipientCode string `json:"recipient_code"`
}

// apiError is a response Paystack itself rejected (4xx or status=false).
type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("paystack responded %d: %s", e.status, e.message)
}

func (c *client) do(ctx context.Context, operation, method, path string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(operation, 0, time.Since(start))
		return nil, err
	}
	defer resp.Body.Close()
	c.observe(operation, resp.StatusCode, time.Since(start))

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("paystack unavailable: status %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, &apiError{status: resp.StatusCode, message: http.StatusText(resp.StatusCode)}
		}
		return nil, fmt.Errorf("failed to decode paystack response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Status {
		return nil, &apiError{status: resp.StatusCode, message: env.Message}
	}

	return env.Data, nil
}

func (c *client) ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*entity.ResolvedAccount, error) {
	q := url.Values{}
	q.Set("account_number", accountNumber)
	q.Set("bank_code", bankCode)

	data, err := c.do(ctx, "resolve_account", http.MethodGet, "/bank/resolve?"+q.Encode(), nil)
	if err != nil {
		return nil, classify(err, entity.ErrBankVerification)
	}

	var resolved resolveData
	if err := json.Unmarshal(data, &resolved); err != nil {
		return nil, classify(err, entity.ErrBankVerification)
	}

	return &entity.ResolvedAccount{
		AccountNumber: resolved.AccountNumber,
		AccountName:   resolved.AccountName,
	}, nil
}

func (c *client) CreateRecipient(ctx context.Context, req RecipientRequest) (string, error) {
	body := map[string]string{
		"type":           "nuban",
		"name":           req.Name,
		"account_number": req.AccountNumber,
		"bank_code":      req.BankCode,
		"currency":       "NGN",
	}

	data, err := c.do(ctx, "create_recipient", http.MethodPost, "/transferrecipient", body)
	if err != nil {
		return "", &entity.ExternalError{Kind: entity.ErrRecipientCreation, Message: messageOf(err, entity.ErrRecipientCreation), Cause: err}
	}

	var recipient recipientData
	if err := json.Unmarshal(data, &recipient); err != nil || recipient.RecipientCode == "" {
		return "", &entity.ExternalError{Kind: entity.ErrRecipientCreation, Message: entity.ErrRecipientCreation.Error(), Cause: err}
	}
	return recipient.RecipientCode, nil
}

func (c *client) ListBanks(ctx context.Context) ([]entity.Bank, error) {
	data, err := c.do(ctx, "list_banks", http.MethodGet, "/bank?country=nigeria", nil)
	if err != nil {
		return nil, &entity.ExternalError{Kind: entity.ErrPaystack, Message: "Failed to fetch banks from Paystack", Cause: err}
	}

	var banks []entity.Bank
	if err := json.Unmarshal(data, &banks); err != nil {
		return nil, &entity.ExternalError{Kind: entity.ErrPaystack, Message: "Failed to fetch banks from Paystack", Cause: err}
	}
	return banks, nil
}

// classify maps rejected requests to rejected, everything else to ErrPaystack.
func classify(err error, rejected error) error {
	if apiErr, ok := err.(*apiError); ok {
		return &entity.ExternalError{Kind: rejected, Message: messageOf(apiErr, rejected), Cause: err}
	}
	return &entity.ExternalError{Kind: entity.ErrPaystack, Message: entity.ErrPaystack.Error(), Cause: err}
}

func messageOf(err error, fallback error) string {
	if apiErr, ok := err.(*apiError); ok && apiErr.message != "" {
		return apiErr.message
	}
	return fallback.Error()
}
