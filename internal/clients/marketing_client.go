package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/papershack/storefront-orders-service/internal/config"
)

// SendGridMarketingClient upserts contacts into the SendGrid marketing
// contact list. The provider's status code is forwarded verbatim to the
// caller; this client carries no consistency requirement.
type SendGridMarketingClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewSendGridMarketingClient creates a SendGrid-backed marketing client.
func NewSendGridMarketingClient(cfg config.SendGridConfig, logger *zap.Logger) *SendGridMarketingClient {
	return &SendGridMarketingClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// UpsertContact adds or updates a marketing contact and returns the
// provider's HTTP status.
func (c *SendGridMarketingClient) UpsertContact(ctx context.Context, email string) (int, error) {
	payload, err := json.Marshal(map[string]any{
		"contacts": []map[string]string{{"email": email}},
	})
	if err != nil {
		return 0, err
	}

	url := fmt.Sprintf("%s/v3/marketing/contacts", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Marketing contact upsert failed", zap.Error(err))
		return 0, err
	}
	defer resp.Body.Close()

	c.logger.Info("Marketing contact upserted",
		zap.Int("status", resp.StatusCode),
	)

	return resp.StatusCode, nil
}
