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

// SendGridNotificationClient sends transactional email through the SendGrid
// v3 mail API. Sends are best-effort: callers log failures and move on.
type SendGridNotificationClient struct {
	baseURL    string
	apiKey     string
	from       string
	replyTo    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewSendGridNotificationClient creates a SendGrid-backed notification client.
func NewSendGridNotificationClient(cfg config.SendGridConfig, logger *zap.Logger) *SendGridNotificationClient {
	return &SendGridNotificationClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		from:    cfg.From,
		replyTo: cfg.ReplyTo,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

type sendGridAddress struct {
	Email string `json:"email"`
}

type sendGridMail struct {
	Personalizations []struct {
		To []sendGridAddress `json:"to"`
	} `json:"personalizations"`
	From    sendGridAddress `json:"from"`
	ReplyTo sendGridAddress `json:"reply_to"`
	Subject string          `json:"subject"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

// Send delivers a plain-text email to a single recipient.
func (c *SendGridNotificationClient) Send(ctx context.Context, to, subject, body string) error {
	mail := sendGridMail{
		From:    sendGridAddress{Email: c.from},
		ReplyTo: sendGridAddress{Email: c.replyTo},
		Subject: subject,
	}
	mail.Personalizations = append(mail.Personalizations, struct {
		To []sendGridAddress `json:"to"`
	}{To: []sendGridAddress{{Email: to}}})
	mail.Content = append(mail.Content, struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}{Type: "text/plain", Value: body})

	payload, err := json.Marshal(mail)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/v3/mail/send", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to send email",
			zap.String("to", to),
			zap.Error(err),
		)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("mail service returned status %d", resp.StatusCode)
	}

	c.logger.Info("Email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

func (c *SendGridNotificationClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
}
