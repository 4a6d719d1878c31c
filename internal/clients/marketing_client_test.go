package clients

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/papershack/storefront-orders-service/internal/config"
)

func newMarketingClient(baseURL string) *SendGridMarketingClient {
	return NewSendGridMarketingClient(config.SendGridConfig{
		BaseURL: baseURL,
		APIKey:  "SG.test",
		Timeout: 2 * time.Second,
	}, zap.NewNop())
}

func TestSendGridMarketingClient_UpsertContact(t *testing.T) {
	var gotBody map[string][]map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/v3/marketing/contacts", r.URL.Path)
		assert.Equal(t, "Bearer SG.test", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))

		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	status, err := newMarketingClient(srv.URL).UpsertContact(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, status)
	require.Len(t, gotBody["contacts"], 1)
	assert.Equal(t, "ada@example.com", gotBody["contacts"][0]["email"])
}

func TestSendGridMarketingClient_UpsertContact_ForwardsProviderStatus(t *testing.T) {
	// The provider's verdict passes through untouched, including failures.
	for _, status := range []int{http.StatusBadRequest, http.StatusTooManyRequests, http.StatusOK} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		got, err := newMarketingClient(srv.URL).UpsertContact(context.Background(), "ada@example.com")
		srv.Close()

		require.NoError(t, err)
		assert.Equal(t, status, got)
	}
}
