package webhook

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

	"github.com/JASIELAB/CULTUREMEDIA/internal/config"
)

func TestPostDeliversJSONPayload(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(config.NotifyConfig{WebhookURL: srv.URL, Timeout: 2 * time.Second})
	require.True(t, c.Enabled())

	err := c.Post(context.Background(), map[string]string{"kind": "batch_depleted", "code": "25MS-073-1"})
	require.NoError(t, err)
	assert.Equal(t, "25MS-073-1", got["code"])
}

func TestPostReportsServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(config.NotifyConfig{WebhookURL: srv.URL})
	err := c.Post(context.Background(), map[string]string{"kind": "daily_summary"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestPostNoopsWhenDisabled(t *testing.T) {
	c := NewClient(config.NotifyConfig{})
	assert.False(t, c.Enabled())
	assert.NoError(t, c.Post(context.Background(), "ignored"))
}
