package libhttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingRequest struct {
	From   string `url:"from"`
	Amount string `url:"amount"`
	Memo   string `url:"memo,omitempty"`
}

type pingResponse struct {
	Echo string `json:"echo"`
}

func TestCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		switch r.URL.Path {
		case "/ping":
			assert.Equal(t, "eth", r.URL.Query().Get("from"))
			assert.Equal(t, "100", r.URL.Query().Get("amount"))
			assert.False(t, r.URL.Query().Has("memo"))
			_, _ = w.Write([]byte(`{"echo":"pong"}`))
		case "/fail":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"amount too low"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(WithHeader("x-api-key", "secret"))

	t.Run("struct params", func(t *testing.T) {
		res, err := Call[pingResponse](context.Background(), client, http.MethodGet, server.URL+"/ping", nil, pingRequest{
			From:   "eth",
			Amount: "100",
		})
		require.NoError(t, err)
		assert.Equal(t, "pong", res.Echo)
	})

	t.Run("map params", func(t *testing.T) {
		res, err := Call[pingResponse](context.Background(), client, http.MethodGet, server.URL+"/ping", nil, map[string]string{
			"from":   "eth",
			"amount": "100",
		})
		require.NoError(t, err)
		assert.Equal(t, "pong", res.Echo)
	})

	t.Run("http error keeps body", func(t *testing.T) {
		_, err := Call[pingResponse](context.Background(), client, http.MethodGet, server.URL+"/fail", nil, nil)
		require.Error(t, err)

		httpErr, ok := AsHTTPError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
		assert.Contains(t, string(httpErr.Body), "too low")
	})
}

func TestCallContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := Call[pingResponse](ctx, NewClient(), http.MethodGet, server.URL, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"echo":"ok"}`))
	}))
	defer server.Close()

	client := NewClient(WithRateLimit(1, 1))

	_, err := Call[pingResponse](context.Background(), client, http.MethodGet, server.URL, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = Call[pingResponse](ctx, client, http.MethodGet, server.URL, nil, nil)
	require.Error(t, err)
}
