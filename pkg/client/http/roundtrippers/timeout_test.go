package roundtrippers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Timeout_ExceedsDeadline(t *testing.T) {
	// given
	const serviceDelay = 200 * time.Millisecond
	const clientTimeout = 50 * time.Millisecond
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(serviceDelay):
		case <-r.Context().Done():
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	client := &http.Client{Transport: Timeout(http.DefaultTransport, clientTimeout)}

	// when
	_, err := client.Get(srv.URL)

	// then
	require.Error(t, err)
	require.True(t, errors.Is(err, context.DeadlineExceeded), "expected deadline exceeded, got %v", err)
}

func Test_Timeout_BodyReadableAfterRoundTrip(t *testing.T) {
	// given
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1}]`))
	}))
	t.Cleanup(srv.Close)
	client := &http.Client{Transport: Timeout(http.DefaultTransport, time.Second)}

	// when
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	// then
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":1}]`, string(body))
}
