package macromicro_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x1001000/mm-chart-view/pkg/macromicro"
)

func TestFetchChartData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The proxy receives the full upstream URL appended to its base.
		assert.True(t, strings.HasSuffix(r.URL.String(), "/charts/data/444"),
			"unexpected proxied target %s", r.URL.String())
		assert.Contains(t, r.URL.String(), "macromicro.me")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"c:444": {"series": []}}}`))
	}))
	t.Cleanup(srv.Close)

	c := macromicro.NewClient(srv.URL + "/")

	payload, err := c.FetchChartData(context.Background(), "444")
	require.NoError(t, err)

	data, ok := payload["data"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, data, "c:444")
}

func TestFetchChartData_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	c := macromicro.NewClient(srv.URL + "/")

	payload, err := c.FetchChartData(context.Background(), "444")
	assert.Nil(t, payload)

	var fetchErr *macromicro.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusBadGateway, fetchErr.StatusCode)
}

func TestFetchChartData_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	t.Cleanup(srv.Close)

	c := macromicro.NewClient(srv.URL + "/")

	_, err := c.FetchChartData(context.Background(), "444")

	var fetchErr *macromicro.FetchError
	require.ErrorAs(t, err, &fetchErr)
}

func TestFetchChartData_TransportError(t *testing.T) {
	// Point at a server that is already closed.
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	c := macromicro.NewClient(srv.URL + "/")

	_, err := c.FetchChartData(context.Background(), "444")

	var fetchErr *macromicro.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Zero(t, fetchErr.StatusCode)
	assert.Error(t, fetchErr.Unwrap())
}

func TestFetchImage(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 1, 2, 3}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/charts/444/444-tc.png", r.URL.Path)
		_, _ = w.Write(png)
	}))
	t.Cleanup(srv.Close)

	c := macromicro.NewClient("")
	c.CDNBaseURL = srv.URL

	// Raw bytes come back undecoded.
	got, err := c.FetchImage(context.Background(), c.PreviewImageURL("444"))
	require.NoError(t, err)
	assert.Equal(t, png, got)
}

func TestFetchImage_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte("late"))
	}))
	t.Cleanup(srv.Close)

	c := macromicro.NewClient("")
	c.HTTPClient = &http.Client{Timeout: 20 * time.Millisecond}

	_, err := c.FetchImage(context.Background(), srv.URL+"/slow.png")

	var fetchErr *macromicro.FetchError
	require.ErrorAs(t, err, &fetchErr)
}
