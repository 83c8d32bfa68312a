package fetch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	resp, err := Get(context.Background(), NewClient(), srv.URL+"/thing", nil)
	require.NoError(t, err)
	// Non-2xx is not an error at this layer.
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	var body struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, resp.JSON(&body))
	assert.True(t, body.OK)
}

func TestClientPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))

		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var body map[string]string
		require.NoError(t, json.Unmarshal(data, &body))
		assert.Equal(t, "btc", body["depositCoin"])

		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	header := http.Header{}
	header.Set("x-api-key", "secret")
	resp, err := PostJSON(context.Background(), NewClient(), srv.URL+"/offer", header, map[string]string{"depositCoin": "btc"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestResponseJSONError(t *testing.T) {
	resp := &Response{StatusCode: 200, Body: []byte("not json")}
	var v map[string]any
	assert.Error(t, resp.JSON(&v))
}
