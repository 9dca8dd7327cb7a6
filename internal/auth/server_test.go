package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallbackHandler(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantCode string
		wantErr  error
		status   int
	}{
		{name: "code", query: "?state=s1&code=abc", wantCode: "abc", status: http.StatusOK},
		{name: "wrong state", query: "?state=other&code=abc", wantErr: ErrStateMismatch, status: http.StatusBadRequest},
		{name: "missing code", query: "?state=s1", wantErr: ErrNoCode, status: http.StatusBadRequest},
		{name: "denied", query: "?state=s1&error=access_denied", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			done := make(chan callback, 1)
			rec := httptest.NewRecorder()
			callbackHandler("s1", done).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback"+tt.query, nil))

			assert.Equal(t, tt.status, rec.Code)
			cb := <-done
			assert.Equal(t, tt.wantCode, cb.code)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, cb.err, tt.wantErr)
			case tt.status != http.StatusOK:
				assert.ErrorContains(t, cb.err, "access_denied")
			default:
				assert.NoError(t, cb.err)
			}
		})
	}
}

func TestCallbackHandler_IgnoresRepeats(t *testing.T) {
	done := make(chan callback, 1)
	h := callbackHandler("s1", done)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?state=s1&code=first", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?state=s1&code=second", nil))

	assert.Equal(t, "first", (<-done).code)
	assert.Empty(t, done)
}

func TestListenAddr(t *testing.T) {
	addr, path, err := listenAddr("http://localhost:8089/callback")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8089", addr)
	assert.Equal(t, "/callback", path)

	addr, path, err = listenAddr("http://127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:80", addr)
	assert.Equal(t, "/", path)

	_, _, err = listenAddr("https://example.com/callback")
	assert.Error(t, err)
}
