package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakePool struct {
	pingErr error
}

func (p *fakePool) Ping(ctx context.Context) error { return p.pingErr }
func (p *fakePool) Close()                         {}

func TestHandleHealthz(t *testing.T) {
	w := httptest.NewRecorder()
	HandleHealthz()(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestHandleReadyz(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		w := httptest.NewRecorder()
		HandleReadyz(&fakePool{})(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("database down", func(t *testing.T) {
		w := httptest.NewRecorder()
		HandleReadyz(&fakePool{pingErr: errors.New("dial refused")})(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "unavailable")
	})
}
