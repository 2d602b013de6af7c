package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHandler_RequiresSecret(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := newHandler(context.Background())
	assert.Error(t, err)
}

func TestHandler_ServesAPI(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("EVENTBUS_DRIVER", "memory")
	t.Setenv("AUTH_JWT_SECRET", "serverless-secret")

	rec := httptest.NewRecorder()
	Handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "ATM API is running!", rec.Body.String())

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/user",
		strings.NewReader(`{"username":"alice","password":"pw1","pin":"1111"}`))
	req.Header.Set("Content-Type", "application/json")
	Handler(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}
