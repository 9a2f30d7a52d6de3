package edge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvokePostsJSONByName(t *testing.T) {
	var gotPath, gotContentType string
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]string{"external_id": "ext-42"})
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second, zerolog.Nop())

	var out struct {
		ExternalID string `json:"external_id"`
	}
	err := c.Invoke(context.Background(), FnSyncRegistrationToEdudash,
		map[string]string{"registration_id": "reg-1"}, &out)

	require.NoError(t, err)
	assert.Equal(t, "/functions/v1/sync-registration-to-edudash", gotPath)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, map[string]string{"registration_id": "reg-1"}, gotBody)
	assert.Equal(t, "ext-42", out.ExternalID)
}

func TestInvokeNon2xxReturnsInvokeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second, zerolog.Nop())
	err := c.Invoke(context.Background(), FnPaymentCreation, map[string]int{"amount_cents": 500}, nil)

	var invokeErr *InvokeError
	require.ErrorAs(t, err, &invokeErr)
	assert.Equal(t, FnPaymentCreation, invokeErr.Function)
	assert.Equal(t, http.StatusBadGateway, invokeErr.Status)
	assert.Contains(t, invokeErr.Body, "boom")
}

func TestInvokeNilOutSkipsDecode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second, zerolog.Nop())
	assert.NoError(t, c.Invoke(context.Background(), FnSyncRegistrationsFromEdusite, nil, nil))
}

func TestInvokeRespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	c := New(srv.URL, 5*time.Second, zerolog.Nop())
	err := c.Invoke(ctx, FnPaymentCreation, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
