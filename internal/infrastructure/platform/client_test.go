package platform

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/robark/destiny-matrix/internal/core/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/", Timeout: 2 * time.Second}, zerolog.Nop())
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestCurrentUser_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, userPath, r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		writeJSON(w, http.StatusOK, `{"status":"true","user":{"id":42,"email":"ayse@example.com","name":"Ayşe"}}`)
	})

	user, err := c.CurrentUser(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "42", user.ID)
	assert.Equal(t, "ayse@example.com", user.Email)
	assert.Equal(t, "Ayşe", user.Name)
	assert.Equal(t, "ayse@example.com", user.Attributes["email"])
}

func TestCurrentUser_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"non_200", http.StatusUnauthorized, `{"status":"false"}`},
		{"non_200_html", http.StatusBadGateway, `<html>bad gateway</html>`},
		{"status_false", http.StatusOK, `{"status":"false","user":{"id":1}}`},
		{"status_bool_true", http.StatusOK, `{"status":true,"user":{"id":1}}`},
		{"status_missing", http.StatusOK, `{"user":{"id":1}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tc.status, tc.body)
			})
			_, err := c.CurrentUser(context.Background(), "tok")
			assert.ErrorIs(t, err, domain.ErrInvalidCredential)
		})
	}
}

func TestCurrentUser_InvalidJSONIsInternal(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `not json`)
	})

	_, err := c.CurrentUser(context.Background(), "tok")
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrInvalidCredential))
}

func TestCurrentUser_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	c := NewClient(Config{BaseURL: srv.URL}, zerolog.Nop())

	_, err := c.CurrentUser(context.Background(), "tok")
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrInvalidCredential))
}

func TestCurrentUser_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)
	c := NewClient(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, zerolog.Nop())

	start := time.Now()
	_, err := c.CurrentUser(context.Background(), "tok")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestListServices_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, catalogPath, r.URL.Path)
		writeJSON(w, http.StatusOK, `{"status":true,"services":[
			{"id":1,"name":"tarot","price":10},
			"garbage",
			{"id":"svc-7","name":"destiny-matrix","price":25}
		]}`)
	})

	services, err := c.ListServices(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, services, 2)
	assert.Equal(t, "tarot", services[0].Name)
	assert.Equal(t, "1", services[0].IDString())
	assert.Equal(t, "svc-7", services[1].IDString())
	assert.Equal(t, float64(25), services[1].Attributes["price"])
}

func TestListServices_Unavailable(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"non_200", http.StatusInternalServerError, `{"status":true,"services":[]}`},
		{"status_false", http.StatusOK, `{"status":false,"services":[]}`},
		{"status_zero", http.StatusOK, `{"status":0}`},
		{"status_empty_string", http.StatusOK, `{"status":""}`},
		{"status_null", http.StatusOK, `{"status":null}`},
		{"status_empty_object", http.StatusOK, `{"status":{}}`},
		{"status_missing", http.StatusOK, `{"services":[]}`},
		{"malformed", http.StatusOK, `{"status":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tc.status, tc.body)
			})
			_, err := c.ListServices(context.Background(), "tok")
			assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
		})
	}
}

func TestTruthy(t *testing.T) {
	cases := map[string]bool{
		`true`:    true,
		`"true"`:  true,
		`"false"`: true,
		`1`:       true,
		`[1]`:     true,
		`{"a":1}`: true,
		`false`:   false,
		`0`:       false,
		`""`:      false,
		`null`:    false,
		`[]`:      false,
		`{}`:      false,
	}
	for raw, want := range cases {
		got := truthy(gjson.Get(`{"v":`+raw+`}`, "v"))
		assert.Equal(t, want, got, raw)
	}
	assert.False(t, truthy(gjson.Get(`{}`, "v")))
}

func TestCreateOrder_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, orderPath, r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(7), body["service_id"])
		writeJSON(w, http.StatusOK, `{"order":{"id":"ord-1","status":"paid"},"service_details":{"name":"destiny-matrix"},"conversation":{"id":9}}`)
	})

	svc := domain.Service{ID: json.RawMessage("7"), Name: "destiny-matrix"}
	order, err := c.CreateOrder(context.Background(), "tok", svc)
	require.NoError(t, err)
	assert.Equal(t, "ord-1", order.OrderID)
	assert.Equal(t, "paid", order.Order["status"])
	assert.Equal(t, "destiny-matrix", order.ServiceDetails["name"])
	assert.Equal(t, map[string]any{"id": float64(9)}, order.Conversation)
	assert.Equal(t, "destiny-matrix", order.Service.Name)
}

func TestCreateOrder_PreservesStringID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "svc-7", body["service_id"])
		writeJSON(w, http.StatusOK, `{"order":{"id":1}}`)
	})

	order, err := c.CreateOrder(context.Background(), "tok", domain.Service{ID: json.RawMessage(`"svc-7"`)})
	require.NoError(t, err)
	assert.Equal(t, "1", order.OrderID)
}

func TestCreateOrder_InsufficientBalance(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, `{"message":"balance"}`)
	})

	_, err := c.CreateOrder(context.Background(), "tok", domain.Service{ID: json.RawMessage("1")})
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
}

func TestCreateOrder_OtherFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, `{}`)
	})

	_, err := c.CreateOrder(context.Background(), "tok", domain.Service{ID: json.RawMessage("1")})
	assert.ErrorIs(t, err, domain.ErrOrderFailed)
	assert.NotErrorIs(t, err, domain.ErrInsufficientBalance)
}

func TestCreateOrder_SingleAttempt(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusServiceUnavailable, `{}`)
	})

	_, err := c.CreateOrder(context.Background(), "tok", domain.Service{ID: json.RawMessage("1")})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFindService(t *testing.T) {
	services := []domain.Service{
		{ID: json.RawMessage("1"), Name: "Destiny-Matrix"},
		{ID: json.RawMessage("2"), Name: "destiny-matrix"},
		{ID: json.RawMessage("3"), Name: "destiny-matrix"},
	}

	s, ok := domain.FindService(services, "destiny-matrix")
	require.True(t, ok)
	assert.Equal(t, "2", s.IDString())

	_, ok = domain.FindService(services, "tarot")
	assert.False(t, ok)
}
