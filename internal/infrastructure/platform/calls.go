package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/robark/destiny-matrix/internal/core/domain"
)

var errInvalidJSON = errors.New("invalid JSON response")

// CurrentUser resolves token to its platform user. The platform signals a
// valid session with the string "true" in the status field; anything else,
// including a JSON boolean, is a rejection.
func (c *Client) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	outcome := "error"
	defer observe("user", time.Now(), &outcome)

	resp, err := c.do(ctx, http.MethodGet, userPath, token, nil)
	if err != nil {
		return nil, fmt.Errorf("platform: get user: %w", err)
	}
	if resp.status != http.StatusOK {
		outcome = "rejected"
		return nil, fmt.Errorf("%w: status %d", domain.ErrInvalidCredential, resp.status)
	}
	if !gjson.ValidBytes(resp.body) {
		return nil, fmt.Errorf("platform: get user: %w", errInvalidJSON)
	}

	status := gjson.GetBytes(resp.body, "status")
	if status.Type != gjson.String || status.Str != "true" {
		outcome = "rejected"
		return nil, fmt.Errorf("%w: status field %s", domain.ErrInvalidCredential, rawOrMissing(status))
	}

	outcome = "ok"
	return decodeUser(gjson.GetBytes(resp.body, "user")), nil
}

// ListServices fetches the full catalog. It is never cached.
func (c *Client) ListServices(ctx context.Context, token string) ([]domain.Service, error) {
	outcome := "error"
	defer observe("catalog", time.Now(), &outcome)

	resp, err := c.do(ctx, http.MethodGet, catalogPath, token, nil)
	if err != nil {
		return nil, fmt.Errorf("platform: list services: %w", err)
	}
	if resp.status != http.StatusOK {
		outcome = "rejected"
		return nil, fmt.Errorf("%w: status %d", domain.ErrCatalogUnavailable, resp.status)
	}
	if !gjson.ValidBytes(resp.body) {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, errInvalidJSON)
	}
	if status := gjson.GetBytes(resp.body, "status"); !truthy(status) {
		outcome = "rejected"
		return nil, fmt.Errorf("%w: status field %s", domain.ErrCatalogUnavailable, rawOrMissing(status))
	}

	var services []domain.Service
	gjson.GetBytes(resp.body, "services").ForEach(func(_, s gjson.Result) bool {
		if s.IsObject() {
			services = append(services, decodeService(s))
		}
		return true
	})

	outcome = "ok"
	return services, nil
}

// CreateOrder places a billable order for service. A 403 from the platform
// means the account balance does not cover it.
func (c *Client) CreateOrder(ctx context.Context, token string, service domain.Service) (*domain.OrderContext, error) {
	outcome := "error"
	defer observe("order", time.Now(), &outcome)

	id := service.ID
	if len(id) == 0 {
		id = json.RawMessage("null")
	}

	resp, err := c.do(ctx, http.MethodPost, orderPath, token, map[string]json.RawMessage{"service_id": id})
	if err != nil {
		return nil, fmt.Errorf("platform: create order: %w", err)
	}
	switch {
	case resp.status == http.StatusForbidden:
		outcome = "rejected"
		return nil, domain.ErrInsufficientBalance
	case resp.status != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", domain.ErrOrderFailed, resp.status)
	}
	if !gjson.ValidBytes(resp.body) {
		return nil, fmt.Errorf("platform: create order: %w", errInvalidJSON)
	}

	res := gjson.ParseBytes(resp.body)
	order := &domain.OrderContext{
		OrderID:        res.Get("order.id").String(),
		Order:          objectOf(res.Get("order")),
		ServiceDetails: objectOf(res.Get("service_details")),
		Conversation:   res.Get("conversation").Value(),
		Service:        service,
	}

	outcome = "ok"
	return order, nil
}

func decodeUser(r gjson.Result) *domain.User {
	return &domain.User{
		ID:         r.Get("id").String(),
		Email:      r.Get("email").String(),
		Name:       r.Get("name").String(),
		Attributes: objectOf(r),
	}
}

func decodeService(r gjson.Result) domain.Service {
	s := domain.Service{Attributes: objectOf(r)}
	if id := r.Get("id"); id.Exists() {
		s.ID = json.RawMessage(id.Raw)
	}
	if name := r.Get("name"); name.Type == gjson.String {
		s.Name = name.Str
	}
	return s
}

func objectOf(r gjson.Result) map[string]any {
	if !r.IsObject() {
		return nil
	}
	m, _ := r.Value().(map[string]any)
	return m
}

// truthy mirrors loose truthiness of a JSON value: missing, null, false, 0,
// "" and empty containers are false.
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.True:
		return true
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		return r.Str != ""
	case gjson.JSON:
		if r.IsArray() {
			return len(r.Array()) > 0
		}
		return len(r.Map()) > 0
	default:
		return false
	}
}

func rawOrMissing(r gjson.Result) string {
	if !r.Exists() {
		return "<missing>"
	}
	return r.Raw
}
