package domain

import "encoding/json"

// Service is one purchasable entry of the platform catalog.
type Service struct {
	// ID is kept as the raw JSON value so it can be echoed back to the
	// order endpoint unchanged, whatever type the platform uses.
	ID         json.RawMessage `json:"id"`
	Name       string          `json:"name"`
	Attributes map[string]any  `json:"attributes,omitempty"`
}

// IDString renders the service id for logs and journal records.
func (s Service) IDString() string {
	return rawString(s.ID)
}

// OrderContext is what the platform returns for a created order. Once it
// exists the order is a committed fact; nothing here ever cancels it.
type OrderContext struct {
	OrderID        string         `json:"order_id"`
	Order          map[string]any `json:"order,omitempty"`
	ServiceDetails map[string]any `json:"service_details,omitempty"`
	Conversation   any            `json:"conversation,omitempty"`
	Service        Service        `json:"service"`
}

func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// FindService returns the first catalog entry whose name equals name exactly.
func FindService(services []Service, name string) (Service, bool) {
	for _, s := range services {
		if s.Name == name {
			return s, true
		}
	}
	return Service{}, false
}
