package ports

import (
	"context"

	"github.com/robark/destiny-matrix/internal/core/domain"
)

// Authenticator exchanges a bearer token for the platform user it belongs to.
type Authenticator interface {
	CurrentUser(ctx context.Context, token string) (*domain.User, error)
}

// OrderDesk lists the platform catalog and places orders against it.
type OrderDesk interface {
	ListServices(ctx context.Context, token string) ([]domain.Service, error)
	CreateOrder(ctx context.Context, token string, service domain.Service) (*domain.OrderContext, error)
}
