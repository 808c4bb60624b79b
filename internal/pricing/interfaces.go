package pricing

import (
	"context"

	"github.com/google/uuid"

	"github.com/UmarSidiki/taxibooking/pkg/models"
)

// RepositoryInterface defines vehicle data access for pricing.
type RepositoryInterface interface {
	GetVehicle(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	ListActiveVehicles(ctx context.Context) ([]models.Vehicle, error)
}
