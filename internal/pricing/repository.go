package pricing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/UmarSidiki/taxibooking/pkg/common"
	"github.com/UmarSidiki/taxibooking/pkg/models"
)

// Repository handles vehicle data access
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new pricing repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const vehicleColumns = `
	id, name, category, seats, active,
	base_price, price_per_km, minimum_fare, return_trip_pct,
	price_per_hour, minimum_hours,
	stop_base_price, stop_price_per_hour,
	child_seat_price, baby_seat_price, discount_pct,
	created_at, updated_at`

func scanVehicle(row pgx.Row) (*models.Vehicle, error) {
	v := &models.Vehicle{}
	err := row.Scan(
		&v.ID, &v.Name, &v.Category, &v.Seats, &v.Active,
		&v.BasePrice, &v.PricePerKm, &v.MinimumFare, &v.ReturnTripPct,
		&v.PricePerHour, &v.MinimumHours,
		&v.StopBasePrice, &v.StopPricePerHour,
		&v.ChildSeatPrice, &v.BabySeatPrice, &v.DiscountPct,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// GetVehicle retrieves a vehicle by ID
func (r *Repository) GetVehicle(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	row := r.db.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id)
	v, err := scanVehicle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// ListActiveVehicles returns all bookable vehicles
func (r *Repository) ListActiveVehicles(ctx context.Context) ([]models.Vehicle, error) {
	rows, err := r.db.Query(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []models.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, *v)
	}
	return vehicles, rows.Err()
}
