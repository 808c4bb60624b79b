package models

import (
	"time"

	"github.com/google/uuid"
)

// FleetPartner is a third-party operator who can accept dispatched rides.
type FleetPartner struct {
	ID                   uuid.UUID       `json:"id"`
	CompanyName          string          `json:"company_name"`
	ContactName          string          `json:"contact_name"`
	Email                string          `json:"email"`
	Phone                string          `json:"phone"`
	Approved             bool            `json:"approved"`
	CurrentFleetCategory VehicleCategory `json:"current_fleet_category"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}
