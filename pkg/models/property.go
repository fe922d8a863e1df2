package models

import (
	"time"

	"github.com/google/uuid"
)

// OccupancyStatus describes how full a dwelling is relative to its capacity.
type OccupancyStatus string

const (
	OccupancyVacant            OccupancyStatus = "vacant"
	OccupancyPartiallyOccupied OccupancyStatus = "partially_occupied"
	OccupancyFullyOccupied     OccupancyStatus = "fully_occupied"
)

// OccupancyFor derives the occupancy status from a head count and capacity.
func OccupancyFor(occupants, capacity int) OccupancyStatus {
	switch {
	case occupants <= 0:
		return OccupancyVacant
	case occupants < capacity:
		return OccupancyPartiallyOccupied
	default:
		return OccupancyFullyOccupied
	}
}

// Property is a physical SDA site. A property contains one or more dwellings.
type Property struct {
	ID          uuid.UUID `json:"id"`
	OrgID       uuid.UUID `json:"org_id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Suburb      string    `json:"suburb"`
	State       string    `json:"state"`
	Postcode    string    `json:"postcode"`
	SDACategory string    `json:"sda_category"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Dwelling is a lettable unit inside a property. Capacity is the number of
// participant places; OccupancyStatus is recomputed on every move.
type Dwelling struct {
	ID              uuid.UUID       `json:"id"`
	OrgID           uuid.UUID       `json:"org_id"`
	PropertyID      uuid.UUID       `json:"property_id"`
	Name            string          `json:"name"`
	Capacity        int             `json:"capacity"`
	OccupancyStatus OccupancyStatus `json:"occupancy_status"`
	SDADesign       string          `json:"sda_design,omitempty"`
	WeeklyRent      float64         `json:"weekly_rent,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
