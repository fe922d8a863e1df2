//go:build integration

package repositories

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/bls-living/sda-engine/pkg/apperrors"
	"github.com/bls-living/sda-engine/pkg/models"
	"github.com/bls-living/sda-engine/pkg/testhelpers"
)

func TestDwellingRepository_UpdateOccupancy(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	orgID := seedOrg(t, db, "Dwelling Occupancy Org")
	repo := NewDwellingRepository()

	ctx, cleanup := tenantContext(t, db, orgID)
	defer cleanup()

	propertyID := insertProperty(t, ctx, orgID, "Riverside Villas")
	dwellingID := insertDwelling(t, ctx, orgID, propertyID, "Villa 1", 2)

	if err := repo.UpdateOccupancy(ctx, dwellingID, models.OccupancyFullyOccupied); err != nil {
		t.Fatalf("UpdateOccupancy failed: %v", err)
	}
	got, err := repo.GetByID(ctx, dwellingID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.OccupancyStatus != models.OccupancyFullyOccupied {
		t.Errorf("got status %s", got.OccupancyStatus)
	}

	if err := repo.UpdateOccupancy(ctx, uuid.New(), models.OccupancyVacant); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("unknown dwelling should be ErrNotFound, got %v", err)
	}
}

func TestDwellingRepository_ListVacant(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	orgID := seedOrg(t, db, "Dwelling Vacancy Org")
	repo := NewDwellingRepository()

	ctx, cleanup := tenantContext(t, db, orgID)
	defer cleanup()

	propertyID := insertProperty(t, ctx, orgID, "Hilltop Apartments")
	vacant := insertDwelling(t, ctx, orgID, propertyID, "Unit 1", 2)
	partial := insertDwelling(t, ctx, orgID, propertyID, "Unit 2", 2)
	full := insertDwelling(t, ctx, orgID, propertyID, "Unit 3", 2)

	if err := repo.UpdateOccupancy(ctx, partial, models.OccupancyPartiallyOccupied); err != nil {
		t.Fatalf("UpdateOccupancy failed: %v", err)
	}
	if err := repo.UpdateOccupancy(ctx, full, models.OccupancyFullyOccupied); err != nil {
		t.Fatalf("UpdateOccupancy failed: %v", err)
	}

	// Anything short of fully occupied still has a place available.
	listed, err := repo.ListVacant(ctx)
	if err != nil {
		t.Fatalf("ListVacant failed: %v", err)
	}
	ids := map[uuid.UUID]bool{}
	for _, d := range listed {
		ids[d.ID] = true
	}
	if !ids[vacant] || !ids[partial] || ids[full] {
		t.Errorf("got vacancies %v", ids)
	}
}
