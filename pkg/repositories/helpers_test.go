//go:build integration

package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bls-living/sda-engine/pkg/database"
	"github.com/bls-living/sda-engine/pkg/models"
	"github.com/bls-living/sda-engine/pkg/testhelpers"
)

// seedOrg creates a fresh org so each test works inside its own tenant.
// The orgs table carries no RLS, so an unscoped connection can write it.
func seedOrg(t *testing.T, db *testhelpers.TestDB, name string) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	scope, err := db.DB.WithoutTenant(ctx)
	if err != nil {
		t.Fatalf("failed to create scope for org setup: %v", err)
	}
	defer scope.Close()

	orgID := uuid.New()
	_, err = scope.Conn.Exec(ctx, `INSERT INTO orgs (id, name) VALUES ($1, $2)`, orgID, name)
	if err != nil {
		t.Fatalf("failed to seed org: %v", err)
	}
	return orgID
}

// tenantContext returns a context scoped to the given org, the way the HTTP
// middleware builds it for a request.
func tenantContext(t *testing.T, db *testhelpers.TestDB, orgID uuid.UUID) (context.Context, func()) {
	t.Helper()
	ctx := context.Background()

	scope, err := db.DB.WithTenant(ctx, orgID)
	if err != nil {
		t.Fatalf("failed to create tenant scope: %v", err)
	}
	return database.SetTenantScope(ctx, scope), func() { scope.Close() }
}

// scopedConn pulls the tenant connection back out of a test context for
// fixture inserts that have no repository write method.
func scopedConn(t *testing.T, ctx context.Context) *database.TenantScope {
	t.Helper()
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		t.Fatal("test context has no tenant scope")
	}
	return scope
}

func insertProperty(t *testing.T, ctx context.Context, orgID uuid.UUID, name string) uuid.UUID {
	t.Helper()
	scope := scopedConn(t, ctx)

	id := uuid.New()
	_, err := scope.Conn.Exec(ctx, `
		INSERT INTO properties (id, org_id, name, address, suburb, state, postcode, sda_category)
		VALUES ($1, $2, $3, '12 River St', 'Parramatta', 'NSW', '2150', 'high_physical_support')`,
		id, orgID, name)
	if err != nil {
		t.Fatalf("failed to insert property: %v", err)
	}
	return id
}

func insertDwelling(t *testing.T, ctx context.Context, orgID, propertyID uuid.UUID, name string, capacity int) uuid.UUID {
	t.Helper()
	scope := scopedConn(t, ctx)

	id := uuid.New()
	_, err := scope.Conn.Exec(ctx, `
		INSERT INTO dwellings (id, org_id, property_id, name, capacity)
		VALUES ($1, $2, $3, $4, $5)`,
		id, orgID, propertyID, name, capacity)
	if err != nil {
		t.Fatalf("failed to insert dwelling: %v", err)
	}
	return id
}

func insertParticipant(t *testing.T, ctx context.Context, orgID uuid.UUID, firstName, lastName string, status models.ParticipantStatus, dwellingID *uuid.UUID) uuid.UUID {
	t.Helper()
	scope := scopedConn(t, ctx)

	id := uuid.New()
	_, err := scope.Conn.Exec(ctx, `
		INSERT INTO participants (id, org_id, first_name, last_name, ndis_number, status, dwelling_id)
		VALUES ($1, $2, $3, $4, '430123456', $5, $6)`,
		id, orgID, firstName, lastName, status, dwellingID)
	if err != nil {
		t.Fatalf("failed to insert participant: %v", err)
	}
	return id
}

func insertPlan(t *testing.T, ctx context.Context, orgID, participantID uuid.UUID, monthlyAmount float64) uuid.UUID {
	t.Helper()
	scope := scopedConn(t, ctx)

	id := uuid.New()
	now := time.Now()
	_, err := scope.Conn.Exec(ctx, `
		INSERT INTO participant_plans (id, org_id, participant_id, status, start_date, end_date, monthly_sda_amount)
		VALUES ($1, $2, $3, 'current', $4, $5, $6)`,
		id, orgID, participantID, now.AddDate(0, -6, 0), now.AddDate(0, 6, 0), monthlyAmount)
	if err != nil {
		t.Fatalf("failed to insert plan: %v", err)
	}
	return id
}
