package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bls-living/sda-engine/pkg/models"
	"github.com/bls-living/sda-engine/pkg/tools"
)

func newQueryDispatcher(repos *Repos) *Dispatcher {
	return NewDispatcher(
		tools.NewRegistry(tools.AssistantTools()),
		repos,
		NewPendingActionStore(10*time.Minute),
		testLogger(),
	)
}

func TestExecuteReadToolUpcomingInspections(t *testing.T) {
	riverside := &models.Property{ID: uuid.New(), Name: "Riverside Villas"}
	hilltop := &models.Property{ID: uuid.New(), Name: "Hilltop Apartments"}

	repos, _, _ := testRepos()
	repos.Properties = &mockPropertyRepo{
		ListFunc: func(ctx context.Context) ([]*models.Property, error) {
			return []*models.Property{riverside, hilltop}, nil
		},
	}

	var requestedDays int
	repos.Inspections = &mockInspectionRepo{
		ListUpcomingFunc: func(ctx context.Context, days int) ([]*models.Inspection, error) {
			requestedDays = days
			return []*models.Inspection{
				{
					ID:            uuid.New(),
					PropertyID:    riverside.ID,
					Type:          "fire_safety",
					Status:        models.InspectionScheduled,
					ScheduledDate: time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
					Inspector:     "J. Okafor",
				},
				{
					ID:            uuid.New(),
					PropertyID:    hilltop.ID,
					Type:          "sda_compliance",
					Status:        models.InspectionScheduled,
					ScheduledDate: time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC),
				},
			}, nil
		},
	}

	dispatcher := newQueryDispatcher(repos)

	result, err := dispatcher.ExecuteReadTool(context.Background(), "get_upcoming_inspections", map[string]any{
		"days_ahead": float64(14),
	})
	require.NoError(t, err)
	assert.Equal(t, 14, requestedDays)

	var parsed struct {
		DaysAhead int `json:"days_ahead"`
		Count     int `json:"count"`
		Upcoming  []struct {
			Property      string `json:"property"`
			Type          string `json:"type"`
			ScheduledDate string `json:"scheduled_date"`
			Inspector     string `json:"inspector"`
		} `json:"upcoming_inspections"`
	}
	require.NoError(t, json.Unmarshal([]byte(result), &parsed))
	assert.Equal(t, 14, parsed.DaysAhead)
	assert.Equal(t, 2, parsed.Count)
	require.Len(t, parsed.Upcoming, 2)
	assert.Equal(t, "Riverside Villas", parsed.Upcoming[0].Property)
	assert.Equal(t, "fire_safety", parsed.Upcoming[0].Type)
	assert.Equal(t, "2026-09-14", parsed.Upcoming[0].ScheduledDate)
	assert.Equal(t, "J. Okafor", parsed.Upcoming[0].Inspector)

	// Filtering by property keeps only that property's inspections.
	result, err = dispatcher.ExecuteReadTool(context.Background(), "get_upcoming_inspections", map[string]any{
		"property_name": "hilltop",
	})
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(result), &parsed))
	assert.Equal(t, 1, parsed.Count)
	require.Len(t, parsed.Upcoming, 1)
	assert.Equal(t, "Hilltop Apartments", parsed.Upcoming[0].Property)
}

func TestPropertySummaryCountsScheduledInspections(t *testing.T) {
	prop := &models.Property{
		ID:          uuid.New(),
		Name:        "Riverside Villas",
		Address:     "12 River St",
		Suburb:      "Parramatta",
		State:       "NSW",
		Postcode:    "2150",
		SDACategory: "high_physical_support",
	}

	repos, _, _ := testRepos()
	repos.Properties = &mockPropertyRepo{
		ListFunc: func(ctx context.Context) ([]*models.Property, error) {
			return []*models.Property{prop}, nil
		},
	}
	repos.Inspections = &mockInspectionRepo{
		ListByPropertyFunc: func(ctx context.Context, propertyID uuid.UUID) ([]*models.Inspection, error) {
			assert.Equal(t, prop.ID, propertyID)
			return []*models.Inspection{
				{Status: models.InspectionScheduled},
				{Status: models.InspectionScheduled},
				{Status: models.InspectionCompleted},
			}, nil
		},
	}

	dispatcher := newQueryDispatcher(repos)

	result, err := dispatcher.ExecuteReadTool(context.Background(), "get_property_summary", map[string]any{
		"property_name": "riverside",
	})
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(result), &parsed))
	assert.Equal(t, float64(2), parsed["scheduled_inspections"])
}
