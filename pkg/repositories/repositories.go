// Package repositories provides data access for the SDA domain. Every
// repository reads its org-scoped connection from the request context; RLS
// policies on the tables enforce isolation underneath.
package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bls-living/sda-engine/pkg/apperrors"
	"github.com/bls-living/sda-engine/pkg/database"
)

// scopeFromContext returns the org-scoped connection or an error when the
// middleware did not run.
func scopeFromContext(ctx context.Context) (*database.TenantScope, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}
	return scope, nil
}

// mapNotFound converts pgx's no-rows error to the app sentinel.
func mapNotFound(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, apperrors.ErrNotFound)
	}
	return err
}
