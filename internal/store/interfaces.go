// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package store persists saved connection profiles in SQLite or PostgreSQL.
//
// The backend is picked from the DSN: postgres:// and postgresql:// URLs go
// through pgx, anything else is a SQLite file path. The schema is applied
// with goose on open, and queries are built with squirrel so the same code
// serves both placeholder styles.
package store

import (
	"context"

	"github.com/MKhiriev/go-szuru/models"
)

// ProfileRepository stores [models.Profile] values keyed by name.
type ProfileRepository interface {
	// Create inserts p and fails with ErrProfileAlreadyExists when the name
	// is taken.
	Create(ctx context.Context, p models.Profile) (models.Profile, error)
	// Upsert inserts p or replaces the profile with the same name.
	Upsert(ctx context.Context, p models.Profile) (models.Profile, error)
	Get(ctx context.Context, name string) (models.Profile, error)
	// List returns every profile ordered by name.
	List(ctx context.Context) ([]models.Profile, error)
	Delete(ctx context.Context, name string) error
}
