// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"unicode"

	"github.com/MKhiriev/go-szuru/internal/logger"
	"github.com/MKhiriev/go-szuru/models"
)

type profileRepository struct {
	db      *sql.DB
	queries queries
	now     func() time.Time
}

// NewProfileRepository returns a ProfileRepository backed by db.
func NewProfileRepository(db *DB) ProfileRepository {
	return &profileRepository{
		db:      db.DB,
		queries: newQueries(db.placeholder),
		now:     time.Now,
	}
}

func (r *profileRepository) Create(ctx context.Context, p models.Profile) (models.Profile, error) {
	log := logger.FromContext(ctx)

	if err := validateName(p.Name); err != nil {
		return models.Profile{}, err
	}
	p.CreatedAt = r.now().UTC().Truncate(time.Second)

	query, args, err := r.queries.insertProfile(p)
	if err != nil {
		return models.Profile{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			log.Debug().Str("func", "profileRepository.Create").Str("name", p.Name).Msg("profile already exists")
			return models.Profile{}, ErrProfileAlreadyExists
		}
		log.Err(err).Str("func", "profileRepository.Create").Msg("unexpected DB error")
		return models.Profile{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return p, nil
}

func (r *profileRepository) Upsert(ctx context.Context, p models.Profile) (models.Profile, error) {
	log := logger.FromContext(ctx)

	if err := validateName(p.Name); err != nil {
		return models.Profile{}, err
	}
	p.CreatedAt = r.now().UTC().Truncate(time.Second)

	query, args, err := r.queries.upsertProfile(p)
	if err != nil {
		return models.Profile{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "profileRepository.Upsert").Msg("unexpected DB error")
		return models.Profile{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return r.Get(ctx, p.Name)
}

func (r *profileRepository) Get(ctx context.Context, name string) (models.Profile, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.queries.selectProfile(name)
	if err != nil {
		return models.Profile{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	p, err := scanProfile(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Profile{}, ErrProfileNotFound
		}
		log.Err(err).Str("func", "profileRepository.Get").Msg("unexpected DB error")
		return models.Profile{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return p, nil
}

func (r *profileRepository) List(ctx context.Context) ([]models.Profile, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.queries.listProfiles()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "profileRepository.List").Msg("unexpected DB error")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	profiles := make([]models.Profile, 0)
	for rows.Next() {
		p, scanErr := scanProfile(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		profiles = append(profiles, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return profiles, nil
}

func (r *profileRepository) Delete(ctx context.Context, name string) error {
	log := logger.FromContext(ctx)

	query, args, err := r.queries.deleteProfile(name)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "profileRepository.Delete").Msg("unexpected DB error")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	if affected == 0 {
		return ErrProfileNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.Name, &p.BaseURL, &p.APIURL, &p.Username, &p.Password, &p.Token, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, err
	}
	if err != nil {
		return models.Profile{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return p, nil
}

func validateName(name string) error {
	if name == "" {
		return ErrInvalidProfileName
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return ErrInvalidProfileName
		}
	}
	return nil
}
