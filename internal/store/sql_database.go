// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-szuru/internal/logger"
	"github.com/MKhiriev/go-szuru/migrations"
)

// DB is an open profile database together with the dialect details the
// repository needs.
type DB struct {
	*sql.DB

	// dialect is the goose dialect name.
	dialect     string
	placeholder sq.PlaceholderFormat
	logger      *logger.Logger
}

// Open connects to dsn, applies migrations and returns the database.
func Open(ctx context.Context, dsn string, log *logger.Logger) (*DB, error) {
	if log == nil {
		log = logger.Nop()
	}

	var (
		db  *DB
		err error
	)
	if isPostgresDSN(dsn) {
		db, err = NewConnectPostgres(ctx, dsn, log)
	} else {
		db, err = NewConnectSQLite(ctx, dsn, log)
	}
	if err != nil {
		return nil, err
	}

	if err = db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate applies the embedded schema.
func (db *DB) Migrate(ctx context.Context) error {
	return migrations.Migrate(ctx, db.DB, db.dialect)
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}
