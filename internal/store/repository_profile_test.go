// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"github.com/MKhiriev/go-szuru/internal/logger"
	"github.com/MKhiriev/go-szuru/models"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestProfileRepo(t *testing.T) (*profileRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	repo := &profileRepository{
		db:      db,
		queries: newQueries(sq.Dollar),
		now:     func() time.Time { return fixedNow },
	}
	return repo, mock, db
}

func pgError(code string) error {
	return &pgconn.PgError{Code: code}
}

var profileRow = []string{"name", "base_url", "api_url", "username", "password", "token", "created_at"}

func TestCreateProfile_Success(t *testing.T) {
	repo, mock, db := newTestProfileRepo(t)
	defer db.Close()

	p := models.Profile{Name: "home", BaseURL: "https://booru.example/", APIURL: "api/", Username: "admin"}

	mock.ExpectExec("INSERT INTO profiles").
		WithArgs("home", "https://booru.example/", "api/", "admin", "", "", fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := repo.Create(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created.CreatedAt.Equal(fixedNow) {
		t.Errorf("expected created_at %v, got %v", fixedNow, created.CreatedAt)
	}
	if err = mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateProfile_UniqueViolation(t *testing.T) {
	cases := map[string]error{
		"postgres": pgError(pgerrcode.UniqueViolation),
		"sqlite":   sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey},
	}
	for name, driverErr := range cases {
		t.Run(name, func(t *testing.T) {
			repo, mock, db := newTestProfileRepo(t)
			defer db.Close()

			mock.ExpectExec("INSERT INTO profiles").WillReturnError(driverErr)

			_, err := repo.Create(context.Background(), models.Profile{Name: "home"})
			if !errors.Is(err, ErrProfileAlreadyExists) {
				t.Fatalf("expected ErrProfileAlreadyExists, got %v", err)
			}
		})
	}
}

func TestCreateProfile_UnexpectedDBError(t *testing.T) {
	repo, mock, db := newTestProfileRepo(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO profiles").WillReturnError(pgError(pgerrcode.ConnectionFailure))

	_, err := repo.Create(context.Background(), models.Profile{Name: "home"})
	if err == nil || errors.Is(err, ErrProfileAlreadyExists) {
		t.Fatalf("expected unexpected DB error, got %v", err)
	}
}

func TestCreateProfile_InvalidName(t *testing.T) {
	repo, _, db := newTestProfileRepo(t)
	defer db.Close()

	for _, name := range []string{"", "my profile", "a/b", "x-1"} {
		if _, err := repo.Create(context.Background(), models.Profile{Name: name}); !errors.Is(err, ErrInvalidProfileName) {
			t.Errorf("name %q: expected ErrInvalidProfileName, got %v", name, err)
		}
	}
}

func TestUpsertProfile_KeepsCreatedAt(t *testing.T) {
	repo, mock, db := newTestProfileRepo(t)
	defer db.Close()

	original := fixedNow.Add(-48 * time.Hour)
	mock.ExpectExec("INSERT INTO profiles .* ON CONFLICT \\(name\\) DO UPDATE").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT .* FROM profiles WHERE name").
		WithArgs("home").
		WillReturnRows(sqlmock.NewRows(profileRow).
			AddRow("home", "https://new.example/", "", "", "", "", original))

	p, err := repo.Upsert(context.Background(), models.Profile{Name: "home", BaseURL: "https://new.example/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.CreatedAt.Equal(original) {
		t.Errorf("expected created_at %v, got %v", original, p.CreatedAt)
	}
	if p.BaseURL != "https://new.example/" {
		t.Errorf("unexpected base url %q", p.BaseURL)
	}
}

func TestGetProfile(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock, db := newTestProfileRepo(t)
		defer db.Close()

		mock.ExpectQuery("SELECT .* FROM profiles WHERE name = \\$1").
			WithArgs("home").
			WillReturnRows(sqlmock.NewRows(profileRow).
				AddRow("home", "https://booru.example/", "api/", "admin", "", "tok", fixedNow))

		p, err := repo.Get(context.Background(), "home")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Token != "tok" || p.Username != "admin" {
			t.Errorf("unexpected profile %+v", p)
		}
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock, db := newTestProfileRepo(t)
		defer db.Close()

		mock.ExpectQuery("SELECT .* FROM profiles").WillReturnError(sql.ErrNoRows)

		if _, err := repo.Get(context.Background(), "nope"); !errors.Is(err, ErrProfileNotFound) {
			t.Fatalf("expected ErrProfileNotFound, got %v", err)
		}
	})

	t.Run("scan error", func(t *testing.T) {
		repo, mock, db := newTestProfileRepo(t)
		defer db.Close()

		mock.ExpectQuery("SELECT .* FROM profiles").
			WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("home"))

		if _, err := repo.Get(context.Background(), "home"); !errors.Is(err, ErrScanningRow) {
			t.Fatalf("expected ErrScanningRow, got %v", err)
		}
	})
}

func TestListProfiles(t *testing.T) {
	repo, mock, db := newTestProfileRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT .* FROM profiles ORDER BY name").
		WillReturnRows(sqlmock.NewRows(profileRow).
			AddRow("a", "https://a/", "", "", "", "", fixedNow).
			AddRow("b", "https://b/", "", "", "", "", fixedNow))

	profiles, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(profiles) != 2 || profiles[0].Name != "a" || profiles[1].Name != "b" {
		t.Fatalf("unexpected profiles %+v", profiles)
	}
}

func TestListProfiles_Empty(t *testing.T) {
	repo, mock, db := newTestProfileRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT .* FROM profiles").WillReturnRows(sqlmock.NewRows(profileRow))

	profiles, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profiles == nil || len(profiles) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", profiles)
	}
}

func TestDeleteProfile(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		repo, mock, db := newTestProfileRepo(t)
		defer db.Close()

		mock.ExpectExec("DELETE FROM profiles WHERE name = \\$1").
			WithArgs("home").
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := repo.Delete(context.Background(), "home"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock, db := newTestProfileRepo(t)
		defer db.Close()

		mock.ExpectExec("DELETE FROM profiles").WillReturnResult(sqlmock.NewResult(0, 0))

		if err := repo.Delete(context.Background(), "home"); !errors.Is(err, ErrProfileNotFound) {
			t.Fatalf("expected ErrProfileNotFound, got %v", err)
		}
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock, db := newTestProfileRepo(t)
		defer db.Close()

		mock.ExpectExec("DELETE FROM profiles").WillReturnError(errors.New("boom"))

		if err := repo.Delete(context.Background(), "home"); !errors.Is(err, ErrExecutingQuery) {
			t.Fatalf("expected ErrExecutingQuery, got %v", err)
		}
	})
}

func TestSQLiteProfileRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "profiles.db")

	db, err := Open(ctx, path, logger.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	repo := NewProfileRepository(db)

	if _, err = repo.Create(ctx, models.Profile{Name: "home", BaseURL: "https://a/", Token: "t1"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err = repo.Create(ctx, models.Profile{Name: "home"}); !errors.Is(err, ErrProfileAlreadyExists) {
		t.Fatalf("expected ErrProfileAlreadyExists, got %v", err)
	}
	if _, err = repo.Upsert(ctx, models.Profile{Name: "home", BaseURL: "https://b/"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err = repo.Upsert(ctx, models.Profile{Name: "work", BaseURL: "https://w/"}); err != nil {
		t.Fatalf("upsert new: %v", err)
	}

	got, err := repo.Get(ctx, "home")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.BaseURL != "https://b/" || got.Token != "" {
		t.Errorf("upsert did not replace fields: %+v", got)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].Name != "home" || all[1].Name != "work" {
		t.Errorf("unexpected list %+v", all)
	}

	if err = repo.Delete(ctx, "home"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err = repo.Get(ctx, "home"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound after delete, got %v", err)
	}
}
