// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-szuru/models"
)

const profilesTable = "profiles"

var profileColumns = []string{
	"name",
	"base_url",
	"api_url",
	"username",
	"password",
	"token",
	"created_at",
}

// queries builds profile statements for one placeholder style.
type queries struct {
	builder sq.StatementBuilderType
}

func newQueries(placeholder sq.PlaceholderFormat) queries {
	return queries{builder: sq.StatementBuilder.PlaceholderFormat(placeholder)}
}

func (q queries) insertProfile(p models.Profile) (string, []any, error) {
	return q.builder.Insert(profilesTable).
		Columns(profileColumns...).
		Values(p.Name, p.BaseURL, p.APIURL, p.Username, p.Password, p.Token, p.CreatedAt).
		ToSql()
}

// upsertProfile keeps the original created_at of a replaced row.
func (q queries) upsertProfile(p models.Profile) (string, []any, error) {
	return q.builder.Insert(profilesTable).
		Columns(profileColumns...).
		Values(p.Name, p.BaseURL, p.APIURL, p.Username, p.Password, p.Token, p.CreatedAt).
		Suffix(`ON CONFLICT (name) DO UPDATE SET
			base_url = excluded.base_url,
			api_url = excluded.api_url,
			username = excluded.username,
			password = excluded.password,
			token = excluded.token`).
		ToSql()
}

func (q queries) selectProfile(name string) (string, []any, error) {
	return q.builder.Select(profileColumns...).
		From(profilesTable).
		Where(sq.Eq{"name": name}).
		ToSql()
}

func (q queries) listProfiles() (string, []any, error) {
	return q.builder.Select(profileColumns...).
		From(profilesTable).
		OrderBy("name").
		ToSql()
}

func (q queries) deleteProfile(name string) (string, []any, error) {
	return q.builder.Delete(profilesTable).
		Where(sq.Eq{"name": name}).
		ToSql()
}
