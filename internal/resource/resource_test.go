// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package resource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-szuru/internal/mock"
)

// thingKind is a minimal kind: numeric id, a scalar title and a list of
// labels that are presented as plain names but stored as {"name": ...}.
func thingKind() *Kind {
	return &Kind{
		Name: "thing",
		InstancePath: func(committed map[string]any) ([]string, error) {
			id, ok := committed["id"]
			if !ok {
				return nil, fieldErr("id", ErrFieldNotPresent)
			}
			return []string{"thing", fmt.Sprint(id)}, nil
		},
		CollectionPath: []string{"things"},
		LazyFields:     []string{"id", "title", "version"},
		Fields: map[string]Field{
			"labels": {
				Key:   "labels",
				Multi: true,
				Read: func(_ *Resource, wire any) any {
					return wire.(map[string]any)["name"]
				},
				Write: func(_ context.Context, _ *Resource, v any) (any, error) {
					name, ok := v.(string)
					if !ok || name == "" {
						return nil, fieldErr("labels", ErrInvalidArgument)
					}
					return map[string]any{"name": name}, nil
				},
			},
		},
		Serializable: []string{"title", "labels"},
		Collapse: map[string]func(any) any{
			"labels": func(v any) any { return v.(map[string]any)["name"] },
		},
	}
}

func fullThing() map[string]any {
	return map[string]any{
		"id":      json.Number("7"),
		"title":   "seven",
		"labels":  []any{map[string]any{"name": "a"}, map[string]any{"name": "b"}},
		"version": json.Number("3"),
		"fileUrl": "data/things/7.png",
	}
}

func newThing(t *testing.T, seed map[string]any) (*Resource, *mock.MockTransport) {
	t.Helper()
	ctrl := gomock.NewController(t)
	tr := mock.NewMockTransport(ctrl)
	return New(thingKind(), tr, seed), tr
}

func expectPull(tr *mock.MockTransport, data map[string]any, err error) *gomock.Call {
	return tr.EXPECT().
		Call(gomock.Any(), http.MethodGet, []string{"thing", "7"}, gomock.Nil(), gomock.Nil()).
		Return(data, err)
}

// ── Get ──────────────────────────────────────────────────────────────────────

func TestGet_FromCommittedWithoutCall(t *testing.T) {
	r, _ := newThing(t, fullThing())

	title, err := r.Get(context.Background(), "title")

	require.NoError(t, err)
	assert.Equal(t, "seven", title)
}

func TestGet_MissingFieldPullsOnce(t *testing.T) {
	r, tr := newThing(t, map[string]any{"id": json.Number("7")})
	expectPull(tr, fullThing(), nil).Times(1)

	title, err := r.Get(context.Background(), "title")
	require.NoError(t, err)
	assert.Equal(t, "seven", title)

	labels, err := r.Get(context.Background(), "labels")
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, labels)
	assert.True(t, r.Synchronized())
}

func TestGet_AbsentAfterPull(t *testing.T) {
	r, tr := newThing(t, map[string]any{"id": json.Number("7")})
	expectPull(tr, fullThing(), nil).Times(1)

	_, err := r.Get(context.Background(), "nonexistent")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFieldNotPresent)
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "nonexistent", fe.Field)
}

func TestGet_PullErrorLeavesStateUnchanged(t *testing.T) {
	r, tr := newThing(t, map[string]any{"id": json.Number("7")})
	require.NoError(t, r.Set(context.Background(), "id", json.Number("7")))
	expectPull(tr, nil, assert.AnError)

	_, err := r.Get(context.Background(), "title")

	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, r.Synchronized())
	id, ok := r.Committed("id")
	assert.True(t, ok)
	assert.Equal(t, json.Number("7"), id)
}

func TestGet_NilShortCircuitsTransform(t *testing.T) {
	seed := fullThing()
	seed["labels"] = nil
	r, _ := newThing(t, seed)

	labels, err := r.Get(context.Background(), "labels")

	require.NoError(t, err)
	assert.Nil(t, labels)
}

func TestGet_ReturnsFreshSlice(t *testing.T) {
	r, _ := newThing(t, fullThing())

	first, err := r.Get(context.Background(), "labels")
	require.NoError(t, err)
	first.([]any)[0] = "mutated"

	second, err := r.Get(context.Background(), "labels")
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, second)
}

// ── Set ──────────────────────────────────────────────────────────────────────

func TestSet_ThenGetWithoutCall(t *testing.T) {
	r, _ := newThing(t, fullThing())

	require.NoError(t, r.Set(context.Background(), "title", "renamed"))
	require.NoError(t, r.Set(context.Background(), "labels", []string{"x", "y", "z"}))

	title, err := r.Get(context.Background(), "title")
	require.NoError(t, err)
	assert.Equal(t, "renamed", title)

	labels, err := r.Get(context.Background(), "labels")
	require.NoError(t, err)
	assert.Equal(t, []any{"x", "y", "z"}, labels)

	wire, ok := r.Pending("labels")
	require.True(t, ok)
	assert.Equal(t, []any{
		map[string]any{"name": "x"},
		map[string]any{"name": "y"},
		map[string]any{"name": "z"},
	}, wire)
	assert.False(t, r.Synchronized())
}

func TestSet_ListFieldRequiresCollection(t *testing.T) {
	r, _ := newThing(t, fullThing())

	for _, bad := range []any{"x", 3, nil} {
		err := r.Set(context.Background(), "labels", bad)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}
	assert.True(t, r.Synchronized())
}

func TestSet_ListShapeCheckedBeforePull(t *testing.T) {
	// the mock fails the test on any Call
	r, _ := newThing(t, map[string]any{"id": json.Number("7")})

	err := r.Set(context.Background(), "labels", "single")

	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.True(t, r.Synchronized())
}

func TestSet_ArrayAccepted(t *testing.T) {
	r, _ := newThing(t, fullThing())

	require.NoError(t, r.Set(context.Background(), "labels", [2]string{"p", "q"}))

	labels, err := r.Get(context.Background(), "labels")
	require.NoError(t, err)
	assert.Equal(t, []any{"p", "q"}, labels)
}

func TestSet_UnknownFieldPullsOnceThenFails(t *testing.T) {
	r, tr := newThing(t, map[string]any{"id": json.Number("7")})
	expectPull(tr, fullThing(), nil).Times(1)

	err := r.Set(context.Background(), "nonexistent", 1)

	assert.ErrorIs(t, err, ErrFieldNotPresent)
}

func TestSet_LazyFieldPullsThenStores(t *testing.T) {
	r, tr := newThing(t, map[string]any{"id": json.Number("7")})
	expectPull(tr, fullThing(), nil).Times(1)

	require.NoError(t, r.Set(context.Background(), "title", "late"))

	title, err := r.Get(context.Background(), "title")
	require.NoError(t, err)
	assert.Equal(t, "late", title)
}

func TestSet_WriteTransformErrorLeavesPendingUnchanged(t *testing.T) {
	r, _ := newThing(t, fullThing())
	require.NoError(t, r.Set(context.Background(), "labels", []string{"ok"}))

	err := r.Set(context.Background(), "labels", []any{"fine", 42})

	assert.ErrorIs(t, err, ErrInvalidArgument)
	labels, getErr := r.Get(context.Background(), "labels")
	require.NoError(t, getErr)
	assert.Equal(t, []any{"ok"}, labels)
}

func TestSetRaw(t *testing.T) {
	r, _ := newThing(t, nil)

	r.SetRaw("contentToken", "tok")

	v, ok := r.Pending("contentToken")
	assert.True(t, ok)
	assert.Equal(t, "tok", v)
	assert.False(t, r.Synchronized())
}

// ── FileURL ──────────────────────────────────────────────────────────────────

func TestFileURL(t *testing.T) {
	r, tr := newThing(t, fullThing())
	tr.EXPECT().DataURL("data/things/7.png").Return("https://b/data/things/7.png")

	u, err := r.FileURL(context.Background(), "file")

	require.NoError(t, err)
	assert.Equal(t, "https://b/data/things/7.png", u)
}

func TestFileURL_PullsWhenMissing(t *testing.T) {
	r, tr := newThing(t, map[string]any{"id": json.Number("7")})
	gomock.InOrder(
		expectPull(tr, fullThing(), nil),
		tr.EXPECT().DataURL("data/things/7.png").Return("https://b/x"),
	)

	u, err := r.FileURL(context.Background(), "file")

	require.NoError(t, err)
	assert.Equal(t, "https://b/x", u)
}

func TestFileURL_NotPresent(t *testing.T) {
	r, tr := newThing(t, map[string]any{"id": json.Number("7")})
	expectPull(tr, fullThing(), nil).Times(1)

	_, err := r.FileURL(context.Background(), "thumbnail")

	assert.ErrorIs(t, err, ErrFieldNotPresent)
}

// ── Pull / Update ────────────────────────────────────────────────────────────

func TestPull_DiscardsPendingEdits(t *testing.T) {
	r, tr := newThing(t, fullThing())
	require.NoError(t, r.Set(context.Background(), "title", "local"))

	server := fullThing()
	server["title"] = "remote"
	server["version"] = json.Number("4")
	expectPull(tr, server, nil)

	require.NoError(t, r.Pull(context.Background()))

	assert.True(t, r.Synchronized())
	title, err := r.Get(context.Background(), "title")
	require.NoError(t, err)
	assert.Equal(t, "remote", title)
	assert.Equal(t, json.Number("4"), r.Version())
}

func TestPull_InstancePathError(t *testing.T) {
	r, _ := newThing(t, nil)

	err := r.Pull(context.Background())

	assert.ErrorIs(t, err, ErrFieldNotPresent)
}

func TestPullChecked(t *testing.T) {
	tests := []struct {
		name     string
		local    string
		remote   string
		wantErr  bool
		wantSync bool
	}{
		{name: "remote agrees with edit", local: "edited", remote: "edited", wantSync: true},
		{name: "edit reverted to original", local: "seven", remote: "changed elsewhere", wantSync: true},
		{name: "remote diverged", local: "edited", remote: "changed elsewhere", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, tr := newThing(t, fullThing())
			require.NoError(t, r.Set(context.Background(), "title", tt.local))

			server := fullThing()
			server["title"] = tt.remote
			expectPull(tr, server, nil)

			err := r.PullChecked(context.Background())

			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrNotSynchronized)
				var fe *FieldError
				require.True(t, errors.As(err, &fe))
				assert.Equal(t, "title", fe.Field)

				title, _ := r.Committed("title")
				assert.Equal(t, "seven", title)
				assert.False(t, r.Synchronized())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSync, r.Synchronized())
		})
	}
}

func TestPullChecked_ComparesRelationsByIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		local   []string
		remote  []any
		wantErr bool
	}{
		{
			name:   "server confirms edit",
			local:  []string{"a", "b", "c"},
			remote: []any{map[string]any{"name": "a", "usages": 1}, map[string]any{"name": "b", "usages": 2}, map[string]any{"name": "c", "usages": 1}},
		},
		{
			name:   "edit restates committed value",
			local:  []string{"a", "b"},
			remote: []any{map[string]any{"name": "z", "usages": 5}},
		},
		{
			name:    "server diverged",
			local:   []string{"a", "b", "c"},
			remote:  []any{map[string]any{"name": "z", "usages": 5}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, tr := newThing(t, fullThing())
			require.NoError(t, r.Set(context.Background(), "labels", tt.local))

			server := fullThing()
			server["labels"] = tt.remote
			expectPull(tr, server, nil)

			err := r.PullChecked(context.Background())

			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNotSynchronized)
				assert.False(t, r.Synchronized())
				return
			}
			require.NoError(t, err)
			assert.True(t, r.Synchronized())
			labels, _ := r.Committed("labels")
			assert.Equal(t, tt.remote, labels)
		})
	}
}

func TestUpdate_IgnoresUntouchedKeys(t *testing.T) {
	r, _ := newThing(t, fullThing())
	require.NoError(t, r.Set(context.Background(), "title", "edited"))

	err := r.Update(map[string]any{"id": json.Number("7"), "labels": []any{}}, false)

	require.NoError(t, err)
	assert.True(t, r.Synchronized())
	_, ok := r.Committed("title")
	assert.False(t, ok)
}

// ── Push ─────────────────────────────────────────────────────────────────────

func TestPush_CreateWithoutVersion(t *testing.T) {
	r, tr := newThing(t, map[string]any{"title": "", "labels": []any{}, "extra": 0})
	require.NoError(t, r.Set(context.Background(), "title", "brand new"))
	require.NoError(t, r.Set(context.Background(), "labels", []string{"a"}))
	require.NoError(t, r.Set(context.Background(), "extra", 5))

	created := fullThing()
	tr.EXPECT().
		Call(gomock.Any(), http.MethodPost, []string{"things"}, gomock.Nil(), map[string]any{
			"title":  "brand new",
			"labels": []any{"a"},
		}).
		Return(created, nil)

	require.NoError(t, r.Push(context.Background()))

	assert.True(t, r.Synchronized())
	assert.True(t, r.HasVersion())
	assert.Equal(t, json.Number("3"), r.Version())
	_, ok := r.Pending("extra")
	assert.False(t, ok)
}

func TestPush_UpdateCarriesVersion(t *testing.T) {
	r, tr := newThing(t, fullThing())
	require.NoError(t, r.Set(context.Background(), "labels", []string{"b", "c"}))

	updated := fullThing()
	updated["labels"] = []any{map[string]any{"name": "b"}, map[string]any{"name": "c"}}
	updated["version"] = json.Number("4")
	tr.EXPECT().
		Call(gomock.Any(), http.MethodPut, []string{"thing", "7"}, gomock.Nil(), map[string]any{
			"labels":  []any{"b", "c"},
			"version": json.Number("3"),
		}).
		Return(updated, nil)

	require.NoError(t, r.Push(context.Background()))

	assert.True(t, r.Synchronized())
	assert.Equal(t, json.Number("4"), r.Version())
}

func TestPush_CreatePathOverride(t *testing.T) {
	k := thingKind()
	k.CreatePath = []string{"thing"}
	ctrl := gomock.NewController(t)
	tr := mock.NewMockTransport(ctrl)
	r := New(k, tr, nil)
	r.SetRaw("title", "t")

	tr.EXPECT().
		Call(gomock.Any(), http.MethodPost, []string{"thing"}, gomock.Nil(), map[string]any{"title": "t"}).
		Return(fullThing(), nil)

	require.NoError(t, r.Push(context.Background()))
}

func TestPush_FailureLeavesStateUnchanged(t *testing.T) {
	r, tr := newThing(t, fullThing())
	require.NoError(t, r.Set(context.Background(), "title", "edited"))
	tr.EXPECT().Call(gomock.Any(), http.MethodPut, gomock.Any(), gomock.Nil(), gomock.Any()).
		Return(nil, assert.AnError)

	err := r.Push(context.Background())

	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, r.Synchronized())
	assert.Equal(t, json.Number("3"), r.Version())
	title, err := r.Get(context.Background(), "title")
	require.NoError(t, err)
	assert.Equal(t, "edited", title)
}

// ── state helpers ────────────────────────────────────────────────────────────

func TestHasVersion(t *testing.T) {
	tests := []struct {
		name    string
		version any
		present bool
		want    bool
	}{
		{name: "absent", want: false},
		{name: "null", version: nil, present: true, want: false},
		{name: "empty number", version: json.Number(""), present: true, want: false},
		{name: "empty string", version: "", present: true, want: false},
		{name: "number", version: json.Number("1"), present: true, want: true},
		{name: "int", version: 2, present: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seed := map[string]any{"id": json.Number("7")}
			if tt.present {
				seed["version"] = tt.version
			}
			r, _ := newThing(t, seed)

			assert.Equal(t, tt.want, r.HasVersion())
		})
	}
}

func TestClear(t *testing.T) {
	r, _ := newThing(t, fullThing())
	r.SetRaw("title", "x")

	r.Clear()

	assert.True(t, r.Synchronized())
	assert.False(t, r.HasVersion())
	_, ok := r.Committed("id")
	assert.False(t, ok)
}

func TestNew_CopiesSeed(t *testing.T) {
	seed := fullThing()
	r, _ := newThing(t, seed)

	seed["title"] = "changed after construction"
	seed["labels"].([]any)[0] = nil

	title, _ := r.Committed("title")
	assert.Equal(t, "seven", title)
	labels, err := r.Get(context.Background(), "labels")
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, labels)
}

func TestKind_Helpers(t *testing.T) {
	k := thingKind()

	assert.Equal(t, "id,title,version", k.LazyFieldsParam())
	assert.Equal(t, []string{"things"}, k.createPath())
	assert.Equal(t, Field{Key: "title"}, k.field("title"))
}
