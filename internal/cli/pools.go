// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/MKhiriev/go-szuru/internal/service"
)

func (a *App) runPool(ctx context.Context, s *session, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: pool needs a subcommand", ErrUsage)
	}

	switch args[0] {
	case "show":
		return a.poolShow(ctx, s, args[1:])
	case "create":
		return a.poolCreate(ctx, s, args[1:])
	case "add":
		return a.poolAdd(ctx, s, args[1:])
	default:
		return fmt.Errorf("%w: pool %q", ErrUnknownCommand, args[0])
	}
}

func (a *App) fetchPool(ctx context.Context, s *session, raw string) (*service.Pool, error) {
	id, err := parseID("pool id", raw)
	if err != nil {
		return nil, err
	}
	client, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	return client.Pool(ctx, id)
}

func (a *App) poolShow(ctx context.Context, s *session, args []string) error {
	if err := needArgs(args, 1, "pool show <id>"); err != nil {
		return err
	}
	pool, err := a.fetchPool(ctx, s, args[0])
	if err != nil {
		return err
	}

	id, err := pool.ID(ctx)
	if err != nil {
		return err
	}
	names, err := pool.Names(ctx)
	if err != nil {
		return err
	}
	category, err := pool.Category(ctx)
	if err != nil {
		return err
	}
	posts, err := pool.Posts(ctx)
	if err != nil {
		return err
	}

	a.printf("Pool #%d %s\n", id, pool)
	a.printf("  names:    %s\n", strings.Join(names, " "))
	a.printf("  category: %s\n", category)
	a.printf("  posts:    %s\n", joinNames(posts))
	return nil
}

func (a *App) poolCreate(ctx context.Context, s *session, args []string) error {
	fs := a.newFlagSet("pool create")
	category := fs.String("category", "", "pool category (default category when empty)")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(positional) == 0 {
		return fmt.Errorf("%w: expected pool create <name> [alias...]", ErrUsage)
	}

	client, err := s.connect(ctx)
	if err != nil {
		return err
	}
	pool, err := client.NewPoolNames(ctx, positional)
	if err != nil {
		return err
	}
	if *category != "" {
		if err = pool.SetCategory(ctx, *category); err != nil {
			return err
		}
		if err = pool.Push(ctx); err != nil {
			return err
		}
	}

	id, err := pool.ID(ctx)
	if err != nil {
		return err
	}
	a.printf("created Pool #%d %s\n", id, pool)
	return nil
}

// poolAdd appends posts to a pool, skipping ones already in it.
func (a *App) poolAdd(ctx context.Context, s *session, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: expected pool add <id> <postID>...", ErrUsage)
	}
	pool, err := a.fetchPool(ctx, s, args[0])
	if err != nil {
		return err
	}

	posts, err := pool.Posts(ctx)
	if err != nil {
		return err
	}
	ids := make([]int, 0, len(posts)+len(args)-1)
	for _, p := range posts {
		id, idErr := p.ID(ctx)
		if idErr != nil {
			return idErr
		}
		ids = append(ids, id)
	}
	for _, raw := range args[1:] {
		id, parseErr := parseID("post id", raw)
		if parseErr != nil {
			return parseErr
		}
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}

	if err = pool.SetPostIDs(ctx, ids); err != nil {
		return err
	}
	if err = pool.Push(ctx); err != nil {
		return err
	}

	count, err := pool.PostCount(ctx)
	if err != nil {
		return err
	}
	a.printf("%s: %d posts\n", pool, count)
	return nil
}
