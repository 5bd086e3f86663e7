// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/MKhiriev/go-szuru/internal/service"
	"github.com/MKhiriev/go-szuru/internal/tui"
)

func (a *App) runSearch(ctx context.Context, s *session, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: search needs posts, tags, pools or image", ErrUsage)
	}
	if args[0] == "image" {
		return a.searchImage(ctx, s, args[1:])
	}

	fs := a.newFlagSet("search")
	pageSize := fs.Int("page-size", s.cfg.Search.PageSize, "items per request")
	eager := fs.Bool("eager", false, "request every field")
	progress := fs.Bool("progress", s.cfg.Search.Progress, "show a progress bar on stderr")
	limit := fs.Int("limit", 0, "stop after n results (0 means all)")

	positional, err := parseArgs(fs, args[1:])
	if err != nil {
		return err
	}
	query := strings.Join(positional, " ")

	client, err := s.connect(ctx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := []service.SearchOption{service.WithPageSize(*pageSize)}
	if *eager {
		opts = append(opts, service.WithEagerLoad())
	}
	var bar *tui.ProgressBar
	if *progress {
		barOpts := []tui.Option{tui.OnInterrupt(cancel)}
		if a.progressInput != nil {
			barOpts = append(barOpts, tui.WithInput(a.progressInput))
		}
		bar = tui.NewProgressBar(args[0], a.stderr, barOpts...)
		opts = append(opts, service.WithProgress(bar))
	}

	switch args[0] {
	case "posts":
		err = printResults(ctx, client.SearchPosts(ctx, query, opts...), *limit, a.postLine)
	case "tags":
		err = printResults(ctx, client.SearchTags(ctx, query, opts...), *limit, a.tagLine)
	case "pools":
		err = printResults(ctx, client.SearchPools(ctx, query, opts...), *limit, a.poolLine)
	default:
		err = fmt.Errorf("%w: search %q", ErrUnknownCommand, args[0])
	}

	if bar != nil {
		if finishErr := bar.Finish(err); finishErr != nil && err == nil {
			err = finishErr
		}
	}
	return err
}

func printResults[T any](ctx context.Context, seq iter.Seq2[T, error], limit int, line func(context.Context, T) error) error {
	n := 0
	for item, err := range seq {
		if err != nil {
			return err
		}
		if err = line(ctx, item); err != nil {
			return err
		}
		n++
		if limit > 0 && n >= limit {
			break
		}
	}
	return nil
}

func (a *App) postLine(ctx context.Context, post *service.Post) error {
	safety, err := post.Safety(ctx)
	if err != nil {
		return err
	}
	tags, err := post.Tags(ctx)
	if err != nil {
		return err
	}
	a.printf("%s\t%s\t%s\n", post, safety, joinNames(tags))
	return nil
}

func (a *App) tagLine(ctx context.Context, tag *service.Tag) error {
	category, err := tag.Category(ctx)
	if err != nil {
		return err
	}
	usages, err := tag.Usages(ctx)
	if err != nil {
		return err
	}
	a.printf("%s\t%s\t%d\n", tag, category, usages)
	return nil
}

func (a *App) poolLine(ctx context.Context, pool *service.Pool) error {
	id, err := pool.ID(ctx)
	if err != nil {
		return err
	}
	count, err := pool.PostCount(ctx)
	if err != nil {
		return err
	}
	a.printf("Pool #%d\t%s\t%d\n", id, pool, count)
	return nil
}

func (a *App) searchImage(ctx context.Context, s *session, args []string) error {
	if err := needArgs(args, 1, "search image <file>"); err != nil {
		return err
	}
	client, err := s.connect(ctx)
	if err != nil {
		return err
	}
	token, err := client.UploadFile(ctx, args[0])
	if err != nil {
		return err
	}
	results, err := client.SearchByImage(ctx, token)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		a.printf("no similar posts\n")
		return nil
	}
	for _, r := range results {
		switch {
		case r.Exact:
			a.printf("exact\t%s\n", r.Post)
		case r.Distance != nil:
			a.printf("%.4f\t%s\n", *r.Distance, r.Post)
		default:
			a.printf("?\t%s\n", r.Post)
		}
	}
	return nil
}
