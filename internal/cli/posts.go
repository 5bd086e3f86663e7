// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/MKhiriev/go-szuru/internal/service"
	"github.com/MKhiriev/go-szuru/models"
)

func (a *App) runPost(ctx context.Context, s *session, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: post needs a subcommand", ErrUsage)
	}

	switch args[0] {
	case "show":
		return a.postShow(ctx, s, args[1:])
	case "create":
		return a.postCreate(ctx, s, args[1:])
	case "tag":
		return a.postTag(ctx, s, args[1:])
	case "safety":
		return a.postSafety(ctx, s, args[1:])
	case "flag":
		return a.postFlag(ctx, s, args[1:])
	default:
		return fmt.Errorf("%w: post %q", ErrUnknownCommand, args[0])
	}
}

func parseID(what, raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrUsage, what, raw)
	}
	return id, nil
}

func (a *App) fetchPost(ctx context.Context, s *session, raw string) (*service.Post, error) {
	id, err := parseID("post id", raw)
	if err != nil {
		return nil, err
	}
	client, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	return client.Post(ctx, id)
}

func (a *App) postShow(ctx context.Context, s *session, args []string) error {
	if err := needArgs(args, 1, "post show <id>"); err != nil {
		return err
	}
	post, err := a.fetchPost(ctx, s, args[0])
	if err != nil {
		return err
	}
	return a.printPost(ctx, post)
}

func (a *App) printPost(ctx context.Context, post *service.Post) error {
	safety, err := post.Safety(ctx)
	if err != nil {
		return err
	}
	kind, err := post.Type(ctx)
	if err != nil {
		return err
	}
	mime, err := post.MimeType(ctx)
	if err != nil {
		return err
	}
	width, err := post.Width(ctx)
	if err != nil {
		return err
	}
	height, err := post.Height(ctx)
	if err != nil {
		return err
	}
	tags, err := post.Tags(ctx)
	if err != nil {
		return err
	}
	source, err := post.Source(ctx)
	if err != nil {
		return err
	}
	flags, err := post.Flags(ctx)
	if err != nil {
		return err
	}
	relations, err := post.Relations(ctx)
	if err != nil {
		return err
	}
	contentURL, err := post.ContentURL(ctx)
	if err != nil {
		return err
	}

	a.printf("%s\n", post)
	a.printf("  safety:    %s\n", safety)
	a.printf("  type:      %s (%s, %dx%d)\n", kind, mime, width, height)
	a.printf("  tags:      %s\n", joinNames(tags))
	a.printf("  source:    %s\n", strings.Join(source, " "))
	a.printf("  flags:     %s\n", strings.Join(flags, " "))
	a.printf("  relations: %s\n", joinNames(relations))
	a.printf("  content:   %s\n", contentURL)
	return nil
}

func joinNames[T fmt.Stringer](items []T) string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.String()
	}
	return strings.Join(names, " ")
}

func (a *App) postCreate(ctx context.Context, s *session, args []string) error {
	fs := a.newFlagSet("post create")
	safety := fs.String("safety", string(models.SafetySafe), "safe, sketchy or unsafe")
	tagList := fs.String("tags", "", "comma-separated tag names")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err = needArgs(positional, 1, "post create <file>"); err != nil {
		return err
	}

	client, err := s.connect(ctx)
	if err != nil {
		return err
	}
	token, err := client.UploadFile(ctx, positional[0])
	if err != nil {
		return err
	}
	post, err := client.NewPost(ctx, token, models.Safety(*safety))
	if err != nil {
		return err
	}

	if names := splitList(*tagList); len(names) > 0 {
		if err = post.SetTagNames(ctx, names); err != nil {
			return err
		}
		if err = post.Push(ctx); err != nil {
			return err
		}
	}

	a.printf("%s\n", post)
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// postTag edits the tag list: "+name" or "name" adds, "-name" removes.
func (a *App) postTag(ctx context.Context, s *session, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: expected post tag <id> +add -remove ...", ErrUsage)
	}
	post, err := a.fetchPost(ctx, s, args[0])
	if err != nil {
		return err
	}
	tags, err := post.Tags(ctx)
	if err != nil {
		return err
	}

	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.String()
	}
	for _, edit := range args[1:] {
		switch {
		case strings.HasPrefix(edit, "-"):
			names = slices.DeleteFunc(names, func(n string) bool { return n == edit[1:] })
		default:
			name := strings.TrimPrefix(edit, "+")
			if name != "" && !slices.Contains(names, name) {
				names = append(names, name)
			}
		}
	}

	if err = post.SetTagNames(ctx, names); err != nil {
		return err
	}
	if err = post.Push(ctx); err != nil {
		return err
	}

	tags, err = post.Tags(ctx)
	if err != nil {
		return err
	}
	a.printf("%s: %s\n", post, joinNames(tags))
	return nil
}

func (a *App) postSafety(ctx context.Context, s *session, args []string) error {
	if err := needArgs(args, 2, "post safety <id> <safe|sketchy|unsafe>"); err != nil {
		return err
	}
	post, err := a.fetchPost(ctx, s, args[0])
	if err != nil {
		return err
	}
	if err = post.SetSafety(ctx, models.Safety(args[1])); err != nil {
		return err
	}
	if err = post.Push(ctx); err != nil {
		return err
	}
	a.printf("%s: %s\n", post, args[1])
	return nil
}

func (a *App) postFlag(ctx context.Context, s *session, args []string) error {
	if err := needArgs(args, 3, "post flag <id> <loop|sound> <on|off>"); err != nil {
		return err
	}

	switch args[1] {
	case service.FlagLoop, service.FlagSound:
	default:
		return fmt.Errorf("%w: flag must be %s or %s, got %q", ErrUsage, service.FlagLoop, service.FlagSound, args[1])
	}

	var on bool
	switch args[2] {
	case "on":
		on = true
	case "off":
	default:
		return fmt.Errorf("%w: flag state must be on or off, got %q", ErrUsage, args[2])
	}

	post, err := a.fetchPost(ctx, s, args[0])
	if err != nil {
		return err
	}
	if err = post.SetFlag(ctx, args[1], on); err != nil {
		return err
	}
	if err = post.Push(ctx); err != nil {
		return err
	}

	flags, err := post.Flags(ctx)
	if err != nil {
		return err
	}
	a.printf("%s: flags %s\n", post, strings.Join(flags, " "))
	return nil
}
