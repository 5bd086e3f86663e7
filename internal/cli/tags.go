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

func (a *App) runTag(ctx context.Context, s *session, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: tag needs a subcommand", ErrUsage)
	}

	switch args[0] {
	case "show":
		return a.tagShow(ctx, s, args[1:])
	case "create":
		return a.tagCreate(ctx, s, args[1:])
	case "rename":
		return a.tagRename(ctx, s, args[1:])
	case "merge":
		return a.tagMerge(ctx, s, args[1:])
	default:
		return fmt.Errorf("%w: tag %q", ErrUnknownCommand, args[0])
	}
}

func (a *App) tagShow(ctx context.Context, s *session, args []string) error {
	if err := needArgs(args, 1, "tag show <name>"); err != nil {
		return err
	}
	client, err := s.connect(ctx)
	if err != nil {
		return err
	}
	tag, err := client.Tag(ctx, args[0])
	if err != nil {
		return err
	}
	return a.printTag(ctx, tag)
}

func (a *App) printTag(ctx context.Context, tag *service.Tag) error {
	names, err := tag.Names(ctx)
	if err != nil {
		return err
	}
	category, err := tag.Category(ctx)
	if err != nil {
		return err
	}
	usages, err := tag.Usages(ctx)
	if err != nil {
		return err
	}
	implications, err := tag.Implications(ctx)
	if err != nil {
		return err
	}
	suggestions, err := tag.Suggestions(ctx)
	if err != nil {
		return err
	}
	description, err := tag.Description(ctx)
	if err != nil {
		return err
	}

	a.printf("%s\n", tag)
	a.printf("  names:        %s\n", strings.Join(names, " "))
	a.printf("  category:     %s\n", category)
	a.printf("  usages:       %d\n", usages)
	a.printf("  implications: %s\n", joinNames(implications))
	a.printf("  suggestions:  %s\n", joinNames(suggestions))
	if description != "" {
		a.printf("  description:  %s\n", description)
	}
	return nil
}

func (a *App) tagCreate(ctx context.Context, s *session, args []string) error {
	fs := a.newFlagSet("tag create")
	category := fs.String("category", "", "tag category (default category when empty)")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err = needArgs(positional, 1, "tag create <name>"); err != nil {
		return err
	}

	client, err := s.connect(ctx)
	if err != nil {
		return err
	}
	tag, err := client.NewTag(ctx, positional[0])
	if err != nil {
		return err
	}
	if *category != "" {
		if err = tag.SetCategory(ctx, *category); err != nil {
			return err
		}
		if err = tag.Push(ctx); err != nil {
			return err
		}
	}

	a.printf("created tag %s\n", tag)
	return nil
}

// tagRename replaces the name old with name new in place, keeping aliases
// and their order.
func (a *App) tagRename(ctx context.Context, s *session, args []string) error {
	if err := needArgs(args, 2, "tag rename <old> <new>"); err != nil {
		return err
	}
	oldName, newName := args[0], args[1]

	client, err := s.connect(ctx)
	if err != nil {
		return err
	}
	tag, err := client.Tag(ctx, oldName)
	if err != nil {
		return err
	}
	names, err := tag.Names(ctx)
	if err != nil {
		return err
	}

	i := slices.Index(names, oldName)
	if i < 0 {
		// looked up through a differently cased alias
		i = slices.IndexFunc(names, func(n string) bool { return strings.EqualFold(n, oldName) })
	}
	if i < 0 {
		return fmt.Errorf("tag %s has no name %q", tag, oldName)
	}
	names[i] = newName

	if err = tag.SetNames(ctx, names); err != nil {
		return err
	}
	if err = tag.Push(ctx); err != nil {
		return err
	}

	a.printf("renamed %s to %s\n", oldName, newName)
	return nil
}

func (a *App) tagMerge(ctx context.Context, s *session, args []string) error {
	fs := a.newFlagSet("tag merge")
	alias := fs.Bool("alias", false, "keep the source names as aliases of the target")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err = needArgs(positional, 2, "tag merge <source> <target>"); err != nil {
		return err
	}

	client, err := s.connect(ctx)
	if err != nil {
		return err
	}
	source, err := client.Tag(ctx, positional[0])
	if err != nil {
		return err
	}
	target, err := client.Tag(ctx, positional[1])
	if err != nil {
		return err
	}

	if err = target.MergeFrom(ctx, source, *alias); err != nil {
		return err
	}

	names, err := target.Names(ctx)
	if err != nil {
		return err
	}
	a.printf("merged %s into %s: %s\n", positional[0], target, strings.Join(names, " "))
	return nil
}
