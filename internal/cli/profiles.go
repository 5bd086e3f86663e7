// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"context"
	"fmt"
	"time"
)

func (a *App) runProfile(ctx context.Context, s *session, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: profile needs save, show, list or rm", ErrUsage)
	}

	switch args[0] {
	case "save":
		return a.profileSave(ctx, s, args[1:])
	case "show":
		return a.profileShow(ctx, s, args[1:])
	case "list":
		return a.profileList(ctx, s, args[1:])
	case "rm":
		return a.profileRemove(ctx, s, args[1:])
	default:
		return fmt.Errorf("%w: profile %q", ErrUnknownCommand, args[0])
	}
}

// profileSave stores the effective API settings, including those loaded
// from another profile, under a new name. The password and token are
// sealed with the profile passphrase.
func (a *App) profileSave(ctx context.Context, s *session, args []string) error {
	if err := needArgs(args, 1, "profile save <name>"); err != nil {
		return err
	}
	if err := s.resolveAPI(ctx); err != nil {
		return err
	}
	repo, err := s.profileRepository(ctx)
	if err != nil {
		return err
	}

	p, err := s.sealSecrets(s.cfg.ProfileFromAPI(args[0]))
	if err != nil {
		return err
	}
	p, err = repo.Upsert(ctx, p)
	if err != nil {
		return err
	}
	a.printf("saved profile %s (%s)\n", p.Name, p.BaseURL)
	return nil
}

func (a *App) profileShow(ctx context.Context, s *session, args []string) error {
	if err := needArgs(args, 1, "profile show <name>"); err != nil {
		return err
	}
	repo, err := s.profileRepository(ctx)
	if err != nil {
		return err
	}
	p, err := repo.Get(ctx, args[0])
	if err != nil {
		return err
	}

	a.printf("%s\n", p.Name)
	a.printf("  base url: %s\n", p.BaseURL)
	a.printf("  api url:  %s\n", p.APIURL)
	a.printf("  user:     %s\n", p.Username)
	a.printf("  password: %s\n", mask(p.Password))
	a.printf("  token:    %s\n", mask(p.Token))
	a.printf("  created:  %s\n", p.CreatedAt.Local().Format(time.DateTime))
	return nil
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}

func (a *App) profileList(ctx context.Context, s *session, args []string) error {
	if err := needArgs(args, 0, "profile list"); err != nil {
		return err
	}
	repo, err := s.profileRepository(ctx)
	if err != nil {
		return err
	}
	profiles, err := repo.List(ctx)
	if err != nil {
		return err
	}
	for _, p := range profiles {
		a.printf("%s\t%s\n", p.Name, p.BaseURL)
	}
	return nil
}

func (a *App) profileRemove(ctx context.Context, s *session, args []string) error {
	if err := needArgs(args, 1, "profile rm <name>"); err != nil {
		return err
	}
	repo, err := s.profileRepository(ctx)
	if err != nil {
		return err
	}
	if err = repo.Delete(ctx, args[0]); err != nil {
		return err
	}
	a.printf("removed profile %s\n", args[0])
	return nil
}
