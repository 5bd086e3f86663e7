// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-szuru/internal/adapter"
	"github.com/MKhiriev/go-szuru/internal/config"
	"github.com/MKhiriev/go-szuru/internal/crypto"
	"github.com/MKhiriev/go-szuru/internal/logger"
	"github.com/MKhiriev/go-szuru/internal/service"
	"github.com/MKhiriev/go-szuru/internal/store"
	"github.com/MKhiriev/go-szuru/models"
)

// session holds what commands share during one run. The profile database
// and the API client are opened on first use.
type session struct {
	app *App
	cfg *config.ClientConfig
	log *logger.Logger

	db       *store.DB
	profiles store.ProfileRepository
	client   *service.Client
	resolved bool

	passphrase string
}

func (s *session) close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

func (s *session) profileRepository(ctx context.Context) (store.ProfileRepository, error) {
	if s.profiles != nil {
		return s.profiles, nil
	}

	db, err := store.Open(ctx, s.cfg.Storage.ProfilesDSN, s.log)
	if err != nil {
		return nil, fmt.Errorf("open profile store: %w", err)
	}
	s.db = db
	s.profiles = store.NewProfileRepository(db)
	return s.profiles, nil
}

// resolveAPI applies the selected profile and prompts for a password when
// asked to. It runs at most once.
func (s *session) resolveAPI(ctx context.Context) error {
	if s.resolved {
		return nil
	}

	if s.cfg.Profile != "" {
		repo, err := s.profileRepository(ctx)
		if err != nil {
			return err
		}
		p, err := repo.Get(ctx, s.cfg.Profile)
		if err != nil {
			return fmt.Errorf("load profile %q: %w", s.cfg.Profile, err)
		}
		if p, err = s.openSecrets(p); err != nil {
			return fmt.Errorf("load profile %q: %w", s.cfg.Profile, err)
		}
		if err = s.cfg.ApplyProfile(p); err != nil {
			return fmt.Errorf("apply profile %q: %w", s.cfg.Profile, err)
		}
	}

	if s.cfg.API.AskPassword {
		fmt.Fprint(s.app.stderr, "Password: ")
		secret, err := s.app.readPassword()
		fmt.Fprintln(s.app.stderr)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		s.cfg.API.Password = strings.TrimRight(string(secret), "\r\n")
	}

	if err := s.cfg.ValidateAPI(); err != nil {
		return fmt.Errorf("%w: base URL is required (use -base-url or -profile)", err)
	}

	s.resolved = true
	return nil
}

// profilePassphrase returns the passphrase protecting stored secrets,
// asking on the terminal when it is not configured. The answer is kept for
// the rest of the run.
func (s *session) profilePassphrase() (string, error) {
	if s.passphrase != "" {
		return s.passphrase, nil
	}
	if s.cfg.Storage.ProfileKey != "" {
		s.passphrase = s.cfg.Storage.ProfileKey
		return s.passphrase, nil
	}

	fmt.Fprint(s.app.stderr, "Profile passphrase: ")
	secret, err := s.app.readPassword()
	fmt.Fprintln(s.app.stderr)
	if err != nil {
		return "", fmt.Errorf("read profile passphrase: %w", err)
	}

	s.passphrase = strings.TrimRight(string(secret), "\r\n")
	if s.passphrase == "" {
		return "", crypto.ErrEmptyPassphrase
	}
	return s.passphrase, nil
}

// sealSecrets encrypts the password and token of p. A profile without
// secrets is returned as is and never prompts.
func (s *session) sealSecrets(p models.Profile) (models.Profile, error) {
	if p.Password == "" && p.Token == "" {
		return p, nil
	}
	passphrase, err := s.profilePassphrase()
	if err != nil {
		return p, err
	}

	for _, secret := range []*string{&p.Password, &p.Token} {
		if *secret == "" {
			continue
		}
		if *secret, err = s.app.keychain.Seal(*secret, passphrase); err != nil {
			return p, fmt.Errorf("seal profile secret: %w", err)
		}
	}
	return p, nil
}

// openSecrets decrypts the sealed password and token of p. Values stored
// before sealing was introduced are passed through.
func (s *session) openSecrets(p models.Profile) (models.Profile, error) {
	if !crypto.IsSealed(p.Password) && !crypto.IsSealed(p.Token) {
		return p, nil
	}
	passphrase, err := s.profilePassphrase()
	if err != nil {
		return p, err
	}

	for _, secret := range []*string{&p.Password, &p.Token} {
		if !crypto.IsSealed(*secret) {
			continue
		}
		if *secret, err = s.app.keychain.Open(*secret, passphrase); err != nil {
			return p, fmt.Errorf("open profile secret: %w", err)
		}
	}
	return p, nil
}

func (s *session) connect(ctx context.Context) (*service.Client, error) {
	if s.client != nil {
		return s.client, nil
	}
	if err := s.resolveAPI(ctx); err != nil {
		return nil, err
	}

	transport, err := adapter.NewHTTPTransport(adapter.Options{
		BaseURL:  s.cfg.API.BaseURL,
		APIURL:   s.cfg.API.URL,
		Username: s.cfg.API.Username,
		Password: s.cfg.API.Password,
		Token:    s.cfg.API.Token,
		Timeout:  s.cfg.API.RequestTimeout,
	}, s.log)
	if err != nil {
		return nil, err
	}
	s.log.Debug().Str("transport", fmt.Sprint(transport)).Msg("connected")

	s.client = service.New(transport)
	return s.client, nil
}
