// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"dario.cat/mergo"

	"github.com/MKhiriev/go-szuru/models"
)

// validate checks the invariants that do not depend on a saved profile.
// API completeness is checked separately by [ClientConfig.ValidateAPI]
// because a profile may still provide the base URL.
//
// The page size is deliberately not range-checked: the server's answer to a
// bad limit is reported to the user as is.
func (cfg *ClientConfig) validate() error {
	if cfg.API.RequestTimeout < 0 {
		return ErrInvalidAPIConfigs
	}

	if cfg.Mirror.Dir != "" && cfg.Mirror.S3Bucket != "" {
		return ErrInvalidMirrorConfigs
	}

	return nil
}

// ValidateAPI reports whether enough API settings are present to build a
// transport. URL syntax and credential combinations are checked by the
// transport itself.
func (cfg *ClientConfig) ValidateAPI() error {
	if cfg.API.BaseURL == "" {
		return ErrInvalidAPIConfigs
	}

	return nil
}

// ApplyProfile fills API fields that are still empty with the values stored
// in p. Explicit flags and environment variables therefore always win over
// the profile.
func (cfg *ClientConfig) ApplyProfile(p models.Profile) error {
	fromProfile := API{
		BaseURL:  p.BaseURL,
		URL:      p.APIURL,
		Username: p.Username,
		Password: p.Password,
		Token:    p.Token,
	}

	// the default "api" must not shadow the profile's own API URL
	if cfg.API.URL == defaultAPIURL && p.APIURL != "" {
		cfg.API.URL = ""
	}

	return mergo.Merge(&cfg.API, fromProfile)
}

// ProfileFromAPI captures the current API settings as a profile named name.
func (cfg *ClientConfig) ProfileFromAPI(name string) models.Profile {
	return models.Profile{
		Name:     name,
		BaseURL:  cfg.API.BaseURL,
		APIURL:   cfg.API.URL,
		Username: cfg.API.Username,
		Password: cfg.API.Password,
		Token:    cfg.API.Token,
	}
}
