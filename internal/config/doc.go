// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package config provides configuration loading, merging, and validation
// facilities for the szuru client.
//
// Configuration is assembled from multiple sources. A field set by an
// earlier source is never overwritten by a later one, so the effective
// priority is:
//  1. Command-line flags
//  2. Environment variables (SZURU_ prefix)
//  3. JSON config file (-c / -config / SZURU_CONFIG)
//  4. Built-in defaults
//
// A saved connection profile can then fill in any API field that is still
// empty (see [ClientConfig.ApplyProfile]).
//
// The main entry point is [GetClientConfig].
package config
