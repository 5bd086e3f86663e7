// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"
)

const (
	defaultAPIURL  = "api"
	defaultTimeout = 30 * time.Second
)

var tokenPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// Options configures [NewHTTPTransport].
type Options struct {
	// BaseURL is the public URL of the booru. It must be an absolute http or
	// https URL and may carry "user:password@" userinfo.
	BaseURL string

	// APIURL is an absolute URL or a path. A path without a leading slash is
	// resolved below the path of BaseURL. Defaults to "api".
	APIURL string

	Username string
	Password string

	// Token is a szurubooru login token. It takes precedence over Password.
	Token string

	// Timeout bounds a single request. Defaults to 30s.
	Timeout time.Duration
}

// endpoint is the resolved form of Options.
type endpoint struct {
	scheme     string
	host       string
	basePrefix string

	apiScheme string
	apiHost   string
	apiPrefix string

	username   string
	authHeader string
}

func resolveOptions(opts Options) (endpoint, error) {
	var ep endpoint

	base, err := url.Parse(strings.TrimSpace(opts.BaseURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return ep, fmt.Errorf("%w: base URL %q is not valid", ErrConfiguration, opts.BaseURL)
	}
	if !isHTTPScheme(base.Scheme) {
		return ep, fmt.Errorf("%w: base URL must be of http or https scheme", ErrConfiguration)
	}
	ep.scheme = base.Scheme
	ep.host = base.Host
	ep.basePrefix = strings.TrimRight(base.Path, "/")

	rawAPI := strings.TrimSpace(opts.APIURL)
	if rawAPI == "" {
		rawAPI = defaultAPIURL
	}
	api, err := url.Parse(rawAPI)
	if err != nil {
		return ep, fmt.Errorf("%w: API URL %q is not valid", ErrConfiguration, opts.APIURL)
	}
	ep.apiScheme = firstNonEmpty(api.Scheme, base.Scheme)
	ep.apiHost = firstNonEmpty(api.Host, base.Host)
	if !isHTTPScheme(ep.apiScheme) {
		return ep, fmt.Errorf("%w: API URL must be of http or https scheme", ErrConfiguration)
	}
	if strings.HasPrefix(api.Path, "/") || ep.apiHost != ep.host {
		ep.apiPrefix = strings.TrimRight(api.Path, "/")
	} else {
		ep.apiPrefix = strings.TrimRight(ep.basePrefix+"/"+api.Path, "/")
	}

	ep.username = firstNonEmpty(opts.Username, userinfoName(api.User), userinfoName(base.User))
	password := firstNonEmpty(opts.Password, userinfoPassword(api.User), userinfoPassword(base.User))

	switch {
	case opts.Token != "":
		if ep.username == "" {
			return ep, fmt.Errorf("%w: token authentication specified without username", ErrConfiguration)
		}
		if !tokenPattern.MatchString(opts.Token) {
			return ep, fmt.Errorf("%w: malformed token string", ErrConfiguration)
		}
		ep.authHeader = "Token " + encodeCredentials(ep.username, opts.Token)
	case password != "":
		if ep.username == "" {
			return ep, fmt.Errorf("%w: password authentication specified without username", ErrConfiguration)
		}
		ep.authHeader = "Basic " + encodeCredentials(ep.username, password)
	case ep.username != "":
		return ep, fmt.Errorf("%w: username specified without authentication method", ErrConfiguration)
	}

	return ep, nil
}

// apiURL builds the absolute URL of an API call. Every part is escaped as a
// single segment; a query adds a trailing slash.
func (ep endpoint) apiURL(parts []string, query map[string]string) string {
	segments := make([]string, 0, len(parts)+2)
	segments = append(segments, ep.apiPrefix)
	for _, part := range parts {
		segments = append(segments, url.PathEscape(part))
	}

	var rawQuery string
	if len(query) > 0 {
		segments = append(segments, "")
		values := make(url.Values, len(query))
		for k, v := range query {
			values.Set(k, v)
		}
		rawQuery = "?" + values.Encode()
	}

	return ep.apiScheme + "://" + ep.apiHost + strings.Join(segments, "/") + rawQuery
}

// dataURL resolves rel below the base path prefix. Query and fragment of
// rel are dropped.
func (ep endpoint) dataURL(rel string) string {
	relPath := rel
	if u, err := url.Parse(rel); err == nil {
		relPath = u.Path
	}

	return ep.scheme + "://" + ep.host + path.Join("/", ep.basePrefix, relPath)
}

func isHTTPScheme(scheme string) bool {
	return scheme == "http" || scheme == "https"
}

func encodeCredentials(user, secret string) string {
	return base64.StdEncoding.EncodeToString([]byte(user + ":" + secret))
}

func userinfoName(u *url.Userinfo) string {
	if u == nil {
		return ""
	}
	return u.Username()
}

func userinfoPassword(u *url.Userinfo) string {
	if u == nil {
		return ""
	}
	p, _ := u.Password()
	return p
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
