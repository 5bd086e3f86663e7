// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"context"
	"fmt"
)

func (a *App) runURL(ctx context.Context, s *session, args []string) error {
	fs := a.newFlagSet("url")
	thumbnail := fs.Bool("thumbnail", false, "print the thumbnail URL")
	copyURL := fs.Bool("copy", false, "copy the URL to the clipboard")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err = needArgs(positional, 1, "url <postID>"); err != nil {
		return err
	}

	post, err := a.fetchPost(ctx, s, positional[0])
	if err != nil {
		return err
	}

	var u string
	if *thumbnail {
		u, err = post.ThumbnailURL(ctx)
	} else {
		u, err = post.ContentURL(ctx)
	}
	if err != nil {
		return err
	}

	if *copyURL {
		if err = a.writeClipboard(u); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
	}
	a.printf("%s\n", u)
	return nil
}
