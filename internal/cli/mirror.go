// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"context"
	"strings"

	"github.com/MKhiriev/go-szuru/internal/config"
	"github.com/MKhiriev/go-szuru/internal/mirror"
	"github.com/MKhiriev/go-szuru/internal/service"
)

func (a *App) runMirror(ctx context.Context, s *session, args []string) error {
	dest := s.cfg.Mirror

	fs := a.newFlagSet("mirror")
	fs.StringVar(&dest.Dir, "dir", dest.Dir, "target directory")
	fs.StringVar(&dest.S3Bucket, "s3-bucket", dest.S3Bucket, "target S3 bucket")
	fs.StringVar(&dest.S3Prefix, "s3-prefix", dest.S3Prefix, "key prefix inside the bucket")
	overwrite := fs.Bool("overwrite", false, "copy posts already present at the target")
	pageSize := fs.Int("page-size", s.cfg.Search.PageSize, "items per request")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if dest.Dir != "" && dest.S3Bucket != "" {
		return config.ErrInvalidMirrorConfigs
	}

	client, err := s.connect(ctx)
	if err != nil {
		return err
	}
	sink, err := mirror.NewSink(ctx, dest)
	if err != nil {
		return err
	}

	var opts []mirror.Option
	if *overwrite {
		opts = append(opts, mirror.WithOverwrite())
	}

	res, err := mirror.New(client, sink, opts...).
		Run(ctx, strings.Join(positional, " "), service.WithPageSize(*pageSize))
	a.printf("copied %d, skipped %d, %d bytes\n", res.Copied, res.Skipped, res.Bytes)
	return err
}
