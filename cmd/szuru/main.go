// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-szuru/internal/cli"
	"github.com/MKhiriev/go-szuru/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	app := cli.New(models.NewAppBuildInfo(buildVersion, buildDate, buildCommit), os.Stdout, os.Stderr)
	code := app.Run(ctx, os.Args[1:])

	stop()
	os.Exit(code)
}
