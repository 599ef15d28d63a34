/* Copyright 2025 Dnote Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/dnote/diary/pkg/clock"
	"github.com/dnote/diary/pkg/server/app"
	"github.com/dnote/diary/pkg/server/config"
	"github.com/dnote/diary/pkg/server/database"
	"github.com/dnote/diary/pkg/server/log"
	"github.com/dnote/diary/pkg/server/mailer"
	"github.com/dnote/diary/pkg/server/storage"
	"github.com/dnote/diary/pkg/server/validation"
	"github.com/fatih/color"
	"github.com/pkg/errors"
)

var (
	colorGreen = color.New(color.FgGreen)
	colorRed   = color.New(color.FgRed)
)

func printSuccess(w io.Writer, format string, a ...interface{}) {
	fmt.Fprintf(w, "%s %s\n", colorGreen.Sprint("✔"), fmt.Sprintf(format, a...))
}

func printFailure(w io.Writer, format string, a ...interface{}) {
	fmt.Fprintf(w, "%s %s\n", colorRed.Sprint("✘"), fmt.Sprintf(format, a...))
}

// initApp opens the database, runs the migrations and sets up the stores.
// The returned function closes the database.
func initApp(ctx context.Context, cfg config.Config) (*app.App, func(), error) {
	driver := cfg.DBDriver()

	db, err := database.Open(driver, cfg.DSN(), cfg.LogLevel)
	if err != nil {
		return nil, nil, errors.Wrap(err, "opening database")
	}
	cleanup := func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	database.InitSchema(db)
	if err := database.Migrate(db, driver); err != nil {
		cleanup()
		return nil, nil, errors.Wrap(err, "running migrations")
	}

	stores, err := storage.NewStores(ctx, cfg)
	if err != nil {
		cleanup()
		return nil, nil, errors.Wrap(err, "initializing storage")
	}

	a := app.App{
		DB:                  db,
		Clock:               clock.New(),
		EmailBackend:        mailer.NewLogBackend(),
		Stores:              stores,
		Validator:           validation.New(),
		WebURL:              cfg.WebURL,
		DisableRegistration: cfg.DisableRegistration,
		SessionLifetime:     cfg.SessionLifetime,
		MaxUploadSize:       cfg.MaxUploadSize,
	}
	if err := a.Validate(); err != nil {
		cleanup()
		return nil, nil, errors.Wrap(err, "validating app")
	}

	log.WithFields(log.Fields{
		"driver":  driver,
		"storage": cfg.StorageBackend,
	}).Debug("app initialized")

	return &a, cleanup, nil
}

// setupApp builds the config from the flags and initializes the app
func setupApp(ctx context.Context, p config.Params) (*app.App, config.Config, func(), error) {
	cfg, err := config.New(p)
	if err != nil {
		return nil, config.Config{}, nil, errors.Wrap(err, "loading config")
	}

	log.SetLevel(cfg.LogLevel)

	a, cleanup, err := initApp(ctx, cfg)
	if err != nil {
		return nil, config.Config{}, nil, err
	}

	return a, cfg, cleanup, nil
}
