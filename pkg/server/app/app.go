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

// Package app implements the diary operations on top of the database and the
// file stores
package app

import (
	"time"

	"github.com/dnote/diary/pkg/clock"
	"github.com/dnote/diary/pkg/server/mailer"
	"github.com/dnote/diary/pkg/server/storage"
	"github.com/dnote/diary/pkg/server/validation"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	// ErrEmptyDB is an error for missing database connection in the app configuration
	ErrEmptyDB = errors.New("No database connection was provided")
	// ErrEmptyClock is an error for missing clock in the app configuration
	ErrEmptyClock = errors.New("No clock was provided")
	// ErrEmptyWebURL is an error for missing WebURL content in the app configuration
	ErrEmptyWebURL = errors.New("No WebURL was provided")
	// ErrEmptyEmailBackend is an error for missing EmailBackend content in the app configuration
	ErrEmptyEmailBackend = errors.New("No EmailBackend was provided")
	// ErrEmptyStores is an error for missing file stores in the app configuration
	ErrEmptyStores = errors.New("No file stores were provided")
	// ErrEmptyValidator is an error for a missing validator in the app configuration
	ErrEmptyValidator = errors.New("No validator was provided")
)

// App is an application context
type App struct {
	DB                  *gorm.DB
	Clock               clock.Clock
	EmailBackend        mailer.Backend
	Stores              storage.Stores
	Validator           *validation.Validator
	WebURL              string
	DisableRegistration bool
	SessionLifetime     time.Duration

	// MaxUploadSize is the largest request body accepted for uploads, in bytes
	MaxUploadSize int64
}

// Validate validates the app configuration
func (a *App) Validate() error {
	if a.WebURL == "" {
		return ErrEmptyWebURL
	}
	if a.Clock == nil {
		return ErrEmptyClock
	}
	if a.EmailBackend == nil {
		return ErrEmptyEmailBackend
	}
	if a.DB == nil {
		return ErrEmptyDB
	}
	if a.Stores.Entries == nil || a.Stores.Profiles == nil {
		return ErrEmptyStores
	}
	if a.Validator == nil {
		return ErrEmptyValidator
	}

	return nil
}

// now returns the current time of the app clock in UTC
func (a *App) now() time.Time {
	return a.Clock.Now().UTC()
}
