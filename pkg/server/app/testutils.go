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

package app

import (
	"github.com/dnote/diary/pkg/clock"
	"github.com/dnote/diary/pkg/server/config"
	"github.com/dnote/diary/pkg/server/storage"
	"github.com/dnote/diary/pkg/server/testutils"
	"github.com/dnote/diary/pkg/server/validation"
)

// NewTest returns an app for a testing environment. The database is left for
// the caller to set.
func NewTest() App {
	return App{
		Clock:               clock.NewMock(),
		EmailBackend:        &testutils.MockEmailbackendImplementation{},
		Stores:              storage.NewMemoryStores(),
		Validator:           validation.New(),
		WebURL:              "http://example.com",
		DisableRegistration: false,
		SessionLifetime:     config.DefaultSessionLifetime,
		MaxUploadSize:       config.DefaultMaxUploadSize,
	}
}
