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

package controllers

import (
	"net/http"

	"github.com/dnote/diary/pkg/server/app"
	"github.com/dnote/diary/pkg/server/log"
)

// NewHealth creates a new Health controller
func NewHealth(app *app.App) *Health {
	return &Health{app: app}
}

// Health is a health controller
type Health struct {
	app *app.App
}

// Index handles GET /health. It reports unavailable if the database cannot
// be reached.
func (n *Health) Index(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := n.app.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		log.ErrorWrap(err, "pinging database")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("unavailable"))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
