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
	"strconv"

	"github.com/dnote/diary/pkg/server/app"
	"github.com/dnote/diary/pkg/server/presenters"
	"github.com/dnote/diary/pkg/server/validation"
)

// NewStats creates a new Stats controller
func NewStats(app *app.App) *Stats {
	return &Stats{apiBase{app: app}}
}

// Stats is a controller for the dashboard, the calendar, the gallery and
// the tag list
type Stats struct {
	apiBase
}

// Dashboard handles GET /api/stats
func (c *Stats) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		handleJSONError(w, err, "getting user")
		return
	}

	stats, err := c.app.GetDashboardStats(*user)
	if err != nil {
		handleJSONError(w, err, "getting stats")
		return
	}

	respondJSON(w, http.StatusOK, presenters.PresentStats(stats))
}

// parseYearMonth reads the year and the month query parameters. Missing
// values default to the current year and month.
func (c *Stats) parseYearMonth(r *http.Request) (int, int, error) {
	now := c.app.Clock.Now().UTC()
	year, month := now.Year(), int(now.Month())

	q := r.URL.Query()
	if s := q.Get("year"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, validation.NewError("year", "must be a number")
		}
		year = v
	}
	if s := q.Get("month"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, validation.NewError("month", "must be a number")
		}
		month = v
	}

	return year, month, nil
}

// CalendarEntries handles GET /api/calendar-entries
func (c *Stats) CalendarEntries(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		handleJSONError(w, err, "getting user")
		return
	}

	year, month, err := c.parseYearMonth(r)
	if err != nil {
		handleJSONError(w, err, "parsing query")
		return
	}

	entries, err := c.app.CalendarEntries(*user, year, month)
	if err != nil {
		handleJSONError(w, err, "getting calendar entries")
		return
	}

	respondJSON(w, http.StatusOK, presenters.PresentCalendarEntries(entries))
}

// Gallery handles GET /api/gallery
func (c *Stats) Gallery(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		handleJSONError(w, err, "getting user")
		return
	}

	items, err := c.app.GetGallery(*user)
	if err != nil {
		handleJSONError(w, err, "getting gallery")
		return
	}

	respondJSON(w, http.StatusOK, presenters.PresentGallery(items))
}

// Tags handles GET /api/tags
func (c *Stats) Tags(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		handleJSONError(w, err, "getting user")
		return
	}

	tags, err := c.app.GetUserTags(*user)
	if err != nil {
		handleJSONError(w, err, "getting tags")
		return
	}

	respondJSON(w, http.StatusOK, presenters.PresentTagCounts(tags))
}
