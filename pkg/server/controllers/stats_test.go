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
	"testing"
	"time"

	"github.com/dnote/diary/pkg/assert"
	"github.com/dnote/diary/pkg/clock"
	"github.com/dnote/diary/pkg/server/presenters"
	"github.com/dnote/diary/pkg/server/testutils"
)

func TestDashboard(t *testing.T) {
	a, _ := setupTestApp(t)
	c := clock.NewMock()
	c.SetNow(time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC))
	a.Clock = c
	server := MustNewServer(t, a)

	alice := testutils.SetupUserData(a.DB, "alice", "alice@example.com", "pass1234")
	bob := testutils.SetupUserData(a.DB, "bob", "bob@example.com", "pass1234")
	testutils.SetupEntryData(a.DB, alice, "One", "2024-05-01", testutils.Mood("happy"))
	testutils.SetupEntryData(a.DB, alice, "Two", "2024-05-10", testutils.Mood("sad"))
	testutils.SetupEntryData(a.DB, alice, "Three", "2024-04-10", testutils.Mood("happy"))
	testutils.SetupEntryData(a.DB, bob, "Four", "2024-05-10", testutils.Mood("sad"))

	t.Run("with entries", func(t *testing.T) {
		req := testutils.MakeReq(server.URL, "GET", "/api/stats", "")
		res := testutils.HTTPAuthDo(t, a.DB, req, alice)

		assert.StatusCodeEquals(t, res, http.StatusOK, "")

		var got presenters.Stats
		decodeJSON(t, res, &got)
		assert.Equal(t, got.TotalEntries, 3, "total mismatch")
		assert.Equal(t, got.EntriesThisMonth, 2, "this month mismatch")
		assert.Equal(t, *got.MostCommonMood, "happy", "mood mismatch")
	})

	t.Run("without entries", func(t *testing.T) {
		carol := testutils.SetupUserData(a.DB, "carol", "carol@example.com", "pass1234")

		req := testutils.MakeReq(server.URL, "GET", "/api/stats", "")
		res := testutils.HTTPAuthDo(t, a.DB, req, carol)

		assert.StatusCodeEquals(t, res, http.StatusOK, "")

		var got presenters.Stats
		decodeJSON(t, res, &got)
		assert.Equal(t, got.TotalEntries, 0, "total mismatch")
		assert.Equal(t, got.MostCommonMood, (*string)(nil), "mood mismatch")
	})
}

func TestCalendarEntries(t *testing.T) {
	a, _ := setupTestApp(t)
	c := clock.NewMock()
	c.SetNow(time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC))
	a.Clock = c
	server := MustNewServer(t, a)

	alice := testutils.SetupUserData(a.DB, "alice", "alice@example.com", "pass1234")
	testutils.SetupEntryData(a.DB, alice, "Late", "2024-05-20", nil)
	testutils.SetupEntryData(a.DB, alice, "Early", "2024-05-02", testutils.Mood("happy"))
	testutils.SetupEntryData(a.DB, alice, "April", "2024-04-30", nil)

	testCases := []struct {
		query          string
		expectedStatus int
		expected       []string
	}{
		{"", http.StatusOK, []string{"Early", "Late"}},
		{"?year=2024&month=4", http.StatusOK, []string{"April"}},
		{"?year=2023&month=5", http.StatusOK, []string{}},
		{"?year=2024&month=13", http.StatusBadRequest, nil},
		{"?month=may", http.StatusBadRequest, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			req := testutils.MakeReq(server.URL, "GET", "/api/calendar-entries"+tc.query, "")
			res := testutils.HTTPAuthDo(t, a.DB, req, alice)

			assert.StatusCodeEquals(t, res, tc.expectedStatus, "")
			if tc.expectedStatus != http.StatusOK {
				return
			}

			var got []presenters.CalendarEntry
			decodeJSON(t, res, &got)

			titles := []string{}
			for _, e := range got {
				titles = append(titles, e.Title)
			}
			assert.DeepEqual(t, titles, tc.expected, "titles mismatch")
		})
	}
}

func TestGallery(t *testing.T) {
	a, _ := setupTestApp(t)
	server := MustNewServer(t, a)

	alice := testutils.SetupUserData(a.DB, "alice", "alice@example.com", "pass1234")
	bob := testutils.SetupUserData(a.DB, "bob", "bob@example.com", "pass1234")
	entry := testutils.SetupEntryData(a.DB, alice, "Trip", "2024-05-01", nil)
	bobEntry := testutils.SetupEntryData(a.DB, bob, "Bob trip", "2024-05-01", nil)
	image := testutils.SetupImageData(a.DB, entry, "1_a.png", a.Stores.Entries.Put)
	testutils.SetupImageData(a.DB, bobEntry, "2_b.png", a.Stores.Entries.Put)

	req := testutils.MakeReq(server.URL, "GET", "/api/gallery", "")
	res := testutils.HTTPAuthDo(t, a.DB, req, alice)

	assert.StatusCodeEquals(t, res, http.StatusOK, "")

	var got []presenters.GalleryItem
	decodeJSON(t, res, &got)
	assert.Equal(t, len(got), 1, "item count mismatch")
	assert.Equal(t, got[0].ID, image.ID, "image mismatch")
	assert.Equal(t, got[0].EntryTitle, "Trip", "entry title mismatch")
	assert.Equal(t, got[0].EntryDate, "2024-05-01", "entry date mismatch")
}

func TestTags(t *testing.T) {
	a, _ := setupTestApp(t)
	server := MustNewServer(t, a)

	alice := testutils.SetupUserData(a.DB, "alice", "alice@example.com", "pass1234")
	bob := testutils.SetupUserData(a.DB, "bob", "bob@example.com", "pass1234")
	testutils.SetupEntryData(a.DB, alice, "One", "2024-05-01", nil, "travel", "food")
	testutils.SetupEntryData(a.DB, alice, "Two", "2024-05-02", nil, "travel")
	testutils.SetupEntryData(a.DB, bob, "Three", "2024-05-03", nil, "work")

	req := testutils.MakeReq(server.URL, "GET", "/api/tags", "")
	res := testutils.HTTPAuthDo(t, a.DB, req, alice)

	assert.StatusCodeEquals(t, res, http.StatusOK, "")

	var got []presenters.TagCount
	decodeJSON(t, res, &got)
	assert.DeepEqual(t, got, []presenters.TagCount{
		{Name: "travel", Count: 2},
		{Name: "food", Count: 1},
	}, "tags mismatch")
}
