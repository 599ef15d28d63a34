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

package presenters

import (
	"testing"
	"time"

	"github.com/dnote/diary/pkg/assert"
	"github.com/dnote/diary/pkg/server/app"
	"github.com/dnote/diary/pkg/server/database"
)

func TestPresentCalendarEntries(t *testing.T) {
	sad := database.MoodSad

	got := PresentCalendarEntries([]app.CalendarEntry{
		{ID: 1, Title: "a", Date: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), Day: 2, Preview: "p"},
		{ID: 2, Title: "b", Date: time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), Day: 20, Mood: &sad, Preview: "q..."},
	})

	assert.DeepEqual(t, got, []CalendarEntry{
		{ID: 1, Title: "a", Date: "2024-05-02", Day: 2, Preview: "p"},
		{ID: 2, Title: "b", Date: "2024-05-20", Day: 20, Mood: &sad, Preview: "q..."},
	}, "calendar entries mismatch")

	assert.DeepEqual(t, PresentCalendarEntries(nil), []CalendarEntry{}, "empty result mismatch")
}

func TestPresentStats(t *testing.T) {
	happy := database.MoodHappy

	got := PresentStats(app.DashboardStats{TotalEntries: 3, EntriesThisMonth: 1, MostCommonMood: &happy})

	assert.DeepEqual(t, got, Stats{TotalEntries: 3, EntriesThisMonth: 1, MostCommonMood: &happy}, "stats mismatch")
}

func TestPresentGallery(t *testing.T) {
	uploadedAt := time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)

	got := PresentGallery([]app.GalleryItem{
		{
			EntryImage: database.EntryImage{ID: 4, Filename: "2_a.png", EntryID: 2, UploadedAt: uploadedAt},
			EntryTitle: "Trip",
			EntryDate:  time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		},
	})

	assert.Equal(t, len(got), 1, "length mismatch")
	assert.Equal(t, got[0].ID, 4, "id mismatch")
	assert.Equal(t, got[0].URL, "/api/entries/2/images/4", "url mismatch")
	assert.Equal(t, got[0].EntryTitle, "Trip", "title mismatch")
	assert.Equal(t, got[0].EntryDate, "2024-05-01", "date mismatch")
}

func TestPresentTagCounts(t *testing.T) {
	got := PresentTagCounts([]app.TagCount{{Name: "food", Count: 2}})

	assert.DeepEqual(t, got, []TagCount{{Name: "food", Count: 2}}, "tags mismatch")
	assert.DeepEqual(t, PresentTagCounts(nil), []TagCount{}, "empty result mismatch")
}
