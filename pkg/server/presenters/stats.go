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
	"github.com/dnote/diary/pkg/server/app"
)

// CalendarEntry is a result of PresentCalendarEntry
type CalendarEntry struct {
	ID      int     `json:"id"`
	Title   string  `json:"title"`
	Date    string  `json:"date"`
	Day     int     `json:"day"`
	Mood    *string `json:"mood"`
	Preview string  `json:"preview"`
}

// PresentCalendarEntry presents a calendar entry
func PresentCalendarEntry(e app.CalendarEntry) CalendarEntry {
	return CalendarEntry{
		ID:      e.ID,
		Title:   e.Title,
		Date:    FormatDate(e.Date),
		Day:     e.Day,
		Mood:    e.Mood,
		Preview: e.Preview,
	}
}

// PresentCalendarEntries presents calendar entries
func PresentCalendarEntries(entries []app.CalendarEntry) []CalendarEntry {
	ret := []CalendarEntry{}

	for _, e := range entries {
		ret = append(ret, PresentCalendarEntry(e))
	}

	return ret
}

// Stats is a result of PresentStats
type Stats struct {
	TotalEntries     int     `json:"total_entries"`
	EntriesThisMonth int     `json:"entries_this_month"`
	MostCommonMood   *string `json:"most_common_mood"`
}

// PresentStats presents dashboard stats
func PresentStats(s app.DashboardStats) Stats {
	return Stats{
		TotalEntries:     s.TotalEntries,
		EntriesThisMonth: s.EntriesThisMonth,
		MostCommonMood:   s.MostCommonMood,
	}
}

// TagCount is a result of PresentTagCounts
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// PresentTagCounts presents the tags of a user
func PresentTagCounts(tags []app.TagCount) []TagCount {
	ret := []TagCount{}

	for _, t := range tags {
		ret = append(ret, TagCount{Name: t.Name, Count: t.Count})
	}

	return ret
}

// GalleryItem is a result of PresentGallery
type GalleryItem struct {
	Image
	EntryTitle string `json:"entry_title"`
	EntryDate  string `json:"entry_date"`
}

// PresentGallery presents gallery items
func PresentGallery(items []app.GalleryItem) []GalleryItem {
	ret := []GalleryItem{}

	for _, item := range items {
		ret = append(ret, GalleryItem{
			Image:      PresentImage(item.EntryImage),
			EntryTitle: item.EntryTitle,
			EntryDate:  FormatDate(item.EntryDate),
		})
	}

	return ret
}
