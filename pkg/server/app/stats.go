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
	"time"
	"unicode/utf8"

	"github.com/dnote/diary/pkg/server/database"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// previewLength is the number of characters of content shown in a calendar entry
const previewLength = 50

// monthRange returns the first day of the month and the first day of the next month
func monthRange(year, month int) (time.Time, time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, ErrInvalidMonth
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0), nil
}

// monthEntries scopes a query to the entries of the owner dated within the month
func monthEntries(db *gorm.DB, owner database.User, start, end time.Time) *gorm.DB {
	return db.Model(&database.DiaryEntry{}).
		Where("user_id = ? AND date >= ? AND date < ?", owner.ID, start, end)
}

// TotalEntryCount returns the number of entries of the owner
func (a *App) TotalEntryCount(owner database.User) (int, error) {
	var count int64
	if err := a.DB.Model(&database.DiaryEntry{}).Where("user_id = ?", owner.ID).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "counting entries")
	}

	return int(count), nil
}

// MonthlyEntryCount returns the number of entries of the owner dated within the month
func (a *App) MonthlyEntryCount(owner database.User, year, month int) (int, error) {
	start, end, err := monthRange(year, month)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := monthEntries(a.DB, owner, start, end).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "counting entries")
	}

	return int(count), nil
}

// MostCommonMood returns the mood the owner used most, or nil if no entry of
// the owner has a mood. Ties go to the mood that sorts first.
func (a *App) MostCommonMood(owner database.User) (*string, error) {
	var rows []struct {
		Mood      string
		MoodCount int
	}

	err := a.DB.Model(&database.DiaryEntry{}).
		Select("mood, COUNT(*) AS mood_count").
		Where("user_id = ? AND mood IS NOT NULL", owner.ID).
		Group("mood").
		Order("mood_count DESC, mood ASC").
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "counting moods")
	}

	if len(rows) == 0 {
		return nil, nil
	}

	return &rows[0].Mood, nil
}

// CalendarEntry is a summary of an entry shown in the calendar
type CalendarEntry struct {
	ID      int
	Title   string
	Date    time.Time
	Day     int
	Mood    *string
	Preview string
}

func preview(content string) string {
	if utf8.RuneCountInString(content) <= previewLength {
		return content
	}

	return string([]rune(content)[:previewLength]) + "..."
}

// CalendarEntries returns the entries of the owner dated within the month in
// date order
func (a *App) CalendarEntries(owner database.User, year, month int) ([]CalendarEntry, error) {
	start, end, err := monthRange(year, month)
	if err != nil {
		return nil, err
	}

	var entries []database.DiaryEntry
	if err := monthEntries(a.DB, owner, start, end).Order("date ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, errors.Wrap(err, "finding entries")
	}

	ret := make([]CalendarEntry, 0, len(entries))
	for _, e := range entries {
		date := e.Date.UTC()

		ret = append(ret, CalendarEntry{
			ID:      e.ID,
			Title:   e.Title,
			Date:    date,
			Day:     date.Day(),
			Mood:    e.Mood,
			Preview: preview(e.Content),
		})
	}

	return ret, nil
}

// DashboardStats is the summary of the entries of a user
type DashboardStats struct {
	TotalEntries     int
	EntriesThisMonth int
	MostCommonMood   *string
}

// GetDashboardStats returns the entry statistics of the owner. The current
// month is taken from the app clock.
func (a *App) GetDashboardStats(owner database.User) (DashboardStats, error) {
	var ret DashboardStats

	total, err := a.TotalEntryCount(owner)
	if err != nil {
		return ret, err
	}

	now := a.now()
	monthly, err := a.MonthlyEntryCount(owner, now.Year(), int(now.Month()))
	if err != nil {
		return ret, err
	}

	mood, err := a.MostCommonMood(owner)
	if err != nil {
		return ret, err
	}

	ret.TotalEntries = total
	ret.EntriesThisMonth = monthly
	ret.MostCommonMood = mood

	return ret, nil
}
