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
	"fmt"
	"strings"
	"time"

	"github.com/dnote/diary/pkg/clock"
	"github.com/dnote/diary/pkg/server/database"
	"github.com/dnote/diary/pkg/server/permissions"
	"github.com/dnote/diary/pkg/server/tags"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// dateLayout is the layout of entry dates exchanged with clients
const dateLayout = "2006-01-02"

// EntryParams is the user input for creating or replacing a diary entry
type EntryParams struct {
	Title   string
	Content string
	// Mood is one of the mood labels, or empty for no mood
	Mood string
	// Date is in the YYYY-MM-DD form. An empty date means today on creation
	// and the current date on update.
	Date string
	// Tags is a comma separated list of tag names
	Tags string
}

// Upload is an uploaded file
type Upload struct {
	Filename string
	Data     []byte
}

// EntryFilter narrows down the entries returned by ListEntries. Empty fields
// are ignored.
type EntryFilter struct {
	// Query is matched case-insensitively against the title and the content
	Query string
	Mood  string
	Tag   string
}

type entryValues struct {
	title   string
	content string
	mood    *string
	date    *time.Time
}

type entryLimits struct {
	Title string `json:"title" validate:"max=200"`
}

func (a *App) validateEntry(p EntryParams) (entryValues, error) {
	var ret entryValues

	ret.title = strings.TrimSpace(p.Title)
	if ret.title == "" {
		return ret, ErrTitleRequired
	}
	if strings.TrimSpace(p.Content) == "" {
		return ret, ErrContentRequired
	}
	ret.content = p.Content

	if err := a.Validator.Validate(entryLimits{Title: ret.title}); err != nil {
		return ret, err
	}

	if mood := strings.TrimSpace(p.Mood); mood != "" {
		if !database.IsMood(mood) {
			return ret, ErrInvalidMood
		}
		ret.mood = &mood
	}

	if date := strings.TrimSpace(p.Date); date != "" {
		d, err := time.Parse(dateLayout, date)
		if err != nil {
			return ret, ErrInvalidDate
		}
		ret.date = &d
	}

	return ret, nil
}

// withAssociations preloads the tags and the images of entries
func withAssociations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tags.name ASC")
		}).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("entry_images.uploaded_at ASC, entry_images.id ASC")
		})
}

// findOwnedEntry finds the entry with the given id and checks that it belongs to the owner
func findOwnedEntry(db *gorm.DB, owner database.User, id int) (database.DiaryEntry, error) {
	var entry database.DiaryEntry
	err := db.Where("id = ?", id).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entry, ErrNotFound
	} else if err != nil {
		return entry, errors.Wrap(err, "finding entry")
	}

	if !permissions.ViewEntry(&owner, entry) {
		return entry, ErrForbidden
	}

	return entry, nil
}

// CreateEntry creates a diary entry for the owner with the tags named in the
// params and attaches the uploads that are images
func (a *App) CreateEntry(owner database.User, p EntryParams, uploads []Upload) (database.DiaryEntry, error) {
	v, err := a.validateEntry(p)
	if err != nil {
		return database.DiaryEntry{}, err
	}

	date := clock.Today(a.Clock)
	if v.date != nil {
		date = *v.date
	}

	tx := a.DB.Begin()

	entryTags, err := a.ResolveTags(tx, p.Tags)
	if err != nil {
		tx.Rollback()
		return database.DiaryEntry{}, errors.Wrap(err, "resolving tags")
	}

	now := a.now()
	entry := database.DiaryEntry{
		Model: database.Model{
			CreatedAt: now,
			UpdatedAt: now,
		},
		Title:   v.title,
		Content: v.content,
		Mood:    v.mood,
		Date:    date,
		UserID:  owner.ID,
		Tags:    entryTags,
	}
	if err := tx.Create(&entry).Error; err != nil {
		tx.Rollback()
		return database.DiaryEntry{}, errors.Wrap(err, "inserting entry")
	}

	images, err := a.attachImages(tx, entry, uploads)
	if err != nil {
		tx.Rollback()
		return database.DiaryEntry{}, err
	}

	if err := tx.Commit().Error; err != nil {
		a.removeImageFiles(images)
		return database.DiaryEntry{}, errors.Wrap(err, "committing transaction")
	}

	return a.GetEntry(owner, entry.ID)
}

// GetEntry returns the entry of the owner with its tags and images
func (a *App) GetEntry(owner database.User, id int) (database.DiaryEntry, error) {
	return findOwnedEntry(a.DB.Scopes(withAssociations), owner, id)
}

// UpdateEntry replaces the title, the content, the mood and the tags of an
// entry of the owner and attaches the uploads that are images. The date is
// kept if none is given.
func (a *App) UpdateEntry(owner database.User, id int, p EntryParams, uploads []Upload) (database.DiaryEntry, error) {
	v, err := a.validateEntry(p)
	if err != nil {
		return database.DiaryEntry{}, err
	}

	tx := a.DB.Begin()

	entry, err := findOwnedEntry(tx, owner, id)
	if err != nil {
		tx.Rollback()
		return database.DiaryEntry{}, err
	}

	entryTags, err := a.ResolveTags(tx, p.Tags)
	if err != nil {
		tx.Rollback()
		return database.DiaryEntry{}, errors.Wrap(err, "resolving tags")
	}

	var mood interface{}
	if v.mood != nil {
		mood = *v.mood
	}
	values := map[string]interface{}{
		"title":      v.title,
		"content":    v.content,
		"mood":       mood,
		"updated_at": a.now(),
	}
	if v.date != nil {
		values["date"] = *v.date
	}

	// Replacing the tags saves the entry row with the wall clock, so the
	// columns are written afterwards.
	tagAssoc := tx.Model(&entry).Association("Tags")
	if len(entryTags) == 0 {
		err = tagAssoc.Clear()
	} else {
		err = tagAssoc.Replace(entryTags)
	}
	if err != nil {
		tx.Rollback()
		return database.DiaryEntry{}, errors.Wrap(err, "replacing tags")
	}

	if err := tx.Model(&database.DiaryEntry{}).Where("id = ?", entry.ID).Updates(values).Error; err != nil {
		tx.Rollback()
		return database.DiaryEntry{}, errors.Wrap(err, "updating entry")
	}

	images, err := a.attachImages(tx, entry, uploads)
	if err != nil {
		tx.Rollback()
		return database.DiaryEntry{}, err
	}

	if err := tx.Commit().Error; err != nil {
		a.removeImageFiles(images)
		return database.DiaryEntry{}, errors.Wrap(err, "committing transaction")
	}

	return a.GetEntry(owner, entry.ID)
}

// deleteEntry deletes the image rows of the entry, then its tag associations
// and the entry itself. Tags are kept. It returns the deleted images, whose
// files the caller removes once the transaction is committed.
func (a *App) deleteEntry(tx *gorm.DB, entry database.DiaryEntry) ([]database.EntryImage, error) {
	var images []database.EntryImage
	if err := tx.Where("entry_id = ?", entry.ID).Order("id ASC").Find(&images).Error; err != nil {
		return nil, errors.Wrap(err, "finding images")
	}

	for _, image := range images {
		if err := detachImage(tx, image); err != nil {
			return nil, err
		}
	}

	if err := tx.Model(&entry).Association("Tags").Clear(); err != nil {
		return nil, errors.Wrap(err, "removing tag associations")
	}

	if err := tx.Delete(&entry).Error; err != nil {
		return nil, errors.Wrap(err, "deleting entry")
	}

	return images, nil
}

// DeleteEntry deletes an entry of the owner along with its images
func (a *App) DeleteEntry(owner database.User, id int) error {
	tx := a.DB.Begin()

	entry, err := findOwnedEntry(tx, owner, id)
	if err != nil {
		tx.Rollback()
		return err
	}

	images, err := a.deleteEntry(tx, entry)
	if err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return errors.Wrap(err, "committing transaction")
	}

	a.removeImageFiles(images)

	return nil
}

// escapeLike escapes the wildcards of a LIKE pattern
func escapeLike(s string) string {
	return strings.NewReplacer("\\", "\\\\", "%", "\\%", "_", "\\_").Replace(s)
}

// ListEntries returns the entries of the owner matching the filter, the most
// recent date first
func (a *App) ListEntries(owner database.User, filter EntryFilter) ([]database.DiaryEntry, error) {
	conn := a.DB.Scopes(withAssociations).
		Model(&database.DiaryEntry{}).
		Where("diary_entries.user_id = ?", owner.ID)

	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
		lower := database.LowerFunc(a.DB)
		conn = conn.Where(fmt.Sprintf("(%[1]s(diary_entries.title) LIKE ? ESCAPE '\\' OR %[1]s(diary_entries.content) LIKE ? ESCAPE '\\')", lower), pattern, pattern)
	}
	if mood := strings.TrimSpace(filter.Mood); mood != "" {
		conn = conn.Where("diary_entries.mood = ?", mood)
	}
	if tag := tags.Normalize(filter.Tag); tag != "" {
		conn = conn.
			Joins("INNER JOIN entry_tags ON entry_tags.entry_id = diary_entries.id").
			Joins("INNER JOIN tags ON tags.id = entry_tags.tag_id").
			Where("tags.name = ?", tag)
	}

	var entries []database.DiaryEntry
	if err := conn.Order("diary_entries.date DESC, diary_entries.id DESC").Find(&entries).Error; err != nil {
		return nil, errors.Wrap(err, "finding entries")
	}

	return entries, nil
}
