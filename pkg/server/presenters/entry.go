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
	"fmt"
	"time"

	"github.com/dnote/diary/pkg/server/database"
)

// Tag is a result of PresentTag
type Tag struct {
	Name string `json:"name"`
}

// PresentTag presents a tag
func PresentTag(tag database.Tag) Tag {
	return Tag{
		Name: tag.Name,
	}
}

// PresentTags presents tags
func PresentTags(tags []database.Tag) []Tag {
	ret := []Tag{}

	for _, tag := range tags {
		ret = append(ret, PresentTag(tag))
	}

	return ret
}

// Image is a result of PresentImage
type Image struct {
	ID               int       `json:"id"`
	EntryID          int       `json:"entry_id"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	UploadedAt       time.Time `json:"uploaded_at"`
	Width            int       `json:"width"`
	Height           int       `json:"height"`
	BlurHash         string    `json:"blur_hash"`
	URL              string    `json:"url"`
}

// ImageURL returns the path an image is served at
func ImageURL(entryID, imageID int) string {
	return fmt.Sprintf("/api/entries/%d/images/%d", entryID, imageID)
}

// PresentImage presents an image
func PresentImage(image database.EntryImage) Image {
	return Image{
		ID:               image.ID,
		EntryID:          image.EntryID,
		Filename:         image.Filename,
		OriginalFilename: image.OriginalFilename,
		UploadedAt:       FormatTS(image.UploadedAt),
		Width:            image.Width,
		Height:           image.Height,
		BlurHash:         image.BlurHash,
		URL:              ImageURL(image.EntryID, image.ID),
	}
}

// PresentImages presents images
func PresentImages(images []database.EntryImage) []Image {
	ret := []Image{}

	for _, image := range images {
		ret = append(ret, PresentImage(image))
	}

	return ret
}

// Entry is a result of PresentEntry
type Entry struct {
	ID        int       `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Mood      *string   `json:"mood"`
	Date      string    `json:"date"`
	Tags      []Tag     `json:"tags"`
	Images    []Image   `json:"images"`
}

// PresentEntry presents an entry
func PresentEntry(entry database.DiaryEntry) Entry {
	return Entry{
		ID:        entry.ID,
		CreatedAt: FormatTS(entry.CreatedAt),
		UpdatedAt: FormatTS(entry.UpdatedAt),
		Title:     entry.Title,
		Content:   entry.Content,
		Mood:      entry.Mood,
		Date:      FormatDate(entry.Date),
		Tags:      PresentTags(entry.Tags),
		Images:    PresentImages(entry.Images),
	}
}

// PresentEntries presents entries
func PresentEntries(entries []database.DiaryEntry) []Entry {
	ret := []Entry{}

	for _, entry := range entries {
		ret = append(ret, PresentEntry(entry))
	}

	return ret
}
