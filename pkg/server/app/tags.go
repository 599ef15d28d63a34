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
	"github.com/dnote/diary/pkg/server/database"
	"github.com/dnote/diary/pkg/server/tags"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResolveTags finds or creates a tag for each distinct name in the
// comma separated text. The tags are returned in the order their names first
// appear. Resolving the same text again returns the same tags.
func (a *App) ResolveTags(tx *gorm.DB, text string) ([]database.Tag, error) {
	names := tags.Parse(text)

	ret := make([]database.Tag, 0, len(names))
	for _, name := range names {
		tag := database.Tag{Name: name}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&tag).Error; err != nil {
			return nil, errors.Wrapf(err, "inserting tag '%s'", name)
		}

		// The insert is a no-op for an existing name, so read the row back.
		var found database.Tag
		if err := tx.Where("name = ?", name).First(&found).Error; err != nil {
			return nil, errors.Wrapf(err, "finding tag '%s'", name)
		}

		ret = append(ret, found)
	}

	return ret, nil
}

// TagCount is a tag with the number of entries of a user carrying it
type TagCount struct {
	Name  string
	Count int
}

// GetUserTags returns the tags used by the entries of the owner, most used
// first
func (a *App) GetUserTags(owner database.User) ([]TagCount, error) {
	var ret []TagCount

	err := a.DB.Table("tags").
		Select("tags.name AS name, COUNT(*) AS count").
		Joins("INNER JOIN entry_tags ON entry_tags.tag_id = tags.id").
		Joins("INNER JOIN diary_entries ON diary_entries.id = entry_tags.entry_id").
		Where("diary_entries.user_id = ?", owner.ID).
		Group("tags.name").
		Order("count DESC, tags.name ASC").
		Scan(&ret).Error
	if err != nil {
		return nil, errors.Wrap(err, "counting tags")
	}

	return ret, nil
}
