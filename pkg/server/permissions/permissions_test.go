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

package permissions

import (
	"testing"

	"github.com/dnote/diary/pkg/assert"
	"github.com/dnote/diary/pkg/server/database"
	"github.com/dnote/diary/pkg/server/testutils"
)

func TestViewEntry(t *testing.T) {
	db := testutils.InitMemoryDB(t)

	user := testutils.SetupUserData(db, "alice", "alice@test.com", "password123")
	anotherUser := testutils.SetupUserData(db, "bob", "bob@test.com", "password123")

	entry := testutils.SetupEntryData(db, user, "Trip", "2024-05-01", testutils.Mood(database.MoodHappy))

	t.Run("owner accessing entry", func(t *testing.T) {
		result := ViewEntry(&user, entry)
		assert.Equal(t, result, true, "result mismatch")
	})

	t.Run("non-owner accessing entry", func(t *testing.T) {
		result := ViewEntry(&anotherUser, entry)
		assert.Equal(t, result, false, "result mismatch")
	})

	t.Run("guest accessing entry", func(t *testing.T) {
		result := ViewEntry(nil, entry)
		assert.Equal(t, result, false, "result mismatch")
	})

	t.Run("entry without owner", func(t *testing.T) {
		result := ViewEntry(&user, database.DiaryEntry{})
		assert.Equal(t, result, false, "result mismatch")
	})
}

func TestViewImage(t *testing.T) {
	db := testutils.InitMemoryDB(t)

	user := testutils.SetupUserData(db, "alice", "alice@test.com", "password123")
	anotherUser := testutils.SetupUserData(db, "bob", "bob@test.com", "password123")

	e1 := testutils.SetupEntryData(db, user, "Trip", "2024-05-01", nil)
	e2 := testutils.SetupEntryData(db, user, "Home", "2024-05-02", nil)
	img := testutils.SetupImageData(db, e1, "1_1714521600_beach.jpg", nil)

	t.Run("owner accessing image of the entry", func(t *testing.T) {
		assert.Equal(t, ViewImage(&user, e1, img), true, "result mismatch")
	})

	t.Run("image of another entry", func(t *testing.T) {
		assert.Equal(t, ViewImage(&user, e2, img), false, "result mismatch")
	})

	t.Run("non-owner", func(t *testing.T) {
		assert.Equal(t, ViewImage(&anotherUser, e1, img), false, "result mismatch")
	})
}
