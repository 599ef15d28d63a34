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
	"testing"

	"github.com/dnote/diary/pkg/assert"
	"github.com/dnote/diary/pkg/server/database"
	"github.com/dnote/diary/pkg/server/testutils"
	"github.com/pkg/errors"
)

func tagNames(tags []database.Tag) []string {
	ret := []string{}
	for _, t := range tags {
		ret = append(ret, t.Name)
	}

	return ret
}

func TestResolveTags(t *testing.T) {
	testCases := []struct {
		text     string
		expected []string
	}{
		{text: "", expected: []string{}},
		{text: "travel", expected: []string{"travel"}},
		{text: "Travel, #food, travel", expected: []string{"travel", "food"}},
		{text: " , #, ##x,  Work ", expected: []string{"#x", "work"}},
	}

	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			db := testutils.InitMemoryDB(t)

			a := NewTest()
			a.DB = db

			got, err := a.ResolveTags(db, tc.text)
			if err != nil {
				t.Fatal(errors.Wrap(err, "executing"))
			}

			assert.DeepEqual(t, tagNames(got), tc.expected, "tag names mismatch")

			var tagCount int64
			testutils.MustExec(t, db.Model(&database.Tag{}).Count(&tagCount), "counting tags")
			assert.Equal(t, tagCount, int64(len(tc.expected)), "tag count mismatch")
		})
	}
}

func TestResolveTags_Idempotent(t *testing.T) {
	db := testutils.InitMemoryDB(t)

	a := NewTest()
	a.DB = db

	first, err := a.ResolveTags(db, "Travel, #food")
	if err != nil {
		t.Fatal(errors.Wrap(err, "resolving first"))
	}
	second, err := a.ResolveTags(db, "#travel, FOOD")
	if err != nil {
		t.Fatal(errors.Wrap(err, "resolving second"))
	}

	assert.Equal(t, len(first), 2, "first length mismatch")
	assert.Equal(t, len(second), 2, "second length mismatch")
	for i := range first {
		assert.Equal(t, second[i].ID, first[i].ID, "tag id mismatch")
		assert.Equal(t, second[i].Name, first[i].Name, "tag name mismatch")
	}

	var tagCount int64
	testutils.MustExec(t, db.Model(&database.Tag{}).Count(&tagCount), "counting tags")
	assert.Equal(t, tagCount, int64(2), "tag count mismatch")
}

func TestResolveTags_InTransaction(t *testing.T) {
	db := testutils.InitMemoryDB(t)

	a := NewTest()
	a.DB = db

	tx := db.Begin()
	if _, err := a.ResolveTags(tx, "travel"); err != nil {
		tx.Rollback()
		t.Fatal(errors.Wrap(err, "executing"))
	}
	tx.Rollback()

	var tagCount int64
	testutils.MustExec(t, db.Model(&database.Tag{}).Count(&tagCount), "counting tags")
	assert.Equal(t, tagCount, int64(0), "tag count mismatch")
}

func TestGetUserTags(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	alice := testutils.SetupUserData(db, "alice", "alice@example.com", "pass1234")
	bob := testutils.SetupUserData(db, "bob", "bob@example.com", "pass1234")

	testutils.SetupEntryData(db, alice, "a1", "2024-05-01", nil, "travel", "food")
	testutils.SetupEntryData(db, alice, "a2", "2024-05-02", nil, "food")
	testutils.SetupEntryData(db, bob, "b1", "2024-05-02", nil, "work", "food")

	a := NewTest()
	a.DB = db

	got, err := a.GetUserTags(alice)
	if err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}

	assert.DeepEqual(t, got, []TagCount{
		{Name: "food", Count: 2},
		{Name: "travel", Count: 1},
	}, "tags mismatch")
}
