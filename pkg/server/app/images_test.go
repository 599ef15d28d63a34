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
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dnote/diary/pkg/assert"
	"github.com/dnote/diary/pkg/clock"
	"github.com/dnote/diary/pkg/server/database"
	"github.com/dnote/diary/pkg/server/storage"
	"github.com/dnote/diary/pkg/server/testutils"
	"github.com/pkg/errors"
)

func TestAttachImages(t *testing.T) {
	t.Run("allowed and rejected extensions", func(t *testing.T) {
		db := testutils.InitMemoryDB(t)
		user := testutils.SetupUserData(db, "alice", "alice@example.com", "pass1234")
		entry := testutils.SetupEntryData(db, user, "Trip", "2024-05-01", nil)

		a := NewTest()
		a.DB = db
		a.Clock.(*clock.Mock).SetNow(time.Date(2024, time.May, 1, 10, 30, 0, 500000000, time.UTC))
		store := a.Stores.Entries.(*storage.MemoryStore)

		images, err := a.AttachImages(user, entry.ID, []Upload{
			{Filename: "photo.exe", Data: []byte("binary")},
			{Filename: "photo.JPG", Data: []byte("jpeg bytes")},
		})
		if err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}

		assert.Equal(t, len(images), 1, "image count mismatch")

		var imageRecords []database.EntryImage
		testutils.MustExec(t, db.Find(&imageRecords), "finding images")
		assert.Equal(t, len(imageRecords), 1, "image row count mismatch")

		expectedName := "1_1714559400.5_photo.JPG"
		assert.Equal(t, imageRecords[0].Filename, expectedName, "filename mismatch")
		assert.Equal(t, imageRecords[0].OriginalFilename, "photo.JPG", "original filename mismatch")
		assert.Equal(t, imageRecords[0].EntryID, entry.ID, "entry id mismatch")
		assert.DeepEqual(t, store.Names(), []string{expectedName}, "stored files mismatch")
	})

	t.Run("metadata", func(t *testing.T) {
		db := testutils.InitMemoryDB(t)
		user := testutils.SetupUserData(db, "alice", "alice@example.com", "pass1234")
		entry := testutils.SetupEntryData(db, user, "Trip", "2024-05-01", nil)

		a := NewTest()
		a.DB = db

		images, err := a.AttachImages(user, entry.ID, []Upload{
			{Filename: "sea.png", Data: testutils.MakePNG(8, 6)},
		})
		if err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}

		assert.Equal(t, len(images), 1, "image count mismatch")
		assert.Equal(t, images[0].Width, 8, "width mismatch")
		assert.Equal(t, images[0].Height, 6, "height mismatch")
		assert.NotEqual(t, images[0].BlurHash, "", "blurhash must be set")
	})

	t.Run("unsafe filename", func(t *testing.T) {
		db := testutils.InitMemoryDB(t)
		user := testutils.SetupUserData(db, "alice", "alice@example.com", "pass1234")
		entry := testutils.SetupEntryData(db, user, "Trip", "2024-05-01", nil)

		a := NewTest()
		a.DB = db

		images, err := a.AttachImages(user, entry.ID, []Upload{
			{Filename: "../../etc/my photo.png", Data: []byte("png")},
		})
		if err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}

		assert.Equal(t, len(images), 1, "image count mismatch")
		assert.Equal(t, strings.ContainsAny(images[0].Filename, "/\\ "), false, "filename must be a single path element")
		assert.Equal(t, strings.HasSuffix(images[0].Filename, "my_photo.png"), true, "filename mismatch")
	})

	t.Run("same name twice", func(t *testing.T) {
		db := testutils.InitMemoryDB(t)
		user := testutils.SetupUserData(db, "alice", "alice@example.com", "pass1234")
		entry := testutils.SetupEntryData(db, user, "Trip", "2024-05-01", nil)

		a := NewTest()
		a.DB = db
		store := a.Stores.Entries.(*storage.MemoryStore)

		images, err := a.AttachImages(user, entry.ID, []Upload{
			{Filename: "a.png", Data: []byte("first")},
			{Filename: "a.png", Data: []byte("second")},
		})
		if err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}

		assert.Equal(t, len(images), 2, "image count mismatch")
		assert.NotEqual(t, images[0].Filename, images[1].Filename, "filenames must differ")
		assert.Equal(t, len(store.Names()), 2, "file count mismatch")
	})

	t.Run("failing file write", func(t *testing.T) {
		db := testutils.InitMemoryDB(t)
		user := testutils.SetupUserData(db, "alice", "alice@example.com", "pass1234")
		entry := testutils.SetupEntryData(db, user, "Trip", "2024-05-01", nil)

		a := NewTest()
		a.DB = db
		store := a.Stores.Entries.(*storage.MemoryStore)
		store.PutErr = errors.New("disk full")

		_, err := a.AttachImages(user, entry.ID, []Upload{
			{Filename: "a.png", Data: []byte("png")},
		})
		assert.NotEqual(t, err, nil, "error must be returned")

		var imageCount int64
		testutils.MustExec(t, db.Model(&database.EntryImage{}).Count(&imageCount), "counting images")
		assert.Equal(t, imageCount, int64(0), "no row must be created")
		assert.Equal(t, len(store.Names()), 0, "no file must be stored")
	})

	t.Run("failing insert", func(t *testing.T) {
		db := testutils.InitMemoryDB(t)
		user := testutils.SetupUserData(db, "alice", "alice@example.com", "pass1234")
		entry := testutils.SetupEntryData(db, user, "Trip", "2024-05-01", nil)

		a := NewTest()
		a.DB = db
		store := a.Stores.Entries.(*storage.MemoryStore)

		testutils.MustExec(t, db.Exec("DROP TABLE entry_images"), "dropping images table")

		_, err := a.AttachImages(user, entry.ID, []Upload{
			{Filename: "a.png", Data: []byte("png")},
		})
		assert.NotEqual(t, err, nil, "error must be returned")
		assert.Equal(t, len(store.Names()), 0, "written file must be removed")
	})

	t.Run("other user", func(t *testing.T) {
		db := testutils.InitMemoryDB(t)
		alice := testutils.SetupUserData(db, "alice", "alice@example.com", "pass1234")
		bob := testutils.SetupUserData(db, "bob", "bob@example.com", "pass1234")
		entry := testutils.SetupEntryData(db, alice, "Trip", "2024-05-01", nil)

		a := NewTest()
		a.DB = db
		store := a.Stores.Entries.(*storage.MemoryStore)

		_, err := a.AttachImages(bob, entry.ID, []Upload{
			{Filename: "a.png", Data: []byte("png")},
		})
		assert.Equal(t, err, ErrForbidden, "error mismatch")
		assert.Equal(t, len(store.Names()), 0, "no file must be stored")
	})
}

func TestDetachImage(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db := testutils.InitMemoryDB(t)
		user := testutils.SetupUserData(db, "alice", "alice@example.com", "pass1234")
		entry := testutils.SetupEntryData(db, user, "Trip", "2024-05-01", nil)

		a := NewTest()
		a.DB = db
		store := a.Stores.Entries.(*storage.MemoryStore)
		i1 := testutils.SetupImageData(db, entry, "1_a.png", store.Put)
		testutils.SetupImageData(db, entry, "1_b.png", store.Put)

		if err := a.DetachImage(user, entry.ID, i1.ID); err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}

		var imageCount int64
		testutils.MustExec(t, db.Model(&database.EntryImage{}).Count(&imageCount), "counting images")
		assert.Equal(t, imageCount, int64(1), "image count mismatch")
		assert.DeepEqual(t, store.Names(), []string{"1_b.png"}, "stored files mismatch")
	})

	t.Run("missing file", func(t *testing.T) {
		db := testutils.InitMemoryDB(t)
		user := testutils.SetupUserData(db, "alice", "alice@example.com", "pass1234")
		entry := testutils.SetupEntryData(db, user, "Trip", "2024-05-01", nil)

		a := NewTest()
		a.DB = db
		image := testutils.SetupImageData(db, entry, "1_a.png", nil)

		if err := a.DetachImage(user, entry.ID, image.ID); err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}

		var imageCount int64
		testutils.MustExec(t, db.Model(&database.EntryImage{}).Count(&imageCount), "counting images")
		assert.Equal(t, imageCount, int64(0), "image count mismatch")
	})

	t.Run("image of another entry", func(t *testing.T) {
		db := testutils.InitMemoryDB(t)
		user := testutils.SetupUserData(db, "alice", "alice@example.com", "pass1234")
		e1 := testutils.SetupEntryData(db, user, "Trip", "2024-05-01", nil)
		e2 := testutils.SetupEntryData(db, user, "Other", "2024-05-02", nil)

		a := NewTest()
		a.DB = db
		image := testutils.SetupImageData(db, e2, "2_a.png", nil)

		err := a.DetachImage(user, e1.ID, image.ID)
		assert.Equal(t, err, ErrNotFound, "error mismatch")
	})

	t.Run("other user", func(t *testing.T) {
		db := testutils.InitMemoryDB(t)
		alice := testutils.SetupUserData(db, "alice", "alice@example.com", "pass1234")
		bob := testutils.SetupUserData(db, "bob", "bob@example.com", "pass1234")
		entry := testutils.SetupEntryData(db, alice, "Trip", "2024-05-01", nil)

		a := NewTest()
		a.DB = db
		store := a.Stores.Entries.(*storage.MemoryStore)
		image := testutils.SetupImageData(db, entry, "1_a.png", store.Put)

		err := a.DetachImage(bob, entry.ID, image.ID)
		assert.Equal(t, err, ErrForbidden, "error mismatch")
		assert.DeepEqual(t, store.Names(), []string{"1_a.png"}, "stored files mismatch")
	})
}

func TestOpenEntryImage(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	alice := testutils.SetupUserData(db, "alice", "alice@example.com", "pass1234")
	bob := testutils.SetupUserData(db, "bob", "bob@example.com", "pass1234")
	entry := testutils.SetupEntryData(db, alice, "Trip", "2024-05-01", nil)

	a := NewTest()
	a.DB = db
	store := a.Stores.Entries.(*storage.MemoryStore)
	image := testutils.SetupImageData(db, entry, "1_a.png", store.Put)
	missing := testutils.SetupImageData(db, entry, "1_b.png", nil)

	t.Run("owner", func(t *testing.T) {
		got, rc, err := a.OpenEntryImage(alice, entry.ID, image.ID)
		if err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatal(errors.Wrap(err, "reading"))
		}

		assert.Equal(t, got.ID, image.ID, "image id mismatch")
		assert.Equal(t, string(data), "image of 1_a.png", "content mismatch")
	})

	t.Run("other user", func(t *testing.T) {
		_, _, err := a.OpenEntryImage(bob, entry.ID, image.ID)
		assert.Equal(t, err, ErrForbidden, "error mismatch")
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := a.OpenEntryImage(alice, entry.ID, missing.ID)
		assert.Equal(t, err, ErrNotFound, "error mismatch")
	})
}

func TestGetGallery(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	alice := testutils.SetupUserData(db, "alice", "alice@example.com", "pass1234")
	bob := testutils.SetupUserData(db, "bob", "bob@example.com", "pass1234")
	e1 := testutils.SetupEntryData(db, alice, "Trip", "2024-05-01", nil)
	e2 := testutils.SetupEntryData(db, alice, "Dinner", "2024-05-02", nil)
	e3 := testutils.SetupEntryData(db, bob, "Bob's", "2024-05-02", nil)

	i1 := testutils.SetupImageData(db, e1, "1_a.png", nil)
	i2 := testutils.SetupImageData(db, e2, "2_a.png", nil)
	testutils.SetupImageData(db, e3, "3_a.png", nil)
	testutils.MustExec(t, db.Model(&i1).Update("uploaded_at", time.Date(2024, time.May, 3, 0, 0, 0, 0, time.UTC)), "preparing i1")
	testutils.MustExec(t, db.Model(&i2).Update("uploaded_at", time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)), "preparing i2")

	a := NewTest()
	a.DB = db

	got, err := a.GetGallery(alice)
	if err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}

	assert.Equal(t, len(got), 2, "item count mismatch")
	assert.Equal(t, got[0].ID, i1.ID, "first item mismatch")
	assert.Equal(t, got[0].EntryTitle, "Trip", "first entry title mismatch")
	assert.Equal(t, got[0].EntryDate.UTC().Format("2006-01-02"), "2024-05-01", "first entry date mismatch")
	assert.Equal(t, got[1].ID, i2.ID, "second item mismatch")
	assert.Equal(t, got[1].EntryTitle, "Dinner", "second entry title mismatch")
}

func TestUpdateProfileImage(t *testing.T) {
	t.Run("replaces previous image", func(t *testing.T) {
		db := testutils.InitMemoryDB(t)
		user := testutils.SetupUserData(db, "alice", "alice@example.com", "pass1234")

		a := NewTest()
		a.DB = db
		store := a.Stores.Profiles.(*storage.MemoryStore)

		if err := a.UpdateProfileImage(&user, Upload{Filename: "first.png", Data: []byte("1")}); err != nil {
			t.Fatal(errors.Wrap(err, "uploading first"))
		}
		first := user.ProfileImage

		if err := a.UpdateProfileImage(&user, Upload{Filename: "second.GIF", Data: []byte("2")}); err != nil {
			t.Fatal(errors.Wrap(err, "uploading second"))
		}

		var userRecord database.User
		testutils.MustExec(t, db.Where("id = ?", user.ID).First(&userRecord), "finding user")

		assert.NotEqual(t, userRecord.ProfileImage, first, "profile image must change")
		assert.Equal(t, strings.HasPrefix(userRecord.ProfileImage, "1_"), true, "name must start with the user id")
		assert.Equal(t, strings.HasSuffix(userRecord.ProfileImage, ".gif"), true, "name must keep the extension")
		assert.Equal(t, strings.Contains(userRecord.ProfileImage, "second"), false, "name must not contain the original name")
		assert.Equal(t, userRecord.ProfileImageOriginalName, "second.GIF", "original name mismatch")
		assert.DeepEqual(t, store.Names(), []string{userRecord.ProfileImage}, "stored files mismatch")
	})

	t.Run("rejected extension", func(t *testing.T) {
		db := testutils.InitMemoryDB(t)
		user := testutils.SetupUserData(db, "alice", "alice@example.com", "pass1234")

		a := NewTest()
		a.DB = db
		store := a.Stores.Profiles.(*storage.MemoryStore)

		if err := a.UpdateProfileImage(&user, Upload{Filename: "me.svg", Data: []byte("<svg/>")}); err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}

		var userRecord database.User
		testutils.MustExec(t, db.Where("id = ?", user.ID).First(&userRecord), "finding user")
		assert.Equal(t, userRecord.ProfileImage, database.DefaultProfileImage, "profile image must not change")
		assert.Equal(t, len(store.Names()), 0, "no file must be stored")
	})
}

func TestOpenProfileImage(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	user := testutils.SetupUserData(db, "alice", "alice@example.com", "pass1234")

	a := NewTest()
	a.DB = db

	_, err := a.OpenProfileImage(user)
	assert.Equal(t, err, ErrNotFound, "default image error mismatch")

	if err := a.UpdateProfileImage(&user, Upload{Filename: "me.png", Data: []byte("me")}); err != nil {
		t.Fatal(errors.Wrap(err, "preparing"))
	}

	rc, err := a.OpenProfileImage(user)
	if err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(errors.Wrap(err, "reading"))
	}
	assert.Equal(t, string(data), "me", "content mismatch")
}
