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
	"io"
	"strconv"
	"time"

	"github.com/dnote/diary/pkg/server/database"
	"github.com/dnote/diary/pkg/server/imaging"
	"github.com/dnote/diary/pkg/server/log"
	"github.com/dnote/diary/pkg/server/permissions"
	"github.com/dnote/diary/pkg/server/storage"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// maxFilenameLength is the longest stored file name
const maxFilenameLength = 200

// removeFile deletes a file from the store. Failures are logged and otherwise ignored.
func (a *App) removeFile(store storage.Store, name string, fields log.Fields) {
	err := store.Delete(name)
	if err == nil {
		return
	}

	f := log.Fields{"filename": name}
	for k, v := range fields {
		f[k] = v
	}

	if errors.Is(err, storage.ErrNotExist) {
		log.WithFields(f).Warn("file to remove does not exist")
		return
	}

	f["error"] = err.Error()
	log.WithFields(f).Warn("failed to remove file")
}

// removeImageFiles deletes the files of images whose rows were not persisted
// or have been deleted
func (a *App) removeImageFiles(images []database.EntryImage) {
	for _, image := range images {
		a.removeFile(a.Stores.Entries, image.Filename, log.Fields{
			"entry_id": image.EntryID,
			"image_id": image.ID,
		})
	}
}

// entryImageName returns an unused name for an image of the entry uploaded
// at the given time
func (a *App) entryImageName(entryID int, t time.Time, original string) (string, error) {
	ts := strconv.FormatFloat(float64(t.UnixMicro())/1e6, 'f', -1, 64)

	name := fmt.Sprintf("%d_%s_%s", entryID, ts, original)
	for i := 1; ; i++ {
		name = imaging.TruncateFilename(imaging.SecureFilename(name), maxFilenameLength)

		exists, err := a.Stores.Entries.Exists(name)
		if err != nil {
			return "", errors.Wrap(err, "checking file")
		}
		if !exists {
			return name, nil
		}

		name = fmt.Sprintf("%d_%s_%d_%s", entryID, ts, i, original)
	}
}

// attachImage writes the upload to the entry image store and then inserts
// its row. It returns nil without an error if the upload is not an image.
// The file is removed again if the row cannot be inserted.
func (a *App) attachImage(tx *gorm.DB, entry database.DiaryEntry, upload Upload) (*database.EntryImage, error) {
	if !imaging.AllowedExtension(upload.Filename) {
		log.WithFields(log.Fields{
			"entry_id": entry.ID,
			"filename": upload.Filename,
		}).Debug("skipping upload that is not an image")
		return nil, nil
	}

	now := a.now()
	name, err := a.entryImageName(entry.ID, now, upload.Filename)
	if err != nil {
		return nil, err
	}

	image := database.EntryImage{
		Filename:         name,
		OriginalFilename: upload.Filename,
		UploadedAt:       now,
		EntryID:          entry.ID,
	}

	meta, err := imaging.Inspect(upload.Data)
	if err != nil {
		log.WithFields(log.Fields{
			"entry_id": entry.ID,
			"filename": name,
			"error":    err.Error(),
		}).Debug("could not read image metadata")
	} else {
		image.Width = meta.Width
		image.Height = meta.Height
		image.BlurHash = meta.BlurHash
	}

	if err := a.Stores.Entries.Put(name, upload.Data); err != nil {
		return nil, errors.Wrapf(err, "writing image file '%s'", name)
	}

	if err := tx.Create(&image).Error; err != nil {
		a.removeFile(a.Stores.Entries, name, log.Fields{"entry_id": entry.ID})
		return nil, errors.Wrap(err, "inserting image")
	}

	return &image, nil
}

// attachImages attaches each upload to the entry. On failure, the files
// written so far are removed and the transaction must be rolled back.
func (a *App) attachImages(tx *gorm.DB, entry database.DiaryEntry, uploads []Upload) ([]database.EntryImage, error) {
	ret := []database.EntryImage{}

	for _, upload := range uploads {
		image, err := a.attachImage(tx, entry, upload)
		if err != nil {
			a.removeImageFiles(ret)
			return nil, errors.Wrap(err, "attaching image")
		}
		if image != nil {
			ret = append(ret, *image)
		}
	}

	return ret, nil
}

// AttachImages attaches the uploads that are images to an entry of the owner.
// Other uploads are skipped.
func (a *App) AttachImages(owner database.User, entryID int, uploads []Upload) ([]database.EntryImage, error) {
	tx := a.DB.Begin()

	entry, err := findOwnedEntry(tx, owner, entryID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	images, err := a.attachImages(tx, entry, uploads)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		a.removeImageFiles(images)
		return nil, errors.Wrap(err, "committing transaction")
	}

	return images, nil
}

// detachImage deletes the row of the image. The file is left for the caller to
// remove after the transaction is committed, so that a rollback never leaves a
// row without its file.
func detachImage(tx *gorm.DB, image database.EntryImage) error {
	if err := tx.Delete(&image).Error; err != nil {
		return errors.Wrapf(err, "deleting image %d", image.ID)
	}

	return nil
}

// findEntryImage finds an image of an entry of the owner
func findEntryImage(db *gorm.DB, owner database.User, entryID, imageID int) (database.DiaryEntry, database.EntryImage, error) {
	var image database.EntryImage

	entry, err := findOwnedEntry(db, owner, entryID)
	if err != nil {
		return entry, image, err
	}

	err = db.Where("id = ?", imageID).First(&image).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entry, image, ErrNotFound
	} else if err != nil {
		return entry, image, errors.Wrap(err, "finding image")
	}

	if !permissions.ViewImage(&owner, entry, image) {
		return entry, image, ErrNotFound
	}

	return entry, image, nil
}

// DetachImage deletes an image of an entry of the owner and its file
func (a *App) DetachImage(owner database.User, entryID, imageID int) error {
	tx := a.DB.Begin()

	_, image, err := findEntryImage(tx, owner, entryID, imageID)
	if err != nil {
		tx.Rollback()
		return err
	}

	if err := detachImage(tx, image); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return errors.Wrap(err, "committing transaction")
	}

	a.removeImageFiles([]database.EntryImage{image})

	return nil
}

// OpenEntryImage returns an image of an entry of the owner and a reader for
// its file. The caller must close the reader.
func (a *App) OpenEntryImage(owner database.User, entryID, imageID int) (database.EntryImage, io.ReadCloser, error) {
	_, image, err := findEntryImage(a.DB, owner, entryID, imageID)
	if err != nil {
		return image, nil, err
	}

	rc, err := a.Stores.Entries.Open(image.Filename)
	if errors.Is(err, storage.ErrNotExist) {
		log.WithFields(log.Fields{
			"entry_id": entryID,
			"image_id": imageID,
		}).Warn("image file does not exist")
		return image, nil, ErrNotFound
	} else if err != nil {
		return image, nil, errors.Wrap(err, "opening image file")
	}

	return image, rc, nil
}

// GalleryItem is an image with the entry it is attached to
type GalleryItem struct {
	database.EntryImage
	EntryTitle string
	EntryDate  time.Time
}

// GetGallery returns every image attached to the entries of the owner, the
// most recently uploaded first
func (a *App) GetGallery(owner database.User) ([]GalleryItem, error) {
	var items []GalleryItem

	err := a.DB.Table("entry_images").
		Select("entry_images.*, diary_entries.title AS entry_title, diary_entries.date AS entry_date").
		Joins("INNER JOIN diary_entries ON diary_entries.id = entry_images.entry_id").
		Where("diary_entries.user_id = ?", owner.ID).
		Order("entry_images.uploaded_at DESC, entry_images.id DESC").
		Scan(&items).Error
	if err != nil {
		return nil, errors.Wrap(err, "finding images")
	}

	return items, nil
}

// putProfileImage stores the upload under a random name and returns the name.
// It returns an empty name without an error if the upload is not an image.
func (a *App) putProfileImage(user database.User, upload Upload) (string, error) {
	if !imaging.AllowedExtension(upload.Filename) {
		log.WithFields(log.Fields{
			"user_id":  user.ID,
			"filename": upload.Filename,
		}).Debug("skipping profile image that is not an image")
		return "", nil
	}

	name := fmt.Sprintf("%d_%s.%s", user.ID, uuid.NewString(), imaging.Extension(upload.Filename))
	if err := a.Stores.Profiles.Put(name, upload.Data); err != nil {
		return "", errors.Wrapf(err, "writing profile image '%s'", name)
	}

	return name, nil
}

// profileImageValues are the columns set when a stored file becomes the profile image
func profileImageValues(name string, upload Upload) map[string]interface{} {
	return map[string]interface{}{
		"profile_image":               name,
		"profile_image_original_name": upload.Filename,
	}
}

// removePreviousProfileImage deletes the old profile image file unless it is
// the default one
func (a *App) removePreviousProfileImage(user database.User, previous string) {
	if previous != "" && previous != database.DefaultProfileImage {
		a.removeFile(a.Stores.Profiles, previous, log.Fields{"user_id": user.ID})
	}
}

// UpdateProfileImage stores the upload under a random name and makes it the
// profile image of the user. Uploads that are not images are skipped. The
// previous image file is removed unless it is the default one.
func (a *App) UpdateProfileImage(user *database.User, upload Upload) error {
	name, err := a.putProfileImage(*user, upload)
	if err != nil || name == "" {
		return err
	}

	previous := user.ProfileImage

	if err := a.DB.Model(user).Updates(profileImageValues(name, upload)).Error; err != nil {
		a.removeFile(a.Stores.Profiles, name, log.Fields{"user_id": user.ID})
		return errors.Wrap(err, "updating profile image")
	}
	user.ProfileImage = name
	user.ProfileImageOriginalName = upload.Filename

	a.removePreviousProfileImage(*user, previous)

	return nil
}

// OpenProfileImage returns a reader for the profile image file of the user.
// It returns ErrNotFound if the user has the default image.
func (a *App) OpenProfileImage(user database.User) (io.ReadCloser, error) {
	if user.ProfileImage == "" || user.ProfileImage == database.DefaultProfileImage {
		return nil, ErrNotFound
	}

	rc, err := a.Stores.Profiles.Open(user.ProfileImage)
	if errors.Is(err, storage.ErrNotExist) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "opening profile image")
	}

	return rc, nil
}
