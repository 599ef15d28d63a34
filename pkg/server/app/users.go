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
	"strings"

	"github.com/dnote/diary/pkg/server/database"
	"github.com/dnote/diary/pkg/server/log"
	"github.com/dnote/diary/pkg/server/validation"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type signupParams struct {
	Username string `json:"username" validate:"notblank,max=80"`
	Email    string `json:"email" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required"`
}

type accountParams struct {
	Username string `json:"username" validate:"notblank,max=80"`
	Email    string `json:"email" validate:"required,email,max=120"`
}

// TouchLastLoginAt updates the last login timestamp
func (a *App) TouchLastLoginAt(user database.User, tx *gorm.DB) error {
	t := a.now()
	if err := tx.Model(&user).Update("last_login_at", &t).Error; err != nil {
		return errors.Wrap(err, "updating last_login_at")
	}

	return nil
}

// checkUniqueness returns a validation error if the email or the username
// belongs to a user other than the one with the given id. A zero id checks
// against all users.
func checkUniqueness(tx *gorm.DB, userID int, username, email string) error {
	var count int64
	if err := tx.Model(&database.User{}).Where("email = ? AND id <> ?", email, userID).Count(&count).Error; err != nil {
		return errors.Wrap(err, "counting users by email")
	}
	if count > 0 {
		return ErrDuplicateEmail
	}

	if err := tx.Model(&database.User{}).Where("username = ? AND id <> ?", username, userID).Count(&count).Error; err != nil {
		return errors.Wrap(err, "counting users by username")
	}
	if count > 0 {
		return ErrDuplicateUsername
	}

	return nil
}

// CreateUser creates a user
func (a *App) CreateUser(username, email, password, passwordConfirmation string) (database.User, error) {
	if a.DisableRegistration {
		return database.User{}, ErrRegistrationDisabled
	}

	params := signupParams{
		Username: strings.TrimSpace(username),
		Email:    strings.TrimSpace(email),
		Password: password,
	}
	if err := a.Validator.Validate(params); err != nil {
		return database.User{}, err
	}
	if password != passwordConfirmation {
		return database.User{}, ErrPasswordConfirmationMismatch
	}

	tx := a.DB.Begin()

	if err := checkUniqueness(tx, 0, params.Username, params.Email); err != nil {
		tx.Rollback()
		return database.User{}, err
	}

	user := database.User{
		Username:             params.Username,
		Email:                params.Email,
		ProfileImage:         database.DefaultProfileImage,
		Language:             database.DefaultLanguage,
		NotificationsEnabled: true,
	}
	if err := SetPassword(&user, password); err != nil {
		tx.Rollback()
		return database.User{}, err
	}
	if err := tx.Create(&user).Error; err != nil {
		tx.Rollback()
		return database.User{}, errors.Wrap(err, "saving user")
	}

	if err := tx.Commit().Error; err != nil {
		return database.User{}, errors.Wrap(err, "committing transaction")
	}

	return user, nil
}

// GetUserByEmail finds the user with the given email
func (a *App) GetUserByEmail(email string) (database.User, error) {
	if email == "" {
		return database.User{}, ErrEmailRequired
	}

	var user database.User
	err := a.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return database.User{}, ErrNotFound
	} else if err != nil {
		return database.User{}, errors.Wrap(err, "finding user")
	}

	return user, nil
}

// Authenticate authenticates a user
func (a *App) Authenticate(email, password string) (*database.User, error) {
	user, err := a.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}

	if !CheckPassword(user, password) {
		return nil, ErrLoginInvalid
	}

	return &user, nil
}

// SignIn signs in a user
func (a *App) SignIn(user *database.User) (*database.Session, error) {
	err := a.TouchLastLoginAt(*user, a.DB)
	if err != nil {
		log.ErrorWrap(err, "touching login timestamp")
	}

	session, err := a.CreateSession(user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "creating session")
	}

	return &session, nil
}

// UpdateAccount changes the username and the email of the user and, if given,
// replaces the profile image. Nothing is changed if any part fails.
func (a *App) UpdateAccount(user *database.User, username, email string, profileImage *Upload) error {
	params := accountParams{
		Username: strings.TrimSpace(username),
		Email:    strings.TrimSpace(email),
	}
	if err := a.Validator.Validate(params); err != nil {
		return err
	}

	// The new file is written first and removed again if the rows are not saved.
	var imageName string
	if profileImage != nil {
		name, err := a.putProfileImage(*user, *profileImage)
		if err != nil {
			return errors.Wrap(err, "updating profile image")
		}
		imageName = name
	}
	discardImage := func() {
		if imageName != "" {
			a.removeFile(a.Stores.Profiles, imageName, log.Fields{"user_id": user.ID})
		}
	}

	values := map[string]interface{}{
		"username": params.Username,
		"email":    params.Email,
	}
	if imageName != "" {
		for k, v := range profileImageValues(imageName, *profileImage) {
			values[k] = v
		}
	}

	previous := user.ProfileImage

	tx := a.DB.Begin()

	if err := checkUniqueness(tx, user.ID, params.Username, params.Email); err != nil {
		tx.Rollback()
		discardImage()
		return err
	}

	if err := tx.Model(&database.User{}).Where("id = ?", user.ID).Updates(values).Error; err != nil {
		tx.Rollback()
		discardImage()
		return errors.Wrap(err, "updating account")
	}

	if err := tx.Commit().Error; err != nil {
		discardImage()
		return errors.Wrap(err, "committing transaction")
	}

	user.Username = params.Username
	user.Email = params.Email
	if imageName != "" {
		user.ProfileImage = imageName
		user.ProfileImageOriginalName = profileImage.Filename
		a.removePreviousProfileImage(*user, previous)
	}

	return nil
}

type languageParams struct {
	Language string `json:"language" validate:"required,max=10,langtag"`
}

// UpdateLanguage sets the language preference of the user. The code is stored
// in its canonical form.
func (a *App) UpdateLanguage(user *database.User, lang string) error {
	params := languageParams{Language: strings.TrimSpace(lang)}
	if err := a.Validator.Validate(params); err != nil {
		return ErrInvalidLanguage
	}

	canonical, err := validation.CanonicalLanguage(params.Language)
	if err != nil {
		return ErrInvalidLanguage
	}

	if err := a.DB.Model(user).Update("language", canonical).Error; err != nil {
		return errors.Wrap(err, "updating language")
	}
	user.Language = canonical

	return nil
}

// UpdateNotifications sets whether the user receives notification emails
func (a *App) UpdateNotifications(user *database.User, enabled bool) error {
	if err := a.DB.Model(user).Update("notifications_enabled", enabled).Error; err != nil {
		return errors.Wrap(err, "updating notification preference")
	}
	user.NotificationsEnabled = enabled

	return nil
}

// ChangePassword replaces the password of the user after verifying the old one.
// Other sessions of the user are kept.
func (a *App) ChangePassword(user *database.User, oldPassword, newPassword, confirmation string) error {
	if !CheckPassword(*user, oldPassword) {
		return ErrPasswordInvalid
	}
	if newPassword == "" {
		return validation.NewError("new_password", "is required")
	}
	if newPassword != confirmation {
		return ErrPasswordConfirmationMismatch
	}

	if err := UpdateUserPassword(a.DB, user, newPassword); err != nil {
		return err
	}

	if user.NotificationsEnabled {
		if err := a.SendPasswordChangedEmail(*user); err != nil {
			log.WithFields(log.Fields{
				"user_id": user.ID,
			}).ErrorWrap(err, "sending password changed email")
		}
	}

	return nil
}

// RemoveUser deletes the user with the given email along with the sessions,
// the entries, the images and the files of the user. Tags are kept.
func (a *App) RemoveUser(email string) error {
	user, err := a.GetUserByEmail(email)
	if err != nil {
		return err
	}

	var entries []database.DiaryEntry
	if err := a.DB.Where("user_id = ?", user.ID).Find(&entries).Error; err != nil {
		return errors.Wrap(err, "finding entries")
	}

	tx := a.DB.Begin()

	var images []database.EntryImage
	for _, entry := range entries {
		deleted, err := a.deleteEntry(tx, entry)
		if err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "deleting entry %d", entry.ID)
		}
		images = append(images, deleted...)
	}

	if err := a.DeleteUserSessions(tx, user.ID); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&user).Error; err != nil {
		tx.Rollback()
		return errors.Wrap(err, "deleting user")
	}

	if err := tx.Commit().Error; err != nil {
		return errors.Wrap(err, "committing transaction")
	}

	a.removeImageFiles(images)
	if user.ProfileImage != database.DefaultProfileImage {
		a.removeFile(a.Stores.Profiles, user.ProfileImage, log.Fields{"user_id": user.ID})
	}

	return nil
}
