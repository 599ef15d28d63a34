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

package controllers

import (
	"net/http"

	"github.com/dnote/diary/pkg/server/app"
	"github.com/dnote/diary/pkg/server/presenters"
)

// NewAccount creates a new Account controller
func NewAccount(app *app.App) *Account {
	return &Account{apiBase{app: app}}
}

// Account is a controller for the settings of the signed in user
type Account struct {
	apiBase
}

// Show handles GET /api/account
func (c *Account) Show(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		handleJSONError(w, err, "getting user")
		return
	}

	respondJSON(w, http.StatusOK, presenters.PresentUser(*user))
}

type updateAccountPayload struct {
	Username string `schema:"username" json:"username"`
	Email    string `schema:"email" json:"email"`
}

// Update handles PATCH /api/account. A multipart request can carry a new
// profile image in the profile_image field.
func (c *Account) Update(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		handleJSONError(w, err, "getting user")
		return
	}

	var form updateAccountPayload
	uploads, err := c.parseBody(w, r, &form, "profile_image")
	if err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	var profileImage *app.Upload
	if len(uploads) > 0 {
		profileImage = &uploads[0]
	}

	if err := c.app.UpdateAccount(user, form.Username, form.Email, profileImage); err != nil {
		handleJSONError(w, err, "updating account")
		return
	}

	respondJSON(w, http.StatusOK, presenters.PresentUser(*user))
}

// ProfileImage handles GET /api/account/profile-image
func (c *Account) ProfileImage(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		handleJSONError(w, err, "getting user")
		return
	}

	rc, err := c.app.OpenProfileImage(*user)
	if err != nil {
		handleJSONError(w, err, "opening profile image")
		return
	}

	serveFile(w, rc, user.ProfileImage)
}

type updateLanguagePayload struct {
	Language string `schema:"language" json:"language"`
}

// UpdateLanguage handles PATCH /api/account/language
func (c *Account) UpdateLanguage(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		handleJSONError(w, err, "getting user")
		return
	}

	var form updateLanguagePayload
	if err := parseRequestData(r, &form); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	if err := c.app.UpdateLanguage(user, form.Language); err != nil {
		handleJSONError(w, err, "updating language")
		return
	}

	respondJSON(w, http.StatusOK, presenters.PresentUser(*user))
}

type updateNotificationsPayload struct {
	Enabled bool `schema:"enabled" json:"enabled"`
}

// UpdateNotifications handles PATCH /api/account/notifications
func (c *Account) UpdateNotifications(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		handleJSONError(w, err, "getting user")
		return
	}

	var form updateNotificationsPayload
	if err := parseRequestData(r, &form); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	if err := c.app.UpdateNotifications(user, form.Enabled); err != nil {
		handleJSONError(w, err, "updating notifications")
		return
	}

	respondJSON(w, http.StatusOK, presenters.PresentUser(*user))
}

type updatePasswordPayload struct {
	OldPassword          string `schema:"old_password" json:"old_password"`
	NewPassword          string `schema:"new_password" json:"new_password"`
	PasswordConfirmation string `schema:"password_confirmation" json:"password_confirmation"`
}

// UpdatePassword handles PATCH /api/account/password
func (c *Account) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		handleJSONError(w, err, "getting user")
		return
	}

	var form updatePasswordPayload
	if err := parseRequestData(r, &form); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	if err := c.app.ChangePassword(user, form.OldPassword, form.NewPassword, form.PasswordConfirmation); err != nil {
		handleJSONError(w, err, "changing password")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
