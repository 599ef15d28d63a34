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
	"time"

	"github.com/dnote/diary/pkg/server/app"
	"github.com/dnote/diary/pkg/server/database"
	"github.com/dnote/diary/pkg/server/log"
	mw "github.com/dnote/diary/pkg/server/middleware"
	"github.com/dnote/diary/pkg/server/presenters"
	"github.com/pkg/errors"
)

// NewUsers creates a new Users controller
func NewUsers(app *app.App) *Users {
	return &Users{apiBase{app: app}}
}

// Users is a controller for signing up, signing in and signing out
type Users struct {
	apiBase
}

// SessionResponse is the response for a successful sign in
type SessionResponse struct {
	Key       string          `json:"key"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      presenters.User `json:"user"`
}

func respondWithSession(w http.ResponseWriter, statusCode int, session *database.Session, user database.User) {
	setSessionCookie(w, session.Key, session.ExpiresAt)

	respondJSON(w, statusCode, SessionResponse{
		Key:       session.Key,
		ExpiresAt: presenters.FormatTS(session.ExpiresAt),
		User:      presenters.PresentUser(user),
	})
}

// SignupForm is the payload for signing up
type SignupForm struct {
	Username             string `schema:"username" json:"username"`
	Email                string `schema:"email" json:"email"`
	Password             string `schema:"password" json:"password"`
	PasswordConfirmation string `schema:"password_confirmation" json:"password_confirmation"`
}

// Create handles POST /api/signup
func (u *Users) Create(w http.ResponseWriter, r *http.Request) {
	var form SignupForm
	if err := parseRequestData(r, &form); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	user, err := u.app.CreateUser(form.Username, form.Email, form.Password, form.PasswordConfirmation)
	if err != nil {
		handleJSONError(w, err, "creating user")
		return
	}

	session, err := u.app.SignIn(&user)
	if err != nil {
		handleJSONError(w, err, "signing in a user")
		return
	}

	if err := u.app.SendWelcomeEmail(user); err != nil {
		log.WithFields(log.Fields{
			"user_id": user.ID,
		}).ErrorWrap(err, "sending welcome email")
	}

	respondWithSession(w, http.StatusCreated, session, user)
}

// LoginForm is the payload for signing in
type LoginForm struct {
	Email    string `schema:"email" json:"email"`
	Password string `schema:"password" json:"password"`
}

func (u *Users) login(form LoginForm) (*database.User, *database.Session, error) {
	user, err := u.app.Authenticate(form.Email, form.Password)
	if err != nil {
		// An unknown email is reported the same way as a wrong password
		if errors.Cause(err) == app.ErrNotFound {
			return nil, nil, app.ErrLoginInvalid
		}

		return nil, nil, err
	}

	s, err := u.app.SignIn(user)
	if err != nil {
		return nil, nil, err
	}

	return user, s, nil
}

// Login handles POST /api/signin
func (u *Users) Login(w http.ResponseWriter, r *http.Request) {
	var form LoginForm
	if err := parseRequestData(r, &form); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	user, session, err := u.login(form)
	if err != nil {
		handleJSONError(w, err, "logging in user")
		return
	}

	respondWithSession(w, http.StatusOK, session, *user)
}

func (u *Users) logout(r *http.Request) (bool, error) {
	key, err := mw.GetCredential(r)
	if err != nil {
		return false, errors.Wrap(err, "getting credentials")
	}

	if key == "" {
		return false, nil
	}

	if err = u.app.DeleteSession(key); err != nil {
		return false, errors.Wrap(err, "deleting session")
	}

	return true, nil
}

// Logout handles POST /api/signout
func (u *Users) Logout(w http.ResponseWriter, r *http.Request) {
	ok, err := u.logout(r)
	if err != nil {
		handleJSONError(w, err, "logging out")
		return
	}

	if ok {
		unsetSessionCookie(w)
	}

	w.WriteHeader(http.StatusNoContent)
}

type forgotPasswordPayload struct {
	Email string `schema:"email" json:"email"`
}

// ForgotPassword handles POST /api/forgot-password
func (u *Users) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var form forgotPasswordPayload
	if err := parseRequestData(r, &form); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	if err := u.app.SendPasswordResetEmail(form.Email); err != nil {
		handleJSONError(w, err, "sending password reset email")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Check your email for the instructions to reset your password.",
	})
}
