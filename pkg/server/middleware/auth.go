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

package middleware

import (
	"net/http"

	"github.com/dnote/diary/pkg/server/app"
	"github.com/dnote/diary/pkg/server/context"
	"github.com/dnote/diary/pkg/server/database"
	"github.com/dnote/diary/pkg/server/log"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Auth is an authentication middleware. It responds with unauthorized unless
// the request carries the key of a live session.
func Auth(a *app.App, next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, session, ok, err := AuthWithSession(a, r)
		if err != nil {
			DoError(w, "authenticating with session", err, http.StatusInternalServerError)
			return
		}
		if !ok {
			RespondUnauthorized(w)
			return
		}

		ctx := context.WithUser(r.Context(), &user)
		ctx = context.WithSession(ctx, &session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthWithSession performs user authentication with session
func AuthWithSession(a *app.App, r *http.Request) (database.User, database.Session, bool, error) {
	var user database.User
	var session database.Session

	sessionKey, err := GetCredential(r)
	if err != nil {
		// A malformed credential is the same as no credential
		log.WithFields(log.Fields{
			"error": err.Error(),
		}).Debug("ignoring credential")
		return user, session, false, nil
	}
	if sessionKey == "" {
		return user, session, false, nil
	}

	err = a.DB.Where("key = ?", sessionKey).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, session, false, nil
	} else if err != nil {
		return user, session, false, errors.Wrap(err, "finding session")
	}

	if session.ExpiresAt.Before(a.Clock.Now()) {
		return user, session, false, nil
	}

	err = a.DB.Where("id = ?", session.UserID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, session, false, nil
	} else if err != nil {
		return user, session, false, errors.Wrap(err, "finding user from session")
	}

	return user, session, true, nil
}

// GuestOnly is a middleware for endpoints that signed in users must not use,
// such as signing up
func GuestOnly(a *app.App, next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, ok, err := AuthWithSession(a, r)
		if err != nil {
			// log the error and continue
			log.ErrorWrap(err, "authenticating with session")
		}

		if ok {
			RespondError(w, http.StatusForbidden, "Already signed in", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}
