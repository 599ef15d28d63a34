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
	"github.com/dnote/diary/pkg/server/validation"
	"github.com/pkg/errors"
)

// appError is an error that is safe to show to the client
type appError string

func (e appError) Error() string {
	return string(e)
}

var (
	// ErrNotFound is an error indicating that the requested resource does not exist
	ErrNotFound appError = "not found"
	// ErrForbidden is an error indicating that the user is not allowed to access the resource
	ErrForbidden appError = "You do not have permission to access this resource"
	// ErrLoginRequired is an error indicating that the user is not logged in
	ErrLoginRequired appError = "login required"
	// ErrLoginInvalid is an error for a wrong email and password combination
	ErrLoginInvalid appError = "Invalid email or password"
	// ErrRegistrationDisabled is an error indicating that the sign up is disabled
	ErrRegistrationDisabled appError = "Registration is disabled"
)

// validationError is an error about the submitted data. Nothing is applied
// when it is returned.
type validationError string

func (e validationError) Error() string {
	return string(e)
}

var (
	// ErrDuplicateEmail is an error for an email that belongs to another user
	ErrDuplicateEmail validationError = "Email already registered"
	// ErrDuplicateUsername is an error for a username that belongs to another user
	ErrDuplicateUsername validationError = "Username already taken"
	// ErrPasswordConfirmationMismatch is an error for a password confirmation that does not match the password
	ErrPasswordConfirmationMismatch validationError = "Passwords do not match"
	// ErrPasswordInvalid is an error for a wrong current password
	ErrPasswordInvalid validationError = "Current password is incorrect"
	// ErrInvalidDate is an error for a date that is not in the YYYY-MM-DD form
	ErrInvalidDate validationError = "Invalid date"
	// ErrTitleRequired is an error for an entry without a title
	ErrTitleRequired validationError = "Title is required"
	// ErrContentRequired is an error for an entry without content
	ErrContentRequired validationError = "Content is required"
	// ErrInvalidMood is an error for an unknown mood label
	ErrInvalidMood validationError = "Invalid mood"
	// ErrInvalidMonth is an error for a month outside 1 through 12
	ErrInvalidMonth validationError = "Invalid month"
	// ErrInvalidLanguage is an error for a malformed language code
	ErrInvalidLanguage validationError = "Invalid language"
	// ErrEmailRequired is an error for a missing email
	ErrEmailRequired validationError = "Email is required"
)

// IsValidationError reports whether err is caused by invalid input
func IsValidationError(err error) bool {
	cause := errors.Cause(err)

	if _, ok := cause.(validationError); ok {
		return true
	}

	var verr *validation.Error
	return errors.As(err, &verr)
}
