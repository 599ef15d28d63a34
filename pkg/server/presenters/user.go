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

package presenters

import (
	"time"

	"github.com/dnote/diary/pkg/server/database"
)

// ProfileImageURL is the path the profile image of the current user is served at
const ProfileImageURL = "/api/account/profile-image"

// User is a result of PresentUser
type User struct {
	Username             string    `json:"username"`
	Email                string    `json:"email"`
	CreatedAt            time.Time `json:"created_at"`
	Language             string    `json:"language"`
	NotificationsEnabled bool      `json:"notifications_enabled"`
	// ProfileImageURL is empty when the user has the default image
	ProfileImageURL string `json:"profile_image_url"`
}

// PresentUser presents a user
func PresentUser(user database.User) User {
	ret := User{
		Username:             user.Username,
		Email:                user.Email,
		CreatedAt:            FormatTS(user.CreatedAt),
		Language:             user.Language,
		NotificationsEnabled: user.NotificationsEnabled,
	}

	if user.ProfileImage != "" && user.ProfileImage != database.DefaultProfileImage {
		ret.ProfileImageURL = ProfileImageURL
	}

	return ret
}
