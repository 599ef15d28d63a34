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
	"github.com/dnote/diary/pkg/server/crypt"
	"github.com/dnote/diary/pkg/server/database"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// SetPassword replaces the password hash of the user. The user is not saved.
func SetPassword(user *database.User, plain string) error {
	hashed, err := crypt.HashPassword(plain)
	if err != nil {
		return errors.Wrap(err, "hashing password")
	}

	user.Password = hashed

	return nil
}

// CheckPassword reports whether the plaintext matches the password of the user
func CheckPassword(user database.User, plain string) bool {
	return crypt.ComparePassword(user.Password, plain)
}

// UpdateUserPassword hashes the plaintext and saves it as the password of the user
func UpdateUserPassword(tx *gorm.DB, user *database.User, plain string) error {
	if err := SetPassword(user, plain); err != nil {
		return err
	}

	if err := tx.Model(user).Update("password", user.Password).Error; err != nil {
		return errors.Wrap(err, "updating password")
	}

	return nil
}
