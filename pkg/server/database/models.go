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

package database

import (
	"time"
)

// Model is the base model definition
type Model struct {
	ID        int       `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// User is a model for a user
type User struct {
	Model
	Username string `json:"username" gorm:"type:varchar(80);uniqueIndex;not null"`
	Email    string `json:"email" gorm:"type:varchar(120);uniqueIndex;not null"`
	Password string `json:"-" gorm:"not null"`
	// ProfileImage is the stored name of the profile image
	ProfileImage string `json:"profile_image" gorm:"type:varchar(255);default:default.jpg"`
	// ProfileImageOriginalName is the filename the profile image was uploaded with
	ProfileImageOriginalName string     `json:"-"`
	Language                 string     `json:"language" gorm:"type:varchar(10);default:en"`
	NotificationsEnabled     bool       `json:"notifications_enabled"`
	LastLoginAt              *time.Time `json:"-"`
}

// DiaryEntry is a model for a diary entry
type DiaryEntry struct {
	Model
	Title   string `json:"title" gorm:"type:varchar(200);not null"`
	Content string `json:"content" gorm:"type:text;not null"`
	// Mood is nil when the entry has no mood
	Mood *string `json:"mood" gorm:"type:varchar(20);index"`
	// Date is the day the entry is about, stored as UTC midnight
	Date   time.Time    `json:"date" gorm:"type:date;index"`
	UserID int          `json:"user_id" gorm:"not null;index"`
	User   User         `json:"-"`
	Tags   []Tag        `json:"tags" gorm:"many2many:entry_tags;joinForeignKey:EntryID;joinReferences:TagID"`
	Images []EntryImage `json:"images" gorm:"foreignKey:EntryID"`
}

// Tag is a model for a tag shared by entries of all users
type Tag struct {
	ID        int       `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	Name      string    `json:"name" gorm:"type:varchar(50);uniqueIndex;not null"`
}

// EntryImage is a model for an image attached to a diary entry
type EntryImage struct {
	ID int `gorm:"primaryKey" json:"-"`
	// Filename is the name of the stored file
	Filename         string    `json:"filename" gorm:"type:varchar(255);not null"`
	OriginalFilename string    `json:"original_filename"`
	UploadedAt       time.Time `json:"uploaded_at"`
	EntryID          int       `json:"entry_id" gorm:"not null;index"`
	Width            int       `json:"width"`
	Height           int       `json:"height"`
	BlurHash         string    `json:"blur_hash"`
}

// Session represents a user session
type Session struct {
	Model
	UserID     int    `gorm:"index"`
	Key        string `gorm:"index"`
	LastUsedAt time.Time
	ExpiresAt  time.Time
}
