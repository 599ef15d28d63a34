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

// Package testutils provides utilities used in tests
package testutils

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dnote/diary/pkg/server/crypt"
	"github.com/dnote/diary/pkg/server/database"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitMemoryDB creates an in-memory SQLite database with the schema initialized
func InitMemoryDB(t *testing.T) *gorm.DB {
	// Each test gets its own named in-memory database
	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(database.SqliteDialector(dbName), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}

	database.InitSchema(db)
	if err := database.Migrate(db, database.DriverSqlite); err != nil {
		t.Fatalf("failed to migrate in-memory database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// SetupUserData creates and returns a new user with the given credentials for testing purposes
func SetupUserData(db *gorm.DB, username, email, password string) database.User {
	hashedPassword, err := crypt.HashPassword(password)
	if err != nil {
		panic(errors.Wrap(err, "Failed to hash password"))
	}

	user := database.User{
		Username:             username,
		Email:                email,
		Password:             hashedPassword,
		ProfileImage:         database.DefaultProfileImage,
		Language:             database.DefaultLanguage,
		NotificationsEnabled: true,
	}

	if err := db.Save(&user).Error; err != nil {
		panic(errors.Wrap(err, "Failed to prepare user"))
	}

	return user
}

// SetupSession creates and returns a new user session
func SetupSession(db *gorm.DB, user database.User) database.Session {
	key, err := crypt.GetRandomStr(32)
	if err != nil {
		panic(errors.Wrap(err, "Failed to generate session key"))
	}

	session := database.Session{
		Key:        key,
		UserID:     user.ID,
		LastUsedAt: time.Now(),
		ExpiresAt:  time.Now().Add(time.Hour * 24),
	}
	if err := db.Save(&session).Error; err != nil {
		panic(errors.Wrap(err, "Failed to prepare session"))
	}

	return session
}

// MustDate parses a YYYY-MM-DD date as UTC midnight
func MustDate(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(errors.Wrapf(err, "parsing date %s", s))
	}

	return d
}

// Mood returns a pointer to the given mood label
func Mood(m string) *string {
	return &m
}

// SetupEntryData creates and returns a diary entry of the user. Tag names are
// created if missing.
func SetupEntryData(db *gorm.DB, user database.User, title, date string, mood *string, tagNames ...string) database.DiaryEntry {
	var tags []database.Tag
	for _, name := range tagNames {
		tag := database.Tag{Name: name}
		if err := db.Where(database.Tag{Name: name}).FirstOrCreate(&tag).Error; err != nil {
			panic(errors.Wrap(err, "Failed to prepare tag"))
		}
		tags = append(tags, tag)
	}

	entry := database.DiaryEntry{
		Title:   title,
		Content: fmt.Sprintf("content of %s", title),
		Mood:    mood,
		Date:    MustDate(date),
		UserID:  user.ID,
		Tags:    tags,
	}
	if err := db.Save(&entry).Error; err != nil {
		panic(errors.Wrap(err, "Failed to prepare entry"))
	}

	return entry
}

// SetupImageData creates an image record for the entry and stores its content
// in the given put function, usually the Put method of a store
func SetupImageData(db *gorm.DB, entry database.DiaryEntry, filename string, put func(string, []byte) error) database.EntryImage {
	if put != nil {
		if err := put(filename, []byte("image of "+filename)); err != nil {
			panic(errors.Wrap(err, "Failed to store image"))
		}
	}

	img := database.EntryImage{
		Filename:         filename,
		OriginalFilename: filename,
		UploadedAt:       time.Now().UTC(),
		EntryID:          entry.ID,
	}
	if err := db.Save(&img).Error; err != nil {
		panic(errors.Wrap(err, "Failed to prepare image"))
	}

	return img
}

// MakePNG returns an encoded PNG image of the given size
func MakePNG(width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 13), B: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(errors.Wrap(err, "encoding png"))
	}

	return buf.Bytes()
}

// HTTPDo makes an HTTP request and returns a response
func HTTPDo(t *testing.T, req *http.Request) *http.Response {
	hc := http.Client{
		// Do not follow redirects.
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	res, err := hc.Do(req)
	if err != nil {
		t.Fatal(errors.Wrap(err, "performing http request"))
	}

	return res
}

// SetReqAuthHeader sets the authorization header in the given request for the given user with a specific DB
func SetReqAuthHeader(t *testing.T, db *gorm.DB, req *http.Request, user database.User) {
	session := SetupSession(db, user)

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", session.Key))
}

// HTTPAuthDo makes an HTTP request with an appropriate authorization header for a user with a specific DB
func HTTPAuthDo(t *testing.T, db *gorm.DB, req *http.Request, user database.User) *http.Response {
	SetReqAuthHeader(t, db, req, user)

	return HTTPDo(t, req)
}

// MakeReq makes an HTTP request and returns a response
func MakeReq(endpoint string, method, path, data string) *http.Request {
	u := fmt.Sprintf("%s%s", endpoint, path)

	req, err := http.NewRequest(method, u, strings.NewReader(data))

	if err != nil {
		panic(errors.Wrap(err, "constructing http request"))
	}

	return req
}

// MakeFormReq makes an HTTP request and returns a response
func MakeFormReq(endpoint, method, path string, data url.Values) *http.Request {
	req := MakeReq(endpoint, method, path, data.Encode())
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return req
}

// MultipartFile is a file part of a multipart request
type MultipartFile struct {
	Field    string
	Filename string
	Content  []byte
}

// MakeMultipartReq makes a multipart/form-data request with the given fields and files
func MakeMultipartReq(endpoint, method, path string, fields url.Values, files []MultipartFile) *http.Request {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for key, values := range fields {
		for _, v := range values {
			if err := w.WriteField(key, v); err != nil {
				panic(errors.Wrap(err, "writing field"))
			}
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			panic(errors.Wrap(err, "creating file part"))
		}
		if _, err := part.Write(f.Content); err != nil {
			panic(errors.Wrap(err, "writing file part"))
		}
	}
	if err := w.Close(); err != nil {
		panic(errors.Wrap(err, "closing multipart writer"))
	}

	req := MakeReq(endpoint, method, path, buf.String())
	req.Header.Set("Content-Type", w.FormDataContentType())

	return req
}

// MustExec fails the test if the given database query has error
func MustExec(t *testing.T, db *gorm.DB, message string) {
	t.Helper()

	if err := db.Error; err != nil {
		t.Fatalf("%s: %s", message, err.Error())
	}
}

// GetCookieByName returns a cookie with the given name
func GetCookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	var ret *http.Cookie

	for i := 0; i < len(cookies); i++ {
		if cookies[i].Name == name {
			ret = cookies[i]
			break
		}
	}

	return ret
}

// MockEmail is a mock email data
type MockEmail struct {
	TemplateType string
	From         string
	To           []string
	Data         interface{}
}

// MockEmailbackendImplementation is an email backend that records the emails
// instead of sending them
type MockEmailbackendImplementation struct {
	mu     sync.RWMutex
	Emails []MockEmail
}

// Clear clears the recorded emails
func (b *MockEmailbackendImplementation) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.Emails = []MockEmail{}
}

// SendEmail is an implementation of mailer.Backend.SendEmail
func (b *MockEmailbackendImplementation) SendEmail(templateType, from string, to []string, data interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.Emails = append(b.Emails, MockEmail{
		TemplateType: templateType,
		From:         from,
		To:           to,
		Data:         data,
	})

	return nil
}
