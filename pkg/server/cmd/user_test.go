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

package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dnote/diary/pkg/assert"
	"github.com/dnote/diary/pkg/server/app"
	"github.com/dnote/diary/pkg/server/buildinfo"
	"github.com/dnote/diary/pkg/server/database"
	"github.com/dnote/diary/pkg/server/testutils"
	"gorm.io/gorm"
)

// openDB opens a file database with the schema in place
func openDB(t *testing.T, path string) *gorm.DB {
	db, err := database.Open(database.DriverSqlite, path, "error")
	if err != nil {
		t.Fatal(err)
	}
	database.InitSchema(db)
	if err := database.Migrate(db, database.DriverSqlite); err != nil {
		t.Fatal(err)
	}

	return db
}

func closeDB(t *testing.T, db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.Close()
}

// runCmd executes the root command against the given database and returns
// its output
func runCmd(t *testing.T, dbPath string, stdin string, args ...string) (string, error) {
	dir := t.TempDir()

	base := []string{
		"--dbPath", dbPath,
		"--uploadDir", filepath.Join(dir, "uploads"),
		"--envFile", filepath.Join(dir, "missing.env"),
		"--logLevel", "error",
	}

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetArgs(append(args, base...))
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&out)

	err := root.Execute()

	return out.String(), err
}

func TestUserRemoveCmd(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db := openDB(t, dbPath)
	user := testutils.SetupUserData(db, "alice", "alice@example.com", "password123")
	testutils.SetupSession(db, user)
	testutils.SetupEntryData(db, user, "first day", "2024-03-01", testutils.Mood(database.MoodHappy), "travel")
	closeDB(t, db)

	out, err := runCmd(t, dbPath, "y\n", "user", "remove", "--email", "alice@example.com")
	if err != nil {
		t.Fatalf("executing command: %v\n%s", err, out)
	}
	assert.Equal(t, strings.Contains(out, "removed user alice@example.com"), true, "output mismatch")

	db = openDB(t, dbPath)
	defer closeDB(t, db)

	var userCount, sessionCount, entryCount int64
	testutils.MustExec(t, db.Model(&database.User{}).Count(&userCount), "counting users")
	testutils.MustExec(t, db.Model(&database.Session{}).Count(&sessionCount), "counting sessions")
	testutils.MustExec(t, db.Model(&database.DiaryEntry{}).Count(&entryCount), "counting entries")
	assert.Equal(t, userCount, int64(0), "user count mismatch")
	assert.Equal(t, sessionCount, int64(0), "session count mismatch")
	assert.Equal(t, entryCount, int64(0), "entry count mismatch")
}

func TestUserRemoveCmdDeclined(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db := openDB(t, dbPath)
	testutils.SetupUserData(db, "alice", "alice@example.com", "password123")
	closeDB(t, db)

	_, err := runCmd(t, dbPath, "n\n", "user", "remove", "--email", "alice@example.com")
	assert.Equal(t, err, errAborted, "error mismatch")

	db = openDB(t, dbPath)
	defer closeDB(t, db)

	var count int64
	testutils.MustExec(t, db.Model(&database.User{}).Count(&count), "counting users")
	assert.Equal(t, count, int64(1), "user should be kept")
}

func TestUserRemoveCmdNotFound(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	closeDB(t, openDB(t, dbPath))

	out, err := runCmd(t, dbPath, "y\n", "user", "remove", "--email", "nobody@example.com")
	if err == nil {
		t.Fatal("expected an error")
	}
	assert.Equal(t, strings.Contains(out, "user with email nobody@example.com not found"), true, "output mismatch")
}

func TestUserResetPasswordCmd(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db := openDB(t, dbPath)
	user := testutils.SetupUserData(db, "alice", "alice@example.com", "oldpassword123")
	testutils.SetupSession(db, user)
	closeDB(t, db)

	out, err := runCmd(t, dbPath, "", "user", "reset-password", "--email", "alice@example.com", "--password", "newpassword456")
	if err != nil {
		t.Fatalf("executing command: %v\n%s", err, out)
	}

	db = openDB(t, dbPath)
	defer closeDB(t, db)

	var updated database.User
	testutils.MustExec(t, db.Where("id = ?", user.ID).First(&updated), "finding user")
	assert.Equal(t, app.CheckPassword(updated, "newpassword456"), true, "new password should match")
	assert.Equal(t, app.CheckPassword(updated, "oldpassword123"), false, "old password should not match")

	var sessionCount int64
	testutils.MustExec(t, db.Model(&database.Session{}).Where("user_id = ?", user.ID).Count(&sessionCount), "counting sessions")
	assert.Equal(t, sessionCount, int64(0), "sessions should be deleted")
}

func TestUserResetPasswordCmdRequiresFlags(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	_, err := runCmd(t, dbPath, "", "user", "reset-password", "--email", "alice@example.com")
	if err == nil {
		t.Fatal("expected an error for the missing password flag")
	}
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetArgs([]string{"version", "--envFile", filepath.Join(t.TempDir(), "missing.env")})
	root.SetOut(&out)

	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, out.String(), "diary-server-"+buildinfo.Version+"\n", "output mismatch")
}
