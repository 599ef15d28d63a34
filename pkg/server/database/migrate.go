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
	"io/fs"
	"net/http"
	"strings"

	"github.com/dnote/diary/pkg/server/database/migrations"
	"github.com/dnote/diary/pkg/server/log"
	"github.com/pkg/errors"
	migrate "github.com/rubenv/sql-migrate"
	"gorm.io/gorm"
)

// validateMigrationFilename checks if filename follows format: NNN-description.sql
func validateMigrationFilename(name string) error {
	if !strings.HasSuffix(name, ".sql") {
		return errors.Errorf("invalid migration filename: must end with .sql")
	}

	name = strings.TrimSuffix(name, ".sql")
	parts := strings.SplitN(name, "-", 2)
	if len(parts) != 2 {
		return errors.Errorf("invalid migration filename: must be NNN-description.sql")
	}

	version, description := parts[0], parts[1]

	if len(version) != 3 {
		return errors.Errorf("invalid migration filename: version must be 3 digits, got %s", version)
	}
	for _, c := range version {
		if c < '0' || c > '9' {
			return errors.Errorf("invalid migration filename: version must be numeric, got %s", version)
		}
	}

	if description == "" {
		return errors.Errorf("invalid migration filename: description is required")
	}

	return nil
}

// validateMigrationFiles checks every filename and rejects duplicate versions
func validateMigrationFiles(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return errors.Wrap(err, "reading migration directory")
	}

	seen := make(map[string]string)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasSuffix(name, ".go") {
			continue
		}

		if err := validateMigrationFilename(name); err != nil {
			return err
		}

		version := name[:3]
		if existing, found := seen[version]; found {
			return errors.Errorf("duplicate migration version %s: %s and %s", version, existing, name)
		}
		seen[version] = name
	}

	return nil
}

// dialect returns the sql-migrate dialect name for the given driver
func dialect(driver string) string {
	if driver == DriverPostgres {
		return "postgres"
	}

	return "sqlite3"
}

// Migrate runs the migrations using the embedded migration files
func Migrate(db *gorm.DB, driver string) error {
	return runMigrations(db, driver, migrations.Files)
}

// runMigrations applies the pending migrations from the provided filesystem
func runMigrations(db *gorm.DB, driver string, fsys fs.FS) error {
	if err := validateMigrationFiles(fsys); err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "getting the underlying connection")
	}

	set := migrate.MigrationSet{TableName: MigrationTableName}
	source := &migrate.HttpFileSystemMigrationSource{FileSystem: http.FS(fsys)}

	n, err := set.Exec(sqlDB, dialect(driver), source, migrate.Up)
	if err != nil {
		return errors.Wrap(err, "running migrations")
	}

	log.WithFields(log.Fields{
		"applied": n,
	}).Info("Migrate success.")

	return nil
}
