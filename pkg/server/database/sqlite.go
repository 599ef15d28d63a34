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
	"database/sql"
	"strings"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SqliteDriverName is the database/sql driver used for sqlite connections. It
// registers the SQL functions the server relies on for every connection.
const SqliteDriverName = "sqlite3_diary"

// sqliteLowerFunc lowercases text with Unicode case mapping. The built-in
// LOWER of sqlite only folds ASCII letters.
const sqliteLowerFunc = "unicode_lower"

func init() {
	sql.Register(SqliteDriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc(sqliteLowerFunc, strings.ToLower, true)
		},
	})
}

// SqliteDialector returns a gorm dialector for the sqlite database at dsn
func SqliteDialector(dsn string) gorm.Dialector {
	return &sqlite.Dialector{
		DriverName: SqliteDriverName,
		DSN:        dsn,
	}
}

// LowerFunc returns the SQL function that lowercases text the way
// strings.ToLower does, for case-insensitive matching on db
func LowerFunc(db *gorm.DB) string {
	if db.Dialector.Name() == DriverSqlite {
		return sqliteLowerFunc
	}

	return "LOWER"
}
