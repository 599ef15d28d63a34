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

// Package config resolves the server configuration from flags, an optional
// YAML file, the environment and defaults, in that order of precedence.
package config

import (
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dnote/diary/pkg/dirs"
	"github.com/dnote/diary/pkg/server/log"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	// AppEnvProduction represents an app environment for production.
	AppEnvProduction string = "PRODUCTION"
	// DefaultDBFilename is the default database filename
	DefaultDBFilename = "server.db"
	// DefaultUploadDirname is the name of the default upload directory
	DefaultUploadDirname = "uploads"
	// DefaultMaxUploadSize is the default limit on request bodies carrying uploads
	DefaultMaxUploadSize int64 = 16 * 1024 * 1024
	// DefaultSessionLifetime is the default lifetime of a login session
	DefaultSessionLifetime = 24 * time.Hour

	// StorageFilesystem stores uploaded files on the local disk
	StorageFilesystem = "filesystem"
	// StorageS3 stores uploaded files in an S3 compatible bucket
	StorageS3 = "s3"

	// DriverSqlite is the database driver name for sqlite
	DriverSqlite = "sqlite"
	// DriverPostgres is the database driver name for postgres
	DriverPostgres = "postgres"
)

var (
	// DefaultDBPath is the default path to the database file
	DefaultDBPath = filepath.Join(dirs.AppDataDir(), DefaultDBFilename)
	// DefaultUploadDir is the default directory for uploaded files
	DefaultUploadDir = filepath.Join(dirs.AppDataDir(), DefaultUploadDirname)
	// DefaultConfigPath is the config file read when no path is given. It may
	// be absent.
	DefaultConfigPath = filepath.Join(dirs.AppConfigDir(), "config.yml")
)

var (
	// ErrDBMissingPath is an error for an incomplete configuration missing the database path
	ErrDBMissingPath = errors.New("DB Path is empty")
	// ErrWebURLInvalid is an error for an incomplete configuration with invalid web url
	ErrWebURLInvalid = errors.New("Invalid WebURL")
	// ErrPortInvalid is an error for an incomplete configuration with invalid port
	ErrPortInvalid = errors.New("Invalid Port")
	// ErrStorageBackendInvalid is an error for an unknown storage backend
	ErrStorageBackendInvalid = errors.New("Invalid storage backend")
	// ErrS3BucketMissing is an error for an s3 storage configuration without a bucket
	ErrS3BucketMissing = errors.New("S3 bucket is empty")
	// ErrUploadSizeInvalid is an error for a non-positive upload size limit
	ErrUploadSizeInvalid = errors.New("Invalid max upload size")
	// ErrSessionLifetimeInvalid is an error for a non-positive session lifetime
	ErrSessionLifetimeInvalid = errors.New("Invalid session lifetime")
	// ErrLogLevelInvalid is an error for an unknown log level
	ErrLogLevelInvalid = errors.New("Invalid log level")
)

// S3Config holds the settings of the S3 storage backend
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"accessKeyId"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	Prefix          string `yaml:"prefix"`
}

// Config is an application configuration
type Config struct {
	AppEnv              string
	WebURL              string
	DisableRegistration bool
	Port                string
	DBPath              string
	DatabaseURL         string
	UploadDir           string
	StorageBackend      string
	S3                  S3Config
	MaxUploadSize       int64
	SessionLifetime     time.Duration
	LogLevel            string
}

// Params are the configuration parameters for creating a new Config
type Params struct {
	AppEnv              string
	Port                string
	WebURL              string
	DBPath              string
	DatabaseURL         string
	UploadDir           string
	StorageBackend      string
	DisableRegistration bool
	LogLevel            string
	// ConfigPath is an optional path to a YAML config file
	ConfigPath string
}

// fileConfig is the shape of the YAML config file
type fileConfig struct {
	AppEnv              string   `yaml:"appEnv"`
	Port                string   `yaml:"port"`
	WebURL              string   `yaml:"webUrl"`
	DBPath              string   `yaml:"dbPath"`
	DatabaseURL         string   `yaml:"databaseUrl"`
	UploadDir           string   `yaml:"uploadDir"`
	StorageBackend      string   `yaml:"storageBackend"`
	DisableRegistration bool     `yaml:"disableRegistration"`
	LogLevel            string   `yaml:"logLevel"`
	MaxUploadSize       string   `yaml:"maxUploadSize"`
	SessionLifetime     string   `yaml:"sessionLifetime"`
	S3                  S3Config `yaml:"s3"`
}

// LoadEnvFile loads environment variables from the given dotenv file without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return errors.Wrapf(err, "loading env file %s", path)
	}

	return nil
}

func readFile(path string) (fileConfig, error) {
	var ret fileConfig

	optional := path == ""
	if optional {
		path = DefaultConfigPath
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return ret, nil
		}

		return ret, errors.Wrap(err, "reading config file")
	}

	if err := yaml.Unmarshal(b, &ret); err != nil {
		return ret, errors.Wrap(err, "unmarshalling config")
	}

	return ret, nil
}

func readBoolEnv(name string) bool {
	return os.Getenv(name) == "true"
}

// resolve returns the first non-empty of value and fileValue, then the env var,
// then the default
func resolve(value, fileValue, envKey, defaultVal string) string {
	if value != "" {
		return value
	}
	if fileValue != "" {
		return fileValue
	}
	if env := os.Getenv(envKey); env != "" {
		return env
	}
	return defaultVal
}

// New constructs and returns a new validated config.
// Empty string params will fall back to the config file, environment variables and defaults.
func New(p Params) (Config, error) {
	f, err := readFile(p.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	c := Config{
		AppEnv:              resolve(p.AppEnv, f.AppEnv, "APP_ENV", AppEnvProduction),
		Port:                resolve(p.Port, f.Port, "PORT", "3001"),
		WebURL:              resolve(p.WebURL, f.WebURL, "WebURL", "http://localhost:3001"),
		DBPath:              resolve(p.DBPath, f.DBPath, "DBPath", DefaultDBPath),
		DatabaseURL:         resolve(p.DatabaseURL, f.DatabaseURL, "DATABASE_URL", ""),
		UploadDir:           resolve(p.UploadDir, f.UploadDir, "UPLOAD_DIR", DefaultUploadDir),
		StorageBackend:      resolve(p.StorageBackend, f.StorageBackend, "STORAGE_BACKEND", StorageFilesystem),
		DisableRegistration: p.DisableRegistration || f.DisableRegistration || readBoolEnv("DisableRegistration"),
		S3: S3Config{
			Bucket:          resolve("", f.S3.Bucket, "S3_BUCKET", ""),
			Region:          resolve("", f.S3.Region, "S3_REGION", "us-east-1"),
			Endpoint:        resolve("", f.S3.Endpoint, "S3_ENDPOINT", ""),
			AccessKeyID:     resolve("", f.S3.AccessKeyID, "S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: resolve("", f.S3.SecretAccessKey, "S3_SECRET_ACCESS_KEY", ""),
			Prefix:          resolve("", f.S3.Prefix, "S3_PREFIX", ""),
		},
	}

	level, err := log.ParseLevel(resolve(p.LogLevel, f.LogLevel, "LOG_LEVEL", log.LevelInfo))
	if err != nil {
		return Config{}, errors.Wrap(ErrLogLevelInvalid, err.Error())
	}
	c.LogLevel = level

	size, err := parseSize(resolve("", f.MaxUploadSize, "MAX_UPLOAD_SIZE", ""))
	if err != nil {
		return Config{}, err
	}
	c.MaxUploadSize = size

	lifetime, err := parseLifetime(resolve("", f.SessionLifetime, "SESSION_LIFETIME", ""))
	if err != nil {
		return Config{}, err
	}
	c.SessionLifetime = lifetime

	// A sqlite DATABASE_URL such as sqlite:///diary.db points at a file.
	if path, ok := strings.CutPrefix(c.DatabaseURL, "sqlite:///"); ok {
		c.DBPath = path
		c.DatabaseURL = ""
	}

	if err := validate(c); err != nil {
		return Config{}, err
	}

	return c, nil
}

// parseSize parses a byte count. Empty input yields the default.
func parseSize(s string) (int64, error) {
	if s == "" {
		return DefaultMaxUploadSize, nil
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrUploadSizeInvalid, "'%s'", s)
	}

	return n, nil
}

// parseLifetime parses a duration such as "24h" or a number of seconds.
// Empty input yields the default.
func parseLifetime(s string) (time.Duration, error) {
	if s == "" {
		return DefaultSessionLifetime, nil
	}

	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.Wrapf(ErrSessionLifetimeInvalid, "'%s'", s)
	}

	return d, nil
}

// IsProd checks if the app environment is configured to be production.
func (c Config) IsProd() bool {
	return c.AppEnv == AppEnvProduction
}

// DBDriver returns the name of the database driver the configuration selects
func (c Config) DBDriver() string {
	if strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://") {
		return DriverPostgres
	}

	return DriverSqlite
}

// DSN returns the data source name for the selected database driver
func (c Config) DSN() string {
	if c.DBDriver() == DriverPostgres {
		return c.DatabaseURL
	}

	return c.DBPath
}

func validate(c Config) error {
	if _, err := url.ParseRequestURI(c.WebURL); err != nil {
		return errors.Wrapf(ErrWebURLInvalid, "'%s'", c.WebURL)
	}
	if c.Port == "" {
		return ErrPortInvalid
	}
	if c.DBDriver() == DriverSqlite && c.DBPath == "" {
		return ErrDBMissingPath
	}

	switch c.StorageBackend {
	case StorageFilesystem:
	case StorageS3:
		if c.S3.Bucket == "" {
			return ErrS3BucketMissing
		}
	default:
		return errors.Wrapf(ErrStorageBackendInvalid, "'%s'", c.StorageBackend)
	}

	if c.MaxUploadSize <= 0 {
		return ErrUploadSizeInvalid
	}
	if c.SessionLifetime <= 0 {
		return ErrSessionLifetimeInvalid
	}

	return nil
}
