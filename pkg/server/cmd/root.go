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

// Package cmd implements the command line interface of the diary server
package cmd

import (
	"github.com/dnote/diary/pkg/server/config"
	"github.com/spf13/cobra"
)

// globalFlags are the flags shared by every command
type globalFlags struct {
	configPath     string
	envFile        string
	dbPath         string
	databaseURL    string
	uploadDir      string
	storageBackend string
	logLevel       string
}

func (g *globalFlags) params() config.Params {
	return config.Params{
		ConfigPath:     g.configPath,
		DBPath:         g.dbPath,
		DatabaseURL:    g.databaseURL,
		UploadDir:      g.uploadDir,
		StorageBackend: g.storageBackend,
		LogLevel:       g.logLevel,
	}
}

// NewRootCmd returns the root command with all subcommands registered
func NewRootCmd() *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:           "diary-server",
		Short:         "Diary server - a personal diary with moods, tags and images",
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadEnvFile(g.envFile)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&g.configPath, "config", "", "Path to a YAML config file")
	f.StringVar(&g.envFile, "envFile", ".env", "Path to a dotenv file with environment variables")
	f.StringVar(&g.dbPath, "dbPath", "", "Path to SQLite database file (env: DBPath, default: $XDG_DATA_HOME/diary/server.db)")
	f.StringVar(&g.databaseURL, "databaseUrl", "", "Postgres connection URL. Takes precedence over dbPath (env: DATABASE_URL)")
	f.StringVar(&g.uploadDir, "uploadDir", "", "Directory for uploaded images (env: UPLOAD_DIR, default: $XDG_DATA_HOME/diary/uploads)")
	f.StringVar(&g.storageBackend, "storageBackend", "", "Storage backend for images: filesystem or s3 (env: STORAGE_BACKEND, default: filesystem)")
	f.StringVar(&g.logLevel, "logLevel", "", "Log level: debug, info, warn, or error (env: LOG_LEVEL, default: info)")

	root.AddCommand(
		newStartCmd(&g),
		newUserCmd(&g),
		newVersionCmd(),
	)

	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
