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

package storage

import (
	"context"
	"path"
	"path/filepath"

	"github.com/dnote/diary/pkg/server/config"
	"github.com/pkg/errors"
)

const (
	// AreaEntries is the area holding images attached to diary entries
	AreaEntries = "entries"
	// AreaProfiles is the area holding profile images
	AreaProfiles = "profiles"
)

// Stores groups the stores the server writes uploads to
type Stores struct {
	Entries  Store
	Profiles Store
}

// New creates the store for the given area from the configuration
func New(ctx context.Context, c config.Config, area string) (Store, error) {
	switch c.StorageBackend {
	case config.StorageFilesystem, "":
		if c.UploadDir == "" {
			return nil, errors.New("filesystem storage requires an upload directory")
		}
		return NewFileSystemStore(filepath.Join(c.UploadDir, area))
	case config.StorageS3:
		return NewS3Store(ctx, S3Params{
			Bucket:          c.S3.Bucket,
			Region:          c.S3.Region,
			Endpoint:        c.S3.Endpoint,
			AccessKeyID:     c.S3.AccessKeyID,
			SecretAccessKey: c.S3.SecretAccessKey,
			Prefix:          path.Join(c.S3.Prefix, area),
		})
	default:
		return nil, errors.Errorf("unknown storage backend: %s", c.StorageBackend)
	}
}

// NewStores creates the entry image store and the profile image store
func NewStores(ctx context.Context, c config.Config) (Stores, error) {
	entries, err := New(ctx, c, AreaEntries)
	if err != nil {
		return Stores{}, errors.Wrap(err, "creating entry image store")
	}

	profiles, err := New(ctx, c, AreaProfiles)
	if err != nil {
		return Stores{}, errors.Wrap(err, "creating profile image store")
	}

	return Stores{
		Entries:  entries,
		Profiles: profiles,
	}, nil
}

// NewMemoryStores returns in-memory stores for both areas
func NewMemoryStores() Stores {
	return Stores{
		Entries:  NewMemoryStore(),
		Profiles: NewMemoryStore(),
	}
}
