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
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// FileSystemStore stores files in a directory on the local disk
type FileSystemStore struct {
	root string
}

// NewFileSystemStore creates the root directory if needed and returns a store for it
func NewFileSystemStore(root string) (*FileSystemStore, error) {
	if root == "" {
		return nil, errors.New("root cannot be empty")
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating storage directory at %s", root)
	}

	return &FileSystemStore{root: root}, nil
}

// Root returns the directory the store writes to
func (s *FileSystemStore) Root() string {
	return s.root
}

func (s *FileSystemStore) path(name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}

	return filepath.Join(s.root, name), nil
}

// Put writes the file atomically by renaming a temporary file into place
func (s *FileSystemStore) Put(name string, data []byte) error {
	destPath, err := s.path(name)
	if err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return errors.Wrap(err, "writing data")
	}
	if err := tmpFile.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return errors.Wrap(err, "renaming temp file")
	}

	success = true
	return nil
}

// Open opens the named file
func (s *FileSystemStore) Open(name string) (io.ReadCloser, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotExist, "'%s'", name)
		}
		return nil, errors.Wrap(err, "opening file")
	}

	return f, nil
}

// Delete removes the named file
func (s *FileSystemStore) Delete(name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}

	if err := os.Remove(p); err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(ErrNotExist, "'%s'", name)
		}
		return errors.Wrap(err, "removing file")
	}

	return nil
}

// Exists reports whether the named file exists
func (s *FileSystemStore) Exists(name string) (bool, error) {
	p, err := s.path(name)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(p); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "checking file")
	}

	return true, nil
}
