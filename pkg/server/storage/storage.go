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

// Package storage provides stores for uploaded files
package storage

import (
	"io"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrNotExist is returned when the named file is not in the store
	ErrNotExist = errors.New("file does not exist")
	// ErrInvalidName is returned for names that are empty or could escape the store root
	ErrInvalidName = errors.New("invalid file name")
)

// Store reads and writes files by name under a single root
type Store interface {
	// Put writes data under the given name, replacing any existing file
	Put(name string, data []byte) error
	// Open returns a reader for the named file. The caller must close it.
	Open(name string) (io.ReadCloser, error)
	// Delete removes the named file. It returns ErrNotExist if there is no such file.
	Delete(name string) error
	// Exists reports whether the named file is in the store
	Exists(name string) (bool, error)
}

// checkName rejects names that are not a single path element
func checkName(name string) error {
	if name == "" || name == "." || name == ".." {
		return errors.Wrapf(ErrInvalidName, "'%s'", name)
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return errors.Wrapf(ErrInvalidName, "'%s'", name)
	}

	return nil
}
