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
	"bytes"
	"io"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// MemoryStore keeps files in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[string][]byte

	// PutErr, when set, is returned by Put without storing anything
	PutErr error
	// DeleteErr, when set, is returned by Delete without removing anything
	DeleteErr error
}

// NewMemoryStore returns an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		files: map[string][]byte{},
	}
}

// Put stores a copy of data
func (m *MemoryStore) Put(name string, data []byte) error {
	if err := checkName(name); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PutErr != nil {
		return m.PutErr
	}

	b := make([]byte, len(data))
	copy(b, data)
	m.files[name] = b

	return nil
}

// Open returns a reader over the stored bytes
func (m *MemoryStore) Open(name string) (io.ReadCloser, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.files[name]
	if !ok {
		return nil, errors.Wrapf(ErrNotExist, "'%s'", name)
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes the named file
func (m *MemoryStore) Delete(name string) error {
	if err := checkName(name); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DeleteErr != nil {
		return m.DeleteErr
	}

	if _, ok := m.files[name]; !ok {
		return errors.Wrapf(ErrNotExist, "'%s'", name)
	}
	delete(m.files, name)

	return nil
}

// Exists reports whether the named file is stored
func (m *MemoryStore) Exists(name string) (bool, error) {
	if err := checkName(name); err != nil {
		return false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.files[name]
	return ok, nil
}

// Names returns the sorted names of the stored files
func (m *MemoryStore) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ret := make([]string, 0, len(m.files))
	for name := range m.files {
		ret = append(ret, name)
	}
	sort.Strings(ret)

	return ret
}
