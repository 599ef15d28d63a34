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

package imaging

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// AllowedExtensions are the file extensions accepted for uploaded images
var AllowedExtensions = []string{"png", "jpg", "jpeg", "gif"}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// asciiFold decomposes characters and drops everything outside ASCII,
// turning "café" into "cafe"
var asciiFold = transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
	return r > unicode.MaxASCII
})))

// Extension returns the lowercased extension of name without the dot, or an
// empty string if name has none
func Extension(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return ""
	}

	return strings.ToLower(name[idx+1:])
}

// AllowedExtension reports whether name has one of the allowed image
// extensions, ignoring case
func AllowedExtension(name string) bool {
	ext := Extension(name)
	if ext == "" {
		return false
	}

	for _, e := range AllowedExtensions {
		if e == ext {
			return true
		}
	}

	return false
}

// SecureFilename returns a version of name that is safe to use as a single
// path element. Non-ASCII characters are folded or dropped, path separators and
// whitespace become underscores, and leading or trailing dots and underscores
// are stripped. The result may be empty.
func SecureFilename(name string) string {
	folded, _, err := transform.String(asciiFold, name)
	if err != nil {
		folded = ""
	}

	folded = strings.NewReplacer("/", " ", "\\", " ").Replace(folded)
	folded = strings.Join(strings.Fields(folded), "_")
	folded = unsafeFilenameChars.ReplaceAllString(folded, "")

	return strings.Trim(folded, "._")
}

// TruncateFilename shortens name to at most n bytes while keeping its extension
func TruncateFilename(name string, n int) string {
	if len(name) <= n {
		return name
	}

	ext := filepath.Ext(name)
	if len(ext) >= n {
		return name[:n]
	}

	return name[:n-len(ext)] + ext
}
