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

// Package tags parses free-form tag input into normalized tag names
package tags

import (
	"strings"
	"unicode/utf8"
)

// MaxLength is the maximum number of characters in a tag name
const MaxLength = 50

// Normalize returns the canonical form of a tag name: trimmed, lowercased,
// without one leading '#' and at most MaxLength characters long. It returns an
// empty string for names that are blank after normalization.
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.TrimPrefix(s, "#")
	s = strings.TrimSpace(s)

	if utf8.RuneCountInString(s) > MaxLength {
		s = string([]rune(s)[:MaxLength])
		s = strings.TrimSpace(s)
	}

	return s
}

// Parse splits comma separated tag text into normalized, distinct names in the
// order they first appear
func Parse(text string) []string {
	seen := map[string]bool{}
	ret := []string{}

	for _, part := range strings.Split(text, ",") {
		name := Normalize(part)
		if name == "" || seen[name] {
			continue
		}

		seen[name] = true
		ret = append(ret, name)
	}

	return ret
}

// Join formats tag names back into the comma separated form Parse accepts
func Join(names []string) string {
	return strings.Join(names, ", ")
}
