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

package tags

import (
	"strings"
	"testing"

	"github.com/dnote/diary/pkg/assert"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"Travel", "travel"},
		{"#travel", "travel"},
		{"  #Food ", "food"},
		{"##double", "#double"},
		{"# spaced", "spaced"},
		{"#", ""},
		{"   ", ""},
		{"CafÉ", "café"},
		{strings.Repeat("a", 60), strings.Repeat("a", 50)},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, Normalize(tc.input), tc.expected, "result mismatch")
		})
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		input    string
		expected []string
	}{
		{"Travel, #food, travel", []string{"travel", "food"}},
		{"", []string{}},
		{" , ,#, ", []string{}},
		{"work,Work,#WORK,life", []string{"work", "life"}},
		{"b, a, c", []string{"b", "a", "c"}},
		{"single", []string{"single"}},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.DeepEqual(t, Parse(tc.input), tc.expected, "result mismatch")
		})
	}
}

func TestParseIdempotent(t *testing.T) {
	first := Parse("Travel, #food, travel")
	second := Parse(Join(first))

	assert.DeepEqual(t, second, first, "reparsing should not change the names")
}
