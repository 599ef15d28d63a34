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

const (
	// MoodHappy is a mood label for a happy day
	MoodHappy = "happy"
	// MoodSad is a mood label for a sad day
	MoodSad = "sad"
	// MoodNeutral is a mood label for an uneventful day
	MoodNeutral = "neutral"
	// MoodExcited is a mood label for an exciting day
	MoodExcited = "excited"
	// MoodAngry is a mood label for a frustrating day
	MoodAngry = "angry"
)

// Moods is the list of mood labels an entry may carry, in display order
var Moods = []string{MoodHappy, MoodSad, MoodNeutral, MoodExcited, MoodAngry}

// IsMood reports whether s is one of the known mood labels
func IsMood(s string) bool {
	for _, m := range Moods {
		if m == s {
			return true
		}
	}

	return false
}

const (
	// DefaultProfileImage is the profile image reference of users who never uploaded one
	DefaultProfileImage = "default.jpg"
	// DefaultLanguage is the language code of new users
	DefaultLanguage = "en"
)
