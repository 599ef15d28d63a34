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

// Package validation validates request payloads with struct tags and reports
// failures per field
package validation

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/dnote/diary/pkg/server/database"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/text/language"
)

// Error is a validation failure carrying a message for each invalid field
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", k, e.Fields[k]))
	}

	return strings.Join(parts, ", ")
}

// NewError returns an Error for a single field
func NewError(field, message string) *Error {
	return &Error{Fields: map[string]string{field: message}}
}

// Validator wraps go-playground/validator with the custom tags of the app
type Validator struct {
	v *validator.Validate
}

// New creates a validator. Field names in errors come from the schema or json
// tags so that they match what clients send.
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"schema", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}

		return fld.Name
	})

	// Errors are impossible here since the tag names are fixed and non-empty.
	_ = v.RegisterValidation("mood", func(fl validator.FieldLevel) bool {
		return database.IsMood(fl.Field().String())
	})
	_ = v.RegisterValidation("langtag", func(fl validator.FieldLevel) bool {
		_, err := language.Parse(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return &Validator{v: v}
}

// Validate validates a struct. It returns *Error for invalid fields.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}

	return nil
}

func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fields := make(map[string]string)
	for _, e := range validationErrs {
		if _, ok := fields[e.Field()]; ok {
			continue
		}
		fields[e.Field()] = friendlyMessage(e)
	}

	return &Error{Fields: fields}
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "alphanum":
		return "must contain only letters and numbers"
	case "eqfield":
		return "must match " + strings.ToLower(e.Param())
	case "oneof":
		return "must be one of: " + e.Param()
	case "mood":
		return "must be one of: " + strings.Join(database.Moods, " ")
	case "langtag":
		return "must be a valid language code"
	case "datetime":
		return "must be a date in the form " + e.Param()
	default:
		return "is invalid"
	}
}

// CanonicalLanguage returns the canonical form of a language code such as
// "EN-us" becoming "en-US"
func CanonicalLanguage(s string) (string, error) {
	tag, err := language.Parse(s)
	if err != nil {
		return "", errors.Wrapf(err, "parsing language '%s'", s)
	}

	return tag.String(), nil
}
