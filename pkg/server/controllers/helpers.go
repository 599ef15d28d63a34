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

package controllers

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/dnote/diary/pkg/server/app"
	"github.com/dnote/diary/pkg/server/context"
	"github.com/dnote/diary/pkg/server/database"
	"github.com/dnote/diary/pkg/server/log"
	mw "github.com/dnote/diary/pkg/server/middleware"
	"github.com/dnote/diary/pkg/server/validation"
	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	"github.com/pkg/errors"
)

// multipartMemory is the part of a multipart body kept in memory before
// spilling to temporary files
const multipartMemory = 8 << 20

var (
	errRequestTooLarge = errors.New("request body too large")
	errInvalidID       = errors.New("invalid id")
)

var formDecoder = newFormDecoder()

func newFormDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)

	return d
}

// handleJSONError responds with the status code that matches the error. Errors
// that are not the client's fault are logged and hidden behind a generic message.
func handleJSONError(w http.ResponseWriter, err error, msg string) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		mw.RespondError(w, http.StatusBadRequest, "Invalid input", verr.Fields)
		return
	}

	cause := errors.Cause(err)

	switch cause {
	case app.ErrNotFound:
		mw.RespondError(w, http.StatusNotFound, cause.Error(), nil)
		return
	case app.ErrForbidden, app.ErrRegistrationDisabled:
		mw.RespondError(w, http.StatusForbidden, cause.Error(), nil)
		return
	case app.ErrLoginRequired, app.ErrLoginInvalid:
		mw.RespondError(w, http.StatusUnauthorized, cause.Error(), nil)
		return
	case errRequestTooLarge:
		mw.RespondError(w, http.StatusRequestEntityTooLarge, "Request is too large", nil)
		return
	case errInvalidID:
		mw.RespondError(w, http.StatusNotFound, app.ErrNotFound.Error(), nil)
		return
	}

	if app.IsValidationError(err) {
		mw.RespondError(w, http.StatusBadRequest, cause.Error(), nil)
		return
	}

	mw.DoError(w, msg, err, http.StatusInternalServerError)
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}

	return mediaType == "multipart/form-data"
}

func isForm(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}

	return mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data"
}

// parseRequestData decodes the body into dst. Form bodies are decoded with
// the schema tags and anything else is read as JSON.
func parseRequestData(r *http.Request, dst interface{}) error {
	if !isForm(r) {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return validation.NewError("body", "is not valid JSON")
		}

		return nil
	}

	if r.Form == nil {
		if err := r.ParseForm(); err != nil {
			return validation.NewError("body", "is malformed")
		}
	}

	if err := formDecoder.Decode(dst, r.PostForm); err != nil {
		return validation.NewError("body", "is malformed")
	}

	return nil
}

// parseMultipart reads a multipart body no larger than maxSize
func parseMultipart(w http.ResponseWriter, r *http.Request, maxSize int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errRequestTooLarge
		}

		return validation.NewError("body", "is malformed")
	}

	return nil
}

// readUploads reads the files submitted under the given field. Parts
// without a filename are skipped.
func readUploads(r *http.Request, field string) ([]app.Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	var ret []app.Upload
	for _, fh := range r.MultipartForm.File[field] {
		if fh.Filename == "" {
			continue
		}

		f, err := fh.Open()
		if err != nil {
			return nil, errors.Wrapf(err, "opening upload %s", fh.Filename)
		}

		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, errRequestTooLarge
			}

			return nil, errors.Wrapf(err, "reading upload %s", fh.Filename)
		}

		ret = append(ret, app.Upload{
			Filename: fh.Filename,
			Data:     data,
		})
	}

	return ret, nil
}

// parseBody decodes the request data into dst and, for multipart requests,
// returns the files submitted under fileField
func (a *apiBase) parseBody(w http.ResponseWriter, r *http.Request, dst interface{}, fileField string) ([]app.Upload, error) {
	var uploads []app.Upload

	if isMultipart(r) {
		if err := parseMultipart(w, r, a.app.MaxUploadSize); err != nil {
			return nil, err
		}

		var err error
		uploads, err = readUploads(r, fileField)
		if err != nil {
			return nil, err
		}
	}

	if err := parseRequestData(r, dst); err != nil {
		return nil, err
	}

	return uploads, nil
}

// apiBase holds what every JSON controller needs
type apiBase struct {
	app *app.App
}

func currentUser(r *http.Request) (*database.User, error) {
	user := context.User(r.Context())
	if user == nil {
		return nil, app.ErrLoginRequired
	}

	return user, nil
}

func pathID(r *http.Request, key string) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)[key])
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}

	return id, nil
}

func respondJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	mw.RespondJSON(w, statusCode, v)
}

func setSessionCookie(w http.ResponseWriter, key string, expires time.Time) {
	mw.SetSessionCookie(w, key, expires)
}

func unsetSessionCookie(w http.ResponseWriter) {
	mw.UnsetSessionCookie(w)
}

// serveFile streams a stored file. The content type is sniffed from the
// first bytes.
func serveFile(w http.ResponseWriter, rc io.ReadCloser, name string) {
	defer rc.Close()

	buf := make([]byte, 512)
	n, err := io.ReadFull(rc, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		mw.DoError(w, "reading file", err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(buf[:n]))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(buf[:n]); err != nil {
		log.WithFields(log.Fields{"file": name}).ErrorWrap(err, "writing file")
		return
	}
	if _, err := io.Copy(w, rc); err != nil {
		log.WithFields(log.Fields{"file": name}).ErrorWrap(err, "writing file")
	}
}
