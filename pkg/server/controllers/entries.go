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
	"net/http"

	"github.com/dnote/diary/pkg/server/app"
	"github.com/dnote/diary/pkg/server/presenters"
)

// imagesField is the multipart field that carries entry images
const imagesField = "images"

// NewEntries creates a new Entries controller
func NewEntries(app *app.App) *Entries {
	return &Entries{apiBase{app: app}}
}

// Entries is a controller for diary entries and their images
type Entries struct {
	apiBase
}

// EntryForm is the payload for creating and editing an entry
type EntryForm struct {
	Title   string `schema:"title" json:"title"`
	Content string `schema:"content" json:"content"`
	Mood    string `schema:"mood" json:"mood"`
	Date    string `schema:"date" json:"date"`
	Tags    string `schema:"tags" json:"tags"`
}

func (f EntryForm) params() app.EntryParams {
	return app.EntryParams{
		Title:   f.Title,
		Content: f.Content,
		Mood:    f.Mood,
		Date:    f.Date,
		Tags:    f.Tags,
	}
}

// Index handles GET /api/entries
func (c *Entries) Index(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		handleJSONError(w, err, "getting user")
		return
	}

	q := r.URL.Query()
	filter := app.EntryFilter{
		Query: q.Get("q"),
		Mood:  q.Get("mood"),
		Tag:   q.Get("tag"),
	}

	entries, err := c.app.ListEntries(*user, filter)
	if err != nil {
		handleJSONError(w, err, "listing entries")
		return
	}

	respondJSON(w, http.StatusOK, presenters.PresentEntries(entries))
}

// Create handles POST /api/entries
func (c *Entries) Create(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		handleJSONError(w, err, "getting user")
		return
	}

	var form EntryForm
	uploads, err := c.parseBody(w, r, &form, imagesField)
	if err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	entry, err := c.app.CreateEntry(*user, form.params(), uploads)
	if err != nil {
		handleJSONError(w, err, "creating entry")
		return
	}

	respondJSON(w, http.StatusCreated, presenters.PresentEntry(entry))
}

// Show handles GET /api/entries/{id}
func (c *Entries) Show(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		handleJSONError(w, err, "getting user")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		handleJSONError(w, err, "parsing entry id")
		return
	}

	entry, err := c.app.GetEntry(*user, id)
	if err != nil {
		handleJSONError(w, err, "getting entry")
		return
	}

	respondJSON(w, http.StatusOK, presenters.PresentEntry(entry))
}

// Update handles PATCH /api/entries/{id}. All fields are replaced and new
// images are attached.
func (c *Entries) Update(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		handleJSONError(w, err, "getting user")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		handleJSONError(w, err, "parsing entry id")
		return
	}

	var form EntryForm
	uploads, err := c.parseBody(w, r, &form, imagesField)
	if err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	entry, err := c.app.UpdateEntry(*user, id, form.params(), uploads)
	if err != nil {
		handleJSONError(w, err, "updating entry")
		return
	}

	respondJSON(w, http.StatusOK, presenters.PresentEntry(entry))
}

// Delete handles DELETE /api/entries/{id}
func (c *Entries) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		handleJSONError(w, err, "getting user")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		handleJSONError(w, err, "parsing entry id")
		return
	}

	if err := c.app.DeleteEntry(*user, id); err != nil {
		handleJSONError(w, err, "deleting entry")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateImages handles POST /api/entries/{id}/images. Files that are not
// images are skipped.
func (c *Entries) CreateImages(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		handleJSONError(w, err, "getting user")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		handleJSONError(w, err, "parsing entry id")
		return
	}

	if err := parseMultipart(w, r, c.app.MaxUploadSize); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}
	uploads, err := readUploads(r, imagesField)
	if err != nil {
		handleJSONError(w, err, "reading uploads")
		return
	}

	images, err := c.app.AttachImages(*user, id, uploads)
	if err != nil {
		handleJSONError(w, err, "attaching images")
		return
	}

	respondJSON(w, http.StatusCreated, presenters.PresentImages(images))
}

// ShowImage handles GET /api/entries/{id}/images/{imageID}
func (c *Entries) ShowImage(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		handleJSONError(w, err, "getting user")
		return
	}

	entryID, err := pathID(r, "id")
	if err != nil {
		handleJSONError(w, err, "parsing entry id")
		return
	}
	imageID, err := pathID(r, "imageID")
	if err != nil {
		handleJSONError(w, err, "parsing image id")
		return
	}

	image, rc, err := c.app.OpenEntryImage(*user, entryID, imageID)
	if err != nil {
		handleJSONError(w, err, "opening image")
		return
	}

	serveFile(w, rc, image.Filename)
}

// DeleteImage handles DELETE /api/entries/{id}/images/{imageID}
func (c *Entries) DeleteImage(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		handleJSONError(w, err, "getting user")
		return
	}

	entryID, err := pathID(r, "id")
	if err != nil {
		handleJSONError(w, err, "parsing entry id")
		return
	}
	imageID, err := pathID(r, "imageID")
	if err != nil {
		handleJSONError(w, err, "parsing image id")
		return
	}

	if err := c.app.DetachImage(*user, entryID, imageID); err != nil {
		handleJSONError(w, err, "detaching image")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
