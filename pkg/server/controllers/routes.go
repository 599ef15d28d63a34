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
	"github.com/dnote/diary/pkg/server/assets"
	mw "github.com/dnote/diary/pkg/server/middleware"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

// Route represents a single route
type Route struct {
	Method    string
	Pattern   string
	Handler   http.HandlerFunc
	RateLimit bool
}

// RouteConfig is the configuration for routes
type RouteConfig struct {
	Controllers *Controllers
	APIRoutes   []Route
	// Routes are served outside of the /api prefix
	Routes []Route
}

// NewRoutes returns the routes outside of the API
func NewRoutes(a *app.App, c *Controllers) []Route {
	return []Route{
		{"GET", "/health", c.Health.Index, false},
	}
}

// NewAPIRoutes returns a new api routes
func NewAPIRoutes(a *app.App, c *Controllers) []Route {
	return []Route{
		{"POST", "/signup", mw.GuestOnly(a, c.Users.Create), true},
		{"POST", "/signin", c.Users.Login, true},
		{"POST", "/signout", c.Users.Logout, true},
		{"POST", "/forgot-password", c.Users.ForgotPassword, true},

		{"GET", "/account", mw.Auth(a, c.Account.Show), true},
		{"PATCH", "/account", mw.Auth(a, c.Account.Update), true},
		{"GET", "/account/profile-image", mw.Auth(a, c.Account.ProfileImage), true},
		{"PATCH", "/account/language", mw.Auth(a, c.Account.UpdateLanguage), true},
		{"PATCH", "/account/notifications", mw.Auth(a, c.Account.UpdateNotifications), true},
		{"PATCH", "/account/password", mw.Auth(a, c.Account.UpdatePassword), true},

		{"GET", "/entries", mw.Auth(a, c.Entries.Index), true},
		{"POST", "/entries", mw.Auth(a, c.Entries.Create), true},
		{"GET", "/entries/{id}", mw.Auth(a, c.Entries.Show), true},
		{"PATCH", "/entries/{id}", mw.Auth(a, c.Entries.Update), true},
		{"DELETE", "/entries/{id}", mw.Auth(a, c.Entries.Delete), true},
		{"POST", "/entries/{id}/images", mw.Auth(a, c.Entries.CreateImages), true},
		{"GET", "/entries/{id}/images/{imageID}", mw.Auth(a, c.Entries.ShowImage), false},
		{"DELETE", "/entries/{id}/images/{imageID}", mw.Auth(a, c.Entries.DeleteImage), true},

		{"GET", "/stats", mw.Auth(a, c.Stats.Dashboard), true},
		{"GET", "/calendar-entries", mw.Auth(a, c.Stats.CalendarEntries), true},
		{"GET", "/gallery", mw.Auth(a, c.Stats.Gallery), true},
		{"GET", "/tags", mw.Auth(a, c.Stats.Tags), true},
	}
}

func registerRoutes(router *mux.Router, wrapper mw.Middleware, app *app.App, routes []Route) {
	for _, route := range routes {
		wrappedHandler := wrapper(route.Handler, app, route.RateLimit)

		router.
			Handle(route.Pattern, wrappedHandler).
			Methods(route.Method)
	}
}

// NewRouter creates and returns a new router
func NewRouter(app *app.App, rc RouteConfig) (http.Handler, error) {
	if err := app.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating the app parameters")
	}

	router := mux.NewRouter().StrictSlash(true)

	apiRouter := router.PathPrefix("/api").Subrouter()
	registerRoutes(apiRouter, mw.APIMw, app, rc.APIRoutes)
	registerRoutes(router, mw.APIMw, app, rc.Routes)

	router.PathPrefix("/api/v1").Handler(mw.ApplyLimit(mw.NotSupported, true))
	router.PathPrefix("/api/v2").Handler(mw.ApplyLimit(mw.NotSupported, true))

	staticFS, err := assets.GetStaticFS()
	if err != nil {
		return nil, errors.Wrap(err, "getting static filesystem")
	}
	router.Handle("/robots.txt", http.FileServer(http.FS(staticFS))).Methods(http.MethodGet)

	// catch-all
	router.NotFoundHandler = http.HandlerFunc(mw.NotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mw.RespondError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed), nil)
	})

	return mw.Global(router), nil
}
