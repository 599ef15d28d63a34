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

package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dnote/diary/pkg/server/buildinfo"
	"github.com/dnote/diary/pkg/server/controllers"
	"github.com/dnote/diary/pkg/server/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// shutdownTimeout is how long in-flight requests may take once the server
// is asked to stop
const shutdownTimeout = 10 * time.Second

var startExample = `
  diary-server start --port 3001 --webUrl https://diary.example.com
  diary-server start --databaseUrl postgres://diary@localhost/diary --storageBackend s3`

func newStartCmd(g *globalFlags) *cobra.Command {
	var port, webURL, appEnv string
	var disableRegistration bool

	cmd := &cobra.Command{
		Use:     "start",
		Short:   "Start the server",
		Example: startExample,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := g.params()
			p.Port = port
			p.WebURL = webURL
			p.AppEnv = appEnv
			p.DisableRegistration = disableRegistration

			a, cfg, cleanup, err := setupApp(cmd.Context(), p)
			if err != nil {
				return err
			}
			defer cleanup()

			ctl := controllers.New(a)
			rc := controllers.RouteConfig{
				APIRoutes:   controllers.NewAPIRoutes(a, ctl),
				Routes:      controllers.NewRoutes(a, ctl),
				Controllers: ctl,
			}

			r, err := controllers.NewRouter(a, rc)
			if err != nil {
				return errors.Wrap(err, "initializing router")
			}

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%s", cfg.Port),
				Handler:           r,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()

			log.WithFields(log.Fields{
				"version": buildinfo.Version,
				"port":    cfg.Port,
				"env":     cfg.AppEnv,
			}).Info("Diary server starting")

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return errors.Wrap(err, "serving")
				}
				return nil
			case <-ctx.Done():
			}

			log.Info("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return errors.Wrap(err, "shutting down")
			}

			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&port, "port", "", "Server port (env: PORT, default: 3001)")
	f.StringVar(&webURL, "webUrl", "", "Full URL to server without trailing slash (env: WebURL, default: http://localhost:3001)")
	f.StringVar(&appEnv, "appEnv", "", "Application environment (env: APP_ENV, default: PRODUCTION)")
	f.BoolVar(&disableRegistration, "disableRegistration", false, "Disable user registration (env: DisableRegistration, default: false)")

	return cmd
}
