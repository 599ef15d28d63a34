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
	"fmt"

	"github.com/dnote/diary/pkg/prompt"
	"github.com/dnote/diary/pkg/server/app"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// errAborted is returned when the user declines a confirmation
var errAborted = errors.New("aborted by user")

func newUserCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	cmd.AddCommand(
		newUserRemoveCmd(g),
		newUserResetPasswordCmd(g),
	)

	return cmd
}

func newUserRemoveCmd(g *globalFlags) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:     "remove",
		Short:   "Remove a user along with the entries, images and sessions of the user",
		Example: "  diary-server user remove --email alice@example.com",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			a, _, cleanup, err := setupApp(cmd.Context(), g.params())
			if err != nil {
				return err
			}
			defer cleanup()

			if _, err := a.GetUserByEmail(email); err != nil {
				if errors.Is(err, app.ErrNotFound) {
					printFailure(out, "user with email %s not found", email)
				}
				return errors.Wrap(err, "finding user")
			}

			question := fmt.Sprintf("Remove user %s and all of their entries?", email)
			ok, err := prompt.Confirm(cmd.InOrStdin(), out, question, false)
			if err != nil {
				return errors.Wrap(err, "getting confirmation")
			}
			if !ok {
				printFailure(out, "aborted")
				return errAborted
			}

			if err := a.RemoveUser(email); err != nil {
				return errors.Wrap(err, "removing user")
			}

			printSuccess(out, "removed user %s", email)

			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "User email address (required)")
	cmd.MarkFlagRequired("email")

	return cmd
}

func newUserResetPasswordCmd(g *globalFlags) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:     "reset-password",
		Short:   "Set a new password for a user and sign the user out everywhere",
		Example: "  diary-server user reset-password --email alice@example.com --password 'n3w-passw0rd'",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			a, _, cleanup, err := setupApp(cmd.Context(), g.params())
			if err != nil {
				return err
			}
			defer cleanup()

			user, err := a.GetUserByEmail(email)
			if err != nil {
				if errors.Is(err, app.ErrNotFound) {
					printFailure(out, "user with email %s not found", email)
				}
				return errors.Wrap(err, "finding user")
			}

			tx := a.DB.Begin()
			if err := app.UpdateUserPassword(tx, &user, password); err != nil {
				tx.Rollback()
				return errors.Wrap(err, "updating password")
			}
			if err := a.DeleteUserSessions(tx, user.ID); err != nil {
				tx.Rollback()
				return errors.Wrap(err, "deleting sessions")
			}
			if err := tx.Commit().Error; err != nil {
				return errors.Wrap(err, "committing transaction")
			}

			printSuccess(out, "password reset for %s", email)

			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&email, "email", "", "User email address (required)")
	f.StringVar(&password, "password", "", "New password (required)")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	return cmd
}
