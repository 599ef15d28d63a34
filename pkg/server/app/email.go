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

package app

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/dnote/diary/pkg/server/database"
	"github.com/dnote/diary/pkg/server/mailer"
	"github.com/pkg/errors"
)

// GetSenderEmail returns the noreply address on the domain of the web url
func GetSenderEmail(webURL string) (string, error) {
	addr, err := getNoreplySender(webURL)
	if err != nil {
		return "", errors.Wrap(err, "getting sender email address")
	}

	return addr, nil
}

func getDomainFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrap(err, "parsing url")
	}

	host := u.Hostname()
	parts := strings.Split(host, ".")
	if len(parts) < 2 {
		return host, nil
	}
	domain := parts[len(parts)-2] + "." + parts[len(parts)-1]

	return domain, nil
}

func getNoreplySender(webURL string) (string, error) {
	domain, err := getDomainFromURL(webURL)
	if err != nil {
		return "", errors.Wrap(err, "parsing web url")
	}

	addr := fmt.Sprintf("noreply@%s", domain)
	return addr, nil
}

// SendWelcomeEmail sends welcome email
func (a *App) SendWelcomeEmail(user database.User) error {
	from, err := GetSenderEmail(a.WebURL)
	if err != nil {
		return errors.Wrap(err, "getting the sender email")
	}

	data := mailer.WelcomeTmplData{
		Username:     user.Username,
		AccountEmail: user.Email,
		WebURL:       a.WebURL,
	}

	if err := a.EmailBackend.SendEmail(mailer.EmailTypeWelcome, from, []string{user.Email}, data); err != nil {
		return errors.Wrapf(err, "sending welcome email for user %d", user.ID)
	}

	return nil
}

// SendPasswordResetEmail hands the password reset instructions for the
// account with the given email to the email backend. It returns ErrNotFound
// if no account has the email.
func (a *App) SendPasswordResetEmail(email string) error {
	user, err := a.GetUserByEmail(strings.TrimSpace(email))
	if err != nil {
		return err
	}

	from, err := GetSenderEmail(a.WebURL)
	if err != nil {
		return errors.Wrap(err, "getting the sender email")
	}

	data := mailer.EmailResetPasswordTmplData{
		Username:     user.Username,
		AccountEmail: user.Email,
		WebURL:       a.WebURL,
	}

	if err := a.EmailBackend.SendEmail(mailer.EmailTypeResetPassword, from, []string{user.Email}, data); err != nil {
		return errors.Wrapf(err, "sending password reset email for user %d", user.ID)
	}

	return nil
}

// SendPasswordChangedEmail sends email that notifies users of a password change
func (a *App) SendPasswordChangedEmail(user database.User) error {
	from, err := GetSenderEmail(a.WebURL)
	if err != nil {
		return errors.Wrap(err, "getting the sender email")
	}

	data := mailer.EmailPasswordChangedTmplData{
		Username:     user.Username,
		AccountEmail: user.Email,
		WebURL:       a.WebURL,
	}

	if err := a.EmailBackend.SendEmail(mailer.EmailTypePasswordChanged, from, []string{user.Email}, data); err != nil {
		return errors.Wrapf(err, "sending password changed email for user %d", user.ID)
	}

	return nil
}
