package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/shlokapath/internal/client/models"
	"github.com/dmitrijs2005/shlokapath/internal/common"
)

// Indirections over the interactive input helpers, swapped in tests.
var (
	getSimpleText      = GetSimpleText
	getTextWithDefault = GetTextWithDefault
	getPassword        = GetPassword
	confirm            = Confirm
)

func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter your name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Choose a password (at least 8 characters)")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.session.Register(ctx, models.Registration{Name: name, Email: email, Password: password})
	if err != nil {
		return err
	}

	a.printf("Welcome, %s! Your account is ready.\n", user.Name)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.session.Login(ctx, models.Credentials{Email: email, Password: password})
	if err != nil {
		return err
	}

	a.printf("Logged in as %s.\n", user.Name)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		a.log.Warn(ctx, "logout", "error", err)
	}
	a.printf("Logged out.\n")
	return nil
}

func (a *App) ChangePassword(ctx context.Context) error {
	current, err := getPassword(a.out, "Current password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(current)

	next, err := getPassword(a.out, "New password (at least 8 characters)")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(next)

	again, err := getPassword(a.out, "Repeat new password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(again)

	if err := a.session.ChangePassword(ctx, models.PasswordChange{Current: current, New: next, Confirm: again}); err != nil {
		return err
	}

	a.printf("Password changed.\n")
	return nil
}

// DeleteAccount asks twice: a yes/no question, then the account email typed
// back. Anything else leaves the account alone.
func (a *App) DeleteAccount(ctx context.Context) error {
	st := a.session.Current()
	if st.User == nil {
		return errNotLoggedIn
	}

	ok, err := confirm(a.reader, "This permanently deletes your account and reading history. Continue?", a.out)
	if err != nil {
		return err
	}
	if !ok {
		a.printf("Cancelled.\n")
		return nil
	}

	typed, err := getSimpleText(a.reader, fmt.Sprintf("Type %s to confirm", st.User.Email), a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(typed, st.User.Email) {
		a.printf("Email does not match. Cancelled.\n")
		return nil
	}

	if err := a.session.DeleteAccount(ctx); err != nil {
		return err
	}

	a.printf("Your account has been deleted.\n")
	return nil
}
