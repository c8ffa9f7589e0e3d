package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/shlokapath/internal/client/models"
)

var errNotLoggedIn = errors.New("please log in first")

func (a *App) WhoAmI(ctx context.Context) error {
	st := a.session.Current()
	if st.User == nil {
		return errNotLoggedIn
	}
	a.printUser(st.User)
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	u, err := a.session.RefreshUser(ctx)
	if err != nil {
		return err
	}
	a.printUser(u)
	return nil
}

// EditProfile prompts for each editable field; an empty answer keeps the
// current value.
func (a *App) EditProfile(ctx context.Context) error {
	st := a.session.Current()
	if st.User == nil {
		return errNotLoggedIn
	}
	u := st.User

	upd := models.ProfileUpdate{Profile: u.Profile}
	fields := []struct {
		prompt string
		dst    *string
		cur    string
	}{
		{"Name", &upd.Name, u.Name},
		{"Email", &upd.Email, u.Email},
		{"Bio", &upd.Profile.Bio, u.Profile.Bio},
		{"Location", &upd.Profile.Location, u.Profile.Location},
		{"Preferred language", &upd.Profile.Language, u.Profile.Language},
	}
	for _, f := range fields {
		v, err := getTextWithDefault(a.reader, f.prompt, f.cur, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	updated, err := a.session.UpdateProfile(ctx, upd)
	if err != nil {
		return err
	}

	a.printf("Profile updated.\n")
	a.printUser(updated)
	return nil
}

func (a *App) printUser(u *models.User) {
	a.printf("%s <%s>\n", u.Name, u.Email)
	if !u.CreatedAt.IsZero() {
		a.printf("  member since %s\n", u.CreatedAt.Format("2 Jan 2006"))
	}
	for _, row := range [][2]string{
		{"bio", u.Profile.Bio},
		{"location", u.Profile.Location},
		{"language", u.Profile.Language},
	} {
		if row[1] != "" {
			a.printf("  %-9s %s\n", row[0]+":", row[1])
		}
	}
}
