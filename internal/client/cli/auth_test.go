package cli

import (
	"context"
	"io"
	"testing"

	"github.com/dmitrijs2005/shlokapath/internal/client/models"
	"github.com/dmitrijs2005/shlokapath/internal/client/session"
	"github.com/dmitrijs2005/shlokapath/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPasswords makes getPassword return pws in order and records what was
// handed out so tests can check the slices were wiped.
func stubPasswords(t *testing.T, pws ...string) *[][]byte {
	t.Helper()
	var issued [][]byte
	orig := getPassword
	getPassword = func(_ io.Writer, _ string) ([]byte, error) {
		require.NotEmpty(t, pws, "unexpected password prompt")
		pw := []byte(pws[0])
		pws = pws[1:]
		issued = append(issued, pw)
		return pw, nil
	}
	t.Cleanup(func() { getPassword = orig })
	return &issued
}

func assertWiped(t *testing.T, issued [][]byte) {
	t.Helper()
	for _, pw := range issued {
		for _, b := range pw {
			require.Zero(t, b, "password not wiped")
		}
	}
}

func TestLogin_Success(t *testing.T) {
	fs := &fakeSession{LoginUser: meera()}
	a, out := newTestApp(t, fs, "meera@example.org\n")
	issued := stubPasswords(t, "open-sesame")

	require.NoError(t, a.Login(context.Background()))

	assert.Equal(t, "meera@example.org", fs.LastCreds.Email)
	assert.Equal(t, []byte("open-sesame"), fs.LastCreds.Password)
	assert.Contains(t, out.String(), "Logged in as Meera.")
	assert.True(t, a.isLoggedIn())
	assertWiped(t, *issued)
}

func TestLogin_Failure(t *testing.T) {
	fs := &fakeSession{LoginErr: &common.Failure{Kind: common.ErrInvalidCredentials, Op: "login"}}
	a, _ := newTestApp(t, fs, "meera@example.org\n")
	issued := stubPasswords(t, "wrong")

	err := a.Login(context.Background())
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
	assert.False(t, a.isLoggedIn())
	assertWiped(t, *issued)
}

func TestRegister_Success(t *testing.T) {
	fs := &fakeSession{RegUser: meera()}
	a, out := newTestApp(t, fs, "Meera\nmeera@example.org\n")
	stubPasswords(t, "long-password")

	require.NoError(t, a.Register(context.Background()))

	assert.Equal(t, "Meera", fs.LastReg.Name)
	assert.Equal(t, "meera@example.org", fs.LastReg.Email)
	assert.Equal(t, []byte("long-password"), fs.LastReg.Password)
	assert.Contains(t, out.String(), "Welcome, Meera!")
}

func TestLogout_AlwaysReportsLoggedOut(t *testing.T) {
	fs := &fakeSession{LogoutErr: assert.AnError}
	fs.state = session.State{Status: session.StatusAuthenticated, User: meera()}
	a, out := newTestApp(t, fs, "")

	require.NoError(t, a.Logout(context.Background()))
	assert.True(t, fs.LoggedOut)
	assert.Contains(t, out.String(), "Logged out.")
}

func TestChangePassword(t *testing.T) {
	fs := &fakeSession{}
	fs.state = session.State{Status: session.StatusAuthenticated, User: meera()}
	a, out := newTestApp(t, fs, "")
	issued := stubPasswords(t, "old-pass", "new-password", "new-password")

	require.NoError(t, a.ChangePassword(context.Background()))

	assert.Equal(t, models.PasswordChange{
		Current: []byte("old-pass"),
		New:     []byte("new-password"),
		Confirm: []byte("new-password"),
	}, fs.LastPassword)
	assert.Contains(t, out.String(), "Password changed.")
	assertWiped(t, *issued)
}

func TestChangePassword_ErrorReturned(t *testing.T) {
	fs := &fakeSession{PasswordErr: common.NewValidation("change password", "new password and confirmation do not match")}
	fs.state = session.State{Status: session.StatusAuthenticated, User: meera()}
	a, out := newTestApp(t, fs, "")
	stubPasswords(t, "old-pass", "new-password", "other-password")

	err := a.ChangePassword(context.Background())
	require.ErrorIs(t, err, common.ErrValidation)
	assert.NotContains(t, out.String(), "Password changed.")
}

func TestDeleteAccount(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantDeleted bool
		wantOut     string
	}{
		{name: "declined", input: "n\n", wantOut: "Cancelled."},
		{name: "wrong email", input: "y\nsomeone@example.org\n", wantOut: "Email does not match."},
		{name: "confirmed", input: "yes\nMEERA@example.org\n", wantDeleted: true, wantOut: "Your account has been deleted."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := &fakeSession{}
			fs.state = session.State{Status: session.StatusAuthenticated, User: meera()}
			a, out := newTestApp(t, fs, tt.input)

			require.NoError(t, a.DeleteAccount(context.Background()))
			assert.Equal(t, tt.wantDeleted, fs.Deleted)
			assert.Contains(t, out.String(), tt.wantOut)
		})
	}
}

func TestDeleteAccount_NotLoggedIn(t *testing.T) {
	a, _ := newTestApp(t, &fakeSession{}, "y\n")
	require.ErrorIs(t, a.DeleteAccount(context.Background()), errNotLoggedIn)
}
