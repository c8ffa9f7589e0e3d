package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/shlokapath/internal/client/config"
	"github.com/dmitrijs2005/shlokapath/internal/client/models"
	"github.com/dmitrijs2005/shlokapath/internal/client/session"
	"github.com/dmitrijs2005/shlokapath/internal/logging"
)

// fakeSession implements sessionService for App tests.
type fakeSession struct {
	mu    sync.Mutex
	state session.State
	subs  []func(session.State)

	HydrateErr  error
	LoginUser   *models.User
	LoginErr    error
	RegUser     *models.User
	RegErr      error
	LogoutErr   error
	RefreshRet  *models.User
	RefreshErr  error
	UpdateUser  *models.User
	UpdateErr   error
	PasswordErr error
	DeleteErr   error
	StatsRet    *models.StatsSnapshot
	StatsErr    error
	History     []models.ActivityRecord
	HistoryErr  error

	LastCreds    models.Credentials
	LastReg      models.Registration
	LastUpdate   models.ProfileUpdate
	LastPassword models.PasswordChange
	Deleted      bool
	LoggedOut    bool
	Closed       bool
}

func (f *fakeSession) Current() session.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := f.state
	st.User = st.User.Clone()
	return st
}

func (f *fakeSession) set(st session.State) {
	f.mu.Lock()
	f.state = st
	subs := append([]func(session.State){}, f.subs...)
	f.mu.Unlock()
	for _, fn := range subs {
		fn(st)
	}
}

func (f *fakeSession) Subscribe(fn func(session.State)) func() {
	f.mu.Lock()
	f.subs = append(f.subs, fn)
	f.mu.Unlock()
	return func() {}
}

func (f *fakeSession) Hydrate(ctx context.Context) error { return f.HydrateErr }

func (f *fakeSession) Login(ctx context.Context, creds models.Credentials) (*models.User, error) {
	f.LastCreds = models.Credentials{Email: creds.Email, Password: append([]byte(nil), creds.Password...)}
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	f.set(session.State{Status: session.StatusAuthenticated, User: f.LoginUser})
	return f.LoginUser, nil
}

func (f *fakeSession) Register(ctx context.Context, reg models.Registration) (*models.User, error) {
	f.LastReg = models.Registration{Name: reg.Name, Email: reg.Email, Password: append([]byte(nil), reg.Password...)}
	if f.RegErr != nil {
		return nil, f.RegErr
	}
	f.set(session.State{Status: session.StatusAuthenticated, User: f.RegUser})
	return f.RegUser, nil
}

func (f *fakeSession) Logout(ctx context.Context) error {
	f.LoggedOut = true
	f.set(session.State{Status: session.StatusUnauthenticated})
	return f.LogoutErr
}

func (f *fakeSession) RefreshUser(ctx context.Context) (*models.User, error) {
	return f.RefreshRet, f.RefreshErr
}

func (f *fakeSession) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error) {
	f.LastUpdate = upd
	return f.UpdateUser, f.UpdateErr
}

func (f *fakeSession) ChangePassword(ctx context.Context, pc models.PasswordChange) error {
	f.LastPassword = models.PasswordChange{
		Current: append([]byte(nil), pc.Current...),
		New:     append([]byte(nil), pc.New...),
		Confirm: append([]byte(nil), pc.Confirm...),
	}
	return f.PasswordErr
}

func (f *fakeSession) DeleteAccount(ctx context.Context) error {
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.Deleted = true
	f.set(session.State{Status: session.StatusUnauthenticated})
	return nil
}

func (f *fakeSession) Stats(ctx context.Context) (*models.StatsSnapshot, error) {
	return f.StatsRet, f.StatsErr
}

func (f *fakeSession) StreakHistory(ctx context.Context) ([]models.ActivityRecord, error) {
	return f.History, f.HistoryErr
}

func (f *fakeSession) Close() error {
	f.Closed = true
	return nil
}

type fakePinger struct {
	mu  sync.Mutex
	err error
}

func (p *fakePinger) Ping(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *fakePinger) setErr(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

var testNow = time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)

func meera() *models.User {
	return &models.User{
		ID:        "u7",
		Name:      "Meera",
		Email:     "meera@example.org",
		CreatedAt: time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC),
		Profile:   models.Profile{Bio: "Gita reader", Language: "hi"},
	}
}

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	return c
}

func newTestApp(t *testing.T, fs *fakeSession, input string) (*App, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	a := newApp(testConfig(), fs, &fakePinger{}, logging.Discard(), bufio.NewReader(strings.NewReader(input)), &out)
	a.now = func() time.Time { return testNow }
	return a, &out
}
