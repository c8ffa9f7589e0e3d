package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/shlokapath/internal/client/api"
	"github.com/dmitrijs2005/shlokapath/internal/client/config"
	"github.com/dmitrijs2005/shlokapath/internal/client/models"
	"github.com/dmitrijs2005/shlokapath/internal/client/session"
	"github.com/dmitrijs2005/shlokapath/internal/client/storage"
	"github.com/dmitrijs2005/shlokapath/internal/common"
	"github.com/dmitrijs2005/shlokapath/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// sessionService is the part of *session.Manager the terminal client uses.
type sessionService interface {
	Current() session.State
	Subscribe(fn func(session.State)) func()
	Hydrate(ctx context.Context) error
	Login(ctx context.Context, creds models.Credentials) (*models.User, error)
	Register(ctx context.Context, reg models.Registration) (*models.User, error)
	Logout(ctx context.Context) error
	RefreshUser(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error)
	ChangePassword(ctx context.Context, pc models.PasswordChange) error
	DeleteAccount(ctx context.Context) error
	Stats(ctx context.Context) (*models.StatsSnapshot, error)
	StreakHistory(ctx context.Context) ([]models.ActivityRecord, error)
	Close() error
}

type pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	config  *config.Config
	session sessionService
	pinger  pinger
	log     logging.Logger
	db      *sql.DB
	now     func() time.Time

	reader *bufio.Reader

	outMu sync.Mutex
	out   io.Writer

	modeMu sync.RWMutex
	mode   Mode
}

func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	apiClient, err := api.NewHTTPClient(api.Options{
		BaseURL:  c.ServerURL,
		Timeout:  c.RequestTimeout,
		Attempts: c.RetryAttempts,
		Delay:    c.RetryDelay,
		Logger:   log,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	store := storage.NewSQLiteSnapshotStore(db, c.SnapshotPassphrase)
	mgr := session.New(apiClient, store, session.Options{Logger: log, RevokeTimeout: c.RevokeTimeout})

	a := newApp(c, mgr, apiClient, log, bufio.NewReader(os.Stdin), os.Stdout)
	a.db = db
	return a, nil
}

func newApp(c *config.Config, s sessionService, p pinger, log logging.Logger, r *bufio.Reader, w io.Writer) *App {
	a := &App{
		config:  c,
		session: s,
		pinger:  p,
		log:     log,
		now:     time.Now,
		reader:  r,
		out:     w,
	}
	s.Subscribe(a.onSessionChange)
	return a
}

func (a *App) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}

// onSessionChange reports transitions the user did not ask for.
func (a *App) onSessionChange(st session.State) {
	if st.Status == session.StatusUnauthenticated && errors.Is(st.LastError, common.ErrUnauthorized) {
		a.printf("\n%s\n", common.Message(st.LastError))
	}
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		a.log.Info(context.Background(), "connectivity changed", "mode", mode)
	}
}

func (a *App) Mode() Mode {
	a.modeMu.RLock()
	defer a.modeMu.RUnlock()
	return a.mode
}

func (a *App) isLoggedIn() bool {
	return a.session.Current().Authenticated()
}

func (a *App) getStatus() string {
	s := ""
	if st := a.session.Current(); st.User != nil {
		s = st.User.Email + " "
	}
	s += string(a.Mode())
	if s == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", s)
}

// Run restores the stored session, starts the connectivity watcher and
// serves the REPL until the user exits or ctx ends.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	if err := a.session.Hydrate(ctx); err != nil {
		a.printf("Stored session could not be restored, please log in again.\n")
	}

	if a.isLoggedIn() {
		a.printf("Welcome back, %s!\n", a.session.Current().User.Name)
		go a.refreshInBackground(ctx)
	}

	watchCtx, stop := context.WithCancel(ctx)
	defer stop()
	go a.StartOnlineStatusWatcher(watchCtx, a.config.OnlineCheckInterval)

	a.printf("Welcome to shlokapath (type 'help' for commands)\n")
	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

// refreshInBackground confirms a restored session against the server. An
// unauthorized answer ends the session; other failures keep it.
func (a *App) refreshInBackground(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()

	if _, err := a.session.RefreshUser(ctx); err != nil {
		a.log.Warn(ctx, "refresh restored session", "error", err)
	}
}

func (a *App) Close() {
	if err := a.session.Close(); err != nil {
		a.log.Warn(context.Background(), "close session", "error", err)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn(context.Background(), "close database", "error", err)
		}
	}
}

// StartOnlineStatusWatcher pings the server every interval and switches
// the displayed mode accordingly. It blocks until ctx ends.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, interval)
			err := a.pinger.Ping(pctx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
