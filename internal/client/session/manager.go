package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/shlokapath/internal/client/api"
	"github.com/dmitrijs2005/shlokapath/internal/client/models"
	"github.com/dmitrijs2005/shlokapath/internal/client/storage"
	"github.com/dmitrijs2005/shlokapath/internal/common"
	"github.com/dmitrijs2005/shlokapath/internal/logging"
)

const (
	defaultRevokeTimeout = 5 * time.Second
	queueSize            = 16
)

type Options struct {
	Logger logging.Logger

	// RevokeTimeout bounds the background revoke issued by Logout.
	RevokeTimeout time.Duration

	Now func() time.Time
}

type job struct {
	op     string
	ctx    context.Context
	fn     func(ctx context.Context) error
	result chan error
}

type Manager struct {
	client        api.Client
	store         storage.SnapshotStore
	log           logging.Logger
	now           func() time.Time
	revokeTimeout time.Duration

	state atomic.Pointer[State]

	// Owned by the worker goroutine.
	token      string
	generation uint64

	subsMu  sync.Mutex
	subs    map[uint64]func(State)
	nextSub uint64

	closeMu    sync.RWMutex
	closed     bool
	jobs       chan *job
	workerDone chan struct{}
	background sync.WaitGroup
}

// New starts a Manager in StatusUnknown. Call Hydrate to load the stored
// session and Close to release the worker.
func New(client api.Client, store storage.SnapshotStore, opts Options) *Manager {
	m := &Manager{
		client:        client,
		store:         store,
		log:           opts.Logger,
		now:           opts.Now,
		revokeTimeout: opts.RevokeTimeout,
		subs:          make(map[uint64]func(State)),
		jobs:          make(chan *job, queueSize),
		workerDone:    make(chan struct{}),
	}
	if m.log == nil {
		m.log = logging.Discard()
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.revokeTimeout <= 0 {
		m.revokeTimeout = defaultRevokeTimeout
	}
	m.state.Store(&State{Status: StatusUnknown})

	go m.run()
	return m
}

func (m *Manager) run() {
	defer close(m.workerDone)
	for j := range m.jobs {
		j.result <- j.fn(j.ctx)
	}
}

// submit queues fn on the worker and waits for it. If ctx ends first the
// caller gets ctx.Err() while fn keeps running on a detached context.
func (m *Manager) submit(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	j := &job{
		op:     op,
		ctx:    context.WithoutCancel(ctx),
		fn:     fn,
		result: make(chan error, 1),
	}
	if err := m.enqueue(ctx, j); err != nil {
		return err
	}

	select {
	case err := <-j.result:
		return err
	case <-ctx.Done():
		m.log.Debug(ctx, "caller stopped waiting", "op", op)
		return ctx.Err()
	}
}

func (m *Manager) enqueue(ctx context.Context, j *job) error {
	m.closeMu.RLock()
	defer m.closeMu.RUnlock()

	if m.closed {
		return ErrClosed
	}
	select {
	case m.jobs <- j:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting operations, lets queued ones finish and waits for
// background revokes. It is safe to call more than once.
func (m *Manager) Close() error {
	m.closeMu.Lock()
	if !m.closed {
		m.closed = true
		close(m.jobs)
	}
	m.closeMu.Unlock()

	<-m.workerDone
	m.background.Wait()
	return nil
}

// Current returns the latest committed state. It never blocks.
func (m *Manager) Current() State {
	return m.state.Load().clone()
}

// Subscribe registers fn to receive every committed state, in commit order,
// exactly once each. fn runs on the worker: it must return quickly and must
// not wait on another Manager operation. The returned func unregisters fn.
func (m *Manager) Subscribe(fn func(State)) (cancel func()) {
	m.subsMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.subsMu.Lock()
			delete(m.subs, id)
			m.subsMu.Unlock()
		})
	}
}

func (m *Manager) commit(ctx context.Context, st State) {
	stored := st.clone()
	m.state.Store(&stored)

	m.log.Info(ctx, "session committed", "status", st.Status, "error", st.LastError)

	m.subsMu.Lock()
	fns := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subsMu.Unlock()

	for _, fn := range fns {
		fn(stored.clone())
	}
}

func (m *Manager) current() *State {
	return m.state.Load()
}

// Hydrate loads the stored snapshot once, at startup. The stored user is
// trusted optimistically; RefreshUser confirms it against the server.
func (m *Manager) Hydrate(ctx context.Context) error {
	return m.submit(ctx, "hydrate", func(ctx context.Context) error {
		if m.current().Status != StatusUnknown {
			return nil
		}

		snap, err := m.store.Load(ctx)
		if err != nil {
			m.log.Warn(ctx, "stored session unusable", "error", err)
			if errors.Is(err, storage.ErrSnapshotCorrupt) {
				if cerr := m.store.Clear(ctx); cerr != nil {
					m.log.Warn(ctx, "clear stored session", "error", cerr)
				}
			}
			m.commit(ctx, State{Status: StatusUnauthenticated, LastError: err})
			return err
		}
		if snap == nil {
			m.commit(ctx, State{Status: StatusUnauthenticated})
			return nil
		}

		m.setToken(snap.Token)
		m.generation++
		user := snap.User
		m.commit(ctx, State{Status: StatusAuthenticated, User: &user, generation: m.generation})
		return nil
	})
}

func (m *Manager) Login(ctx context.Context, creds models.Credentials) (*models.User, error) {
	if err := validateCredentials(&creds); err != nil {
		return nil, err
	}
	creds.Password = bytes.Clone(creds.Password)
	return m.authenticate(ctx, "login", func(ctx context.Context) (*models.AuthResult, error) {
		defer common.WipeByteArray(creds.Password)
		return m.client.Login(ctx, creds)
	})
}

func (m *Manager) Register(ctx context.Context, reg models.Registration) (*models.User, error) {
	if err := validateRegistration(&reg); err != nil {
		return nil, err
	}
	reg.Password = bytes.Clone(reg.Password)
	return m.authenticate(ctx, "register", func(ctx context.Context) (*models.AuthResult, error) {
		defer common.WipeByteArray(reg.Password)
		return m.client.Register(ctx, reg)
	})
}

func (m *Manager) authenticate(ctx context.Context, op string, call func(ctx context.Context) (*models.AuthResult, error)) (*models.User, error) {
	var user *models.User

	err := m.submit(ctx, op, func(ctx context.Context) error {
		prev := *m.current()
		reauth := prev.Status == StatusAuthenticated
		if !reauth {
			m.commit(ctx, State{Status: StatusAuthenticating})
		}

		res, err := call(ctx)
		if err == nil && res == nil {
			err = emptyResponse(op)
		}
		if err != nil {
			if reauth {
				prev.LastError = err
				m.commit(ctx, prev)
				return err
			}
			if errors.Is(err, common.ErrInvalidCredentials) {
				if cerr := m.store.Clear(ctx); cerr != nil {
					m.log.Warn(ctx, "clear stored session", "error", cerr)
				}
			}
			m.commit(ctx, State{Status: StatusUnauthenticated, LastError: err})
			return err
		}

		snap := models.Snapshot{User: res.User, Token: res.Token, SavedAt: m.now()}
		if err := m.store.Save(ctx, snap); err != nil {
			m.log.Warn(ctx, "session not persisted", "op", op, "error", err)
		}

		m.setToken(res.Token)
		m.generation++
		u := res.User
		m.commit(ctx, State{Status: StatusAuthenticated, User: &u, generation: m.generation})
		user = u.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// RefreshUser fetches the current user from the server and replaces the
// session user. A failure leaves the session as it was, except for
// ErrUnauthorized which ends it.
func (m *Manager) RefreshUser(ctx context.Context) (*models.User, error) {
	var user *models.User

	err := m.submit(ctx, "refresh user", func(ctx context.Context) error {
		st := m.current()
		if !st.Authenticated() {
			return ErrNotAuthenticated
		}

		u, err := m.client.GetCurrentUser(ctx)
		if err == nil && u == nil {
			err = emptyResponse("refresh user")
		}
		if err != nil {
			return m.failed(ctx, err)
		}
		user = m.replaceUser(ctx, *st, *u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (m *Manager) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error) {
	if err := validateProfileUpdate(&upd); err != nil {
		return nil, err
	}

	var user *models.User
	err := m.submit(ctx, "update profile", func(ctx context.Context) error {
		st := m.current()
		if !st.Authenticated() {
			return ErrNotAuthenticated
		}

		u, err := m.client.UpdateProfile(ctx, upd)
		if err == nil && u == nil {
			err = emptyResponse("update profile")
		}
		if err != nil {
			return m.failed(ctx, err)
		}
		user = m.replaceUser(ctx, *st, *u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword never touches the session on success. The Manager works on
// its own copy of the passwords and wipes it afterwards, so the caller may
// wipe pc as soon as the call returns.
func (m *Manager) ChangePassword(ctx context.Context, pc models.PasswordChange) error {
	if err := validatePasswordChange(pc); err != nil {
		return err
	}
	current, next := bytes.Clone(pc.Current), bytes.Clone(pc.New)

	return m.submit(ctx, "change password", func(ctx context.Context) error {
		defer common.WipeByteArray(current)
		defer common.WipeByteArray(next)

		if !m.current().Authenticated() {
			return ErrNotAuthenticated
		}
		if err := m.client.ChangePassword(ctx, current, next); err != nil {
			return m.failed(ctx, err)
		}
		return nil
	})
}

// DeleteAccount removes the account on the server and ends the session.
func (m *Manager) DeleteAccount(ctx context.Context) error {
	return m.submit(ctx, "delete account", func(ctx context.Context) error {
		if !m.current().Authenticated() {
			return ErrNotAuthenticated
		}
		if err := m.client.DeleteAccount(ctx); err != nil {
			return m.failed(ctx, err)
		}
		return m.end(ctx, nil)
	})
}

// Logout ends the session locally, then revokes the old token in the
// background. The returned error only reports a failure to clear the store;
// the session is unauthenticated either way.
func (m *Manager) Logout(ctx context.Context) error {
	return m.submit(ctx, "logout", func(ctx context.Context) error {
		token := m.token
		err := m.end(ctx, nil)
		if token != "" {
			m.revoke(ctx, token)
		}
		return err
	})
}

func (m *Manager) revoke(ctx context.Context, token string) {
	m.background.Add(1)
	go func() {
		defer m.background.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.revokeTimeout)
		defer cancel()

		if err := m.client.Revoke(ctx, token); err != nil {
			m.log.Warn(ctx, "remote revoke failed", "error", err)
		}
	}()
}

// Stats reads the user's stats without changing the session, except that an
// unauthorized answer ends it.
func (m *Manager) Stats(ctx context.Context) (*models.StatsSnapshot, error) {
	st := m.current()
	if !st.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	s, err := m.client.GetUserStats(ctx)
	if err != nil {
		m.expireIfUnauthorized(ctx, st.generation, err)
		return nil, err
	}
	return s, nil
}

func (m *Manager) StreakHistory(ctx context.Context) ([]models.ActivityRecord, error) {
	st := m.current()
	if !st.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	recs, err := m.client.GetStreakHistory(ctx)
	if err != nil {
		m.expireIfUnauthorized(ctx, st.generation, err)
		return nil, err
	}
	return recs, nil
}

// expireIfUnauthorized forces a logout for a read that ran outside the
// worker, unless the session it ran under has already been replaced.
func (m *Manager) expireIfUnauthorized(ctx context.Context, generation uint64, cause error) {
	if !errors.Is(cause, common.ErrUnauthorized) {
		return
	}

	// The caller may already be gone; the logout must still be queued.
	err := m.submit(context.WithoutCancel(ctx), "forced logout", func(ctx context.Context) error {
		st := m.current()
		if !st.Authenticated() || st.generation != generation {
			m.log.Debug(ctx, "stale unauthorized answer ignored")
			return nil
		}
		return m.end(ctx, cause)
	})
	if err != nil {
		m.log.Warn(ctx, "forced logout not applied", "error", err)
	}
}

func emptyResponse(op string) error {
	return &common.Failure{Kind: common.ErrServer, Op: op, Message: "server returned no data"}
}

// failed handles an error from an API call made on the worker.
func (m *Manager) failed(ctx context.Context, err error) error {
	if errors.Is(err, common.ErrUnauthorized) {
		m.log.Info(ctx, "credential rejected, ending session")
		if cerr := m.end(ctx, err); cerr != nil {
			m.log.Warn(ctx, "clear stored session", "error", cerr)
		}
	}
	return err
}

// end clears the store and the token and commits unauthenticated. The
// transition happens even when clearing the store fails.
func (m *Manager) end(ctx context.Context, cause error) error {
	var err error
	if cerr := m.store.Clear(ctx); cerr != nil {
		err = fmt.Errorf("end session: %w", cerr)
	}
	m.setToken("")
	m.commit(ctx, State{Status: StatusUnauthenticated, LastError: cause})
	return err
}

func (m *Manager) replaceUser(ctx context.Context, st State, u models.User) *models.User {
	snap := models.Snapshot{User: u, Token: m.token, SavedAt: m.now()}
	if err := m.store.Save(ctx, snap); err != nil {
		m.log.Warn(ctx, "session not persisted", "error", err)
	}

	m.commit(ctx, State{Status: StatusAuthenticated, User: &u, generation: st.generation})
	return u.Clone()
}

func (m *Manager) setToken(token string) {
	m.token = token
	m.client.SetToken(token)
}
