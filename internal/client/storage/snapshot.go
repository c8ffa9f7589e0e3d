// Package storage owns the durable side of the session: the SQLite
// bootstrap and the single slot holding the last committed user snapshot.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/shlokapath/internal/client/models"
	"github.com/dmitrijs2005/shlokapath/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/shlokapath/internal/cryptox"
	"github.com/dmitrijs2005/shlokapath/internal/dbx"
)

const (
	SnapshotKey = "session"
	saltKey     = "session.salt"
)

var ErrSnapshotCorrupt = errors.New("stored session is unreadable")

// SnapshotStore persists the session snapshot. Load returns (nil, nil) when
// nothing is stored.
type SnapshotStore interface {
	Load(ctx context.Context) (*models.Snapshot, error)
	Save(ctx context.Context, snap models.Snapshot) error
	Clear(ctx context.Context) error
}

// SQLiteSnapshotStore keeps the snapshot in the metadata table. With a
// non-empty passphrase the blob is sealed with a key derived from it and a
// per-install salt stored alongside.
type SQLiteSnapshotStore struct {
	db         *sql.DB
	passphrase []byte
}

func NewSQLiteSnapshotStore(db *sql.DB, passphrase string) *SQLiteSnapshotStore {
	s := &SQLiteSnapshotStore{db: db}
	if passphrase != "" {
		s.passphrase = []byte(passphrase)
	}
	return s
}

func (s *SQLiteSnapshotStore) sealed() bool {
	return len(s.passphrase) > 0
}

func (s *SQLiteSnapshotStore) Load(ctx context.Context) (*models.Snapshot, error) {
	var (
		blob  []byte
		salt  []byte
		found bool
	)

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)

		var err error
		blob, found, err = repo.Get(ctx, SnapshotKey)
		if err != nil || !found || !s.sealed() {
			return err
		}
		salt, _, err = repo.Get(ctx, saltKey)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !found {
		return nil, nil
	}

	if s.sealed() {
		if len(salt) == 0 {
			return nil, ErrSnapshotCorrupt
		}
		blob, err = cryptox.Open(cryptox.DeriveKey(s.passphrase, salt), blob)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
		}
	}

	var snap models.Snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}
	if snap.User.ID == "" {
		return nil, fmt.Errorf("%w: missing user id", ErrSnapshotCorrupt)
	}
	return &snap, nil
}

func (s *SQLiteSnapshotStore) Save(ctx context.Context, snap models.Snapshot) error {
	blob, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)

		if s.sealed() {
			salt, found, err := repo.Get(ctx, saltKey)
			if err != nil {
				return err
			}
			if !found || len(salt) == 0 {
				salt = cryptox.NewSalt()
				if err := repo.Set(ctx, saltKey, salt); err != nil {
					return err
				}
			}
			blob, err = cryptox.Seal(cryptox.DeriveKey(s.passphrase, salt), blob)
			if err != nil {
				return err
			}
		}

		return repo.Set(ctx, SnapshotKey, blob)
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SQLiteSnapshotStore) Clear(ctx context.Context) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, SnapshotKey); err != nil {
			return err
		}
		return repo.Delete(ctx, saltKey)
	})
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
