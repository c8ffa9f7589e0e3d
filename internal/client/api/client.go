package api

import (
	"context"

	"github.com/dmitrijs2005/shlokapath/internal/client/models"
)

type Client interface {
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error)
	Register(ctx context.Context, reg models.Registration) (*models.AuthResult, error)
	// Revoke invalidates token on the server. Used best-effort on logout.
	Revoke(ctx context.Context, token string) error
	GetCurrentUser(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error)
	ChangePassword(ctx context.Context, current, next []byte) error
	DeleteAccount(ctx context.Context) error
	GetUserStats(ctx context.Context) (*models.StatsSnapshot, error)
	GetStreakHistory(ctx context.Context) ([]models.ActivityRecord, error)
	Ping(ctx context.Context) error
	SetToken(token string)
}
