// Package services contains the server-side business logic. This file
// implements UserService: registration, profile management, login, and
// resolving a bearer token to the current user.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jbarakanov/videohost/internal/common"
	"github.com/jbarakanov/videohost/internal/dbx"
	"github.com/jbarakanov/videohost/internal/logging"
	"github.com/jbarakanov/videohost/internal/server/auth"
	"github.com/jbarakanov/videohost/internal/server/blob"
	"github.com/jbarakanov/videohost/internal/server/cache"
	"github.com/jbarakanov/videohost/internal/server/config"
	"github.com/jbarakanov/videohost/internal/server/models"
	"github.com/jbarakanov/videohost/internal/server/notify"
	sharedb "github.com/jbarakanov/videohost/internal/server/shared/db"
)

// UserService is the user directory plus the authentication entry points:
//   - Register / Update / Delete: user lifecycle with uniqueness checks
//   - Authenticate / Login: credential verification and token issuance
//   - ResolveFromToken: bearer token to user record
//   - ListPaged: cached listing
type UserService struct {
	db                    *sql.DB
	repos                 sharedb.RepositoryManager
	pages                 cache.UserPages
	blobs                 blob.Store
	dispatcher            notify.Dispatcher
	logger                logging.Logger
	jwtSecret             []byte
	tokenValidityDuration time.Duration
	cacheTTL              time.Duration
}

// NewUserService constructs a UserService from repositories, the listing
// cache, the blob store, the notification dispatcher, and server config.
func NewUserService(db *sql.DB, repos sharedb.RepositoryManager, pages cache.UserPages,
	blobs blob.Store, dispatcher notify.Dispatcher, logger logging.Logger, cfg *config.Config) *UserService {
	return &UserService{
		db:                    db,
		repos:                 repos,
		pages:                 pages,
		blobs:                 blobs,
		dispatcher:            dispatcher,
		logger:                logger.With("module", "user_service"),
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
		cacheTTL:              cfg.UserListCacheTTL,
	}
}

// Register creates a new user. Email is checked before username, so a
// request conflicting on both reports the email. The database unique
// constraints remain the authoritative guard; a concurrent registration
// that slips past these lookups still comes back as the matching
// taken-error from the insert.
func (s *UserService) Register(ctx context.Context, email, username, password string) (*models.User, error) {
	repo := s.repos.Users(s.db)

	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return nil, common.ErrEmailTaken
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("error checking email: %w", err)
	}

	if _, err := repo.GetByUsername(ctx, username); err == nil {
		return nil, common.ErrUsernameTaken
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("error checking username: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, common.ErrInternal
	}

	user, err := repo.Create(ctx, &models.User{Email: email, Username: username, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrEmailTaken) || errors.Is(err, common.ErrUsernameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.dispatcher.Dispatch(ctx, notify.Message{
		Recipient: user.Email,
		Subject:   "USER CREATED",
		Body:      "Successfully created",
	})

	return user, nil
}

// Update re-validates username and email uniqueness against other users
// (self-matches allowed) and applies email, username, and phone number in
// one transaction.
func (s *UserService) Update(ctx context.Context, userID int64, email, username, phone string) (*models.User, error) {
	var updated *models.User

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Users(tx)

		if other, err := repo.GetByUsername(ctx, username); err == nil {
			if other.ID != userID {
				return common.ErrUsernameTaken
			}
		} else if !errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("error checking username: %w", err)
		}

		if other, err := repo.GetByEmail(ctx, email); err == nil {
			if other.ID != userID {
				return common.ErrEmailTaken
			}
		} else if !errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("error checking email: %w", err)
		}

		var err error
		updated, err = repo.Update(ctx, &models.User{ID: userID, Email: email, Username: username, PhoneNumber: phone})
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete removes the user. Owned video rows go with the account (the
// schema cascades the foreign key); their media objects are removed
// best-effort afterwards, and a failed object delete is only logged.
func (s *UserService) Delete(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.repos.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Snapshot the owned media refs and remove the row in one
	// transaction, so the refs match exactly what the cascade removed.
	var owned []*models.Video
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		owned, err = s.repos.Videos(tx).ListByOwner(ctx, userID)
		if err != nil {
			return fmt.Errorf("error listing owned videos: %w", err)
		}
		return s.repos.Users(tx).Delete(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	for _, v := range owned {
		if err := s.blobs.Delete(ctx, v.MediaRef); err != nil {
			s.logger.Error(ctx, "media object delete failed", "ref", v.MediaRef, "error", err.Error())
		}
	}

	return user, nil
}

func (s *UserService) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repos.Users(s.db).GetByID(ctx, id)
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repos.Users(s.db).GetByEmail(ctx, email)
}

func (s *UserService) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.repos.Users(s.db).GetByUsername(ctx, username)
}

// Authenticate verifies a username/password pair. It fails closed: an
// unknown username and a wrong password both return ErrUnauthorized, so
// callers cannot enumerate accounts through behavior.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repos.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, common.ErrInternal
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, common.ErrUnauthorized
	}

	return user, nil
}

// Login authenticates and mints a bearer token whose subject is the
// username.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}

	token, err := auth.IssueToken(user.Username, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return "", common.ErrInternal
	}

	return token, nil
}

// ResolveFromToken validates the bearer token and maps its subject to a
// user record. A failed validation yields ErrUnauthenticated; a valid
// token whose subject no longer exists yields ErrUserGone.
func (s *UserService) ResolveFromToken(ctx context.Context, token string) (*models.User, error) {
	subject, err := auth.ValidateToken(token, s.jwtSecret)
	if err != nil {
		return nil, common.ErrUnauthenticated
	}

	user, err := s.repos.Users(s.db).GetByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUserGone
		}
		return nil, common.ErrInternal
	}

	return user, nil
}

// ListPaged returns one page of the user listing through the read-through
// cache. A cache outage degrades to a direct store read; mutations do not
// invalidate entries, so a page may be stale for up to the TTL.
func (s *UserService) ListPaged(ctx context.Context, offset, limit int) ([]*models.User, error) {
	key := cache.UserPageKey(offset, limit)

	page, hit, err := s.pages.GetUserPage(ctx, key)
	if err != nil {
		s.logger.Warn(ctx, "cache read failed, falling back to store", "error", err.Error())
	} else if hit {
		return page, nil
	}

	page, err = s.repos.Users(s.db).List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	if err := s.pages.PutUserPage(ctx, key, page, s.cacheTTL); err != nil {
		s.logger.Warn(ctx, "cache write failed", "error", err.Error())
	}

	return page, nil
}
