package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anonto42/reachout/backend/internal/models"
	"github.com/anonto42/reachout/backend/internal/repositories"
	"github.com/anonto42/reachout/backend/pkg/zlog"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// FirebaseIdentity is the subset of a verified Firebase ID token we use.
type FirebaseIdentity struct {
	UID   string
	Email string
	Name  string
}

// AccountService owns user registration and sign-in. Every new user gets
// its profile row in the same transaction.
type AccountService struct {
	db      *gorm.DB
	users   repositories.UserRepository
	profile repositories.UserProfileRepository
	timeout time.Duration
}

func NewAccountService(db *gorm.DB, users repositories.UserRepository, profiles repositories.UserProfileRepository, timeout time.Duration) *AccountService {
	return &AccountService{db: db, users: users, profile: profiles, timeout: timeout}
}

func (s *AccountService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Register creates a local account. Username and email are stored lower-cased.
func (s *AccountService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Username:  strings.ToLower(strings.TrimSpace(req.Username)),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hashed),
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		taken, err := users.ExistsByUsernameOrEmail(ctx, user.Username, user.Email)
		if err != nil {
			return storageErr("check user", "user", err)
		}
		if taken {
			return fmt.Errorf("username or email already registered: %w", ErrConflict)
		}
		return s.createWithProfile(ctx, tx, user)
	})
	if err != nil {
		return nil, storageErr("register user", "user", err)
	}
	return user, nil
}

func (s *AccountService) createWithProfile(ctx context.Context, tx *gorm.DB, user *models.User) error {
	if err := s.users.WithTx(tx).CreateUser(ctx, user); err != nil {
		return storageErr("create user", "user", err)
	}
	if err := s.profile.WithTx(tx).CreateProfile(ctx, &models.UserProfile{UserID: user.ID}); err != nil {
		return storageErr("create user profile", "user profile", err)
	}
	return nil
}

// SignIn checks a username/password pair.
func (s *AccountService) SignIn(ctx context.Context, req models.SignInRequest) (*models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.users.GetUserByUsername(ctx, strings.ToLower(strings.TrimSpace(req.Username)))
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, &StorageError{Op: "get user", Err: err}
	}
	if user.Password == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// FirebaseLogin finds the account for a verified Firebase identity, linking
// an existing account by email or creating a new one.
func (s *AccountService) FirebaseLogin(ctx context.Context, id FirebaseIdentity) (*models.User, error) {
	if id.UID == "" || id.Email == "" {
		return nil, validationErr("firebase token carries no uid or email")
	}
	email := strings.ToLower(id.Email)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var user *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)

		found, err := users.GetUserByFirebaseUID(ctx, id.UID)
		if err == nil {
			user = found
			if user.Email == email {
				return nil
			}
			user.Email = email
			return storageErr("update user", "user", users.UpdateUser(ctx, user))
		}
		if !isRecordNotFound(err) {
			return storageErr("get user", "user", err)
		}

		found, err = users.GetUserByEmail(ctx, email)
		if err == nil {
			user = found
			user.FirebaseUID = &id.UID
			zlog.Info("linking account to firebase", zap.Uint("user_id", user.ID))
			return storageErr("update user", "user", users.UpdateUser(ctx, user))
		}
		if !isRecordNotFound(err) {
			return storageErr("get user", "user", err)
		}

		username, err := s.freeUsername(ctx, users, email)
		if err != nil {
			return err
		}
		first, last, _ := strings.Cut(id.Name, " ")
		uid := id.UID
		user = &models.User{
			Username:    username,
			Email:       email,
			FirstName:   first,
			LastName:    last,
			FirebaseUID: &uid,
		}
		return s.createWithProfile(ctx, tx, user)
	})
	if err != nil {
		return nil, storageErr("firebase login", "user", err)
	}
	return user, nil
}

// freeUsername derives a username from the email's local part, adding a
// random suffix when it is taken.
func (s *AccountService) freeUsername(ctx context.Context, users repositories.UserRepository, email string) (string, error) {
	base, _, _ := strings.Cut(email, "@")
	if len(base) > 140 {
		base = base[:140]
	}
	candidate := base
	for i := 0; i < 5; i++ {
		_, err := users.GetUserByUsername(ctx, candidate)
		if isRecordNotFound(err) {
			return candidate, nil
		}
		if err != nil {
			return "", storageErr("get user", "user", err)
		}
		candidate = base + "_" + uuid.NewString()[:8]
	}
	return "", fmt.Errorf("no free username for %s: %w", email, ErrConflict)
}

// Profile is a user together with their profile row.
type Profile struct {
	User    *models.User        `json:"user"`
	Profile *models.UserProfile `json:"profile"`
}

func (s *AccountService) Profile(ctx context.Context, userID uint) (*Profile, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, storageErr("get user", fmt.Sprintf("user %d", userID), err)
	}
	profile, err := s.profile.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, storageErr("get user profile", fmt.Sprintf("profile of user %d", userID), err)
	}
	return &Profile{User: user, Profile: profile}, nil
}
