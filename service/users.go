package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kevinaaaquil/docshare/backend/auth"
	"github.com/kevinaaaquil/docshare/backend/metrics"
	"github.com/kevinaaaquil/docshare/backend/models"
	"github.com/rs/zerolog"
)

// UserService manages accounts and issues tokens on login.
type UserService struct {
	Users  UserStore
	Hasher PasswordHasher
	Tokens TokenIssuer

	Log zerolog.Logger
	Now func() time.Time

	absentOnce sync.Once
	absent     string
}

func (s *UserService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// NewUser is the input of registration and admin user creation.
type NewUser struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Roles     []string
}

// UserUpdate is a partial admin update. Nil fields are left unchanged.
type UserUpdate struct {
	Username  *string
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
	Roles     *[]string
	Active    *bool
}

// Register creates a self-service account. Requested roles are ignored:
// every registered account holds exactly USER.
func (s *UserService) Register(ctx context.Context, in NewUser) (*models.User, error) {
	return s.create(ctx, in, models.NewRoleSet(models.RoleUser))
}

// CreateUser is the admin path. Roles default to USER when none are given.
func (s *UserService) CreateUser(ctx context.Context, in NewUser) (*models.User, error) {
	roles := models.NewRoleSet(models.RoleUser)
	if len(in.Roles) > 0 {
		parsed, err := models.ParseRoleSet(in.Roles)
		if err != nil {
			return nil, err
		}
		roles = parsed
	}
	return s.create(ctx, in, roles)
}

func (s *UserService) create(ctx context.Context, in NewUser, roles models.RoleSet) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", models.ErrValidation)
	}
	if err := s.checkUnique(ctx, "", username, email); err != nil {
		return nil, err
	}
	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := s.now()
	u := &models.User{
		Username:  username,
		Email:     email,
		Password:  hash,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Roles:     roles,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := s.Users.CreateUser(ctx, u)
	if err != nil {
		return nil, err
	}
	u.ID = id
	s.Log.Info().Str("user_id", id.Hex()).Str("username", username).
		Strs("roles", roles.Strings()).Msg("user created")
	return u, nil
}

// checkUnique rejects a username or email already held by a user other than selfID.
func (s *UserService) checkUnique(ctx context.Context, selfID, username, email string) error {
	if username != "" {
		u, err := s.Users.UserByUsername(ctx, username)
		if err != nil {
			return err
		}
		if u != nil && u.ID.Hex() != selfID {
			return fmt.Errorf("%w: username is already taken", models.ErrConflict)
		}
	}
	if email != "" {
		u, err := s.Users.UserByEmail(ctx, email)
		if err != nil {
			return err
		}
		if u != nil && u.ID.Hex() != selfID {
			return fmt.Errorf("%w: email is already in use", models.ErrConflict)
		}
	}
	return nil
}

// Login verifies credentials given as username or email and issues a token.
// Unknown account, wrong password and disabled account are indistinguishable
// to the caller.
func (s *UserService) Login(ctx context.Context, login, password string) (string, *models.User, error) {
	login = strings.TrimSpace(login)
	u, err := s.Users.UserByLogin(ctx, login)
	if err == nil && u == nil && strings.Contains(login, "@") {
		u, err = s.Users.UserByLogin(ctx, strings.ToLower(login))
	}
	if err != nil {
		return "", nil, err
	}
	reason := ""
	switch {
	case u == nil:
		s.Hasher.Matches(password, s.absentHash())
		reason = "unknown user"
	case !s.Hasher.Matches(password, u.Password):
		reason = "wrong password"
	case !u.Active:
		reason = "account disabled"
	}
	if reason != "" {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		s.Log.Warn().Str("login", login).Str("reason", reason).Msg("login rejected")
		return "", nil, models.ErrInvalidCredentials
	}

	token, err := s.Tokens.Issue(auth.IdentityFor(u))
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.Log.Info().Str("user_id", u.ID.Hex()).Msg("user logged in")
	return token, u, nil
}

// absentHash is a hash at the configured cost, compared against when no
// account matches the login.
func (s *UserService) absentHash() string {
	s.absentOnce.Do(func() {
		if h, err := s.Hasher.Hash("no-such-account"); err == nil {
			s.absent = h
		}
	})
	return s.absent
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	u, err := s.Users.UserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: user", models.ErrNotFound)
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context, activeOnly bool) ([]models.User, error) {
	users, err := s.Users.ListUsers(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// Update applies an admin patch. Roles, when given, must be a non-empty set of
// known roles. The last active admin cannot be demoted or disabled.
func (s *UserService) Update(ctx context.Context, id string, in UserUpdate) (*models.User, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var patch models.UserPatch
	username, email := "", ""
	if in.Username != nil {
		username = strings.TrimSpace(*in.Username)
		if username == "" {
			return nil, fmt.Errorf("%w: username must not be blank", models.ErrValidation)
		}
		patch.Username = &username
	}
	if in.Email != nil {
		email = strings.ToLower(strings.TrimSpace(*in.Email))
		if email == "" {
			return nil, fmt.Errorf("%w: email must not be blank", models.ErrValidation)
		}
		patch.Email = &email
	}
	if err := s.checkUnique(ctx, id, username, email); err != nil {
		return nil, err
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := s.Hasher.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		patch.Password = &hash
	}
	patch.FirstName = trimmed(in.FirstName)
	patch.LastName = trimmed(in.LastName)
	if in.Roles != nil {
		roles, err := models.ParseRoleSet(*in.Roles)
		if err != nil {
			return nil, err
		}
		if !roles.Valid() {
			return nil, fmt.Errorf("%w: at least one role is required", models.ErrValidation)
		}
		patch.Roles = &roles
	}
	patch.Active = in.Active

	losesAdmin := current.Active && current.Roles.Has(models.RoleAdmin) &&
		((patch.Roles != nil && !patch.Roles.Has(models.RoleAdmin)) || (patch.Active != nil && !*patch.Active))
	if losesAdmin {
		if err := s.guardLastAdmin(ctx); err != nil {
			return nil, err
		}
	}
	if patch.Empty() {
		return current, nil
	}

	updated, err := s.Users.UpdateUser(ctx, id, patch, s.now())
	if err != nil {
		return nil, err
	}
	s.Log.Info().Str("user_id", id).Msg("user updated")
	return updated, nil
}

// Delete removes a user. Callers cannot delete themselves and the last
// active admin stays.
func (s *UserService) Delete(ctx context.Context, caller auth.Identity, id string) error {
	if caller.UserID == id {
		return fmt.Errorf("%w: you cannot delete your own account", models.ErrValidation)
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if u.Active && u.Roles.Has(models.RoleAdmin) {
		if err := s.guardLastAdmin(ctx); err != nil {
			return err
		}
	}
	ok, err := s.Users.DeleteUser(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: user", models.ErrNotFound)
	}
	s.Log.Info().Str("user_id", id).Str("deleted_by", caller.UserID).Msg("user deleted")
	return nil
}

func (s *UserService) guardLastAdmin(ctx context.Context) error {
	n, err := s.Users.CountActiveAdmins(ctx)
	if err != nil {
		return err
	}
	if n <= 1 {
		return fmt.Errorf("%w: cannot remove the last active admin", models.ErrValidation)
	}
	return nil
}

// EnsureAdmin creates the bootstrap admin when no user holds the username yet.
func (s *UserService) EnsureAdmin(ctx context.Context, username, email, password string) error {
	if username == "" || password == "" {
		return nil
	}
	existing, err := s.Users.UserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	_, err = s.create(ctx, NewUser{Username: username, Email: email, Password: password},
		models.NewRoleSet(models.RoleAdmin, models.RoleUser))
	return err
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
