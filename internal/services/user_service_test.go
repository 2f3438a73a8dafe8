package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"laas-calculator/internal/models"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

// fakeUserRepository mirrors the Postgres repository, bcrypt hashing
// included, on top of a map.
type fakeUserRepository struct {
	users map[string]*models.User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]*models.User)}
}

func (f *fakeUserRepository) CreateUser(user *models.User) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(user.PasswordHash), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepository) GetUserByID(id string) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", models.ErrNotFound, id)
	}
	return user, nil
}

func (f *fakeUserRepository) GetUserByEmail(email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, fmt.Errorf("%w: user with email %s", models.ErrNotFound, email)
}

func (f *fakeUserRepository) GetUserByUsername(username string) (*models.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, fmt.Errorf("%w: user with username %s", models.ErrNotFound, username)
}

func (f *fakeUserRepository) GetAllUsers(limit, offset int) ([]*models.User, error) {
	var out []*models.User
	for _, user := range f.users {
		out = append(out, user)
	}
	return out, nil
}

func (f *fakeUserRepository) UpdateUser(user *models.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepository) DeleteUser(userID string) error {
	delete(f.users, userID)
	return nil
}

func (f *fakeUserRepository) SetResetPasswordToken(userID, tokenHash string, expires time.Time) error {
	user, ok := f.users[userID]
	if !ok {
		return fmt.Errorf("%w: user %s", models.ErrNotFound, userID)
	}
	user.ResetPasswordToken = &tokenHash
	user.ResetPasswordExpires = &expires
	return nil
}

func (f *fakeUserRepository) GetUserByResetPasswordToken(tokenHash string) (*models.User, error) {
	for _, user := range f.users {
		if user.ResetPasswordToken != nil && *user.ResetPasswordToken == tokenHash &&
			user.ResetPasswordExpires != nil && user.ResetPasswordExpires.After(time.Now()) {
			return user, nil
		}
	}
	return nil, fmt.Errorf("%w: no user for reset token", models.ErrNotFound)
}

func (f *fakeUserRepository) UpdatePassword(userID, password string) error {
	user, ok := f.users[userID]
	if !ok {
		return fmt.Errorf("%w: user %s", models.ErrNotFound, userID)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	user.ResetPasswordToken = nil
	user.ResetPasswordExpires = nil
	return nil
}

func (f *fakeUserRepository) CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// fakeSessionRepository keeps sessions in memory instead of Redis.
type fakeSessionRepository struct {
	sessions map[string]*models.UserSession
}

func newFakeSessionRepository() *fakeSessionRepository {
	return &fakeSessionRepository{sessions: make(map[string]*models.UserSession)}
}

func (f *fakeSessionRepository) CreateSession(ctx context.Context, session *models.UserSession) error {
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionRepository) GetSession(ctx context.Context, sessionID string) (*models.UserSession, error) {
	session, ok := f.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: session %s", models.ErrNotFound, sessionID)
	}
	return session, nil
}

func (f *fakeSessionRepository) DeleteSession(ctx context.Context, sessionID string) error {
	delete(f.sessions, sessionID)
	return nil
}

func (f *fakeSessionRepository) DeleteUserSessions(ctx context.Context, userID string) error {
	for id, session := range f.sessions {
		if session.UserID == userID {
			delete(f.sessions, id)
		}
	}
	return nil
}

func (f *fakeSessionRepository) GetUserSessions(ctx context.Context, userID string) ([]*models.UserSession, error) {
	var out []*models.UserSession
	for _, session := range f.sessions {
		if session.UserID == userID {
			out = append(out, session)
		}
	}
	return out, nil
}

func newUserService() (IUserService, *fakeUserRepository, *fakeSessionRepository) {
	userRepo := newFakeUserRepository()
	sessionRepo := newFakeSessionRepository()
	jwtService := NewJWTService("test-secret")
	sessionService := NewSessionService(sessionRepo)
	return NewUserService(userRepo, sessionService, jwtService), userRepo, sessionRepo
}

// ============================================================================
// TEST SUITE 1: REGISTRATION
// ============================================================================

func TestRegisterNewUser_Success(t *testing.T) {
	service, repo, _ := newUserService()

	user, err := service.RegisterNewUser("Alice", "alice", "alice@example.com", "password123", models.RoleUser)

	assert.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "password123", repo.users[user.ID].PasswordHash, "Passwords are never stored in the clear")
}

func TestRegisterNewUser_DuplicateEmail(t *testing.T) {
	service, _, _ := newUserService()
	_, err := service.RegisterNewUser("Alice", "alice", "alice@example.com", "password123", models.RoleUser)
	assert.NoError(t, err)

	_, err = service.RegisterNewUser("Other", "other", "alice@example.com", "password123", models.RoleUser)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "email already registered")
}

func TestRegisterNewUser_DuplicateUsername(t *testing.T) {
	service, _, _ := newUserService()
	_, err := service.RegisterNewUser("Alice", "alice", "alice@example.com", "password123", models.RoleUser)
	assert.NoError(t, err)

	_, err = service.RegisterNewUser("Other", "alice", "other@example.com", "password123", models.RoleUser)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "username already taken")
}

func TestRegisterNewUser_ShortPassword(t *testing.T) {
	service, _, _ := newUserService()

	_, err := service.RegisterNewUser("Alice", "alice", "alice@example.com", "short", models.RoleUser)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "at least 8 characters")
}

func TestRegisterNewUser_InvalidEmail(t *testing.T) {
	service, _, _ := newUserService()

	_, err := service.RegisterNewUser("Alice", "alice", "not-an-email", "password123", models.RoleUser)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid email")
}

// ============================================================================
// TEST SUITE 2: LOGIN AND SESSIONS
// ============================================================================

func TestLogin_ByUsernameAndByEmail(t *testing.T) {
	service, _, _ := newUserService()
	_, err := service.RegisterNewUser("Alice", "alice", "alice@example.com", "password123", models.RoleUser)
	assert.NoError(t, err)

	user, session, err := service.Login("alice", "password123", nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEmpty(t, session.TokenHash)
	assert.True(t, session.IsActive)

	user, _, err = service.Login("alice@example.com", "password123", nil, nil)
	assert.NoError(t, err, "The email doubles as a login identifier")
	assert.Equal(t, "alice", user.Username)
}

func TestLogin_WrongPassword(t *testing.T) {
	service, _, _ := newUserService()
	_, err := service.RegisterNewUser("Alice", "alice", "alice@example.com", "password123", models.RoleUser)
	assert.NoError(t, err)

	_, _, err = service.Login("alice", "wrong-password", nil, nil)

	assert.Error(t, err)
}

func TestLogin_UnknownUser(t *testing.T) {
	service, _, _ := newUserService()

	_, _, err := service.Login("nobody", "password123", nil, nil)

	assert.Error(t, err)
}

func TestLogin_TokenCarriesIdentity(t *testing.T) {
	service, _, _ := newUserService()
	registered, err := service.RegisterNewUser("Alice", "alice", "alice@example.com", "password123", models.RoleAdmin)
	assert.NoError(t, err)

	_, session, err := service.Login("alice", "password123", nil, nil)
	assert.NoError(t, err)

	claims, err := NewJWTService("test-secret").VerifyToken(session.TokenHash)
	assert.NoError(t, err)
	assert.Equal(t, registered.ID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestLogout_InvalidatesAllSessions(t *testing.T) {
	service, _, sessionRepo := newUserService()
	registered, err := service.RegisterNewUser("Alice", "alice", "alice@example.com", "password123", models.RoleUser)
	assert.NoError(t, err)
	_, _, err = service.Login("alice", "password123", nil, nil)
	assert.NoError(t, err)
	_, _, err = service.Login("alice", "password123", nil, nil)
	assert.NoError(t, err)
	assert.Len(t, sessionRepo.sessions, 2)

	err = service.Logout(context.Background(), registered.ID)

	assert.NoError(t, err)
	assert.Empty(t, sessionRepo.sessions)
}

// ============================================================================
// TEST SUITE 3: PASSWORD RESET
// ============================================================================

func TestForgotPassword_IssuesHashedToken(t *testing.T) {
	service, repo, _ := newUserService()
	registered, err := service.RegisterNewUser("Alice", "alice", "alice@example.com", "password123", models.RoleUser)
	assert.NoError(t, err)

	token, err := service.ForgotPassword("alice@example.com")

	assert.NoError(t, err)
	assert.Len(t, token, 40)

	stored := repo.users[registered.ID]
	assert.NotNil(t, stored.ResetPasswordToken)
	assert.NotEqual(t, token, *stored.ResetPasswordToken, "Only the token hash is persisted")
	assert.NotNil(t, stored.ResetPasswordExpires)
	assert.True(t, stored.ResetPasswordExpires.After(time.Now()))
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	service, _, _ := newUserService()

	_, err := service.ForgotPassword("nobody@example.com")

	assert.Error(t, err)
}

func TestResetPassword_SetsNewPasswordAndInvalidatesSessions(t *testing.T) {
	service, _, sessionRepo := newUserService()
	_, err := service.RegisterNewUser("Alice", "alice", "alice@example.com", "password123", models.RoleUser)
	assert.NoError(t, err)
	_, _, err = service.Login("alice", "password123", nil, nil)
	assert.NoError(t, err)

	token, err := service.ForgotPassword("alice@example.com")
	assert.NoError(t, err)

	err = service.ResetPassword(context.Background(), token, "new-password-456")
	assert.NoError(t, err)
	assert.Empty(t, sessionRepo.sessions, "Open sessions do not survive a password reset")

	_, _, err = service.Login("alice", "password123", nil, nil)
	assert.Error(t, err, "The old password no longer works")
	_, _, err = service.Login("alice", "new-password-456", nil, nil)
	assert.NoError(t, err)
}

func TestResetPassword_TokenIsSingleUse(t *testing.T) {
	service, _, _ := newUserService()
	_, err := service.RegisterNewUser("Alice", "alice", "alice@example.com", "password123", models.RoleUser)
	assert.NoError(t, err)
	token, err := service.ForgotPassword("alice@example.com")
	assert.NoError(t, err)

	err = service.ResetPassword(context.Background(), token, "new-password-456")
	assert.NoError(t, err)

	err = service.ResetPassword(context.Background(), token, "another-password")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid or expired")
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	service, repo, _ := newUserService()
	registered, err := service.RegisterNewUser("Alice", "alice", "alice@example.com", "password123", models.RoleUser)
	assert.NoError(t, err)
	token, err := service.ForgotPassword("alice@example.com")
	assert.NoError(t, err)

	past := time.Now().Add(-time.Minute)
	repo.users[registered.ID].ResetPasswordExpires = &past

	err = service.ResetPassword(context.Background(), token, "new-password-456")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid or expired")
}

func TestResetPassword_ShortPassword(t *testing.T) {
	service, _, _ := newUserService()
	_, err := service.RegisterNewUser("Alice", "alice", "alice@example.com", "password123", models.RoleUser)
	assert.NoError(t, err)
	token, err := service.ForgotPassword("alice@example.com")
	assert.NoError(t, err)

	err = service.ResetPassword(context.Background(), token, "short")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "at least 8 characters")
}

// ============================================================================
// TEST SUITE 4: DEFAULT ADMIN
// ============================================================================

func TestInitDefaultAdmin_CreatesOnce(t *testing.T) {
	service, repo, _ := newUserService()

	err := service.InitDefaultAdmin("admin@example.com", "admin-password")
	assert.NoError(t, err)
	assert.Len(t, repo.users, 1)

	err = service.InitDefaultAdmin("admin@example.com", "admin-password")
	assert.NoError(t, err, "A second startup finds the admin and does nothing")
	assert.Len(t, repo.users, 1)
}

func TestInitDefaultAdmin_RequiresPassword(t *testing.T) {
	service, _, _ := newUserService()

	err := service.InitDefaultAdmin("admin@example.com", "")

	assert.Error(t, err)
}
