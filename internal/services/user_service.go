package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"laas-calculator/internal/models"
	"laas-calculator/internal/repository"

	"github.com/google/uuid"
)

type IUserService interface {
	RegisterNewUser(name, username, email, password string, role models.UserRole) (*models.User, error)
	Login(username, password string, deviceInfo, ipAddress *string) (*models.User, *models.UserSession, error)
	Logout(ctx context.Context, userID string) error
	ForgotPassword(email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
	GetUserByID(userID string) (*models.User, error)
	GetAllUsers(limit, offset int) ([]*models.User, error)
	InitDefaultAdmin(email, password string) error
}

type UserService struct {
	userRepo       repository.IUserRepository
	sessionService *SessionService
	jwtService     *JWTService
}

func NewUserService(userRepo repository.IUserRepository, sessionService *SessionService, jwtService *JWTService) IUserService {
	return &UserService{
		userRepo:       userRepo,
		sessionService: sessionService,
		jwtService:     jwtService,
	}
}

func (s *UserService) RegisterNewUser(name, username, email, password string, role models.UserRole) (*models.User, error) {
	if err := validateRegistration(username, email, password); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetUserByEmail(email); err == nil {
		return nil, fmt.Errorf("email already registered")
	}
	if _, err := s.userRepo.GetUserByUsername(username); err == nil {
		return nil, fmt.Errorf("username already taken")
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Name:         name,
		Username:     username,
		Email:        email,
		PasswordHash: password,
		Role:         role,
	}

	if err := s.userRepo.CreateUser(user); err != nil {
		return nil, fmt.Errorf("error creating new user: %w", err)
	}

	log.Printf("Registered new user %s (%s)", user.ID, user.Email)
	return user, nil
}

// Login authenticates by username or email, issues a JWT and opens a session.
func (s *UserService) Login(username, password string, deviceInfo, ipAddress *string) (*models.User, *models.UserSession, error) {
	user, err := s.userRepo.GetUserByUsername(username)
	if err != nil {
		// Support login with email as well
		user, err = s.userRepo.GetUserByEmail(username)
		if err != nil {
			return nil, nil, fmt.Errorf("username or password incorrect")
		}
	}

	if !s.userRepo.CheckPasswordHash(password, user.PasswordHash) {
		return nil, nil, fmt.Errorf("invalid password")
	}

	token, err := s.jwtService.GenerateNewToken(string(user.Role), user.Email, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate token: %w", err)
	}

	session, err := s.sessionService.CreateSession(context.Background(), user.ID, token, deviceInfo, ipAddress)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	return user, session, nil
}

func (s *UserService) Logout(ctx context.Context, userID string) error {
	return s.sessionService.InvalidateUserSessions(ctx, userID)
}

// ForgotPassword issues a single-use reset token valid for ten minutes. Only
// the SHA-256 hash is stored; the raw token is returned to the caller.
func (s *UserService) ForgotPassword(email string) (string, error) {
	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return "", fmt.Errorf("no user with that email: %w", err)
	}

	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	resetToken := hex.EncodeToString(raw)

	expires := time.Now().Add(10 * time.Minute)
	if err := s.userRepo.SetResetPasswordToken(user.ID, hashResetToken(resetToken), expires); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	log.Printf("Issued password reset token for user %s", user.ID)
	return resetToken, nil
}

// ResetPassword redeems a reset token, sets the new password and invalidates
// every open session of the user.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	user, err := s.userRepo.GetUserByResetPasswordToken(hashResetToken(token))
	if err != nil {
		return fmt.Errorf("invalid or expired reset token")
	}

	if err := s.userRepo.UpdatePassword(user.ID, newPassword); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.sessionService.InvalidateUserSessions(ctx, user.ID); err != nil {
		log.Printf("Failed to invalidate sessions after password reset for user %s: %v", user.ID, err)
	}

	log.Printf("Password reset completed for user %s", user.ID)
	return nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *UserService) GetUserByID(userID string) (*models.User, error) {
	return s.userRepo.GetUserByID(userID)
}

func (s *UserService) GetAllUsers(limit, offset int) ([]*models.User, error) {
	return s.userRepo.GetAllUsers(limit, offset)
}

// InitDefaultAdmin makes sure an admin account exists on startup.
func (s *UserService) InitDefaultAdmin(email, password string) error {
	if password == "" {
		return fmt.Errorf("admin password not configured")
	}

	if _, err := s.userRepo.GetUserByEmail(email); err == nil {
		return nil
	} else if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", err)
	}

	_, err := s.RegisterNewUser("Admin", "admin", email, password, models.RoleAdmin)
	return err
}

func validateRegistration(username, email, password string) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if email == "" || !strings.Contains(email, "@") || len(email) < 5 {
		return fmt.Errorf("invalid email format")
	}
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}
