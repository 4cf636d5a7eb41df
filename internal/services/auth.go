package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"time"

	"rentwheels-backend/internal/models"
	"rentwheels-backend/internal/repository"
	"rentwheels-backend/pkg/email"
	"rentwheels-backend/pkg/jwt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	userRepo     *repository.UserRepository
	jwtService   *jwt.JWTService
	emailService *email.EmailService
}

func NewAuthService(userRepo *repository.UserRepository, jwtService *jwt.JWTService) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
	}
}

// SetEmailService allows setting the email service for password reset mails
func (s *AuthService) SetEmailService(emailService *email.EmailService) {
	s.emailService = emailService
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

type AuthResponse struct {
	User         *models.AuthUser `json:"user"`
	AccessToken  string           `json:"accessToken"`
	RefreshToken string           `json:"refreshToken"`
}

func (s *AuthService) Register(req *RegisterRequest) (*AuthResponse, error) {
	if existing, _ := s.userRepo.FindByEmail(req.Email); existing != nil {
		return nil, errors.New("email is already registered")
	}
	if existing, _ := s.userRepo.FindByUsername(req.Username); existing != nil {
		return nil, errors.New("username is already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		ID:        primitive.NewObjectID(),
		Username:  req.Username,
		Email:     req.Email,
		Password:  string(hash),
		Role:      models.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.userRepo.Create(user)
	if err != nil {
		return nil, err
	}

	return s.issueTokens(created)
}

func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, errors.New("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid email or password")
	}

	if user.Blocked {
		return nil, errors.New("account is blocked")
	}

	if err := s.userRepo.UpdateLastLogin(user.ID.Hex()); err != nil {
		log.Printf("Failed to update last login for %s: %v", user.ID.Hex(), err)
	}

	return s.issueTokens(user)
}

func (s *AuthService) Refresh(req *RefreshRequest) (*AuthResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, errors.New("user not found")
	}

	if user.Blocked {
		return nil, errors.New("account is blocked")
	}

	return s.issueTokens(user)
}

func (s *AuthService) GetProfile(userID string) (*models.AuthUser, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	return user.ToAuthUser(), nil
}

// ForgotPassword issues a reset token. It deliberately reports success
// even when the email is unknown so the endpoint does not leak which
// addresses are registered.
func (s *AuthService) ForgotPassword(req *ForgotPasswordRequest) error {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil
	}

	token, err := generateResetToken()
	if err != nil {
		return err
	}

	// Only the digest is stored; the raw token goes out in the mail.
	expiry := time.Now().Add(1 * time.Hour)
	if err := s.userRepo.UpdatePasswordResetToken(user.Email, hashResetToken(token), expiry); err != nil {
		return err
	}

	if s.emailService != nil {
		if err := s.emailService.SendPasswordResetEmail(user.Email, token); err != nil {
			log.Printf("Failed to send password reset email to %s: %v", user.Email, err)
		}
	}

	return nil
}

func (s *AuthService) ResetPassword(req *ResetPasswordRequest) error {
	user, err := s.userRepo.FindByResetToken(hashResetToken(req.Token))
	if err != nil {
		return errors.New("invalid or expired reset token")
	}

	if user.PasswordResetExpiry == nil || time.Now().After(*user.PasswordResetExpiry) {
		return errors.New("invalid or expired reset token")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(user.ID.Hex(), string(hash)); err != nil {
		return err
	}

	return s.userRepo.ClearPasswordResetToken(user.ID.Hex())
}

func (s *AuthService) issueTokens(user *models.User) (*AuthResponse, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID.Hex())
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:         user.ToAuthUser(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// hashResetToken digests a reset token for storage. SHA-256 keeps the
// lookup by token deterministic, unlike a salted hash.
func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
