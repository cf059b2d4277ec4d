package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"time"

	emailService "github.com/jkowalczyk/FinanceTracker/internal/email"
	"github.com/jkowalczyk/FinanceTracker/internal/user"
	"golang.org/x/crypto/bcrypt"
)

const resetCodeDuration = 10 * time.Minute
const resetCodeResendTimeout = 2 * time.Minute

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInternalError       = errors.New("internal Server Error")
	ErrInvalidResetCode    = errors.New("invalid password reset code")
	ErrResetCodeExpired    = errors.New("password reset code expired")
	ErrTooManyCodeRequests = errors.New("too many password reset code requests")
)

type Service interface {
	Login(emailOrLogin, password string) (*user.User, string, string, error)
	RefreshAccessToken(userID string) (string, string, error)
	RequestPasswordReset(email string) error
	ResetPassword(email, code, newPassword string) error
	JWTRefreshTokenMiddleware() func(http.Handler) http.Handler
	JWTAccessTokenMiddleware() func(http.Handler) http.Handler
}

type service struct {
	userService  user.Service
	jwtManager   JWTManagerInterface
	emailService emailService.EmailSender
}

func NewAuthService(userService user.Service, jwtManager JWTManagerInterface, emailSender emailService.EmailSender) Service {
	return &service{
		userService:  userService,
		jwtManager:   jwtManager,
		emailService: emailSender,
	}
}

func GenerateResetCode() (string, error) {
	code := make([]byte, 6)
	_, err := rand.Read(code)
	if err != nil {
		return "", fmt.Errorf("could not generate reset code: %v", err)
	}
	for i := range code {
		code[i] = '0' + (code[i] % 10)
	}
	return string(code), nil
}

func (s *service) Login(emailOrLogin, password string) (*user.User, string, string, error) {
	existingUser, err := s.userService.GetUserByLoginOrEmail(emailOrLogin)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, "", "", ErrInvalidCredentials
		}
		return nil, "", "", ErrInternalError
	}

	if !doPasswordsMatch(existingUser.PasswordHash, password) {
		return nil, "", "", ErrInvalidCredentials
	}

	jwtToken, err := s.jwtManager.GenerateAccessJWT(existingUser.ID, defaultJWTDuration)
	if err != nil {
		return nil, "", "", ErrInternalError
	}
	refreshToken, err := s.jwtManager.GenerateRefreshJWT(existingUser.ID, existingUser.HashToken, defaultJWTRefreshDuration)
	if err != nil {
		return nil, "", "", ErrInternalError
	}

	return existingUser, jwtToken, refreshToken, nil
}

// RefreshAccessToken requests are already checked in refresh token middleware.
func (s *service) RefreshAccessToken(userID string) (string, string, error) {
	existingUser, err := s.userService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return "", "", ErrUserNotFound
		}
		return "", "", ErrInternalError
	}

	jwtToken, err := s.jwtManager.GenerateAccessJWT(userID, defaultJWTDuration)
	if err != nil {
		return "", "", ErrInternalError
	}
	newRefreshToken, err := s.jwtManager.GenerateRefreshJWT(userID, existingUser.HashToken, defaultJWTRefreshDuration)
	if err != nil {
		return "", "", ErrInternalError
	}

	return jwtToken, newRefreshToken, nil
}

func (s *service) RequestPasswordReset(email string) error {
	existingUser, err := s.userService.GetUserByLoginOrEmail(email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return ErrInternalError
	}

	_, _, createdAt, err := s.userService.GetPasswordResetCode(existingUser.ID)
	if err == nil && time.Now().UTC().Sub(createdAt.UTC()) < resetCodeResendTimeout {
		return ErrTooManyCodeRequests
	}

	newCode, err := GenerateResetCode()
	if err != nil {
		return ErrInternalError
	}

	expirationTime := time.Now().UTC().Add(resetCodeDuration)
	if err := s.userService.SavePasswordResetCode(existingUser.ID, newCode, expirationTime); err != nil {
		return ErrInternalError
	}

	s.emailService.QueueEmail(existingUser.Email, emailService.ResetPasswordData{
		UserName: existingUser.Login,
		Code:     newCode,
	})
	return nil
}

func (s *service) ResetPassword(email, code, newPassword string) error {
	existingUser, err := s.userService.GetUserByLoginOrEmail(email)
	if err != nil {
		return ErrUserNotFound
	}

	storedCode, expiresAt, _, err := s.userService.GetPasswordResetCode(existingUser.ID)
	if err != nil {
		if errors.Is(err, user.ErrNoResetCode) {
			return user.ErrNoResetCode
		}
		return ErrInternalError
	}
	if storedCode != code {
		return ErrInvalidResetCode
	}
	if time.Now().UTC().After(expiresAt) {
		return ErrResetCodeExpired
	}

	if err := s.userService.ResetPassword(existingUser.ID, newPassword); err != nil {
		if errors.Is(err, user.ErrWeakPassword) {
			return user.ErrWeakPassword
		}
		return ErrInternalError
	}

	_ = s.userService.DeletePasswordResetCode(existingUser.ID)
	return nil
}

func doPasswordsMatch(hashedPassword, currPassword string) bool {
	err := bcrypt.CompareHashAndPassword(
		[]byte(hashedPassword), []byte(currPassword))
	return err == nil
}
