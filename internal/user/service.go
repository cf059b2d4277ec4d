package user

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/badoux/checkmail"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxEmailLength = 255
	minEmailLength = 3
	maxLoginLength = 30
	minLoginLength = 5
	bcryptCost     = 12
)

var (
	ErrInvalidEmail       = fmt.Errorf("email address is not valid")
	ErrEmailLength        = fmt.Errorf("email address is too long or too short, max length: %d, min length: %d", maxEmailLength, minEmailLength)
	ErrLoginLength        = fmt.Errorf("login is too long or too short, max length: %d, min length: %d", maxLoginLength, minLoginLength)
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrLoginAlreadyExists = errors.New("login already exists")
	ErrInternalError      = errors.New("internal Server Error")
	ErrWeakPassword       = errors.New("password does not meet strength requirements")
	ErrInvalidOldPassword = errors.New("invalid old password")
	ErrInvalidPreferences = errors.New("invalid preferences")
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Login        string    `json:"login"`
	PasswordHash string    `json:"-"`
	HashToken    string    `json:"-"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Service interface {
	Register(email, login, password string) (*User, error)
	GetUserByID(userID string) (*User, error)
	GetUserByLoginOrEmail(loginOrEmail string) (*User, error)
	ChangePasswordWithOldPassword(userID, oldPassword, newPassword string) error
	ResetPassword(userID, newPassword string) error
	SavePasswordResetCode(userID, code string, expiresAt time.Time) error
	GetPasswordResetCode(userID string) (string, time.Time, time.Time, error)
	DeletePasswordResetCode(userID string) error
	GetPreferences(userID string) (*Preferences, error)
	UpdatePreferences(prefs *Preferences) error
	ListUsersWithBudgetAlerts() ([]User, error)
	ListUsersWithAutoBackup() ([]User, error)
	ListUsersWithMonthlyReports() ([]User, error)
}

type service struct {
	repo Repository
}

func NewUserService(repo Repository) Service {
	return &service{repo: repo}
}

func hashPassword(password string) (string, error) {
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(hashedPasswordBytes), err
}

func generateHashToken() (string, error) {
	token := make([]byte, 32)
	_, err := rand.Read(token)
	if err != nil {
		return "", fmt.Errorf("could not generate hash token: %v", err)
	}
	return hex.EncodeToString(token), nil
}

func validateEmailAddress(email string) error {
	if err := checkmail.ValidateFormat(email); err != nil {
		return ErrInvalidEmail
	}
	if len(email) > maxEmailLength || len(email) <= minEmailLength {
		return ErrEmailLength
	}
	return nil
}

func (s *service) Register(email, login, password string) (*User, error) {
	if err := validateEmailAddress(email); err != nil {
		return nil, err
	}

	if len(login) == 0 {
		parts := strings.Split(email, "@")
		if len(parts) < 2 {
			return nil, ErrInvalidEmail
		}
		login = parts[0]
	} else if len(login) > maxLoginLength || len(login) < minLoginLength {
		return nil, ErrLoginLength
	}

	if result := CheckPasswordStrength(password); !result.Valid {
		return nil, ErrWeakPassword
	}

	existingUser, err := s.repo.userExistsByLoginOrEmail(login, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, ErrInternalError
	}
	if existingUser != nil {
		if existingUser.Login == login {
			return nil, ErrLoginAlreadyExists
		}
		return nil, ErrEmailAlreadyExists
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, ErrInternalError
	}

	hashToken, err := generateHashToken()
	if err != nil {
		return nil, ErrInternalError
	}

	user := &User{
		Email:        email,
		Login:        login,
		PasswordHash: passwordHash,
		HashToken:    hashToken,
	}
	if err := s.repo.createUser(user); err != nil {
		return nil, ErrInternalError
	}
	return user, nil
}

func (s *service) GetUserByID(userID string) (*User, error) {
	return s.repo.getUserByID(userID)
}

func (s *service) GetUserByLoginOrEmail(loginOrEmail string) (*User, error) {
	return s.repo.getUserByLoginOrEmail(loginOrEmail)
}

func (s *service) ChangePasswordWithOldPassword(userID, oldPassword, newPassword string) error {
	user, err := s.repo.getUserByID(userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return ErrInternalError
	}

	if !doPasswordsMatch(user.PasswordHash, oldPassword) {
		return ErrInvalidOldPassword
	}

	return s.changePassword(userID, newPassword)
}

// changePassword rotates the hash token so every outstanding refresh token
// stops validating.
func (s *service) changePassword(userID, newPassword string) error {
	if result := CheckPasswordStrength(newPassword); !result.Valid {
		return ErrWeakPassword
	}

	newPasswordHash, err := hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("could not hash password: %v", err)
	}

	newHashToken, err := generateHashToken()
	if err != nil {
		return fmt.Errorf("could not generate hash token: %v", err)
	}

	if err := s.repo.updateUserPasswordAndHashToken(userID, newPasswordHash, newHashToken); err != nil {
		return fmt.Errorf("could not update user password: %v", err)
	}
	return nil
}

func doPasswordsMatch(hashedPassword, currPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(currPassword))
	return err == nil
}

func (s *service) ResetPassword(userID, newPassword string) error {
	return s.changePassword(userID, newPassword)
}

func (s *service) SavePasswordResetCode(userID, code string, expiresAt time.Time) error {
	return s.repo.savePasswordResetCode(userID, code, expiresAt)
}

func (s *service) GetPasswordResetCode(userID string) (string, time.Time, time.Time, error) {
	return s.repo.getPasswordResetCode(userID)
}

func (s *service) DeletePasswordResetCode(userID string) error {
	return s.repo.deletePasswordResetCode(userID)
}

// GetPreferences returns stored preferences, or the defaults when the user
// has never saved any.
func (s *service) GetPreferences(userID string) (*Preferences, error) {
	prefs, err := s.repo.getPreferences(userID)
	if err != nil {
		if errors.Is(err, ErrNoPreferencesYet) {
			return DefaultPreferences(userID), nil
		}
		return nil, err
	}
	return prefs, nil
}

func (s *service) UpdatePreferences(prefs *Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}
	return s.repo.upsertPreferences(prefs)
}

func (s *service) ListUsersWithBudgetAlerts() ([]User, error) {
	return s.repo.listUsersWithPreference("budget_alerts")
}

func (s *service) ListUsersWithAutoBackup() ([]User, error) {
	return s.repo.listUsersWithPreference("auto_backup")
}

func (s *service) ListUsersWithMonthlyReports() ([]User, error) {
	return s.repo.listUsersWithPreference("monthly_reports")
}
