package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

type fakeRepository struct {
	users       map[string]*User
	prefs       map[string]*Preferences
	resetCodes  map[string]string
	lastHashTok string
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		users:      make(map[string]*User),
		prefs:      make(map[string]*Preferences),
		resetCodes: make(map[string]string),
	}
}

func (f *fakeRepository) createUser(user *User) error {
	user.ID = "user-" + user.Login
	f.users[user.ID] = user
	return nil
}

func (f *fakeRepository) getUserByEmail(email string) (*User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeRepository) getUserByLoginOrEmail(loginOrEmail string) (*User, error) {
	for _, u := range f.users {
		if u.Email == loginOrEmail || u.Login == loginOrEmail {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeRepository) userExistsByLoginOrEmail(login, email string) (*User, error) {
	for _, u := range f.users {
		if u.Email == email || u.Login == login {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeRepository) getUserByID(id string) (*User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

func (f *fakeRepository) updateUserPasswordAndHashToken(userID, newPasswordHash, newHashToken string) error {
	u, ok := f.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = newPasswordHash
	u.HashToken = newHashToken
	f.lastHashTok = newHashToken
	return nil
}

func (f *fakeRepository) savePasswordResetCode(userID, code string, _ time.Time) error {
	f.resetCodes[userID] = code
	return nil
}

func (f *fakeRepository) getPasswordResetCode(userID string) (string, time.Time, time.Time, error) {
	code, ok := f.resetCodes[userID]
	if !ok {
		return "", time.Time{}, time.Time{}, ErrNoResetCode
	}
	return code, time.Now().Add(10 * time.Minute), time.Now(), nil
}

func (f *fakeRepository) deletePasswordResetCode(userID string) error {
	delete(f.resetCodes, userID)
	return nil
}

func (f *fakeRepository) getPreferences(userID string) (*Preferences, error) {
	if p, ok := f.prefs[userID]; ok {
		return p, nil
	}
	return nil, ErrNoPreferencesYet
}

func (f *fakeRepository) upsertPreferences(prefs *Preferences) error {
	f.prefs[prefs.UserID] = prefs
	return nil
}

func (f *fakeRepository) listUsersWithPreference(_ string) ([]User, error) {
	return nil, nil
}

func TestRegister(t *testing.T) {
	repo := newFakeRepository()
	svc := NewUserService(repo)

	registered, err := svc.Register("anna@example.com", "annasmith", "Str0ng!pass")
	assert.NoError(t, err)
	assert.NotEmpty(t, registered.ID)
	assert.NotEmpty(t, registered.HashToken)

	// The stored hash verifies against the original password.
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(registered.PasswordHash), []byte("Str0ng!pass")))
}

func TestRegister_DerivesLoginFromEmail(t *testing.T) {
	svc := NewUserService(newFakeRepository())

	registered, err := svc.Register("johndoe@example.com", "", "Str0ng!pass")
	assert.NoError(t, err)
	assert.Equal(t, "johndoe", registered.Login)
}

func TestRegister_RejectsWeakPassword(t *testing.T) {
	svc := NewUserService(newFakeRepository())

	_, err := svc.Register("anna@example.com", "annasmith", "weakpass")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestRegister_RejectsDuplicates(t *testing.T) {
	repo := newFakeRepository()
	svc := NewUserService(repo)

	_, err := svc.Register("anna@example.com", "annasmith", "Str0ng!pass")
	assert.NoError(t, err)

	_, err = svc.Register("anna@example.com", "otherlogin", "Str0ng!pass")
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	_, err = svc.Register("other@example.com", "annasmith", "Str0ng!pass")
	assert.ErrorIs(t, err, ErrLoginAlreadyExists)
}

func TestRegister_RejectsBadEmailAndLogin(t *testing.T) {
	svc := NewUserService(newFakeRepository())

	_, err := svc.Register("not-an-email", "annasmith", "Str0ng!pass")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.Register("anna@example.com", "abc", "Str0ng!pass")
	assert.ErrorIs(t, err, ErrLoginLength)
}

func TestChangePasswordWithOldPassword_RotatesHashToken(t *testing.T) {
	repo := newFakeRepository()
	svc := NewUserService(repo)

	registered, err := svc.Register("anna@example.com", "annasmith", "Str0ng!pass")
	assert.NoError(t, err)
	oldToken := registered.HashToken

	err = svc.ChangePasswordWithOldPassword(registered.ID, "Str0ng!pass", "N3w!passwd")
	assert.NoError(t, err)
	assert.NotEqual(t, oldToken, repo.lastHashTok)

	err = svc.ChangePasswordWithOldPassword(registered.ID, "Str0ng!pass", "An0ther!pw")
	assert.ErrorIs(t, err, ErrInvalidOldPassword)
}

func TestGetPreferences_DefaultsWhenUnset(t *testing.T) {
	svc := NewUserService(newFakeRepository())

	prefs, err := svc.GetPreferences("user-1")
	assert.NoError(t, err)
	assert.Equal(t, "USD", prefs.Currency)
	assert.True(t, prefs.BudgetAlerts)
	assert.False(t, prefs.AutoBackup)
}

func TestUpdatePreferences_Validates(t *testing.T) {
	repo := newFakeRepository()
	svc := NewUserService(repo)

	prefs := DefaultPreferences("user-1")
	prefs.Theme = "neon"
	assert.ErrorIs(t, svc.UpdatePreferences(prefs), ErrInvalidPreferences)

	prefs.Theme = "dark"
	assert.NoError(t, svc.UpdatePreferences(prefs))

	stored, err := svc.GetPreferences("user-1")
	assert.NoError(t, err)
	assert.Equal(t, "dark", stored.Theme)
}
