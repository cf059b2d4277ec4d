package user

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrNoResetCode      = errors.New("no password reset code generated")
	ErrNoPreferencesYet = errors.New("no preferences stored")
)

type Repository interface {
	createUser(user *User) error
	getUserByEmail(email string) (*User, error)
	getUserByLoginOrEmail(loginOrEmail string) (*User, error)
	userExistsByLoginOrEmail(login, email string) (*User, error)
	getUserByID(id string) (*User, error)
	updateUserPasswordAndHashToken(userID, newPasswordHash, newHashToken string) error
	savePasswordResetCode(userID, code string, expiresAt time.Time) error
	getPasswordResetCode(userID string) (string, time.Time, time.Time, error)
	deletePasswordResetCode(userID string) error
	getPreferences(userID string) (*Preferences, error)
	upsertPreferences(prefs *Preferences) error
	listUsersWithPreference(column string) ([]User, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) Repository {
	return &userRepository{
		db: db,
	}
}

const userColumns = `id, email, login, password_hash, hash_token, is_verified, created_at, updated_at`

func scanUser(row *sql.Row) (*User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Email, &user.Login, &user.PasswordHash, &user.HashToken, &user.IsVerified, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("could not find user: %v", err)
	}
	return &user, nil
}

func (r *userRepository) createUser(user *User) error {
	query := `
		INSERT INTO users (email, login, password_hash, hash_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id;
	`
	var id string
	err := r.db.QueryRow(query, user.Email, user.Login, user.PasswordHash, user.HashToken).Scan(&id)
	if err != nil {
		return fmt.Errorf("could not create user: %v", err)
	}

	user.ID = id
	return nil
}

func (r *userRepository) getUserByEmail(email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(query, email))
}

func (r *userRepository) getUserByLoginOrEmail(loginOrEmail string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE login = $1 OR email = $1`
	return scanUser(r.db.QueryRow(query, loginOrEmail))
}

func (r *userRepository) userExistsByLoginOrEmail(login, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE login = $1 OR email = $2`
	return scanUser(r.db.QueryRow(query, login, email))
}

func (r *userRepository) getUserByID(id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(query, id))
}

func (r *userRepository) updateUserPasswordAndHashToken(userID, newPasswordHash, newHashToken string) error {
	query := `
		UPDATE users
		SET password_hash = $1, hash_token = $2, updated_at = NOW()
		WHERE id = $3
	`
	result, err := r.db.Exec(query, newPasswordHash, newHashToken, userID)
	if err != nil {
		return fmt.Errorf("could not update user password: %v", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) savePasswordResetCode(userID, code string, expiresAt time.Time) error {
	query := `
		INSERT INTO user_password_reset_codes (user_id, code, expires_at, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE SET code = $2, expires_at = $3, created_at = NOW()
	`
	_, err := r.db.Exec(query, userID, code, expiresAt)
	return err
}

func (r *userRepository) getPasswordResetCode(userID string) (string, time.Time, time.Time, error) {
	query := `SELECT code, expires_at, created_at FROM user_password_reset_codes WHERE user_id = $1`

	var code string
	var expiresAt, createdAt time.Time
	err := r.db.QueryRow(query, userID).Scan(&code, &expiresAt, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", time.Time{}, time.Time{}, ErrNoResetCode
		}
		return "", time.Time{}, time.Time{}, err
	}
	return code, expiresAt, createdAt, nil
}

func (r *userRepository) deletePasswordResetCode(userID string) error {
	_, err := r.db.Exec(`DELETE FROM user_password_reset_codes WHERE user_id = $1`, userID)
	return err
}

func (r *userRepository) getPreferences(userID string) (*Preferences, error) {
	query := `
		SELECT user_id, currency, date_format, theme, language,
		       email_notifications, budget_alerts, monthly_reports, goal_reminders,
		       data_sharing, analytics, marketing_emails, auto_backup, updated_at
		FROM user_preferences
		WHERE user_id = $1
	`
	var prefs Preferences
	err := r.db.QueryRow(query, userID).Scan(
		&prefs.UserID, &prefs.Currency, &prefs.DateFormat, &prefs.Theme, &prefs.Language,
		&prefs.EmailNotifications, &prefs.BudgetAlerts, &prefs.MonthlyReports, &prefs.GoalReminders,
		&prefs.DataSharing, &prefs.Analytics, &prefs.MarketingEmails, &prefs.AutoBackup, &prefs.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoPreferencesYet
		}
		return nil, fmt.Errorf("could not load preferences: %v", err)
	}
	return &prefs, nil
}

func (r *userRepository) upsertPreferences(prefs *Preferences) error {
	query := `
		INSERT INTO user_preferences (user_id, currency, date_format, theme, language,
			email_notifications, budget_alerts, monthly_reports, goal_reminders,
			data_sharing, analytics, marketing_emails, auto_backup, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			currency = $2, date_format = $3, theme = $4, language = $5,
			email_notifications = $6, budget_alerts = $7, monthly_reports = $8,
			goal_reminders = $9, data_sharing = $10, analytics = $11,
			marketing_emails = $12, auto_backup = $13, updated_at = NOW()
	`
	_, err := r.db.Exec(query,
		prefs.UserID, prefs.Currency, prefs.DateFormat, prefs.Theme, prefs.Language,
		prefs.EmailNotifications, prefs.BudgetAlerts, prefs.MonthlyReports, prefs.GoalReminders,
		prefs.DataSharing, prefs.Analytics, prefs.MarketingEmails, prefs.AutoBackup)
	return err
}

// listUsersWithPreference returns users whose named boolean preference is
// enabled. column must be one of the fixed preference column names; it is
// never user input.
func (r *userRepository) listUsersWithPreference(column string) ([]User, error) {
	query := fmt.Sprintf(`
		SELECT u.id, u.email, u.login, u.password_hash, u.hash_token, u.is_verified, u.created_at, u.updated_at
		FROM users u
		JOIN user_preferences p ON p.user_id = u.id
		WHERE p.%s = TRUE
	`, column)
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Email, &user.Login, &user.PasswordHash, &user.HashToken, &user.IsVerified, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
