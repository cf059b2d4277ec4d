package user

import "time"

// Preferences is the per-user settings row. Every user owns exactly one,
// created lazily with defaults on first read.
type Preferences struct {
	UserID             string    `json:"-"`
	Currency           string    `json:"currency"`
	DateFormat         string    `json:"date_format"`
	Theme              string    `json:"theme"`
	Language           string    `json:"language"`
	EmailNotifications bool      `json:"email_notifications"`
	BudgetAlerts       bool      `json:"budget_alerts"`
	MonthlyReports     bool      `json:"monthly_reports"`
	GoalReminders      bool      `json:"goal_reminders"`
	DataSharing        bool      `json:"data_sharing"`
	Analytics          bool      `json:"analytics"`
	MarketingEmails    bool      `json:"marketing_emails"`
	AutoBackup         bool      `json:"auto_backup"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func DefaultPreferences(userID string) *Preferences {
	return &Preferences{
		UserID:             userID,
		Currency:           "USD",
		DateFormat:         "YYYY-MM-DD",
		Theme:              "system",
		Language:           "en",
		EmailNotifications: true,
		BudgetAlerts:       true,
	}
}

var validThemes = map[string]struct{}{
	"light": {}, "dark": {}, "system": {},
}

func (p *Preferences) Validate() error {
	if len(p.Currency) != 3 {
		return ErrInvalidPreferences
	}
	if _, ok := validThemes[p.Theme]; !ok {
		return ErrInvalidPreferences
	}
	if p.Language == "" || len(p.Language) > 5 {
		return ErrInvalidPreferences
	}
	if p.DateFormat == "" || len(p.DateFormat) > 20 {
		return ErrInvalidPreferences
	}
	return nil
}
