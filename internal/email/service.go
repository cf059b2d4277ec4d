package emailService

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"os"
	"path/filepath"

	"github.com/jkowalczyk/FinanceTracker/internal/logging"
)

const (
	subjectResetPassword  = "Reset your password"
	templateResetPassword = "reset_password.html"
	subjectBudgetAlert    = "Budget alert"
	templateBudgetAlert   = "budget_alert.html"
	subjectMonthlyReport  = "Your monthly report"
	templateMonthlyReport = "monthly_report.html"
)

type EmailData interface {
	TemplateFileName() string
	Subject() string
}

type EmailSender interface {
	QueueEmail(to string, data EmailData)
}

type ResetPasswordData struct {
	UserName string
	Code     string
}

func (r ResetPasswordData) TemplateFileName() string {
	return templateResetPassword
}

func (r ResetPasswordData) Subject() string {
	return subjectResetPassword
}

type BudgetAlertData struct {
	UserName    string
	BudgetName  string
	Spent       string
	Limit       string
	PercentUsed string
}

func (b BudgetAlertData) TemplateFileName() string {
	return templateBudgetAlert
}

func (b BudgetAlertData) Subject() string {
	return subjectBudgetAlert
}

type MonthlyReportData struct {
	UserName     string
	Month        string
	IncomeTotal  string
	ExpenseTotal string
}

func (m MonthlyReportData) TemplateFileName() string {
	return templateMonthlyReport
}

func (m MonthlyReportData) Subject() string {
	return subjectMonthlyReport
}

type Config struct {
	From         string
	Password     string
	SMTPHost     string
	SMTPPort     string
	TemplatesDir string
}

// Configured reports whether SMTP delivery can be attempted. When false the
// service runs in log-only mode, which keeps local development working
// without mail credentials.
func (c Config) Configured() bool {
	return c.From != "" && c.Password != "" && c.SMTPHost != ""
}

type EmailService struct {
	cfg       Config
	logger    *logging.Logger
	taskQueue chan EmailTask
}

type EmailTask struct {
	to           string
	templateFile string
	data         EmailData
	subject      string
}

func NewEmailService(cfg Config, logger *logging.Logger) *EmailService {
	s := &EmailService{
		cfg:       cfg,
		logger:    logger.WithComponent(logging.ComponentEmail),
		taskQueue: make(chan EmailTask, 100),
	}
	go s.worker()
	return s
}

func (s *EmailService) worker() {
	for task := range s.taskQueue {
		if !s.cfg.Configured() {
			s.logger.Info("email delivery skipped, SMTP not configured",
				"to", task.to, "subject", task.subject)
			continue
		}
		if err := s.sendTemplatedEmail(task.to, task.templateFile, task.data, task.subject); err != nil {
			s.logger.Error("could not send email", "to", task.to, "error", err)
		}
	}
}

func (s *EmailService) QueueEmail(to string, data EmailData) {
	s.taskQueue <- EmailTask{to, data.TemplateFileName(), data, data.Subject()}
}

func (s *EmailService) sendTemplatedEmail(to, templateFileName string, data EmailData, subject string) error {
	templatePath := filepath.Join(s.cfg.TemplatesDir, templateFileName)
	if _, err := os.Stat(templatePath); os.IsNotExist(err) {
		return fmt.Errorf("template file does not exist: %v", err)
	}

	tmpl, err := template.ParseFiles(templatePath)
	if err != nil {
		return fmt.Errorf("error parsing template: %v", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("error executing template: %v", err)
	}

	message := []byte("Subject: " + subject + "\r\n" +
		"MIME-version: 1.0;\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\";\r\n\r\n" +
		body.String())

	auth := smtp.PlainAuth("", s.cfg.From, s.cfg.Password, s.cfg.SMTPHost)
	if err := smtp.SendMail(s.cfg.SMTPHost+":"+s.cfg.SMTPPort, auth, s.cfg.From, []string{to}, message); err != nil {
		return fmt.Errorf("error sending email: %v", err)
	}
	return nil
}
