package emailService

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const (
	subjectWelcome  = "Welcome to StockWatch"
	templateWelcome = "welcome_email.html"
	subjectDigest   = "Your daily watchlist digest"
	templateDigest  = "news_digest.html"
)

type EmailData interface {
	TemplateFileName() string
	Subject() string
}

type EmailSender interface {
	QueueEmail(to string, data EmailData)
}

type WelcomeEmailData struct {
	UserName string
}

func (d WelcomeEmailData) TemplateFileName() string {
	return templateWelcome
}

func (d WelcomeEmailData) Subject() string {
	return subjectWelcome
}

type DigestEmailData struct {
	UserName string
	Date     string
	Symbols  []string
}

func (d DigestEmailData) TemplateFileName() string {
	return templateDigest
}

func (d DigestEmailData) Subject() string {
	return subjectDigest
}

type EmailTask struct {
	to           string
	templateFile string
	data         EmailData
	subject      string
}

type EmailService struct {
	from         string
	password     string
	templatesDir string
	smtpHost     string
	smtpPort     string
	taskQueue    chan EmailTask
	logger       *zap.Logger
}

// NewEmailService reads SMTP settings from the environment. Mail is a
// best-effort side channel: with no EMAIL_ADDRESS configured the service
// still runs and queued messages are dropped with a log line.
func NewEmailService(logger *zap.Logger) *EmailService {
	templatesDir := os.Getenv("TEMPLATES_DIR")
	if templatesDir == "" {
		templatesDir = "internal/email/templates"
	}

	smtpHost := os.Getenv("SMTP_HOST")
	if smtpHost == "" {
		smtpHost = "smtp.gmail.com"
	}
	smtpPort := os.Getenv("SMTP_PORT")
	if smtpPort == "" {
		smtpPort = "587"
	}

	service := &EmailService{
		from:         os.Getenv("EMAIL_ADDRESS"),
		password:     os.Getenv("EMAIL_PASSWORD"),
		templatesDir: templatesDir,
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		taskQueue:    make(chan EmailTask, 100),
		logger:       logger,
	}

	go service.worker()
	return service
}

func (s *EmailService) worker() {
	for task := range s.taskQueue {
		if s.from == "" {
			s.logger.Debug("email delivery disabled, dropping message",
				zap.String("to", task.to),
				zap.String("subject", task.subject))
			continue
		}
		if err := s.sendTemplatedEmail(task.to, task.templateFile, task.data, task.subject); err != nil {
			s.logger.Warn("could not send email",
				zap.String("to", task.to),
				zap.String("subject", task.subject),
				zap.Error(err))
		}
	}
}

func (s *EmailService) QueueEmail(to string, data EmailData) {
	select {
	case s.taskQueue <- EmailTask{to, data.TemplateFileName(), data, data.Subject()}:
	default:
		s.logger.Warn("email queue full, dropping message", zap.String("to", to))
	}
}

func (s *EmailService) sendTemplatedEmail(to, templateFileName string, data EmailData, subject string) error {
	templatePath := filepath.Join(s.templatesDir, templateFileName)
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

	auth := smtp.PlainAuth("", s.from, s.password, s.smtpHost)
	if err := smtp.SendMail(s.smtpHost+":"+s.smtpPort, auth, s.from, []string{to}, message); err != nil {
		return fmt.Errorf("error sending email: %v", err)
	}
	return nil
}
