package services

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/xife12/membercore/internal/models"
	"github.com/xife12/membercore/pkg/logger"
	"gorm.io/gorm"
)

type EmailService struct {
	db *gorm.DB
}

type EmailConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
}

func NewEmailService(db *gorm.DB) *EmailService {
	return &EmailService{db: db}
}

// GetConfig assembles the SMTP settings from system_configs rows.
func (s *EmailService) GetConfig() *EmailConfig {
	cfg := &EmailConfig{}

	var configs []models.SystemConfig
	s.db.Where("`group` = ?", "email").Find(&configs)

	for _, c := range configs {
		switch c.Key {
		case "email_enabled":
			cfg.Enabled = c.Value == "true"
		case "email_host":
			cfg.Host = c.Value
		case "email_port":
			if port, err := strconv.Atoi(c.Value); err == nil {
				cfg.Port = port
			}
		case "email_username":
			cfg.Username = c.Value
		case "email_password":
			cfg.Password = c.Value
		case "email_from":
			cfg.From = c.Value
		case "email_use_tls":
			cfg.UseTLS = c.Value == "true"
		}
	}

	if cfg.Port == 0 {
		cfg.Port = 587
	}

	return cfg
}

// SendRenewalReminder mails a member that their contract enters the notice
// window. A disabled or unconfigured mailer is a silent no-op.
func (s *EmailService) SendRenewalReminder(task *ReminderTask) error {
	cfg := s.GetConfig()
	if !cfg.Enabled || cfg.Host == "" {
		return nil
	}
	if task.Email == "" {
		return nil
	}

	subject := fmt.Sprintf("[MemberCore] Your %s membership ends on %s", task.ContractName, task.EndDate)
	body := s.buildReminderBody(task)

	return s.sendEmail(cfg, []string{task.Email}, subject, body)
}

func (s *EmailService) buildReminderBody(task *ReminderTask) string {
	var sb strings.Builder

	sb.WriteString("<html><body style=\"font-family: Arial, sans-serif;\">")
	sb.WriteString(fmt.Sprintf("<h2>Hello %s,</h2>", task.MemberName))
	sb.WriteString(fmt.Sprintf(
		"<p>Your <b>%s</b> membership (member number %s) runs out in <b>%d days</b>, on %s.</p>",
		task.ContractName, task.MemberNumber, task.DaysLeft, task.EndDate))
	sb.WriteString("<p>Drop by the front desk or reply to this mail to extend your contract ")
	sb.WriteString("before the notice period ends.</p>")
	sb.WriteString("<hr><p style=\"color: #888; font-size: 12px;\">Your studio team</p>")
	sb.WriteString("</body></html>")

	return sb.String()
}

func (s *EmailService) sendEmail(cfg *EmailConfig, to []string, subject, body string) error {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}

	headers := map[string]string{
		"From":         from,
		"To":           strings.Join(to, ","),
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=UTF-8",
	}

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(body)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	var auth smtp.Auth
	if cfg.Username != "" && cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	var err error
	if cfg.UseTLS {
		err = s.sendEmailTLS(cfg, addr, auth, from, to, message.String())
	} else {
		err = smtp.SendMail(addr, auth, from, to, []byte(message.String()))
	}

	if err != nil {
		logger.Error().Err(err).Strs("to", to).Msg("[Email] send failed")
		return err
	}

	logger.Info().Strs("to", to).Msg("[Email] reminder sent")
	return nil
}

func (s *EmailService) sendEmailTLS(cfg *EmailConfig, addr string, auth smtp.Auth, from string, to []string, message string) error {
	tlsConfig := &tls.Config{
		ServerName: cfg.Host,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(message)); err != nil {
		return err
	}
	return w.Close()
}
