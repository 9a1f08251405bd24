package notify

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/NiellCast/meta-prediction/internal/config"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// GoalReached sends a notification that an owner's balance has met the goal
// target. With no SMTP host configured it only logs.
func (s *Sender) GoalReached(owner string, balance, target float64) error {
	if s.cfg.SMTPHost == "" || s.cfg.NotifyEmail == "" {
		s.logger.Infof("Goal reached for owner %s: balance %.2f >= target %.2f", owner, balance, target)
		return nil
	}

	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{s.cfg.NotifyEmail}
	e.Subject = "Bankroll Goal Reached"

	body := fmt.Sprintf(
		"The bankroll for owner %s reached its goal on %s.\n"+
			"Current balance: %.2f\n"+
			"Goal target: %.2f\n",
		owner, time.Now().Format("2006-01-02"), balance, target,
	)
	body += "\nBest regards,\nBankroll Tracker"
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send goal notification to %s: %v", s.cfg.NotifyEmail, err)
		return fmt.Errorf("failed to send goal notification: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", s.cfg.NotifyEmail, e.Subject)
	return nil
}
