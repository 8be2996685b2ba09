package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/haoyun/account-service/pkg/mailer"
	tpl "github.com/haoyun/account-service/pkg/mailer/templates"
)

const verificationSubject = "欢迎注册幻云科技 - 验证码"

// VerificationService hands a caller-supplied code to the mail capability.
// It neither generates nor stores codes; the dispatch happens synchronously
// and exactly once per call.
type VerificationService struct {
	Mail    mailer.Sender
	Logger  *logrus.Logger
	Enabled bool
}

func NewVerificationService(mail mailer.Sender, logger *logrus.Logger, enabled bool) *VerificationService {
	return &VerificationService{Mail: mail, Logger: logger, Enabled: enabled}
}

// Dispatch renders the verification email and sends it. The code value goes
// through html/template, so whatever the caller supplies is escaped before
// it reaches the message body.
func (s *VerificationService) Dispatch(ctx context.Context, email, code string) error {
	html, err := tpl.RenderHTML(tpl.VerificationCode, tpl.VerificationCodeData{Code: code})
	if err != nil {
		return err
	}
	if !s.Enabled {
		if s.Logger != nil {
			s.Logger.WithField("to", email).Info("mail sending disabled; verification email skipped")
		}
		return nil
	}
	return s.Mail.Send(ctx, email, verificationSubject, "", html)
}
