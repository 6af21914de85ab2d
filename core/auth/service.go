package auth

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/user"
)

var (
	ErrNotFound          = errors.New("challenge not found")
	ErrMailNotConfigured = errors.New("email service is not configured")

	errEmailRequired = core.NewValidationError(nil, core.FieldError{Field: "email", Error: "email is required"})
	errOTPRequired   = core.NewValidationError(nil, core.FieldError{Field: "otp", Error: "email and OTP are required"})
	errOTPFormat     = core.NewValidationError(nil, core.FieldError{Field: "otp", Error: "OTP must be a 6-digit code"})

	ErrChallengeNotFound = core.NewValidationError(nil, core.FieldError{Field: "otp", Error: "no OTP requested for this email, request a new one"})
	ErrChallengeExpired  = core.NewValidationError(nil, core.FieldError{Field: "otp", Error: "OTP has expired, request a new one"})
	ErrCodeMismatch      = core.NewValidationError(nil, core.FieldError{Field: "otp", Error: "invalid OTP"})
)

type Repository interface {
	// UpsertChallenge stores ch, replacing any existing challenge for ch.Email.
	UpsertChallenge(ctx context.Context, ch Challenge) error
	GetChallengeByEmail(ctx context.Context, email string) (Challenge, error)
	DeleteChallengeByEmail(ctx context.Context, email string) error
}

type Service struct {
	repo    Repository
	usrSvc  user.Service
	mailSvc core.EmailService
	conf    *core.Config
}

func NewService(repo Repository, usrSvc user.Service, mailSvc core.EmailService, conf *core.Config) Service {
	return Service{
		repo:    repo,
		usrSvc:  usrSvc,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

// RequestChallenge issues a fresh OTP for email and mails it out. A previous
// pending challenge for the same email is overwritten.
func (svc Service) RequestChallenge(ctx context.Context, email string) error {
	email = core.CleanString(email, true /* lower */)
	if email == "" {
		return errEmailRequired
	}
	// debug deployments mail through the console transport, no key needed
	if !svc.conf.Debug && !svc.conf.Mail.Enabled() {
		return ErrMailNotConfigured
	}

	code, err := NewCode()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	ch := Challenge{
		Email:     email,
		Code:      code,
		ExpiresAt: now.Add(svc.conf.Server.OTPExpirationDelta),
		CreatedAt: now,
	}
	if err = svc.repo.UpsertChallenge(ctx, ch); err != nil {
		return errors.Wrap(err, "storing challenge")
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Address: email}},
		Subject:      fmt.Sprintf("Your OTP for %s Login", svc.conf.AppName),
		TemplateName: "otp_login",
		TemplateData: struct {
			Code      string
			ExpiresIn string
		}{
			Code:      code,
			ExpiresIn: fmt.Sprintf("%d minutes", int(svc.conf.Server.OTPExpirationDelta.Minutes())),
		},
	})
	return nil
}

// VerifyChallenge checks the submitted code against the pending challenge for
// email. On success the challenge is consumed and the matching user account is
// returned, created on the fly when logging in for the first time.
func (svc Service) VerifyChallenge(ctx context.Context, email, code string) (user.User, error) {
	email = core.CleanString(email, true /* lower */)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return user.User{}, errOTPRequired
	}
	if len(code) != 6 {
		return user.User{}, errOTPFormat
	}

	ch, err := svc.repo.GetChallengeByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return user.User{}, ErrChallengeNotFound
		}
		return user.User{}, err
	}

	if ch.IsExpired() {
		if err = svc.repo.DeleteChallengeByEmail(ctx, email); err != nil {
			return user.User{}, errors.Wrap(err, "purging expired challenge")
		}
		return user.User{}, ErrChallengeExpired
	}

	if code != strings.TrimSpace(ch.Code) {
		return user.User{}, ErrCodeMismatch
	}

	// single use
	if err = svc.repo.DeleteChallengeByEmail(ctx, email); err != nil {
		return user.User{}, errors.Wrap(err, "consuming challenge")
	}

	return svc.usrSvc.GetOrCreateByEmail(ctx, email)
}
