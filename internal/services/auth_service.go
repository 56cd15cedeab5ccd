package services

import (
	"bytes"
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"invoiceBack/internal/models"
	"invoiceBack/utils"
)

const minPasswordLength = 8

type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
	UpdateUser(ctx context.Context, user models.User) error
}

type OTPStore interface {
	Save(ctx context.Context, otp models.OTP) error
	Get(ctx context.Context, email string, purpose models.OTPPurpose) (models.OTP, error)
	IncrementAttempts(ctx context.Context, email string, purpose models.OTPPurpose) (int, error)
	Delete(ctx context.Context, email string, purpose models.OTPPurpose) error
}

// GoogleVerifier validates a Google ID token.
type GoogleVerifier interface {
	Verify(ctx context.Context, token string) (models.GoogleIdentity, error)
}

type AuthService struct {
	Users           UserStore
	OTPs            OTPStore
	Mailer          Mailer
	Google          GoogleVerifier
	TokenManager    *utils.Manager
	AdminAccessCode string
	AccessTTL       time.Duration
	OTPTTL          time.Duration
	MaxOTPAttempts  int
	CompanyName     string
	Now             func() time.Time
}

// SignUp registers an unverified admin account and mails a verification code.
func (s *AuthService) SignUp(ctx context.Context, req models.SignUpRequest) (models.User, error) {
	name := strings.TrimSpace(req.Name)
	email := normaliseEmail(req.Email)
	switch {
	case name == "":
		return models.User{}, &models.ValidationError{Field: "name", Message: "name is required"}
	case email == "":
		return models.User{}, &models.ValidationError{Field: "email", Message: "email is required"}
	}
	if _, err := ParseRecipient(email); err != nil {
		return models.User{}, err
	}
	if err := validatePassword("password", req.Password); err != nil {
		return models.User{}, err
	}
	if err := s.checkAdminCode(req.AdminCode); err != nil {
		return models.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.Users.CreateUser(ctx, models.User{
		Name:         name,
		Email:        email,
		Password:     string(hash),
		AuthProvider: models.ProviderLocal,
		Role:         models.RoleAdmin,
	})
	if err != nil {
		return models.User{}, err
	}

	if err := s.issueOTP(ctx, user.Email, models.OTPVerify); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// VerifyEmail consumes a verification code and marks the account verified.
func (s *AuthService) VerifyEmail(ctx context.Context, req models.VerifyCodeRequest) (models.User, error) {
	user, err := s.Users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return models.User{}, err
	}
	if err := s.consumeOTP(ctx, user.Email, models.OTPVerify, req.Code); err != nil {
		return models.User{}, err
	}

	user.IsVerified = true
	if err := s.Users.UpdateUser(ctx, user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// SignIn checks a password login and returns an access token.
func (s *AuthService) SignIn(ctx context.Context, req models.SignInRequest) (models.AuthResponse, error) {
	user, err := s.Users.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, models.ErrUserNotFound) {
		return models.AuthResponse{}, models.ErrInvalidCredentials
	}
	if err != nil {
		return models.AuthResponse{}, err
	}
	if user.Password == "" {
		return models.AuthResponse{}, models.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return models.AuthResponse{}, models.ErrInvalidCredentials
	}
	if !user.IsVerified {
		return models.AuthResponse{}, models.ErrAccountNotVerified
	}
	return s.login(ctx, user)
}

// GoogleSignUp creates a verified account from a Google ID token.
func (s *AuthService) GoogleSignUp(ctx context.Context, req models.GoogleAuthRequest) (models.AuthResponse, error) {
	if err := s.checkAdminCode(req.AdminCode); err != nil {
		return models.AuthResponse{}, err
	}
	identity, err := s.Google.Verify(ctx, req.Token)
	if err != nil {
		return models.AuthResponse{}, err
	}

	name := identity.Name
	if name == "" {
		name = strings.SplitN(identity.Email, "@", 2)[0]
	}
	user, err := s.Users.CreateUser(ctx, models.User{
		Name:         name,
		Email:        identity.Email,
		GoogleID:     identity.Subject,
		AuthProvider: models.ProviderGoogle,
		IsVerified:   true,
		Role:         models.RoleAdmin,
	})
	if err != nil {
		return models.AuthResponse{}, err
	}
	return s.login(ctx, user)
}

// GoogleSignIn logs in an existing account with a Google ID token and links
// the Google subject on first use.
func (s *AuthService) GoogleSignIn(ctx context.Context, req models.GoogleAuthRequest) (models.AuthResponse, error) {
	identity, err := s.Google.Verify(ctx, req.Token)
	if err != nil {
		return models.AuthResponse{}, err
	}
	user, err := s.Users.GetUserByEmail(ctx, identity.Email)
	if err != nil {
		return models.AuthResponse{}, err
	}
	if user.GoogleID != "" && user.GoogleID != identity.Subject {
		return models.AuthResponse{}, models.ErrInvalidCredentials
	}
	user.GoogleID = identity.Subject
	user.IsVerified = true
	return s.login(ctx, user)
}

// RequestPasswordReset mails a reset code. Unknown addresses are ignored so
// callers cannot probe for accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, req models.PasswordResetRequest) error {
	user, err := s.Users.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, models.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.issueOTP(ctx, user.Email, models.OTPReset)
}

func (s *AuthService) ResetPassword(ctx context.Context, req models.NewPasswordRequest) error {
	if err := validatePassword("newPassword", req.NewPassword); err != nil {
		return err
	}
	user, err := s.Users.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, models.ErrUserNotFound) {
		return models.ErrInvalidOTP
	}
	if err != nil {
		return err
	}
	if err := s.consumeOTP(ctx, user.Email, models.OTPReset, req.Code); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hash)
	user.IsVerified = true
	return s.Users.UpdateUser(ctx, user)
}

func (s *AuthService) CurrentUser(ctx context.Context, id string) (models.User, error) {
	return s.Users.GetUserByID(ctx, id)
}

func (s *AuthService) login(ctx context.Context, user models.User) (models.AuthResponse, error) {
	now := s.now().UTC()
	user.LastLogin = &now
	if err := s.Users.UpdateUser(ctx, user); err != nil {
		return models.AuthResponse{}, err
	}

	token, err := s.TokenManager.NewJWT(user.ID, user.Role, s.AccessTTL)
	if err != nil {
		return models.AuthResponse{}, err
	}
	return models.AuthResponse{AccessToken: token, User: user}, nil
}

func (s *AuthService) checkAdminCode(code string) error {
	if s.AdminAccessCode == "" || subtle.ConstantTimeCompare([]byte(code), []byte(s.AdminAccessCode)) != 1 {
		return models.ErrInvalidAdminCode
	}
	return nil
}

func (s *AuthService) issueOTP(ctx context.Context, email string, purpose models.OTPPurpose) error {
	code, err := utils.NewOTPCode()
	if err != nil {
		return err
	}
	err = s.OTPs.Save(ctx, models.OTP{
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: s.now().Add(s.OTPTTL),
	})
	if err != nil {
		return err
	}

	html, err := s.otpEmailHTML(code, purpose)
	if err != nil {
		return err
	}
	subject := "Verify your account"
	if purpose == models.OTPReset {
		subject = "Reset your password"
	}
	if s.CompanyName != "" {
		subject += " - " + s.CompanyName
	}
	if err := s.Mailer.Send(ctx, models.Email{To: email, Subject: subject, HTML: html, SenderName: s.CompanyName}); err != nil {
		return &models.DeliveryError{Stage: models.StageSend, Err: err}
	}
	return nil
}

// consumeOTP checks code and deletes it on success. Each wrong guess counts
// against the attempt limit; reaching it discards the code.
func (s *AuthService) consumeOTP(ctx context.Context, email string, purpose models.OTPPurpose, code string) error {
	otp, err := s.OTPs.Get(ctx, email, purpose)
	if errors.Is(err, models.ErrNoRecord) {
		return models.ErrInvalidOTP
	}
	if err != nil {
		return err
	}

	if s.now().After(otp.ExpiresAt) {
		_ = s.OTPs.Delete(ctx, email, purpose)
		return models.ErrInvalidOTP
	}
	if otp.Attempts >= s.MaxOTPAttempts {
		_ = s.OTPs.Delete(ctx, email, purpose)
		return models.ErrOTPAttemptsExceeded
	}

	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(code)), []byte(otp.Code)) != 1 {
		attempts, err := s.OTPs.IncrementAttempts(ctx, email, purpose)
		if err != nil {
			return err
		}
		if attempts >= s.MaxOTPAttempts {
			_ = s.OTPs.Delete(ctx, email, purpose)
			return models.ErrOTPAttemptsExceeded
		}
		return models.ErrInvalidOTP
	}

	return s.OTPs.Delete(ctx, email, purpose)
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func validatePassword(field, password string) error {
	if len(password) < minPasswordLength {
		return &models.ValidationError{Field: field, Message: fmt.Sprintf("password must be at least %d characters", minPasswordLength)}
	}
	return nil
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var otpEmailTemplate = template.Must(template.New("otp").Parse(`<div style="font-family: 'Segoe UI', Roboto, sans-serif; padding: 24px;">
  <h2 style="color: #1E3A8A;">{{.Title}}</h2>
  <p style="color: #555; font-size: 15px;">Use the code below. It expires in {{.Minutes}} minutes.</p>
  <p style="font-size: 28px; letter-spacing: 6px; font-weight: bold; color: #111;">{{.Code}}</p>
  <p style="color: #777; font-size: 13px;">If you did not request this, you can ignore this email.</p>
</div>`))

func (s *AuthService) otpEmailHTML(code string, purpose models.OTPPurpose) (string, error) {
	title := "Verify your email address"
	if purpose == models.OTPReset {
		title = "Reset your password"
	}
	var buf bytes.Buffer
	err := otpEmailTemplate.Execute(&buf, struct {
		Title   string
		Code    string
		Minutes int
	}{title, code, int(s.OTPTTL.Minutes())})
	return buf.String(), err
}
