package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/parsa-dv/messenger/internal/model"
	appErr "github.com/parsa-dv/messenger/internal/pkg/errors"
	"github.com/parsa-dv/messenger/internal/pkg/jwt"
	"github.com/parsa-dv/messenger/internal/pkg/password"
	"github.com/parsa-dv/messenger/internal/pkg/timeutil"
	"github.com/parsa-dv/messenger/internal/repo"
	"github.com/parsa-dv/messenger/internal/token"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailRegex    = regexp.MustCompile(`(?i)^[^\s@]+@[^\s@]+\.[a-z]{2,}$`)
)

// IssueResult is what a registration or forgot-password call hands back: the
// token id the client uses to resume the flow, and in degraded mail mode the
// code itself so the flow stays usable without a working SMTP relay.
type IssueResult struct {
	TokenID     string
	MaskedEmail string
	DebugCode   string
}

type AuthService struct {
	users        *repo.UserRepo
	tokens       *token.Service
	sender       EmailSender
	jwtSecret    []byte
	jwtTTL       time.Duration
	degradedMail bool
}

func NewAuthService(users *repo.UserRepo, tokens *token.Service, sender EmailSender, jwtSecret []byte, jwtTTL time.Duration, degradedMail bool) *AuthService {
	return &AuthService{
		users:        users,
		tokens:       tokens,
		sender:       sender,
		jwtSecret:    jwtSecret,
		jwtTTL:       jwtTTL,
		degradedMail: degradedMail,
	}
}

// Register validates the pending account, issues a verification token and
// mails its code. No user row is created until the code is verified.
func (s *AuthService) Register(ctx context.Context, username, email, plainPassword string) (*IssueResult, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if username == "" || email == "" || plainPassword == "" {
		return nil, appErr.Validation("All fields required")
	}
	if len(username) < 3 || !usernameRegex.MatchString(username) {
		return nil, appErr.Validation("Username must be at least 3 characters and contain only letters, numbers, and underscores (_). No spaces or special characters allowed!")
	}
	if !emailRegex.MatchString(email) {
		return nil, appErr.Validation("Invalid email format. Please use a valid email (e.g., user@example.com)")
	}
	if len(plainPassword) < 6 {
		return nil, appErr.Validation("Password must be at least 6 characters long")
	}
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, appErr.Validation("Username already exists")
	} else if !appErr.IsNotFound(err) {
		return nil, err
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, appErr.Validation("Email already registered")
	} else if !appErr.IsNotFound(err) {
		return nil, err
	}

	t, err := s.tokens.Issue(ctx, token.KindEmailVerify, token.Payload{
		Username: username,
		Email:    email,
		Password: plainPassword,
	})
	if err != nil {
		return nil, err
	}
	body := fmt.Sprintf("Your verification code: %s\nValid for 10 minutes", t.Code)
	return s.deliver(ctx, t, email, "Verify Your Email - Messenger", body, "")
}

// VerifyEmail consumes the token and, on a matching code, creates the user
// and establishes a session. A client-reported attempt count is display-only
// upstream; only the token store's counter gates the flow.
func (s *AuthService) VerifyEmail(ctx context.Context, tokenID, code string) (*model.User, string, error) {
	if tokenID == "" || code == "" {
		return nil, "", appErr.Validation("Code and token required")
	}
	result, err := s.tokens.Verify(ctx, tokenID, code)
	if err != nil {
		return nil, "", err
	}
	switch result.Outcome {
	case token.OutcomeSuccess:
	case token.OutcomeNotFound:
		return nil, "", appErr.Validation("Invalid or expired verification token. Please register again.")
	case token.OutcomeExpired:
		return nil, "", appErr.Validation("Verification code expired. Please register again.")
	case token.OutcomeAttemptsExhausted:
		return nil, "", appErr.Validation("Too many incorrect attempts. Please register again.")
	case token.OutcomeWrongCode:
		return nil, "", appErr.Validation(fmt.Sprintf("Incorrect code. %d attempt(s) remaining.", result.Remaining))
	default:
		return nil, "", appErr.ErrInternal
	}

	hash, err := password.Hash(result.Payload.Password)
	if err != nil {
		return nil, "", err
	}
	user := &model.User{
		Username:      result.Payload.Username,
		Email:         result.Payload.Email,
		PasswordHash:  hash,
		EmailVerified: 1,
		Ctime:         timeutil.NowUnix(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if appErr.IsConflict(err) {
			return nil, "", appErr.Validation("Username or email already registered")
		}
		return nil, "", err
	}
	session, err := jwt.GenerateToken(user.ID, user.Username, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return nil, "", err
	}
	return user, session, nil
}

// ForgotPassword issues a reset token for an existing account and mails the
// code, returning a masked form of the destination address for display.
func (s *AuthService) ForgotPassword(ctx context.Context, emailOrUsername string) (*IssueResult, error) {
	emailOrUsername = strings.TrimSpace(emailOrUsername)
	if emailOrUsername == "" {
		return nil, appErr.Validation("Email or username required")
	}
	user, err := s.users.GetByUsernameOrEmail(ctx, emailOrUsername)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, appErr.Validation("No account found with this email or username")
		}
		return nil, err
	}
	t, err := s.tokens.Issue(ctx, token.KindPasswordReset, token.Payload{
		UserID: user.ID,
		Email:  user.Email,
	})
	if err != nil {
		return nil, err
	}
	body := fmt.Sprintf("Password Reset Code: %s\nValid for 10 minutes\nIf you didn't request this, ignore this email.", t.Code)
	return s.deliver(ctx, t, user.Email, "Reset Your Password - Messenger", body, maskEmail(user.Email))
}

// ResetPassword consumes the reset token and updates the account password.
// The new password is validated before any token state is touched.
func (s *AuthService) ResetPassword(ctx context.Context, tokenID, code, newPassword string) error {
	if tokenID == "" || code == "" || newPassword == "" {
		return appErr.Validation("All fields required")
	}
	if len(newPassword) < 6 {
		return appErr.Validation("Password must be at least 6 characters")
	}
	result, err := s.tokens.Verify(ctx, tokenID, code)
	if err != nil {
		return err
	}
	switch result.Outcome {
	case token.OutcomeSuccess:
	case token.OutcomeNotFound:
		return appErr.Validation("Invalid or expired reset token")
	case token.OutcomeExpired:
		return appErr.Validation("Reset code expired. Please try again.")
	case token.OutcomeAttemptsExhausted:
		return appErr.Validation("Too many incorrect attempts")
	case token.OutcomeWrongCode:
		return appErr.Validation(fmt.Sprintf("Incorrect code. %d attempt(s) remaining.", result.Remaining))
	default:
		return appErr.ErrInternal
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, result.Payload.UserID, hash)
}

func (s *AuthService) Login(ctx context.Context, usernameOrEmail, plainPassword string) (*model.User, string, error) {
	if usernameOrEmail == "" || plainPassword == "" {
		return nil, "", appErr.Validation("Username/Email and password required")
	}
	user, err := s.users.GetByUsernameOrEmail(ctx, usernameOrEmail)
	if err != nil {
		return nil, "", appErr.ErrUnauthorized
	}
	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		return nil, "", appErr.ErrUnauthorized
	}
	session, err := jwt.GenerateToken(user.ID, user.Username, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return nil, "", err
	}
	return user, session, nil
}

// deliver mails the freshly issued code. On a send failure the token is
// discarded unless degraded mail mode is explicitly enabled, in which case
// the code is returned to the caller instead of leaking a dead flow.
func (s *AuthService) deliver(ctx context.Context, t *token.Token, to, subject, body, maskedEmail string) (*IssueResult, error) {
	result := &IssueResult{TokenID: t.ID, MaskedEmail: maskedEmail}
	if err := s.sender.Send(to, subject, body); err != nil {
		if !s.degradedMail {
			_ = s.tokens.Discard(ctx, t.ID)
			return nil, fmt.Errorf("%w: send code email: %v", appErr.ErrDependency, err)
		}
		logutil.GetLogger(ctx).Warn("code email failed, degraded mode returns code inline",
			zap.String("kind", string(t.Kind)), zap.Error(err))
		result.DebugCode = t.Code
	}
	return result, nil
}

func maskEmail(email string) string {
	parts := strings.SplitN(email, "@", 2)
	if len(parts) != 2 {
		return email
	}
	local := parts[0]
	if len(local) > 2 {
		local = local[:2]
	}
	return local + "****@" + parts[1]
}
