package service_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appErr "github.com/parsa-dv/messenger/internal/pkg/errors"
	"github.com/parsa-dv/messenger/internal/repo"
	"github.com/parsa-dv/messenger/internal/service"
	"github.com/parsa-dv/messenger/internal/token"
	"github.com/parsa-dv/messenger/test/testutil"
)

var codeRegex = regexp.MustCompile(`\b(\d{6})\b`)

// capturingSender records outgoing mail instead of talking to SMTP; setting
// fail makes every Send report a relay failure.
type capturingSender struct {
	fail bool
	to   []string
	body []string
}

func (s *capturingSender) Send(to, subject, body string) error {
	if s.fail {
		return errors.New("relay unreachable")
	}
	s.to = append(s.to, to)
	s.body = append(s.body, body)
	return nil
}

func (s *capturingSender) lastCode(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, s.body)
	match := codeRegex.FindStringSubmatch(s.body[len(s.body)-1])
	require.Len(t, match, 2, "mail body carries a 6-digit code")
	return match[1]
}

type authEnv struct {
	auth   *service.AuthService
	users  *repo.UserRepo
	sender *capturingSender
}

func newAuthEnv(t *testing.T, degradedMail bool) *authEnv {
	t.Helper()
	db, cleanup := testutil.OpenTestDB(t)
	t.Cleanup(cleanup)
	users := repo.NewUserRepo(db)
	sender := &capturingSender{}
	tokens := token.NewService(token.NewMemoryStore())
	auth := service.NewAuthService(users, tokens, sender, []byte("test-secret"), time.Hour, degradedMail)
	return &authEnv{auth: auth, users: users, sender: sender}
}

func registerAndVerify(t *testing.T, env *authEnv, username, email, password string) int64 {
	t.Helper()
	ctx := context.Background()
	issued, err := env.auth.Register(ctx, username, email, password)
	require.NoError(t, err)
	user, session, err := env.auth.VerifyEmail(ctx, issued.TokenID, env.sender.lastCode(t))
	require.NoError(t, err)
	require.NotEmpty(t, session)
	return user.ID
}

func TestRegisterRejectsBadInput(t *testing.T) {
	env := newAuthEnv(t, false)
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		email    string
		password string
		message  string
	}{
		{"missing fields", "", "a@example.com", "secret1", "All fields required"},
		{"short username", "ab", "a@example.com", "secret1", "Username must be at least 3 characters and contain only letters, numbers, and underscores (_). No spaces or special characters allowed!"},
		{"username with space", "a b c", "a@example.com", "secret1", "Username must be at least 3 characters and contain only letters, numbers, and underscores (_). No spaces or special characters allowed!"},
		{"bad email", "alice", "not-an-email", "secret1", "Invalid email format. Please use a valid email (e.g., user@example.com)"},
		{"short password", "alice", "a@example.com", "12345", "Password must be at least 6 characters long"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.auth.Register(ctx, tc.username, tc.email, tc.password)
			ve, ok := appErr.AsValidation(err)
			require.True(t, ok)
			require.Equal(t, tc.message, ve.Msg)
		})
	}
	require.Empty(t, env.sender.body, "rejected registrations send no mail")
}

func TestRegisterVerifyLoginFlow(t *testing.T) {
	env := newAuthEnv(t, false)
	ctx := context.Background()

	issued, err := env.auth.Register(ctx, "alice", "Alice@Example.com", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, issued.TokenID)
	require.Empty(t, issued.DebugCode)
	require.Equal(t, []string{"alice@example.com"}, env.sender.to, "email lowercased before delivery")

	// no account exists until the code is confirmed
	_, err = env.users.GetByUsername(ctx, "alice")
	require.True(t, appErr.IsNotFound(err))

	code := env.sender.lastCode(t)
	wrong := "000000"
	if code == wrong {
		wrong = "000001"
	}
	_, _, err = env.auth.VerifyEmail(ctx, issued.TokenID, wrong)
	ve, ok := appErr.AsValidation(err)
	require.True(t, ok)
	require.Equal(t, "Incorrect code. 2 attempt(s) remaining.", ve.Msg)

	user, session, err := env.auth.VerifyEmail(ctx, issued.TokenID, code)
	require.NoError(t, err)
	require.NotEmpty(t, session)
	require.Equal(t, "alice", user.Username)
	require.Equal(t, "alice@example.com", user.Email)

	// token is consumed with the account
	_, _, err = env.auth.VerifyEmail(ctx, issued.TokenID, code)
	ve, ok = appErr.AsValidation(err)
	require.True(t, ok)
	require.Equal(t, "Invalid or expired verification token. Please register again.", ve.Msg)

	_, _, err = env.auth.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	_, _, err = env.auth.Login(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	_, _, err = env.auth.Login(ctx, "alice", "wrong-password")
	require.ErrorIs(t, err, appErr.ErrUnauthorized)
	_, _, err = env.auth.Login(ctx, "nobody", "secret1")
	require.ErrorIs(t, err, appErr.ErrUnauthorized)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	env := newAuthEnv(t, false)
	ctx := context.Background()
	registerAndVerify(t, env, "alice", "alice@example.com", "secret1")

	_, err := env.auth.Register(ctx, "alice", "other@example.com", "secret1")
	ve, ok := appErr.AsValidation(err)
	require.True(t, ok)
	require.Equal(t, "Username already exists", ve.Msg)

	_, err = env.auth.Register(ctx, "alice2", "alice@example.com", "secret1")
	ve, ok = appErr.AsValidation(err)
	require.True(t, ok)
	require.Equal(t, "Email already registered", ve.Msg)
}

func TestMailFailureDiscardsToken(t *testing.T) {
	env := newAuthEnv(t, false)
	env.sender.fail = true
	ctx := context.Background()

	_, err := env.auth.Register(ctx, "alice", "alice@example.com", "secret1")
	require.ErrorIs(t, err, appErr.ErrDependency)
}

func TestDegradedMailReturnsCodeInline(t *testing.T) {
	env := newAuthEnv(t, true)
	env.sender.fail = true
	ctx := context.Background()

	issued, err := env.auth.Register(ctx, "alice", "alice@example.com", "secret1")
	require.NoError(t, err)
	require.Len(t, issued.DebugCode, 6)

	user, session, err := env.auth.VerifyEmail(ctx, issued.TokenID, issued.DebugCode)
	require.NoError(t, err)
	require.NotEmpty(t, session)
	require.Equal(t, "alice", user.Username)
}

func TestForgotAndResetPassword(t *testing.T) {
	env := newAuthEnv(t, false)
	ctx := context.Background()
	registerAndVerify(t, env, "alice", "alice@example.com", "secret1")

	issued, err := env.auth.ForgotPassword(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "al****@example.com", issued.MaskedEmail)
	code := env.sender.lastCode(t)

	// a too-short replacement never touches the token
	err = env.auth.ResetPassword(ctx, issued.TokenID, code, "short")
	ve, ok := appErr.AsValidation(err)
	require.True(t, ok)
	require.Equal(t, "Password must be at least 6 characters", ve.Msg)

	require.NoError(t, env.auth.ResetPassword(ctx, issued.TokenID, code, "brand-new-pass"))

	_, _, err = env.auth.Login(ctx, "alice", "secret1")
	require.ErrorIs(t, err, appErr.ErrUnauthorized)
	_, _, err = env.auth.Login(ctx, "alice", "brand-new-pass")
	require.NoError(t, err)
}

func TestForgotPasswordUnknownAccount(t *testing.T) {
	env := newAuthEnv(t, false)

	_, err := env.auth.ForgotPassword(context.Background(), "ghost@example.com")
	ve, ok := appErr.AsValidation(err)
	require.True(t, ok)
	require.Equal(t, "No account found with this email or username", ve.Msg)
}
