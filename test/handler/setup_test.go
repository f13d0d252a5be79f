package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/parsa-dv/messenger/internal/config"
	"github.com/parsa-dv/messenger/internal/filestore"
	"github.com/parsa-dv/messenger/internal/handler"
	"github.com/parsa-dv/messenger/internal/presence"
	"github.com/parsa-dv/messenger/internal/repo"
	"github.com/parsa-dv/messenger/internal/service"
	"github.com/parsa-dv/messenger/internal/token"
	"github.com/parsa-dv/messenger/test/testutil"
)

var mailCodeRegex = regexp.MustCompile(`\b(\d{6})\b`)

// recordingSender captures outgoing mail instead of talking to SMTP; setting
// fail makes every Send report a relay failure.
type recordingSender struct {
	fail bool
	body []string
}

func (s *recordingSender) Send(to, subject, body string) error {
	if s.fail {
		return errors.New("relay unreachable")
	}
	s.body = append(s.body, body)
	return nil
}

func (s *recordingSender) lastCode(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, s.body)
	match := mailCodeRegex.FindStringSubmatch(s.body[len(s.body)-1])
	require.Len(t, match, 2)
	return match[1]
}

type testApp struct {
	engine *gin.Engine
	sender *recordingSender
}

func newTestApp(t *testing.T, issueWindow time.Duration) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, cleanup := testutil.OpenTestDB(t)
	t.Cleanup(cleanup)
	users := repo.NewUserRepo(db)
	messages := repo.NewMessageRepo(db)

	sender := &recordingSender{}
	tokens := token.NewService(token.NewMemoryStore())
	tracker := presence.NewTracker()
	secret := []byte("test-secret")

	auth := service.NewAuthService(users, tokens, sender, secret, time.Hour, false)
	messageService := service.NewMessageService(messages, users, tracker)
	contactService := service.NewContactService(users, messages, tracker)
	userService := service.NewUserService(users)

	store, err := filestore.New(config.FileStoreConfig{
		Type: "local",
		Data: map[string]interface{}{"dir": t.TempDir()},
	})
	require.NoError(t, err)
	uploads := service.NewUploadService(store)

	engine := gin.New()
	handler.RegisterRoutes(engine, handler.RouterDeps{
		Auth:        handler.NewAuthHandler(auth),
		Messages:    handler.NewMessageHandler(messageService, uploads),
		Users:       handler.NewUserHandler(userService, contactService, uploads),
		Presence:    handler.NewPresenceHandler(tracker),
		Files:       handler.NewFileHandler(store),
		JWTSecret:   secret,
		IssueWindow: issueWindow,
	})
	return &testApp{engine: engine, sender: sender}
}

func (a *testApp) do(t *testing.T, req *http.Request, want int) map[string]interface{} {
	t.Helper()
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	require.Equal(t, want, w.Code, "body: %s", w.Body.String())
	if len(w.Body.Bytes()) == 0 {
		return nil
	}
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func (a *testApp) postJSON(t *testing.T, path, session string, body interface{}, want int) map[string]interface{} {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set("Authorization", "Bearer "+session)
	}
	return a.do(t, req, want)
}

func (a *testApp) get(t *testing.T, path, session string, want int) map[string]interface{} {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if session != "" {
		req.Header.Set("Authorization", "Bearer "+session)
	}
	return a.do(t, req, want)
}

func (a *testApp) getList(t *testing.T, path, session string) []map[string]interface{} {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+session)
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	var raw []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	return raw
}

// signUp walks the register / verify-email flow and returns the account's
// session token and id.
func (a *testApp) signUp(t *testing.T, username, email string) (string, int64) {
	t.Helper()
	out := a.postJSON(t, "/register", "", gin.H{
		"username": username,
		"email":    email,
		"password": "secret1",
	}, http.StatusOK)
	tokenID, _ := out["verificationToken"].(string)
	require.NotEmpty(t, tokenID)

	out = a.postJSON(t, "/verify-email", "", gin.H{
		"token": tokenID,
		"code":  a.sender.lastCode(t),
	}, http.StatusOK)
	session, _ := out["token"].(string)
	require.NotEmpty(t, session)
	return session, int64(out["userId"].(float64))
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
