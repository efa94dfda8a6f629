package site

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"vendhansite/chatbot"
	"vendhansite/config"
	"vendhansite/database"
	"vendhansite/otp"
)

// stubMailer records sends instead of talking to SMTP.
type stubMailer struct {
	configured bool
	failSends  bool

	otpCodes      map[string]string
	contactSends  int
	appSends      int
	replySends    []string
	lastRegarding string
}

func newStubMailer() *stubMailer {
	return &stubMailer{configured: true, otpCodes: map[string]string{}}
}

func (m *stubMailer) Configured() bool { return m.configured }

func (m *stubMailer) SendOTP(email, code string) error {
	if m.failSends {
		return errSendFailed
	}
	m.otpCodes[email] = code
	return nil
}

func (m *stubMailer) SendContactNotification(cm *database.ContactMessage) error {
	if m.failSends {
		return errSendFailed
	}
	m.contactSends++
	return nil
}

func (m *stubMailer) SendApplicationNotification(app *database.Application, attachmentPaths []string) error {
	if m.failSends {
		return errSendFailed
	}
	m.appSends++
	return nil
}

func (m *stubMailer) SendReply(toEmail, regarding, replyContent string) error {
	if m.failSends {
		return errSendFailed
	}
	m.replySends = append(m.replySends, toEmail)
	m.lastRegarding = regarding
	return nil
}

var errSendFailed = &sendError{}

type sendError struct{}

func (*sendError) Error() string { return "send failed" }

type testEnv struct {
	server *Server
	router chi.Router
	db     *gorm.DB
	mail   *stubMailer
	cfg    *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	db, err := database.Open(filepath.Join(dir, "test.db"))
	require.NoError(t, err)

	cfg := &config.Config{
		UploadRoot:   filepath.Join(dir, "uploads"),
		MailHost:     "localhost",
		MailUsername: "test",
	}

	mail := newStubMailer()
	server := NewServer(db, cfg, mail, otp.NewService(db), chatbot.New(""))

	return &testEnv{
		server: server,
		router: server.Routes(),
		db:     db,
		mail:   mail,
		cfg:    cfg,
	}
}

func (e *testEnv) postJSON(t *testing.T, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return e.sendJSON(t, http.MethodPost, path, body, cookies...)
}

func (e *testEnv) putJSON(t *testing.T, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return e.sendJSON(t, http.MethodPut, path, body, cookies...)
}

func (e *testEnv) sendJSON(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) request(t *testing.T, method, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// createAdmin inserts an admin user with an active session and returns the
// session cookie.
func (e *testEnv) createAdmin(t *testing.T, username string) *http.Cookie {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	admin := database.AdminUser{
		Username:     username,
		PasswordHash: hash,
		SessionToken: "session-" + username,
	}
	require.NoError(t, e.db.Create(&admin).Error)

	return &http.Cookie{
		Name:  string(AuthenticatedUserTokenCookieName),
		Value: admin.SessionToken,
	}
}

// verifiedEmail walks an email through send-otp and verify-otp.
func (e *testEnv) verifiedEmail(t *testing.T, email string) {
	t.Helper()
	rec := e.postJSON(t, "/api/send-otp", map[string]string{"email": email})
	require.Equal(t, http.StatusOK, rec.Code)

	code := e.mail.otpCodes[email]
	require.Len(t, code, 6)

	rec = e.postJSON(t, "/api/verify-otp", map[string]string{"email": email, "otp": code})
	require.Equal(t, http.StatusOK, rec.Code)
}
