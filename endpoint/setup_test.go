package endpoint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/diyetisyenim/diyet-api/config"
	"github.com/diyetisyenim/diyet-api/middleware"
	"github.com/diyetisyenim/diyet-api/model"
	"github.com/diyetisyenim/diyet-api/util"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestAPI builds the full API over an in-memory SQLite database with
// the real middleware chain, no Redis, and a silenced security logger.
func newTestAPI(t *testing.T, name string) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	util.SetJWTSecret("endpoint-test-secret")
	util.SetSecurityLoggerForTest(log.New(io.Discard, "", 0))
	util.SetSecurityLoggerDB(nil)
	config.SetRedisClientForTest(nil)
	util.InitUserCache(64)

	dsn := fmt.Sprintf("file:apitest_%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.DietPlan{},
		&model.Appointment{},
		&model.Recipe{},
		&model.Session{},
		&model.SecurityLog{},
	); err != nil {
		t.Fatalf("failed to auto-migrate models: %v", err)
	}

	r := gin.New()
	r.Use(middleware.DatabaseMiddleware(db))
	RegisterRoutes(r)
	return r, db
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Msg     string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

func doRequest(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	env := decodeEnvelope(t, w)
	assert.NoError(t, json.Unmarshal(env.Data, dst))
}

const testPassword = "sifre-123456"

func itoa(id uint) string {
	return fmt.Sprintf("%d", id)
}

// registerUser creates an account through the real register endpoint.
func registerUser(t *testing.T, r *gin.Engine, username string, role model.Role) {
	t.Helper()
	w := doRequest(t, r, http.MethodPost, "/auth/register", "", map[string]interface{}{
		"username": username,
		"password": testPassword,
		"role":     string(role),
		"fullName": "Test " + username,
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

// loginUser logs in through the real login endpoint and returns the
// access token plus the user id.
func loginUser(t *testing.T, r *gin.Engine, username string) (string, uint) {
	t.Helper()
	w := doRequest(t, r, http.MethodPost, "/auth/login", "", map[string]string{
		"username": username,
		"password": testPassword,
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp LoginResponse
	decodeData(t, w, &resp)
	assert.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken, resp.ID
}

// registerAndLogin is the common shortcut for test fixtures.
func registerAndLogin(t *testing.T, r *gin.Engine, username string, role model.Role) (string, uint) {
	t.Helper()
	registerUser(t, r, username, role)
	return loginUser(t, r, username)
}

// seedAdminAndLogin inserts the seed admin directly and logs it in.
func seedAdminAndLogin(t *testing.T, r *gin.Engine, db *gorm.DB) (string, uint) {
	t.Helper()
	salt, err := util.GenerateSalt()
	assert.NoError(t, err)
	hashed, err := util.HashPasswordArgon2(testPassword, salt)
	assert.NoError(t, err)
	assert.NoError(t, model.SeedAdmin(db, hashed, salt))
	return loginUser(t, r, "admin")
}
