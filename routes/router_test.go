package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cedarboard/cedar/config"
	"github.com/cedarboard/cedar/models"
	"github.com/cedarboard/cedar/utils"
)

func TestMain(m *testing.M) {
	tmp, err := os.MkdirTemp("", "cedar-router-test")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Setenv("JWT_SECRET", "router-test-secret")
	os.Setenv("GIN_MODE", "test")
	os.Setenv("LOG_PATH", filepath.Join(tmp, "app.log"))
	os.Setenv("GIN_PATH", filepath.Join(tmp, "access.log"))
	os.Setenv("RATE_LIMIT_PER_MINUTE", "10000")
	os.Setenv("ADMIN_USERNAMES", "root")

	cfg := config.Load()
	if err := utils.InitLogger(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	code := m.Run()
	os.RemoveAll(tmp)
	os.Exit(code)
}

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:router_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Profile{},
		&models.Section{}, &models.Subsection{}, &models.Topic{}, &models.Post{},
		&models.Warn{}, &models.Ban{},
		&models.Conversation{}, &models.Message{},
	))
	return SetupRouter(db), db
}

// doJSON performs a request and decodes the uniform response envelope.
func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, utils.JSONResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var envelope utils.JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return w, envelope
}

// registerAndLogin registers an account over HTTP and returns its token and id.
func registerAndLogin(t *testing.T, r *gin.Engine, username string) (string, uint) {
	t.Helper()
	w, envelope := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": username,
		"password": "sup3rsecret",
	})
	require.Equal(t, http.StatusOK, w.Code, envelope.Message)
	data := envelope.Data.(map[string]interface{})
	token := data["token"].(string)
	require.NotEmpty(t, token)
	user := data["user"].(map[string]interface{})
	return token, uint(user["id"].(float64))
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)
	w, envelope := doJSON(t, r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, envelope.Code)
}

func TestAuthFlow(t *testing.T) {
	r, _ := newTestRouter(t)

	token, _ := registerAndLogin(t, r, "alice")

	// Wrong password does not reveal which field was wrong.
	w, envelope := doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": "alice", "password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid credentials", envelope.Message)

	w, _ = doJSON(t, r, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, envelope = doJSON(t, r, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := envelope.Data.(map[string]interface{})
	user := data["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])

	// Logout revokes the token for the rest of its lifetime.
	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, r, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestForumFlow(t *testing.T) {
	r, _ := newTestRouter(t)

	// "root" is listed in ADMIN_USERNAMES and registers as an admin.
	adminToken, _ := registerAndLogin(t, r, "root")
	userToken, _ := registerAndLogin(t, r, "bob")

	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/sections", userToken, gin.H{"name": "General"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, envelope := doJSON(t, r, http.MethodPost, "/api/v1/sections", adminToken, gin.H{"name": "General"})
	require.Equal(t, http.StatusOK, w.Code, envelope.Message)
	section := envelope.Data.(map[string]interface{})["section"].(map[string]interface{})
	sectionID := int(section["id"].(float64))

	w, envelope = doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/api/v1/sections/%d/subsections", sectionID), adminToken, gin.H{"name": "Intro"})
	require.Equal(t, http.StatusOK, w.Code, envelope.Message)
	subsection := envelope.Data.(map[string]interface{})["subsection"].(map[string]interface{})
	subsectionID := int(subsection["id"].(float64))

	w, envelope = doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/api/v1/subsections/%d/topics", subsectionID), userToken,
		gin.H{"title": "Hello", "content": "first topic"})
	require.Equal(t, http.StatusOK, w.Code, envelope.Message)
	topic := envelope.Data.(map[string]interface{})["topic"].(map[string]interface{})
	topicID := int(topic["id"].(float64))

	// Reads need no token.
	w, envelope = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/topics/%d", topicID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, envelope = doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/api/v1/topics/%d/posts", topicID), adminToken, gin.H{"content": "Hi there"})
	require.Equal(t, http.StatusOK, w.Code, envelope.Message)

	w, _ = doJSON(t, r, http.MethodGet, "/api/v1/does-not-exist", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBanGuard(t *testing.T) {
	r, db := newTestRouter(t)

	modToken, modID := registerAndLogin(t, r, "mod")
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", modID).
		Update("role", models.RoleModerator).Error)

	userToken, userID := registerAndLogin(t, r, "troll")

	w, envelope := doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/api/v1/users/%d/bans", userID), modToken,
		gin.H{"reason": "abuse", "duration_days": 7})
	require.Equal(t, http.StatusOK, w.Code, envelope.Message)
	ban := envelope.Data.(map[string]interface{})["ban"].(map[string]interface{})
	banID := int(ban["id"].(float64))

	// Banned accounts are refused on write routes but can still read.
	w, envelope = doJSON(t, r, http.MethodPost, "/api/v1/conversations", userToken,
		gin.H{"user_id": modID})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, 40390, envelope.Code)

	w, _ = doJSON(t, r, http.MethodGet, "/api/v1/sections", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/bans/%d", banID), modToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/conversations", userToken, gin.H{"user_id": modID})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestKarmaEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	aliceToken, _ := registerAndLogin(t, r, "alice")
	_, bobID := registerAndLogin(t, r, "bob")

	w, envelope := doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/api/v1/users/%d/karma", bobID), aliceToken, gin.H{"action": "increase"})
	require.Equal(t, http.StatusOK, w.Code, envelope.Message)
	assert.EqualValues(t, 1, envelope.Data.(map[string]interface{})["karma"].(float64))

	w, _ = doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/api/v1/users/%d/karma", bobID), aliceToken, gin.H{"action": "reset"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
