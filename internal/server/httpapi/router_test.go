package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/skydrive/internal/logging"
	"github.com/dmitrijs2005/skydrive/internal/models"
	sc "github.com/dmitrijs2005/skydrive/internal/server/config"
	"github.com/dmitrijs2005/skydrive/internal/server/repositories/files"
	"github.com/dmitrijs2005/skydrive/internal/server/services"
)

const testSecret = "test-secret"

type stubIssuer struct{}

func (stubIssuer) PresignPut(context.Context, string) (string, error) {
	return "https://bucket/put", nil
}

func (stubIssuer) PresignGet(context.Context, string) (string, error) {
	return "https://bucket/get", nil
}

func (stubIssuer) DeleteObject(context.Context, string) error { return nil }

func testRouter(t *testing.T) (*gin.Engine, files.Repository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := files.NewInMemoryRepository()
	fileSvc := services.NewFileService(repo, stubIssuer{})
	syncSvc := services.NewSyncService(repo)
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	api := NewAPI(fileSvc, syncSvc, logger, testSecret)
	cfg := &sc.Config{CORSOrigins: []string{"http://localhost:5173"}}
	return api.Router(cfg), repo
}

func signToken(t *testing.T, ownerID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   ownerID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func doRequest(t *testing.T, router *gin.Engine, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	router, _ := testRouter(t)
	w := doRequest(t, router, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_MissingToken(t *testing.T) {
	router, _ := testRouter(t)
	w := doRequest(t, router, http.MethodGet, "/api/files", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_BadToken(t *testing.T) {
	router, _ := testRouter(t)
	w := doRequest(t, router, http.MethodGet, "/api/files", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_OwnerMismatch(t *testing.T) {
	router, _ := testRouter(t)
	token := signToken(t, "u1")
	w := doRequest(t, router, http.MethodGet, "/api/files?ownerId=u2", token, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUploadLifecycle(t *testing.T) {
	router, _ := testRouter(t)
	token := signToken(t, "u1")

	body := `{"ownerId":"u1","fileName":"a.txt","size":10,"mimeType":"text/plain",` +
		`"hash":"h1","createdAt":"2025-06-01T10:00:00Z","updatedAt":"2025-06-01T10:00:00Z"}`
	w := doRequest(t, router, http.MethodPost, "/api/files/upload-url", token, body)
	require.Equal(t, http.StatusOK, w.Code)

	var intent struct {
		FileID    string `json:"fileId"`
		UploadURL string `json:"uploadUrl"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &intent))
	assert.NotEmpty(t, intent.FileID)
	assert.Equal(t, "https://bucket/put", intent.UploadURL)

	// not yet confirmed, listing stays empty
	w = doRequest(t, router, http.MethodGet, "/api/files", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	w = doRequest(t, router, http.MethodPost, "/api/files/mark-uploaded", token,
		`{"ownerId":"u1","fileId":"`+intent.FileID+`"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/files", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	var listed []*models.FileRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, intent.FileID, listed[0].FileID)

	w = doRequest(t, router, http.MethodGet, "/api/files/download-url/"+intent.FileID, token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://bucket/get")

	w = doRequest(t, router, http.MethodDelete, "/api/files/"+intent.FileID, token, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/files/download-url/"+intent.FileID, token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadURL_InvalidBody(t *testing.T) {
	router, _ := testRouter(t)
	token := signToken(t, "u1")
	w := doRequest(t, router, http.MethodPost, "/api/files/upload-url", token, `{"fileName":"a.txt"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarkUploaded_UnknownFile(t *testing.T) {
	router, _ := testRouter(t)
	token := signToken(t, "u1")
	w := doRequest(t, router, http.MethodPost, "/api/files/mark-uploaded", token,
		`{"ownerId":"u1","fileId":"nope"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSyncChanges(t *testing.T) {
	router, repo := testRouter(t)
	token := signToken(t, "u1")
	now := time.Now().UTC()

	active := &models.FileRecord{
		FileID: "f1", OwnerID: "u1", FileName: "a.txt", Hash: "h1",
		CreatedAt: now, UpdatedAt: now, Status: models.StatusActive,
	}
	deleted := &models.FileRecord{
		FileID: "f2", OwnerID: "u1", FileName: "b.txt", Hash: "h2",
		CreatedAt: now.Add(-time.Hour), UpdatedAt: now, Status: models.StatusDeleted,
	}
	require.NoError(t, repo.Create(context.Background(), active))
	require.NoError(t, repo.Create(context.Background(), deleted))

	w := doRequest(t, router, http.MethodGet, "/api/sync/changes", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	var delta models.Delta
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &delta))
	require.Len(t, delta.Added, 1)
	assert.Equal(t, "f1", delta.Added[0].FileID)
	require.Len(t, delta.Removed, 1)
	assert.Equal(t, "f2", delta.Removed[0].FileID)
	assert.False(t, delta.LastSync.IsZero())
}

func TestSyncChanges_SinceFiltersOld(t *testing.T) {
	router, repo := testRouter(t)
	token := signToken(t, "u1")
	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	rec := &models.FileRecord{
		FileID: "f1", OwnerID: "u1", FileName: "a.txt", Hash: "h1",
		CreatedAt: old, UpdatedAt: old, Status: models.StatusActive,
	}
	require.NoError(t, repo.Create(context.Background(), rec))

	since := old.Add(time.Hour).Format(time.RFC3339)
	w := doRequest(t, router, http.MethodGet, "/api/sync/changes?since="+since, token, "")
	require.Equal(t, http.StatusOK, w.Code)

	var delta models.Delta
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &delta))
	assert.Empty(t, delta.Added)
	assert.Empty(t, delta.Modified)
	assert.Empty(t, delta.Removed)
}

func TestSyncChanges_MalformedSinceFallsBackToFullDelta(t *testing.T) {
	router, repo := testRouter(t)
	token := signToken(t, "u1")
	now := time.Now().UTC()

	rec := &models.FileRecord{
		FileID: "f1", OwnerID: "u1", FileName: "a.txt", Hash: "h1",
		CreatedAt: now, UpdatedAt: now, Status: models.StatusActive,
	}
	require.NoError(t, repo.Create(context.Background(), rec))

	w := doRequest(t, router, http.MethodGet, "/api/sync/changes?since=not-a-time", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	var delta models.Delta
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &delta))
	assert.Len(t, delta.Added, 1)
}
