package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/linkmarket/link-server/internal/auth"
	"github.com/linkmarket/link-server/internal/dto"
	"github.com/linkmarket/link-server/internal/media"
	"github.com/linkmarket/link-server/internal/service"
	"github.com/linkmarket/link-server/internal/store"
	"github.com/linkmarket/link-server/internal/store/sqlite"
)

// testEnvelope mirrors the response envelope with a typed payload.
type testEnvelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api   humatest.TestAPI
	store store.Store
	admin *service.AdminService
}

const testPublicURL = "https://app.link.test"

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	tmpDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	st, err := sqlite.Open(filepath.Join(tmpDir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	authKey, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)
	tokenService, err := auth.NewTokenService(authKey, 0)
	require.NoError(t, err)

	local, err := media.NewLocalProvider(filepath.Join(tmpDir, "media"), "http://localhost:8080")
	require.NoError(t, err)
	mediaStore := media.NewWithProviders(logger, media.DefaultMaxFileSize, local)

	admin := service.NewAdminService(st, service.AdminConfig{WhatsAppNumbers: []string{"+237 699 00 00 00"}}, logger)
	services := &Services{
		Auth:        service.NewAuthService(st, tokenService, logger),
		User:        service.NewUserService(st, logger),
		Listing:     service.NewListingService(st, mediaStore, nil, service.ListingConfig{ShareBaseURL: "http://localhost:8080"}, logger),
		Feed:        service.NewFeedService(st, logger),
		Search:      service.NewSearchService(st, logger),
		Interaction: service.NewInteractionService(st, "http://localhost:8080", logger),
		Repost:      service.NewRepostService(st, logger),
		Comment:     service.NewCommentService(st, logger),
		Admin:       admin,
	}

	srv := NewServer(st, services, local, Options{PublicURL: testPublicURL}, logger)
	t.Cleanup(srv.Close)

	return &testServer{
		Server: srv,
		api:    humatest.Wrap(t, srv.API()),
		store:  st,
		admin:  admin,
	}
}

var phoneSeq int

// register creates an account and returns its token and ID.
func (ts *testServer) register(t *testing.T, userType string) (token, userID string) {
	t.Helper()
	phoneSeq++
	return ts.registerNumber(t, userType, fmt.Sprintf("+237 68%07d", phoneSeq))
}

func (ts *testServer) registerNumber(t *testing.T, userType, number string) (token, userID string) {
	t.Helper()
	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"whatsapp_number": number,
		"password":        "secret123",
		"first_name":      "Awa",
		"last_name":       "Mbarga",
		"user_type":       userType,
		"country":         "Cameroun",
		"city":            "Douala",
		"neighborhood":    "Akwa",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var env testEnvelope[service.AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	return env.Data.AccessToken, env.Data.User.ID
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := range 8 {
		for y := range 8 {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// multipartRequest builds a listing form. files maps filename to content.
func multipartRequest(t *testing.T, method, path, token string, fields map[string]string, files map[string][]byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for name, data := range files {
		part, err := mw.CreateFormFile("media", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// createListing publishes a product with one photo and returns it.
func (ts *testServer) createListing(t *testing.T, token, title string) dto.Listing {
	t.Helper()
	req := multipartRequest(t, http.MethodPost, "/api/v1/listings", token, map[string]string{
		"title":        title,
		"description":  "<p>Très <b>belles</b> chaussures</p>",
		"country":      "Cameroun",
		"city":         "Douala",
		"neighborhood": "Akwa",
		"price":        "15000",
	}, map[string][]byte{"photo.png": pngBytes(t)})
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var env testEnvelope[dto.ListingWrite]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Data.Listing
}
