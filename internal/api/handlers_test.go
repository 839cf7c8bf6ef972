package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkmarket/link-server/internal/domain"
	"github.com/linkmarket/link-server/internal/dto"
)

func TestHealthCheck_Success(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	var env testEnvelope[HealthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	assert.Equal(t, 1, env.Version)
	assert.True(t, env.Success)
	assert.Equal(t, "healthy", env.Data.Status)
	assert.Equal(t, "healthy", env.Data.Components["database"].Status)
}

func TestAuth_RegisterLoginMe(t *testing.T) {
	ts := setupTestServer(t)
	token, userID := ts.registerNumber(t, "buyer", "+237 690 11 22 33")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"whatsapp_number": "237690112233",
		"password":        "secret123",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/auth/me", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	var me testEnvelope[domain.User]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &me))
	assert.Equal(t, userID, me.Data.ID)
	assert.NotContains(t, resp.Body.String(), "password")

	resp = ts.api.Post("/api/v1/auth/login", map[string]any{
		"whatsapp_number": "237690112233",
		"password":        "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestErrorEnvelope(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/users/me")
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	var env testEnvelope[any]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	assert.Equal(t, 1, env.Version)
	assert.False(t, env.Success)
	assert.Equal(t, "UNAUTHORIZED", env.Code)
	assert.NotEmpty(t, env.Error)

	resp = ts.api.Get("/api/v1/listings/lst-missing")
	require.Equal(t, http.StatusNotFound, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestRegister_InvalidBody(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"whatsapp_number": "123",
		"password":        "secret123",
		"first_name":      "Awa",
		"last_name":       "Mbarga",
		"user_type":       "buyer",
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	var env testEnvelope[any]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	assert.Equal(t, "VALIDATION", env.Code)
}

func TestListing_CreateGetDelete(t *testing.T) {
	ts := setupTestServer(t)
	sellerToken, sellerID := ts.register(t, "seller")
	otherToken, _ := ts.register(t, "seller")

	listing := ts.createListing(t, sellerToken, "Chaussures")
	assert.Equal(t, sellerID, listing.SellerID)
	require.Len(t, listing.Media, 1)
	assert.True(t, strings.HasPrefix(listing.Media[0].URL, "http://localhost:8080/media/"))
	assert.NotEmpty(t, listing.Media[0].BlurHash)

	resp := ts.api.Get("/api/v1/listings/" + listing.ID)
	require.Equal(t, http.StatusOK, resp.Code)
	var got testEnvelope[dto.Listing]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, 1, got.Data.ViewsCount)

	resp = ts.api.Delete("/api/v1/listings/"+listing.ID, bearer(otherToken))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Delete("/api/v1/listings/"+listing.ID, bearer(sellerToken))
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestListing_CreateRules(t *testing.T) {
	ts := setupTestServer(t)
	buyerToken, _ := ts.register(t, "buyer")
	sellerToken, _ := ts.register(t, "seller")

	fields := map[string]string{"title": "x", "country": "Cameroun", "city": "Douala", "neighborhood": "Akwa"}

	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, multipartRequest(t, http.MethodPost, "/api/v1/listings", "", fields, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	ts.ServeHTTP(rec, multipartRequest(t, http.MethodPost, "/api/v1/listings", buyerToken, fields, nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	ts.ServeHTTP(rec, multipartRequest(t, http.MethodPost, "/api/v1/listings", sellerToken, fields, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "products need media")

	rec = httptest.NewRecorder()
	ts.ServeHTTP(rec, multipartRequest(t, http.MethodPost, "/api/v1/listings", sellerToken, fields,
		map[string][]byte{"photo.png": pngBytes(t), "notes.txt": []byte("plain text file")}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var env testEnvelope[dto.ListingWrite]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Len(t, env.Data.Listing.Media, 1)
	require.Len(t, env.Data.FailedMedia, 1)
	assert.Equal(t, "notes.txt", env.Data.FailedMedia[0].Filename)
	assert.Equal(t, "VALIDATION", env.Data.FailedMedia[0].Code)
}

func TestListing_Update(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.register(t, "seller")
	listing := ts.createListing(t, token, "Chaussures")

	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, multipartRequest(t, http.MethodPut, "/api/v1/listings/"+listing.ID, token, map[string]string{
		"title":         "Chaussures neuves",
		"removed_media": `["` + listing.Media[0].ID + `"]`,
	}, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var env testEnvelope[dto.ListingWrite]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "Chaussures neuves", env.Data.Listing.Title)
	assert.Empty(t, env.Data.Listing.Media)
}

func TestFeedAndInterest(t *testing.T) {
	ts := setupTestServer(t)
	sellerToken, _ := ts.register(t, "seller")
	buyerToken, _ := ts.register(t, "buyer")
	listing := ts.createListing(t, sellerToken, "Chaussures")

	resp := ts.api.Get("/api/v1/listings?city=Douala", bearer(buyerToken))
	require.Equal(t, http.StatusOK, resp.Code)
	var feed testEnvelope[[]dto.Listing]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &feed))
	require.Len(t, feed.Data, 1)
	assert.Equal(t, domain.TierNeighborhood, feed.Data[0].Tier)

	resp = ts.api.Post("/api/v1/listings/"+listing.ID+"/interest", bearer(buyerToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var interest testEnvelope[domain.InterestResult]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &interest))
	assert.Equal(t, 1, interest.Data.InterestedCount)
	assert.Contains(t, interest.Data.Contact.DeepLink, "https://wa.me/")

	resp = ts.api.Post("/api/v1/listings/" + listing.ID + "/interest")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Delete("/api/v1/listings/"+listing.ID+"/interest", bearer(buyerToken))
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/listings/"+listing.ID+"/view", "X-Forwarded-For: 10.1.1.1")
	require.Equal(t, http.StatusOK, resp.Code)
	var view testEnvelope[domain.ViewResult]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &view))
	assert.True(t, view.Data.IsNewView)
}

func TestRepost_Duplicate(t *testing.T) {
	ts := setupTestServer(t)
	ownerToken, _ := ts.register(t, "seller")
	reposterToken, _ := ts.register(t, "seller")
	listing := ts.createListing(t, ownerToken, "Chaussures")

	resp := ts.api.Post("/api/v1/listings/"+listing.ID+"/repost", bearer(reposterToken))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = ts.api.Post("/api/v1/listings/"+listing.ID+"/repost", bearer(reposterToken))
	assert.Equal(t, http.StatusConflict, resp.Code)

	resp = ts.api.Post("/api/v1/listings/"+listing.ID+"/repost", bearer(ownerToken))
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestComments_AndNotifications(t *testing.T) {
	ts := setupTestServer(t)
	sellerToken, _ := ts.register(t, "seller")
	buyerToken, _ := ts.register(t, "buyer")
	listing := ts.createListing(t, sellerToken, "Chaussures")

	resp := ts.api.Post("/api/v1/listings/"+listing.ID+"/comments", bearer(buyerToken), map[string]any{"content": "Disponible ?"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var comment testEnvelope[domain.Comment]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &comment))

	resp = ts.api.Put("/api/v1/comments/"+comment.Data.ID, bearer(sellerToken), map[string]any{"content": "nope"})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Get("/api/v1/notifications", bearer(sellerToken))
	require.Equal(t, http.StatusOK, resp.Code)
	var notes testEnvelope[[]domain.Notification]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &notes))
	require.Len(t, notes.Data, 1)

	resp = ts.api.Put("/api/v1/notifications/"+notes.Data[0].ID+"/read", bearer(buyerToken))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Get("/api/v1/listings/" + listing.ID + "/comments")
	require.Equal(t, http.StatusOK, resp.Code)
	var list testEnvelope[[]domain.Comment]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	assert.Len(t, list.Data, 1)
}

func TestSearch(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.register(t, "seller")
	ts.createListing(t, token, "Téléphone Samsung")

	resp := ts.api.Get("/api/v1/search/sellers")
	require.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.api.Get("/api/v1/search/listings?keyword=telephone")
	require.Equal(t, http.StatusOK, resp.Code)
	var hits testEnvelope[[]dto.Listing]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &hits))
	require.Len(t, hits.Data, 1)

	resp = ts.api.Get("/api/v1/search/autocomplete/cities?q=dou&country=cameroun")
	require.Equal(t, http.StatusOK, resp.Code)
	var cities testEnvelope[[]string]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &cities))
	assert.Equal(t, []string{"Douala"}, cities.Data)

	resp = ts.api.Get("/api/v1/search/autocomplete/streets")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAdminStats(t *testing.T) {
	ts := setupTestServer(t)
	userToken, _ := ts.register(t, "buyer")
	adminToken, _ := ts.registerNumber(t, "buyer", "237699000000")

	resp := ts.api.Get("/api/v1/admin/stats", bearer(userToken))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Get("/api/v1/admin/stats", bearer(adminToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var stats testEnvelope[domain.AdminStats]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Data.Users.Total)
}

func TestSharePage(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.register(t, "seller")
	listing := ts.createListing(t, token, "Chaussures")

	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/share/listings/"+listing.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)

	title, _ := doc.Find(`meta[property="og:title"]`).Attr("content")
	assert.Equal(t, "Chaussures", title)
	desc, _ := doc.Find(`meta[property="og:description"]`).Attr("content")
	assert.Equal(t, "Très **belles** chaussures", desc)
	image, _ := doc.Find(`meta[property="og:image"]`).Attr("content")
	assert.Equal(t, listing.Media[0].URL, image)
	href, _ := doc.Find("#open-link").Attr("href")
	assert.Equal(t, testPublicURL+"/#/product/"+listing.ID, href)

	rec = httptest.NewRecorder()
	ts.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/share/listings/lst-missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMediaServing(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.register(t, "seller")
	listing := ts.createListing(t, token, "Chaussures")

	name := listing.Media[0].URL[strings.LastIndex(listing.Media[0].URL, "/")+1:]
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/media/"+name, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, CacheOneWeek, rec.Header().Get("Cache-Control"))
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = httptest.NewRecorder()
	ts.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/media/..%2Fauth.key", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
