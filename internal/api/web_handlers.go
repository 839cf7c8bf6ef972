package api

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"os"
	"strings"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/go-chi/chi/v5"

	"github.com/linkmarket/link-server/internal/contact"
	"github.com/linkmarket/link-server/internal/domain"
	"github.com/linkmarket/link-server/internal/store"
)

//go:embed templates/*.html
var templates embed.FS

var pageTemplates = template.Must(template.ParseFS(templates, "templates/*.html"))

// shareDescriptionLength caps og:description, in runes.
const shareDescriptionLength = 160

// sharePageData contains data for the listing preview template.
type sharePageData struct {
	Title       string
	Description string
	Image       string
	ShareURL    string
	RedirectURL string
}

// handleSharePage renders the social preview of a listing and forwards browsers to the web client.
// GET /share/listings/{id}
func (s *Server) handleSharePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	listing, err := s.store.GetListing(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log(ctx).Error("Failed to load listing for share page", "listing_id", id, "error", err)
		}
		s.renderPage(w, r, http.StatusNotFound, "not_found.html", map[string]string{"HomeURL": s.publicURL()})
		return
	}

	data := sharePageData{
		Title:       listing.Title,
		Description: shareDescription(listing),
		Image:       shareImage(listing.Media),
		ShareURL:    contact.ShareURL(getServerURL(r), listing.ID),
		RedirectURL: s.publicURL() + "/#/product/" + listing.ID,
	}
	s.renderPage(w, r, http.StatusOK, "share.html", data)
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		s.log(r.Context()).Error("Failed to execute template", "template", name, "error", err)
	}
}

func (s *Server) publicURL() string {
	return strings.TrimSuffix(s.opts.PublicURL, "/")
}

// shareDescription converts the description to plain text and truncates it.
func shareDescription(l *domain.Listing) string {
	text := strings.TrimSpace(l.Description)
	if text != "" {
		if md, err := htmltomarkdown.ConvertString(text); err == nil {
			text = md
		}
		text = strings.Join(strings.Fields(text), " ")
	}
	if text == "" {
		return "Découvrez ce produit sur Link à " + l.Location.City + "."
	}
	return truncateRunes(text, shareDescriptionLength)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n-1])) + "…"
}

// shareImage returns the first media URL usable by link unfurlers.
func shareImage(media []domain.Media) string {
	if len(media) == 0 {
		return ""
	}
	if u := media[0].URL; strings.HasPrefix(u, "https://") || strings.HasPrefix(u, "http://") {
		return u
	}
	return ""
}

// getServerURL extracts the server URL from the request.
func getServerURL(r *http.Request) string {
	scheme := "https"
	if r.TLS == nil {
		// Check for X-Forwarded-Proto header (common with reverse proxies)
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		} else {
			scheme = "http"
		}
	}

	host := r.Host
	if forwardedHost := r.Header.Get("X-Forwarded-Host"); forwardedHost != "" {
		host = forwardedHost
	}

	return scheme + "://" + host
}

// handleMedia serves files stored by the local media provider.
// GET /media/{name}
func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	if s.media == nil {
		http.NotFound(w, r)
		return
	}

	name := chi.URLParam(r, "name")
	f, err := s.media.Open(name)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log(r.Context()).Debug("Rejected media request", "name", name, "error", err)
		}
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Cache-Control", CacheOneWeek)
	http.ServeContent(w, r, name, info.ModTime(), f)
}
