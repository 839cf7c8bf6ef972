package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	domainerrors "github.com/linkmarket/link-server/internal/errors"
	"github.com/linkmarket/link-server/internal/media"
	"github.com/linkmarket/link-server/internal/service"
)

// listingForm is a parsed listing multipart body.
type listingForm struct {
	form  *multipart.Form
	files []service.Upload
}

func (f *listingForm) cleanup() {
	if f.form != nil {
		_ = f.form.RemoveAll()
	}
}

// parseListingForm reads the form fields and every file under the media field names.
// Files larger than the configured cap are passed through truncated so the media
// store reports them as too large.
func (s *Server) parseListingForm(w http.ResponseWriter, r *http.Request) (*listingForm, error) {
	limit := int64(media.MaxFiles)*(s.opts.MaxFileSize+1) + multipartMemory
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, domainerrors.TooLarge("request body too large")
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, domainerrors.Validation("expected a multipart/form-data body")
		}
		return nil, domainerrors.Validation("failed to parse form data")
	}

	out := &listingForm{form: r.MultipartForm}
	var headers []*multipart.FileHeader
	for _, field := range mediaFields {
		headers = append(headers, r.MultipartForm.File[field]...)
	}
	if len(headers) > media.MaxFiles {
		out.cleanup()
		return nil, domainerrors.Validationf("at most %d files per request", media.MaxFiles)
	}

	for _, h := range headers {
		data, err := readPart(h, s.opts.MaxFileSize)
		if err != nil {
			out.cleanup()
			return nil, err
		}
		out.files = append(out.files, service.Upload{Filename: h.Filename, Data: data})
	}
	return out, nil
}

func readPart(h *multipart.FileHeader, maxSize int64) ([]byte, error) {
	f, err := h.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %q: %w", h.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload %q: %w", h.Filename, err)
	}
	return data, nil
}

func (f *listingForm) value(key string) (string, bool) {
	v, ok := f.form.Value[key]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

func (f *listingForm) str(key string) string {
	v, _ := f.value(key)
	return v
}

func (f *listingForm) strPtr(key string) *string {
	v, ok := f.value(key)
	if !ok {
		return nil
	}
	return &v
}

func (f *listingForm) floatPtr(key string) (*float64, error) {
	v, ok := f.value(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil, nil
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return nil, domainerrors.Validationf("%s must be a number", key)
	}
	return &n, nil
}

func (f *listingForm) boolPtr(key string) (*bool, error) {
	v, ok := f.value(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil, nil
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "yes":
		b := true
		return &b, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return nil, domainerrors.Validationf("%s must be a boolean", key)
	}
	return &b, nil
}

// ids reads removed_media as a JSON array, falling back to repeated or comma-separated fields.
func (f *listingForm) ids(key string) ([]string, error) {
	values := f.form.Value[key]
	if len(values) == 1 && strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		var out []string
		if err := json.Unmarshal([]byte(values[0]), &out); err != nil {
			return nil, domainerrors.Validationf("%s must be a JSON array of ids", key)
		}
		return out, nil
	}
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (f *listingForm) createRequest() (service.CreateListingRequest, error) {
	price, err := f.floatPtr("price")
	if err != nil {
		return service.CreateListingRequest{}, err
	}
	urgent, err := f.boolPtr("is_urgent")
	if err != nil {
		return service.CreateListingRequest{}, err
	}
	return service.CreateListingRequest{
		Title:          f.str("title"),
		Description:    f.str("description"),
		Country:        f.str("country"),
		City:           f.str("city"),
		Neighborhood:   f.str("neighborhood"),
		WhatsAppNumber: f.str("whatsapp_number"),
		Kind:           f.str("kind"),
		Price:          price,
		IsUrgent:       urgent != nil && *urgent,
		Category:       f.str("category"),
	}, nil
}

func (f *listingForm) updateRequest() (service.UpdateListingRequest, error) {
	price, err := f.floatPtr("price")
	if err != nil {
		return service.UpdateListingRequest{}, err
	}
	urgent, err := f.boolPtr("is_urgent")
	if err != nil {
		return service.UpdateListingRequest{}, err
	}
	removed, err := f.ids("removed_media")
	if err != nil {
		return service.UpdateListingRequest{}, err
	}
	return service.UpdateListingRequest{
		Title:          f.strPtr("title"),
		Description:    f.strPtr("description"),
		Country:        f.strPtr("country"),
		City:           f.strPtr("city"),
		Neighborhood:   f.strPtr("neighborhood"),
		WhatsAppNumber: f.strPtr("whatsapp_number"),
		Price:          price,
		IsUrgent:       urgent,
		Category:       f.strPtr("category"),
		RemovedMedia:   removed,
	}, nil
}
