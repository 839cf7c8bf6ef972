package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/linkmarket/link-server/internal/contact"
	"github.com/linkmarket/link-server/internal/domain"
	"github.com/linkmarket/link-server/internal/dto"
	domainerrors "github.com/linkmarket/link-server/internal/errors"
	"github.com/linkmarket/link-server/internal/id"
	"github.com/linkmarket/link-server/internal/media"
	"github.com/linkmarket/link-server/internal/notify"
	"github.com/linkmarket/link-server/internal/store"
)

// MediaSaver stores one uploaded file.
type MediaSaver interface {
	Save(ctx context.Context, filename string, data []byte) (*media.Stored, error)
}

// Announcer relays new listings to the broadcast list.
type Announcer interface {
	PostCreated(ctx context.Context, post notify.PostCreated, recipients []string) notify.Result
}

// ListingConfig holds the listing service settings.
type ListingConfig struct {
	ShareBaseURL        string
	BroadcastRecipients []string
	BroadcastTimeout    time.Duration
}

// ListingService creates, updates, deletes and reads listings.
type ListingService struct {
	store     store.Store
	media     MediaSaver
	announcer Announcer
	cfg       ListingConfig
	logger    *slog.Logger
}

// NewListingService creates a new listing service. announcer may be nil.
func NewListingService(store store.Store, media MediaSaver, announcer Announcer, cfg ListingConfig, logger *slog.Logger) *ListingService {
	if cfg.BroadcastTimeout <= 0 {
		cfg.BroadcastTimeout = time.Minute
	}
	return &ListingService{
		store:     store,
		media:     media,
		announcer: announcer,
		cfg:       cfg,
		logger:    logger,
	}
}

// Upload is one file from a multipart request.
type Upload struct {
	Filename string
	Data     []byte
}

// CreateListingRequest holds the form fields of a new listing.
type CreateListingRequest struct {
	Title          string   `form:"title" validate:"required,max=200"`
	Description    string   `form:"description" validate:"max=5000"`
	Country        string   `form:"country" validate:"required,max=100"`
	City           string   `form:"city" validate:"required,max=100"`
	Neighborhood   string   `form:"neighborhood" validate:"required,max=100"`
	WhatsAppNumber string   `form:"whatsapp_number" validate:"omitempty,whatsapp"`
	Kind           string   `form:"kind" validate:"listing_kind"`
	Price          *float64 `form:"price" validate:"omitempty,gte=0"`
	IsUrgent       bool     `form:"is_urgent"`
	Category       string   `form:"category" validate:"max=100"`
}

// UpdateListingRequest is a partial update. Nil fields are left unchanged.
type UpdateListingRequest struct {
	Title          *string  `form:"title" validate:"omitempty,min=1,max=200"`
	Description    *string  `form:"description" validate:"omitempty,max=5000"`
	Country        *string  `form:"country" validate:"omitempty,min=1,max=100"`
	City           *string  `form:"city" validate:"omitempty,min=1,max=100"`
	Neighborhood   *string  `form:"neighborhood" validate:"omitempty,min=1,max=100"`
	WhatsAppNumber *string  `form:"whatsapp_number" validate:"omitempty,whatsapp"`
	Price          *float64 `form:"price" validate:"omitempty,gte=0"`
	IsUrgent       *bool    `form:"is_urgent"`
	Category       *string  `form:"category" validate:"omitempty,max=100"`
	RemovedMedia   []string `form:"removed_media"`
}

// Create publishes a listing for a seller. The listing is committed before
// the files are uploaded; uploads that fail are reported, not rolled back.
func (s *ListingService) Create(ctx context.Context, userID string, req CreateListingRequest, files []Upload) (*dto.ListingWrite, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if !user.IsSeller() {
		return nil, domainerrors.Forbidden("only sellers can publish listings")
	}

	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	kind, err := domain.ParseKind(req.Kind)
	if err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	var details domain.Details
	switch kind {
	case domain.KindNeed:
		details = domain.NeedDetails{Urgent: req.IsUrgent, Category: strings.TrimSpace(req.Category)}
	case domain.KindAnnouncement:
		details = domain.AnnouncementDetails{}
	default:
		details = domain.ProductDetails{Price: req.Price}
	}
	if err := checkFiles(details, len(files), true); err != nil {
		return nil, err
	}

	listingID, err := id.Generate(id.Listing)
	if err != nil {
		return nil, fmt.Errorf("generate listing ID: %w", err)
	}

	number := strings.TrimSpace(req.WhatsAppNumber)
	if number == "" {
		number = user.WhatsAppNumber
	}

	listing := &domain.Listing{
		Record:      domain.Record{ID: listingID},
		SellerID:    user.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Location: domain.Location{
			Country:      strings.TrimSpace(req.Country),
			City:         strings.TrimSpace(req.City),
			Neighborhood: strings.TrimSpace(req.Neighborhood),
		},
		WhatsAppNumber: number,
		Details:        details,
	}
	listing.InitTimestamps()

	if err := s.store.CreateListing(ctx, listing); err != nil {
		return nil, mapStoreError(err)
	}

	failed := s.attach(ctx, listing.ID, files)

	s.logger.Info("listing created",
		"listing_id", listing.ID,
		"kind", kind,
		"media", len(files)-len(failed),
		"failed_media", len(failed),
	)

	s.announce(user, listing)

	return s.result(ctx, listing.ID, userID, failed)
}

// Update applies a partial update for the listing owner.
func (s *ListingService) Update(ctx context.Context, userID, listingID string, req UpdateListingRequest, files []Upload) (*dto.ListingWrite, error) {
	listing, err := s.owned(ctx, userID, listingID)
	if err != nil {
		return nil, err
	}
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if err := checkFiles(listing.Details, len(files), false); err != nil {
		return nil, err
	}

	setTrimmed(&listing.Title, req.Title)
	setTrimmed(&listing.Description, req.Description)
	setTrimmed(&listing.Location.Country, req.Country)
	setTrimmed(&listing.Location.City, req.City)
	setTrimmed(&listing.Location.Neighborhood, req.Neighborhood)
	setTrimmed(&listing.WhatsAppNumber, req.WhatsAppNumber)

	switch d := listing.Details.(type) {
	case domain.ProductDetails:
		if req.Price != nil {
			d.Price = req.Price
		}
		listing.Details = d
	case domain.NeedDetails:
		if req.IsUrgent != nil {
			d.Urgent = *req.IsUrgent
		}
		setTrimmed(&d.Category, req.Category)
		listing.Details = d
	}
	listing.Touch()

	if err := s.store.UpdateListing(ctx, listing); err != nil {
		return nil, mapStoreError(err)
	}
	if len(req.RemovedMedia) > 0 {
		if _, err := s.store.RemoveMedia(ctx, listing.ID, req.RemovedMedia); err != nil {
			return nil, mapStoreError(err)
		}
	}

	failed := s.attach(ctx, listing.ID, files)
	return s.result(ctx, listing.ID, userID, failed)
}

// Delete removes a listing owned by userID.
func (s *ListingService) Delete(ctx context.Context, userID, listingID string) error {
	if _, err := s.owned(ctx, userID, listingID); err != nil {
		return err
	}
	if err := s.store.DeleteListing(ctx, listingID); err != nil {
		return mapStoreError(err)
	}
	s.logger.Info("listing deleted", "listing_id", listingID)
	return nil
}

// Get registers a view for viewerKey and returns the hydrated listing.
func (s *ListingService) Get(ctx context.Context, listingID, viewerID, viewerKey string) (*dto.Listing, error) {
	if _, err := s.store.RegisterView(ctx, listingID, viewerKey); err != nil {
		return nil, mapStoreError(err)
	}
	e, err := s.store.EnrichListing(ctx, listingID, viewerID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	out := dto.FromEnriched(e)
	return &out, nil
}

func (s *ListingService) owned(ctx context.Context, userID, listingID string) (*domain.Listing, error) {
	listing, err := s.store.GetListing(ctx, listingID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if listing.SellerID != userID {
		return nil, domainerrors.Forbidden("you do not own this listing")
	}
	return listing, nil
}

// checkFiles enforces the per-kind media rules. On create a product must come with files.
func checkFiles(details domain.Details, n int, creating bool) error {
	switch {
	case n > media.MaxFiles:
		return domainerrors.Validationf("at most %d files per request", media.MaxFiles)
	case n > 0 && !domain.AcceptsMedia(details):
		return domainerrors.Validation("needs cannot carry photos or videos")
	case creating && n == 0 && domain.RequiresMedia(details):
		return domainerrors.Validation("a product needs at least one photo or video")
	}
	return nil
}

// attach uploads files and appends the successful ones to the listing.
func (s *ListingService) attach(ctx context.Context, listingID string, files []Upload) []dto.FailedMedia {
	var (
		saved   []domain.Media
		indexes []int
		failed  []dto.FailedMedia
	)
	for i, f := range files {
		stored, err := s.media.Save(ctx, f.Filename, f.Data)
		if err != nil {
			s.logger.Warn("media upload failed", "listing_id", listingID, "filename", f.Filename, "error", err)
			failed = append(failed, uploadFailure(i, f.Filename, err))
			continue
		}
		saved = append(saved, domain.Media{
			ID:       id.MustGenerate(id.Media),
			URL:      stored.URL,
			Type:     stored.Type,
			BlurHash: stored.BlurHash,
		})
		indexes = append(indexes, i)
	}
	if len(saved) == 0 {
		return failed
	}
	if _, err := s.store.AppendMedia(ctx, listingID, saved); err != nil {
		s.logger.Error("attach media failed", "listing_id", listingID, "error", err)
		for _, i := range indexes {
			failed = append(failed, dto.FailedMedia{
				Index:    i,
				Filename: files[i].Filename,
				Code:     string(domainerrors.CodeInternal),
				Reason:   "could not record media",
			})
		}
	}
	return failed
}

func uploadFailure(index int, filename string, err error) dto.FailedMedia {
	f := dto.FailedMedia{Index: index, Filename: filename}
	switch {
	case errors.Is(err, media.ErrUnsupportedType):
		f.Code, f.Reason = string(domainerrors.CodeValidation), "unsupported file type"
	case errors.Is(err, media.ErrEmpty):
		f.Code, f.Reason = string(domainerrors.CodeValidation), "empty file"
	case errors.Is(err, media.ErrTooLarge):
		f.Code, f.Reason = string(domainerrors.CodeTooLarge), "file too large"
	case errors.Is(err, domainerrors.ErrUpstream):
		f.Code, f.Reason = string(domainerrors.CodeUpstream), "upload failed"
	default:
		f.Code, f.Reason = string(domainerrors.CodeInternal), "upload failed"
	}
	return f
}

func (s *ListingService) result(ctx context.Context, listingID, viewerID string, failed []dto.FailedMedia) (*dto.ListingWrite, error) {
	e, err := s.store.EnrichListing(ctx, listingID, viewerID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return &dto.ListingWrite{Listing: dto.FromEnriched(e), FailedMedia: failed}, nil
}

// announce notifies the broadcast list on a detached goroutine.
func (s *ListingService) announce(author *domain.User, listing *domain.Listing) {
	if s.announcer == nil || len(s.cfg.BroadcastRecipients) == 0 {
		return
	}
	post := notify.PostCreated{
		AuthorName: author.DisplayName(),
		Kind:       listing.Kind(),
		Title:      listing.Title,
		ShareURL:   contact.ShareURL(s.cfg.ShareBaseURL, listing.ID),
	}
	recipients := append([]string(nil), s.cfg.BroadcastRecipients...)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.BroadcastTimeout)
		defer cancel()
		s.announcer.PostCreated(ctx, post, recipients)
	}()
}
