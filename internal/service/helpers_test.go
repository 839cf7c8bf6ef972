package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/linkmarket/link-server/internal/auth"
	"github.com/linkmarket/link-server/internal/domain"
	domainerrors "github.com/linkmarket/link-server/internal/errors"
	"github.com/linkmarket/link-server/internal/media"
	"github.com/linkmarket/link-server/internal/notify"
	"github.com/linkmarket/link-server/internal/store"
	"github.com/linkmarket/link-server/internal/store/sqlite"
)

const testShareBase = "https://link.test"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupStore(t *testing.T) store.Store {
	t.Helper()
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "link.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// fakeMedia stores nothing. Filenames starting with "bad" are rejected and
// those starting with "down" fail as if every provider were unreachable.
type fakeMedia struct {
	mu    sync.Mutex
	saved []string
}

func (f *fakeMedia) Save(_ context.Context, filename string, data []byte) (*media.Stored, error) {
	if strings.HasPrefix(filename, "bad") {
		return nil, media.ErrUnsupportedType
	}
	if strings.HasPrefix(filename, "down") {
		return nil, domainerrors.Upstream("media upload failed", errors.New("connection refused"))
	}
	if len(data) == 0 {
		return nil, media.ErrEmpty
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, filename)
	return &media.Stored{
		URL:      fmt.Sprintf("https://cdn.test/%d-%s", len(f.saved), filename),
		Type:     domain.MediaTypeImage,
		BlurHash: "LEHV6nWB2yk8",
		Provider: "fake",
	}, nil
}

type fakeAnnouncer struct {
	posts chan notify.PostCreated
}

func newFakeAnnouncer() *fakeAnnouncer {
	return &fakeAnnouncer{posts: make(chan notify.PostCreated, 4)}
}

func (f *fakeAnnouncer) PostCreated(_ context.Context, post notify.PostCreated, recipients []string) notify.Result {
	f.posts <- post
	return notify.Result{Sent: len(recipients)}
}

type fixture struct {
	store    store.Store
	media    *fakeMedia
	announce *fakeAnnouncer
	auth     *AuthService
	users    *UserService
	listings *ListingService
	feed     *FeedService
	search   *SearchService
	interact *InteractionService
	reposts  *RepostService
	comments *CommentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := setupStore(t)
	logger := testLogger()

	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	tokens, err := auth.NewTokenService(key, 0)
	require.NoError(t, err)

	fm := &fakeMedia{}
	fa := newFakeAnnouncer()
	return &fixture{
		store:    s,
		media:    fm,
		announce: fa,
		auth:     NewAuthService(s, tokens, logger),
		users:    NewUserService(s, logger),
		listings: NewListingService(s, fm, fa, ListingConfig{
			ShareBaseURL:        testShareBase,
			BroadcastRecipients: []string{"237690000099"},
		}, logger),
		feed:     NewFeedService(s, logger),
		search:   NewSearchService(s, logger),
		interact: NewInteractionService(s, testShareBase, logger),
		reposts:  NewRepostService(s, logger),
		comments: NewCommentService(s, logger),
	}
}

var seq int

// register creates an account with a unique number.
func (f *fixture) register(t *testing.T, userType domain.UserType, first string, loc domain.Location) *domain.User {
	t.Helper()
	seq++
	resp, err := f.auth.Register(context.Background(), RegisterRequest{
		WhatsAppNumber: fmt.Sprintf("+237 6900%05d", seq),
		Password:       "secret123",
		FirstName:      first,
		LastName:       "Test",
		UserType:       string(userType),
		Country:        loc.Country,
		City:           loc.City,
		Neighborhood:   loc.Neighborhood,
	})
	require.NoError(t, err)
	return resp.User
}

func (f *fixture) seller(t *testing.T, first string, loc domain.Location) *domain.User {
	return f.register(t, domain.UserTypeSeller, first, loc)
}

func (f *fixture) buyer(t *testing.T, first string, loc domain.Location) *domain.User {
	return f.register(t, domain.UserTypeBuyer, first, loc)
}

// product publishes a one-photo product at loc.
func (f *fixture) product(t *testing.T, seller *domain.User, title string, loc domain.Location) string {
	t.Helper()
	price := 1000.0
	out, err := f.listings.Create(context.Background(), seller.ID, CreateListingRequest{
		Title:        title,
		Description:  "description of " + title,
		Country:      loc.Country,
		City:         loc.City,
		Neighborhood: loc.Neighborhood,
		Kind:         string(domain.KindProduct),
		Price:        &price,
	}, []Upload{{Filename: "photo.jpg", Data: []byte("jpeg")}})
	require.NoError(t, err)
	require.Empty(t, out.FailedMedia)
	return out.Listing.ID
}

var (
	douala = domain.Location{Country: "Cameroun", City: "Douala", Neighborhood: "Akwa"}
	bonapr = domain.Location{Country: "Cameroun", City: "Douala", Neighborhood: "Bonapriso"}
	yaound = domain.Location{Country: "Cameroun", City: "Yaoundé", Neighborhood: "Bastos"}
	dakar  = domain.Location{Country: "Sénégal", City: "Dakar", Neighborhood: "Plateau"}
)
