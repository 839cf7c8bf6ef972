// Package main provides a tool to seed a SQLite database with demo marketplace data.
//
// It registers sellers and buyers across a few cities, publishes products,
// announcements and needs, and adds views, interest, comments and reposts so
// the feed, search and admin stats have something to show.
//
// Usage:
//
//	DATA_PATH=~/Link/data go run ./cmd/seed
//	DATA_PATH=~/Link/data go run ./cmd/seed --sellers 20 --buyers 40
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/linkmarket/link-server/internal/auth"
	"github.com/linkmarket/link-server/internal/domain"
	"github.com/linkmarket/link-server/internal/media"
	"github.com/linkmarket/link-server/internal/service"
	"github.com/linkmarket/link-server/internal/store/sqlite"
)

var (
	sellers  = flag.Int("sellers", 8, "Number of sellers to create")
	buyers   = flag.Int("buyers", 16, "Number of buyers to create")
	perUser  = flag.Int("listings", 4, "Listings per seller")
	baseURL  = flag.String("base-url", "http://localhost:8080", "Public base URL for media and share links")
	password = flag.String("password", "secret123", "Password for every seeded account")
)

var places = []domain.Location{
	{Country: "Cameroun", City: "Douala", Neighborhood: "Akwa"},
	{Country: "Cameroun", City: "Douala", Neighborhood: "Bonapriso"},
	{Country: "Cameroun", City: "Douala", Neighborhood: "Bonamoussadi"},
	{Country: "Cameroun", City: "Yaoundé", Neighborhood: "Bastos"},
	{Country: "Cameroun", City: "Yaoundé", Neighborhood: "Mvog-Mbi"},
	{Country: "Sénégal", City: "Dakar", Neighborhood: "Plateau"},
	{Country: "Côte d'Ivoire", City: "Abidjan", Neighborhood: "Cocody"},
}

var firstNames = []string{"Awa", "Binta", "Jean", "Marie", "Paul", "Fatou", "Yannick", "Aïcha", "Serge", "Chantal"}

var products = []string{
	"Téléphone Samsung Galaxy A14", "Chaussures Nike taille 42", "Sac à main en cuir",
	"Réfrigérateur LG 300L", "Robe en pagne wax", "Ordinateur portable HP",
	"Télévision Sony 43 pouces", "Machine à coudre Singer", "Vélo tout terrain",
}

var announcements = []string{
	"Promotion sur les tissus ce week-end", "Ouverture de notre nouvelle boutique",
	"Livraison gratuite à Douala", "Arrivage de pièces détachées",
}

var needs = []string{
	"Je cherche un iPhone d'occasion", "Besoin d'un plombier à Akwa",
	"Recherche appartement 2 pièces", "Je cherche une moto Yamaha",
}

var comments = []string{
	"Toujours disponible ?", "Le prix est négociable ?", "Vous livrez ?",
	"Je suis intéressé", "Quelle est la couleur ?",
}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/Link/data")
	}
	dbPath := filepath.Join(dataPath, "link.db")

	fmt.Printf("Opening database at: %s\n", dbPath)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := sqlite.Open(dbPath, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	key, err := auth.LoadOrGenerateKey(dataPath)
	if err != nil {
		log.Fatalf("Failed to load auth key: %v", err)
	}
	tokens, err := auth.NewTokenService(key, 0)
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}

	local, err := media.NewLocalProvider(filepath.Join(dataPath, "media"), *baseURL)
	if err != nil {
		log.Fatalf("Failed to open media dir: %v", err)
	}
	mediaStore := media.NewWithProviders(logger, 0, local)

	authService := service.NewAuthService(s, tokens, logger)
	listingService := service.NewListingService(s, mediaStore, nil, service.ListingConfig{ShareBaseURL: *baseURL}, logger)
	interactionService := service.NewInteractionService(s, *baseURL, logger)
	commentService := service.NewCommentService(s, logger)
	repostService := service.NewRepostService(s, logger)

	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	stamp := time.Now().Unix() % 100000

	register := func(i int, userType domain.UserType) *domain.User {
		place := places[rng.Intn(len(places))]
		resp, err := authService.Register(ctx, service.RegisterRequest{
			WhatsAppNumber: fmt.Sprintf("+237 6%05d%03d", stamp, i),
			Password:       *password,
			FirstName:      firstNames[rng.Intn(len(firstNames))],
			LastName:       fmt.Sprintf("Demo%d", i),
			UserType:       string(userType),
			Country:        place.Country,
			City:           place.City,
			Neighborhood:   place.Neighborhood,
		})
		if err != nil {
			log.Fatalf("Failed to register %s %d: %v", userType, i, err)
		}
		return resp.User
	}

	var sellerUsers, buyerUsers []*domain.User
	for i := range *sellers {
		sellerUsers = append(sellerUsers, register(i, domain.UserTypeSeller))
	}
	for i := range *buyers {
		buyerUsers = append(buyerUsers, register(*sellers+i, domain.UserTypeBuyer))
	}
	fmt.Printf("Created %d sellers and %d buyers (password %q)\n", len(sellerUsers), len(buyerUsers), *password)

	var listingIDs []string
	for _, seller := range sellerUsers {
		for range *perUser {
			req, files := randomListing(rng, seller)
			out, err := listingService.Create(ctx, seller.ID, req, files)
			if err != nil {
				log.Printf("Failed to create listing for %s: %v", seller.ID, err)
				continue
			}
			listingIDs = append(listingIDs, out.Listing.ID)
		}
	}
	fmt.Printf("Created %d listings\n", len(listingIDs))

	var interests, notes, reposts int
	for _, buyer := range buyerUsers {
		for _, listingID := range pick(rng, listingIDs, 5) {
			if _, err := interactionService.RegisterView(ctx, listingID, domain.ViewerKey(buyer.ID, "")); err != nil {
				log.Printf("Failed to register view: %v", err)
			}
			if rng.Intn(2) == 0 {
				if _, err := interactionService.MarkInterest(ctx, listingID, buyer.ID); err == nil {
					interests++
				}
			}
			if rng.Intn(3) == 0 {
				if _, err := commentService.Create(ctx, listingID, buyer.ID, comments[rng.Intn(len(comments))]); err == nil {
					notes++
				}
			}
		}
	}

	for _, seller := range sellerUsers {
		for _, listingID := range pick(rng, listingIDs, 1) {
			// Own listings and duplicates are rejected; that is fine here.
			if _, err := repostService.Repost(ctx, listingID, seller.ID); err == nil {
				reposts++
			}
		}
	}

	fmt.Printf("Added %d interests, %d comments, %d reposts\n", interests, notes, reposts)
	fmt.Println("Seeding complete!")
}

func randomListing(rng *rand.Rand, seller *domain.User) (service.CreateListingRequest, []service.Upload) {
	req := service.CreateListingRequest{
		Country:      seller.Country,
		City:         seller.City,
		Neighborhood: seller.Neighborhood,
	}

	switch n := rng.Intn(10); {
	case n < 6:
		req.Kind = string(domain.KindProduct)
		req.Title = products[rng.Intn(len(products))]
		req.Description = "<p>Très bon état, prix à débattre.</p>"
		price := float64(rng.Intn(200)+1) * 500
		req.Price = &price
		return req, []service.Upload{{Filename: "photo.png", Data: swatch(rng)}}
	case n < 8:
		req.Kind = string(domain.KindAnnouncement)
		req.Title = announcements[rng.Intn(len(announcements))]
		return req, []service.Upload{{Filename: "banner.png", Data: swatch(rng)}}
	default:
		req.Kind = string(domain.KindNeed)
		req.Title = needs[rng.Intn(len(needs))]
		req.IsUrgent = rng.Intn(3) == 0
		req.Category = "divers"
		return req, nil
	}
}

// swatch renders a small two-tone PNG so products get a real image and blurhash.
func swatch(rng *rand.Rand) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	a := color.RGBA{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256)), A: 255}
	b := color.RGBA{R: a.B, G: a.R, B: a.G, A: 255}
	for x := range 64 {
		for y := range 64 {
			if x+y < 64 {
				img.Set(x, y, a)
			} else {
				img.Set(x, y, b)
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		log.Fatalf("Failed to encode image: %v", err)
	}
	return buf.Bytes()
}

func pick(rng *rand.Rand, ids []string, n int) []string {
	if len(ids) <= n {
		return ids
	}
	out := make([]string, 0, n)
	for _, i := range rng.Perm(len(ids))[:n] {
		out = append(out, ids[i])
	}
	return out
}
