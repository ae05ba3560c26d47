package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/Mrwire/geniusad-sub002/internal/auth"
	"github.com/Mrwire/geniusad-sub002/internal/casestudies"
	"github.com/Mrwire/geniusad-sub002/internal/config"
	"github.com/Mrwire/geniusad-sub002/internal/db"
	"github.com/Mrwire/geniusad-sub002/internal/pages"
	"github.com/Mrwire/geniusad-sub002/internal/subsidiaries"
	"github.com/Mrwire/geniusad-sub002/internal/users"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type seedUser struct {
	Email       string
	Name        string
	Role        string
	PasswordEnv string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		log.Fatal(err)
	}

	subsService := subsidiaries.NewService(subsidiaries.NewRepository(cols.Subsidiaries), cfg.Timezone)
	caseService := casestudies.NewService(casestudies.NewRepository(cols.CaseStudies), cfg.Timezone, subsService)
	pagesService := pages.NewService(pages.NewRepository(cols.Pages), cfg.Timezone, cfg.DefaultLocale)

	for _, req := range seedSubsidiaries() {
		if _, err := subsService.Create(ctx, req); err != nil {
			if errors.Is(err, subsidiaries.ErrSlugExists) {
				log.Printf("seed subsidiary: %s exists, skipping", req.Slug)
				continue
			}
			log.Fatalf("seed subsidiary error for %s: %v", req.Slug, err)
		}
	}

	for _, req := range seedCaseStudies() {
		if _, err := caseService.Create(ctx, req); err != nil {
			if errors.Is(err, casestudies.ErrSlugExists) {
				log.Printf("seed case study: %s exists, skipping", req.Slug)
				continue
			}
			log.Fatalf("seed case study error for %s: %v", req.Slug, err)
		}
	}

	for _, req := range seedPages() {
		if _, err := pagesService.Create(ctx, req); err != nil {
			if errors.Is(err, pages.ErrPageExists) {
				log.Printf("seed page: %s/%s exists, skipping", req.Locale, req.Slug)
				continue
			}
			log.Fatalf("seed page error for %s/%s: %v", req.Locale, req.Slug, err)
		}
	}

	staff := []seedUser{
		{Email: envOrDefault("ADMIN_EMAIL", ""), Name: envOrDefault("ADMIN_NAME", "Admin"), Role: users.RoleAdmin, PasswordEnv: "ADMIN_PASSWORD"},
		{Email: envOrDefault("EDITOR_EMAIL", ""), Name: envOrDefault("EDITOR_NAME", "Editor"), Role: users.RoleEditor, PasswordEnv: "EDITOR_PASSWORD"},
	}
	usersRepo := users.NewRepository(cols.Users)
	for _, u := range staff {
		password := os.Getenv(u.PasswordEnv)
		if u.Email == "" || password == "" {
			log.Printf("seed user: %s missing, skipping (%s)", u.Role, u.PasswordEnv)
			continue
		}
		if err := seedStaffUser(ctx, usersRepo, u, password, cfg.Timezone); err != nil {
			log.Fatalf("seed user error for %s: %v", u.Email, err)
		}
	}

	log.Println("seed completed")
}

func seedStaffUser(ctx context.Context, repo *users.MongoRepository, u seedUser, password string, loc *time.Location) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	now := time.Now().In(loc)
	return repo.Upsert(ctx, users.User{
		ID:           primitive.NewObjectID().Hex(),
		Email:        users.NormalizeEmail(u.Email),
		Name:         u.Name,
		PasswordHash: hash,
		Role:         u.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func seedSubsidiaries() []subsidiaries.UpsertRequest {
	public := true
	return []subsidiaries.UpsertRequest{
		{
			Name:        "Genius Studio",
			Slug:        "studio",
			Tagline:     "Brand identity and film",
			Description: "Brand platforms, art direction and video production.",
			Theme:       subsidiaries.ThemeRequest{Primary: "#1d1d1b", Accent: "#f5c400"},
			Services:    []string{"Branding", "Video"},
			IsPublic:    &public,
		},
		{
			Name:        "Genius Digital",
			Slug:        "digital",
			Tagline:     "Websites, apps and campaigns",
			Description: "Product design, web development and performance marketing.",
			Theme:       subsidiaries.ThemeRequest{Primary: "#0b2545", Accent: "#13c4a3"},
			Services:    []string{"Web", "Social media"},
			IsPublic:    &public,
		},
		{
			Name:        "Genius Events",
			Slug:        "events",
			Tagline:     "Live experiences",
			Description: "Corporate events, launches and activations.",
			Theme:       subsidiaries.ThemeRequest{Primary: "#5a189a", Accent: "#ff9e00"},
			Services:    []string{"Events"},
			IsPublic:    &public,
		},
	}
}

func seedCaseStudies() []casestudies.UpsertRequest {
	featured := true
	published := true
	return []casestudies.UpsertRequest{
		{
			Slug:           "atlas-bank-rebrand",
			Title:          "Atlas Bank rebrand",
			ClientName:     "Atlas Bank",
			Category:       "Branding",
			Description:    "A new identity system rolled out across 120 branches.",
			Industry:       []string{"Finance"},
			Services:       []string{"Branding", "Video"},
			Featured:       &featured,
			SubsidiarySlug: "studio",
			IsPublished:    &published,
		},
		{
			Slug:           "oasis-telecom-app",
			Title:          "Oasis Telecom customer app",
			ClientName:     "Oasis Telecom",
			Category:       "Digital",
			Description:    "Self-care mobile app with 1M monthly users.",
			Industry:       []string{"Telecom"},
			Services:       []string{"Web", "Social media"},
			Featured:       &featured,
			SubsidiarySlug: "digital",
			IsPublished:    &published,
		},
		{
			Slug:           "marrakech-auto-show",
			Title:          "Marrakech auto show",
			ClientName:     "Sahara Motors",
			Category:       "Events",
			Description:    "Stand design and launch event for a new model range.",
			Industry:       []string{"Automotive"},
			Services:       []string{"Events", "Video"},
			SubsidiarySlug: "events",
			IsPublished:    &published,
		},
	}
}

func seedPages() []pages.UpsertRequest {
	published := true
	return []pages.UpsertRequest{
		{
			Slug:   "home",
			Locale: "fr",
			Title:  "Genius, groupe de communication",
			Sections: []pages.SectionRequest{
				{Kind: pages.SectionHero, Heading: "Nous créons des marques qui comptent", Body: "Un écosystème d'agences au service de vos ambitions."},
				{Kind: pages.SectionEcosystem, Heading: "Notre écosystème"},
				{Kind: pages.SectionShowcase, Heading: "Réalisations"},
				{Kind: pages.SectionCTA, Heading: "Un projet ?", CTA: &pages.CTARequest{Label: "Contactez-nous", URL: "/contact"}},
			},
			IsPublished: &published,
		},
		{
			Slug:   "home",
			Locale: "en",
			Title:  "Genius, communication group",
			Sections: []pages.SectionRequest{
				{Kind: pages.SectionHero, Heading: "We build brands that matter", Body: "A network of agencies working for your ambitions."},
				{Kind: pages.SectionEcosystem, Heading: "Our ecosystem"},
				{Kind: pages.SectionShowcase, Heading: "Work"},
				{Kind: pages.SectionCTA, Heading: "Got a project?", CTA: &pages.CTARequest{Label: "Contact us", URL: "/contact"}},
			},
			IsPublished: &published,
		},
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
