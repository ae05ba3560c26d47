package subsidiaries

import "time"

// Theme is the palette a subsidiary page renders with.
type Theme struct {
	Primary    string `bson:"primary" json:"primary"`
	Accent     string `bson:"accent" json:"accent"`
	Background string `bson:"background" json:"background"`
	Text       string `bson:"text" json:"text"`
}

var DefaultTheme = Theme{
	Primary:    "#111111",
	Accent:     "#f5c400",
	Background: "#ffffff",
	Text:       "#111111",
}

type Subsidiary struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Slug        string    `bson:"slug" json:"slug"`
	Tagline     string    `bson:"tagline" json:"tagline"`
	Description string    `bson:"description" json:"description"`
	LogoURL     string    `bson:"logo_url,omitempty" json:"logo_url,omitempty"`
	WebsiteURL  string    `bson:"website_url,omitempty" json:"website_url,omitempty"`
	Theme       Theme     `bson:"theme" json:"theme"`
	Services    []string  `bson:"services" json:"services"`
	IsPublic    bool      `bson:"is_public" json:"is_public"`
	SortOrder   int       `bson:"sort_order" json:"sort_order"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

type ThemeRequest struct {
	Primary    string `json:"primary" validate:"omitempty,hexcolor"`
	Accent     string `json:"accent" validate:"omitempty,hexcolor"`
	Background string `json:"background" validate:"omitempty,hexcolor"`
	Text       string `json:"text" validate:"omitempty,hexcolor"`
}

type UpsertRequest struct {
	Name        string       `json:"name" validate:"required,max=120"`
	Slug        string       `json:"slug" validate:"omitempty,slug"`
	Tagline     string       `json:"tagline" validate:"max=200"`
	Description string       `json:"description" validate:"required"`
	LogoURL     string       `json:"logo_url" validate:"omitempty,url"`
	WebsiteURL  string       `json:"website_url" validate:"omitempty,url"`
	Theme       ThemeRequest `json:"theme"`
	Services    []string     `json:"services" validate:"dive,required,max=80"`
	IsPublic    *bool        `json:"is_public"`
	SortOrder   *int         `json:"sort_order" validate:"omitempty,gte=0"`
}
