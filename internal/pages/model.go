package pages

import "time"

// Section kinds tell the front-end which presentational component to mount.
const (
	SectionHero      = "hero"
	SectionText      = "text"
	SectionEcosystem = "ecosystem"
	SectionShowcase  = "showcase"
	SectionGallery   = "gallery"
	SectionScene     = "scene"
	SectionCTA       = "cta"
)

type CTA struct {
	Label string `bson:"label" json:"label"`
	URL   string `bson:"url" json:"url"`
}

type Section struct {
	Kind    string   `bson:"kind" json:"kind"`
	Heading string   `bson:"heading,omitempty" json:"heading,omitempty"`
	Body    string   `bson:"body,omitempty" json:"body,omitempty"`
	Image   string   `bson:"image,omitempty" json:"image,omitempty"`
	Items   []string `bson:"items,omitempty" json:"items,omitempty"`
	CTA     *CTA     `bson:"cta,omitempty" json:"cta,omitempty"`
}

type Page struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Slug        string    `bson:"slug" json:"slug"`
	Locale      string    `bson:"locale" json:"locale"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Sections    []Section `bson:"sections" json:"sections"`
	IsPublished bool      `bson:"is_published" json:"is_published"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

type CTARequest struct {
	Label string `json:"label" validate:"required,max=80"`
	URL   string `json:"url" validate:"required,max=500"`
}

type SectionRequest struct {
	Kind    string      `json:"kind" validate:"required,oneof=hero text ecosystem showcase gallery scene cta"`
	Heading string      `json:"heading" validate:"max=200"`
	Body    string      `json:"body" validate:"max=20000"`
	Image   string      `json:"image" validate:"max=500"`
	Items   []string    `json:"items" validate:"dive,max=500"`
	CTA     *CTARequest `json:"cta"`
}

type UpsertRequest struct {
	Slug        string           `json:"slug" validate:"required,slug"`
	Locale      string           `json:"locale" validate:"required,locale"`
	Title       string           `json:"title" validate:"required,max=200"`
	Description string           `json:"description" validate:"max=500"`
	Sections    []SectionRequest `json:"sections" validate:"dive"`
	IsPublished *bool            `json:"is_published"`
}
