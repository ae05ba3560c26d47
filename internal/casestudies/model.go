package casestudies

import "time"

type SubsidiaryRef struct {
	ID   string `bson:"id" json:"id"`
	Name string `bson:"name" json:"name"`
	Slug string `bson:"slug" json:"slug"`
}

type CaseStudy struct {
	ID          string         `bson:"_id,omitempty" json:"id"`
	Slug        string         `bson:"slug" json:"slug"`
	Title       string         `bson:"title" json:"title"`
	ClientName  string         `bson:"client_name" json:"client"`
	Category    string         `bson:"category,omitempty" json:"category,omitempty"`
	Description string         `bson:"description" json:"description"`
	CoverImage  string         `bson:"cover_image,omitempty" json:"coverImage,omitempty"`
	Industry    []string       `bson:"industry" json:"industry"`
	Services    []string       `bson:"services" json:"services"`
	Featured    bool           `bson:"featured" json:"featured"`
	Subsidiary  *SubsidiaryRef `bson:"subsidiary,omitempty" json:"subsidiary,omitempty"`
	IsPublished bool           `bson:"is_published" json:"is_published"`
	SortOrder   int            `bson:"sort_order" json:"sort_order"`
	CreatedAt   time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `bson:"updated_at" json:"updated_at"`
}

type UpsertRequest struct {
	Slug           string   `json:"slug" validate:"omitempty,slug"`
	Title          string   `json:"title" validate:"required,max=200"`
	ClientName     string   `json:"client" validate:"required,max=200"`
	Category       string   `json:"category" validate:"max=120"`
	Description    string   `json:"description" validate:"required"`
	CoverImage     string   `json:"coverImage" validate:"omitempty,url"`
	Industry       []string `json:"industry" validate:"dive,required,max=80"`
	Services       []string `json:"services" validate:"dive,required,max=80"`
	Featured       *bool    `json:"featured"`
	SubsidiarySlug string   `json:"subsidiary" validate:"omitempty,slug"`
	IsPublished    *bool    `json:"is_published"`
	SortOrder      *int     `json:"sort_order" validate:"omitempty,gte=0"`
}

// PublicListFilter narrows the repository query. Dimension filtering is applied in memory by Apply.
type PublicListFilter struct {
	FeaturedOnly bool
}

type AdminListFilter struct {
	SubsidiarySlug string
	Published      *bool
}

// ListResult is the payload of the public listing: the visible records plus the derived flags.
type ListResult struct {
	Items           []CaseStudy `json:"items"`
	Total           int         `json:"total"`
	Selection       Selection   `json:"selection"`
	Query           string      `json:"query,omitempty"`
	AnyActive       bool        `json:"any_active"`
	HasVisible      bool        `json:"has_visible"`
	ShowEmpty       bool        `json:"show_empty"`
	NoSearchResults bool        `json:"no_search_results"`
}
