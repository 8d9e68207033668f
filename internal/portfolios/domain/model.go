package domain

import "time"

// Portfolio represents a user's submitted body of work
type Portfolio struct {
	ID             string     `json:"id" yaml:"id"`
	UserID         string     `json:"user_id" yaml:"user_id"`
	Title          string     `json:"title" yaml:"title"`
	Description    string     `json:"description" yaml:"description"`
	WebsiteURL     string     `json:"website_url" yaml:"website_url"`
	Images         []string   `json:"images" yaml:"images"`
	Tags           []string   `json:"tags" yaml:"tags"`
	Tools          []string   `json:"tools" yaml:"tools"`
	Styles         []string   `json:"styles" yaml:"styles"`
	Status         string     `json:"status" yaml:"status"` // draft, pending, approved, declined
	Approved       bool       `json:"approved" yaml:"approved"`
	Published      bool       `json:"published" yaml:"published"`
	IsVisible      bool       `json:"is_visible" yaml:"is_visible"`
	PublishedAt    *time.Time `json:"published_at,omitempty" yaml:"published_at,omitempty"`
	DeclinedReason *string    `json:"declined_reason,omitempty" yaml:"declined_reason,omitempty"`
	CreatedAt      time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" yaml:"updated_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty" yaml:"deleted_at,omitempty"`
	DeletedBy      *string    `json:"deleted_by,omitempty" yaml:"deleted_by,omitempty"`
}

// Stored status values
const (
	StatusDraft    = "draft"
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusDeclined = "declined"
)

// Content limits
const (
	MaxImages = 4
	MaxTags   = 5
	MaxTools  = 5
	MaxStyles = 5

	MinFeedbackForSubmit = 5
)

func (p *Portfolio) IsDeleted() bool {
	return p.DeletedAt != nil
}

// DraftContent is the editable part of a portfolio
type DraftContent struct {
	Title       string   `json:"title" validate:"max=120"`
	Description string   `json:"description" validate:"max=2000"`
	WebsiteURL  string   `json:"website_url" validate:"omitempty,url,max=500"`
	Images      []string `json:"images" validate:"max=4,dive,required"`
	Tags        []string `json:"tags" validate:"max=5,dive,required,max=40"`
	Tools       []string `json:"tools" validate:"max=5,dive,required"`
	Styles      []string `json:"styles" validate:"max=5,dive,required"`
}

// ApplyTo copies the content fields onto p.
func (d DraftContent) ApplyTo(p *Portfolio) {
	p.Title = d.Title
	p.Description = d.Description
	p.WebsiteURL = d.WebsiteURL
	p.Images = nonNil(d.Images)
	p.Tags = nonNil(d.Tags)
	p.Tools = nonNil(d.Tools)
	p.Styles = nonNil(d.Styles)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
