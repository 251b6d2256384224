// Package posts implements the travel story service.
package posts

import (
	"github.com/wayfarer-travel/wayfarer/internal/crud"
)

// Visibility controls who may read a post.
type Visibility string

const (
	VisibilityDraft   Visibility = "DRAFT"
	VisibilityPrivate Visibility = "PRIVATE"
	VisibilityPublic  Visibility = "PUBLIC"
)

// Post is a travel story written by a member.
type Post struct {
	crud.Record
	Title      string
	Slug       string
	Summary    string
	Body       string
	Visibility Visibility
}

// EntitySlug implements crud.Entity.
func (p *Post) EntitySlug() string { return p.Slug }
