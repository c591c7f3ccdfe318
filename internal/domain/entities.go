package domain

import (
	"fmt"
	"time"
)

// MediaItem represents a single photograph in the portfolio
type MediaItem struct {
	ID           string    // Server-assigned identifier, stable across fetches
	Title        string    // Display title
	Description  string    // Caption / long description
	CategoryID   string    // Owning category ID (empty if uncategorized)
	CategoryName string    // Owning category display name
	SeriesID     string    // Owning series ID (empty if standalone)
	ViewCount    int       // Server-side view counter
	LikeCount    int       // Server-side like counter, adjusted locally on toggle
	CreatedAt    time.Time // Upload time
	Featured     bool      // Shown on the featured strip
	Status       string    // "published", "draft", ...

	// LikedByViewer is derived from the local like set, never from the server
	LikedByViewer bool

	// Image URLs
	ThumbURL string // Thumbnail / placeholder image URL
	FullURL  string // Full resolution image URL

	// Pixel dimensions of the full resolution asset (0 if unknown)
	Width  int
	Height int
}

// AspectLabel returns a short orientation label for the item
func (m MediaItem) AspectLabel() string {
	switch {
	case m.Width == 0 || m.Height == 0:
		return ""
	case m.Width > m.Height:
		return "landscape"
	case m.Width < m.Height:
		return "portrait"
	default:
		return "square"
	}
}

// Dimensions returns "WxH" or an empty string when unknown
func (m MediaItem) Dimensions() string {
	if m.Width == 0 || m.Height == 0 {
		return ""
	}
	return fmt.Sprintf("%dx%d", m.Width, m.Height)
}

// GetID returns the item identifier
func (m *MediaItem) GetID() string { return m.ID }

// GetTitle returns the display title, falling back to the ID
func (m *MediaItem) GetTitle() string {
	if m.Title != "" {
		return m.Title
	}
	return m.ID
}

// Category groups media items
type Category struct {
	ID          string
	Name        string
	Slug        string
	Description string
	ItemCount   int
}

// Series is an ordered, curated collection of media items
type Series struct {
	ID          string
	Slug        string
	Title       string
	Description string
	CoverURL    string
	Items       []MediaItem
	UpdatedAt   time.Time
}

// SortDir is the direction of a sort
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// Sort fields understood by the API
const (
	SortByCreated = "createdAt"
	SortByViews   = "viewCount"
	SortByLikes   = "likeCount"
	SortByTitle   = "title"
)

// QueryParams is an immutable snapshot of a gallery query
type QueryParams struct {
	SortField  string
	SortDir    SortDir
	Page       int
	PageSize   int
	CategoryID string // empty = all categories
	Featured   *bool  // nil = no featured filter
	Status     string // empty = server default
	SeriesSlug string // empty = not scoped to a series
}

// FilterKey identifies everything about the query except the page.
// Two snapshots with equal keys address the same ordered result set.
func (p QueryParams) FilterKey() string {
	featured := "-"
	if p.Featured != nil {
		featured = fmt.Sprintf("%t", *p.Featured)
	}
	return fmt.Sprintf("%s|%s|%d|%s|%s|%s|%s",
		p.SortField, p.SortDir, p.PageSize, p.CategoryID, featured, p.Status, p.SeriesSlug)
}

// Normalize fills unset fields with defaults
func (p QueryParams) Normalize() QueryParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.SortField == "" {
		p.SortField = SortByCreated
	}
	if p.SortDir != SortAsc && p.SortDir != SortDesc {
		p.SortDir = SortDesc
	}
	return p
}

// DefaultPageSize is used when a query does not specify one
const DefaultPageSize = 24

// ParamsPatch is a partial update of QueryParams.
// Nil fields are left unchanged. ClearFeatured removes the featured filter.
type ParamsPatch struct {
	SortField     *string
	SortDir       *SortDir
	Page          *int
	PageSize      *int
	CategoryID    *string
	Featured      *bool
	ClearFeatured bool
	Status        *string
	SeriesSlug    *string
}

// Apply returns a copy of p with the patch applied
func (pp ParamsPatch) Apply(p QueryParams) QueryParams {
	if pp.SortField != nil {
		p.SortField = *pp.SortField
	}
	if pp.SortDir != nil {
		p.SortDir = *pp.SortDir
	}
	if pp.Page != nil {
		p.Page = *pp.Page
	}
	if pp.PageSize != nil {
		p.PageSize = *pp.PageSize
	}
	if pp.CategoryID != nil {
		p.CategoryID = *pp.CategoryID
	}
	if pp.ClearFeatured {
		p.Featured = nil
	} else if pp.Featured != nil {
		v := *pp.Featured
		p.Featured = &v
	}
	if pp.Status != nil {
		p.Status = *pp.Status
	}
	if pp.SeriesSlug != nil {
		p.SeriesSlug = *pp.SeriesSlug
	}
	return p
}

// Pagination is the server's pagination metadata for one page
type Pagination struct {
	Page       int
	TotalPages int
	TotalCount int
	HasMore    bool
}

// PageResult is one page of media items in server order
type PageResult struct {
	Items      []MediaItem
	Pagination Pagination
}
