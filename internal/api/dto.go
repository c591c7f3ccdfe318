package api

import "time"

// PaginationDTO is the pagination block of list responses
type PaginationDTO struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit,omitempty"`
	TotalPages int  `json:"totalPages"`
	Total      int  `json:"total"`
	HasMore    bool `json:"hasMore"`
}

// ImageListResponse is the body of GET /api/images
type ImageListResponse struct {
	Data       []ImageDTO    `json:"data"`
	Pagination PaginationDTO `json:"pagination"`
}

// CategoryRef is the embedded category of an image
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// ImageDTO is one image as returned by the API
type ImageDTO struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	CategoryID   string       `json:"categoryId,omitempty"`
	Category     *CategoryRef `json:"category,omitempty"`
	SeriesID     string       `json:"seriesId,omitempty"`
	ViewCount    int          `json:"viewCount"`
	LikeCount    int          `json:"likeCount"`
	CreatedAt    time.Time    `json:"createdAt"`
	Featured     bool         `json:"featured"`
	Status       string       `json:"status,omitempty"`
	URL          string       `json:"url"`
	ThumbnailURL string       `json:"thumbnailUrl,omitempty"`
	Width        int          `json:"width,omitempty"`
	Height       int          `json:"height,omitempty"`
}

// CategoryListResponse is the body of GET /api/categories
type CategoryListResponse struct {
	Data []CategoryDTO `json:"data"`
}

// CategoryDTO is one category
type CategoryDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	ImageCount  int    `json:"imageCount,omitempty"`
}

// SeriesResponse is the body of GET /api/series/{slug}
type SeriesResponse struct {
	Data SeriesDTO `json:"data"`
}

// SeriesDTO is a series with its images
type SeriesDTO struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	CoverImage  string     `json:"coverImage,omitempty"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Images      []ImageDTO `json:"images"`
}

// HealthResponse is the body of GET /api/health
type HealthResponse struct {
	Status string `json:"status"`
}
