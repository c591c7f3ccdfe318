package api

import (
	"net/url"
	"strings"

	"github.com/mmcdole/folio/internal/domain"
)

// MapImage converts an API image to a domain item. Relative asset paths are
// resolved against base.
func MapImage(dto ImageDTO, base *url.URL) domain.MediaItem {
	item := domain.MediaItem{
		ID:          dto.ID,
		Title:       dto.Title,
		Description: dto.Description,
		CategoryID:  dto.CategoryID,
		SeriesID:    dto.SeriesID,
		ViewCount:   dto.ViewCount,
		LikeCount:   dto.LikeCount,
		CreatedAt:   dto.CreatedAt,
		Featured:    dto.Featured,
		Status:      dto.Status,
		FullURL:     resolveAsset(base, dto.URL),
		ThumbURL:    resolveAsset(base, dto.ThumbnailURL),
		Width:       dto.Width,
		Height:      dto.Height,
	}
	if dto.Category != nil {
		if item.CategoryID == "" {
			item.CategoryID = dto.Category.ID
		}
		item.CategoryName = dto.Category.Name
	}
	if item.ThumbURL == "" {
		item.ThumbURL = item.FullURL
	}
	if item.LikeCount < 0 {
		item.LikeCount = 0
	}
	return item
}

// MapImages converts a page of images, preserving order
func MapImages(dtos []ImageDTO, base *url.URL) []domain.MediaItem {
	items := make([]domain.MediaItem, 0, len(dtos))
	for _, dto := range dtos {
		items = append(items, MapImage(dto, base))
	}
	return items
}

// MapPagination converts the pagination block. HasMore falls back to
// page < totalPages when the server omits it.
func MapPagination(dto PaginationDTO) domain.Pagination {
	p := domain.Pagination{
		Page:       dto.Page,
		TotalPages: dto.TotalPages,
		TotalCount: dto.Total,
		HasMore:    dto.HasMore,
	}
	if !p.HasMore && p.TotalPages > 0 && p.Page < p.TotalPages {
		p.HasMore = true
	}
	return p
}

// MapCategories converts the category list
func MapCategories(dtos []CategoryDTO) []domain.Category {
	out := make([]domain.Category, 0, len(dtos))
	for _, dto := range dtos {
		out = append(out, domain.Category{
			ID:          dto.ID,
			Name:        dto.Name,
			Slug:        dto.Slug,
			Description: dto.Description,
			ItemCount:   dto.ImageCount,
		})
	}
	return out
}

// MapSeries converts a series and its images
func MapSeries(dto SeriesDTO, base *url.URL) *domain.Series {
	return &domain.Series{
		ID:          dto.ID,
		Slug:        dto.Slug,
		Title:       dto.Title,
		Description: dto.Description,
		CoverURL:    resolveAsset(base, dto.CoverImage),
		UpdatedAt:   dto.UpdatedAt,
		Items:       MapImages(dto.Images, base),
	}
}

func resolveAsset(base *url.URL, raw string) string {
	if raw == "" || base == nil {
		return raw
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return base.ResolveReference(ref).String()
}
