package components

import (
	"fmt"
	"strings"

	"github.com/mmcdole/folio/internal/domain"
	"github.com/mmcdole/folio/internal/tui/styles"
)

// Layout constants for the lightbox
const (
	LightboxBorderHeight     = 2
	LightboxScrollIndicators = 2
)

// lightboxContent holds the three-zone layout content
type lightboxContent struct {
	header string // fixed top
	body   string // scrollable middle
	footer string // fixed bottom
}

// Lightbox renders one photo full-screen with its metadata
type Lightbox struct {
	item        *domain.MediaItem
	position    int // 1-based position in the list
	total       int
	hasMore     bool
	cachedPath  string
	likePending bool

	width      int
	height     int
	offset     int // body scroll offset
	maxVisible int
}

// NewLightbox creates an empty lightbox panel
func NewLightbox() Lightbox {
	return Lightbox{}
}

// SetItem sets the photo to display and its position in the list
func (l *Lightbox) SetItem(item domain.MediaItem, index, total int, hasMore bool) {
	if l.item == nil || l.item.ID != item.ID {
		l.offset = 0
	}
	l.item = &item
	l.position = index + 1
	l.total = total
	l.hasMore = hasMore
}

// SetAsset records the local file backing the full asset ("" = not cached)
func (l *Lightbox) SetAsset(path string) {
	l.cachedPath = path
}

// SetLikePending marks the like call for the shown item as outstanding
func (l *Lightbox) SetLikePending(pending bool) {
	l.likePending = pending
}

// Clear removes the displayed photo
func (l *Lightbox) Clear() {
	l.item = nil
	l.cachedPath = ""
	l.offset = 0
}

// SetSize updates the component dimensions
func (l *Lightbox) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.maxVisible = height - LightboxBorderHeight - LightboxScrollIndicators - 2
	if l.maxVisible < 1 {
		l.maxVisible = 1
	}
}

// ScrollDown scrolls the description
func (l *Lightbox) ScrollDown() {
	l.offset++
}

// ScrollUp scrolls the description
func (l *Lightbox) ScrollUp() {
	if l.offset > 0 {
		l.offset--
	}
}

// View renders the component
func (l Lightbox) View() string {
	style := styles.ActiveBorder

	contentWidth := l.width - 3
	if contentWidth < 10 {
		contentWidth = 10
	}
	content := l.render(contentWidth)

	counter := fmt.Sprintf("%d / %d", l.position, l.total)
	if l.hasMore {
		counter += "+"
	}
	titleLine := styles.AccentStyle.Render("Lightbox") + "  " + styles.DimStyle.Render(counter)

	headerLines := splitLines(content.header)
	footerLines := splitLines(content.footer)
	bodyLines := splitLines(content.body)

	availableForBody := l.maxVisible - len(headerLines) - len(footerLines)
	if availableForBody < 1 {
		availableForBody = 1
	}

	maxOffset := len(bodyLines) - availableForBody
	if maxOffset < 0 {
		maxOffset = 0
	}
	offset := l.offset
	if offset > maxOffset {
		offset = maxOffset
	}
	end := offset + availableForBody
	if end > len(bodyLines) {
		end = len(bodyLines)
	}
	visibleBody := bodyLines[offset:end]

	up := " "
	if offset > 0 {
		up = styles.DimStyle.Render("↑ more")
	}
	down := " "
	if end < len(bodyLines) {
		down = styles.DimStyle.Render("↓ more")
	}

	parts := []string{titleLine, ""}
	if content.header != "" {
		parts = append(parts, headerLines...)
	}
	parts = append(parts, up)
	parts = append(parts, visibleBody...)
	for j := len(visibleBody); j < availableForBody; j++ {
		parts = append(parts, "")
	}
	parts = append(parts, down)
	if content.footer != "" {
		parts = append(parts, footerLines...)
	}

	frameW, frameH := style.GetFrameSize()

	return style.
		Width(l.width - frameW).
		Height(l.height - frameH).
		Render(strings.Join(parts, "\n"))
}

func (l Lightbox) render(width int) lightboxContent {
	if l.item == nil {
		return lightboxContent{body: styles.DimStyle.Render("Nothing to show")}
	}
	item := *l.item
	return lightboxContent{
		header: l.renderHeader(item, width),
		body:   renderDescription(item, width),
		footer: l.renderFooter(width),
	}
}

func (l Lightbox) renderHeader(item domain.MediaItem, width int) string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render(styles.Truncate(item.GetTitle(), width)))
	b.WriteString("\n")

	var meta []string
	if item.CategoryName != "" {
		meta = append(meta, item.CategoryName)
	}
	if dims := item.Dimensions(); dims != "" {
		meta = append(meta, dims)
	}
	if aspect := item.AspectLabel(); aspect != "" {
		meta = append(meta, aspect)
	}
	if !item.CreatedAt.IsZero() {
		meta = append(meta, item.CreatedAt.Format("2 Jan 2006"))
	}
	b.WriteString(styles.DimStyle.Render(styles.Truncate(strings.Join(meta, " · "), width)))
	b.WriteString("\n")

	likeText := fmt.Sprintf("%s %d", styles.LikedChar, item.LikeCount)
	likeStyle := styles.UnlikedStyle
	if item.LikedByViewer {
		likeStyle = styles.LikedStyle
	}
	status := []string{
		likeStyle.Render(likeText),
		styles.DimStyle.Render(fmt.Sprintf("◉ %d views", item.ViewCount)),
	}
	if l.likePending {
		status = append(status, styles.DimStyle.Render("saving…"))
	}
	if item.Featured {
		status = append(status, styles.BadgeStyle.Render("Featured"))
	}
	b.WriteString(strings.Join(status, "   "))

	return b.String()
}

func renderDescription(item domain.MediaItem, width int) string {
	if item.Description == "" {
		return ""
	}
	bodyWidth := width - 2
	if bodyWidth > 80 {
		bodyWidth = 80
	}
	return styles.SubtitleStyle.Render(wordWrap(item.Description, bodyWidth))
}

func (l Lightbox) renderFooter(width int) string {
	var b strings.Builder
	b.WriteString(styles.DimStyle.Render(strings.Repeat("─", width)))
	b.WriteString("\n")

	if l.cachedPath != "" {
		b.WriteString(styles.SuccessStyle.Render(styles.Truncate("cached "+l.cachedPath, width)))
	} else {
		b.WriteString(styles.DimStyle.Render("loading full image…"))
	}
	b.WriteString("\n")

	help := []string{"h/l prev/next", "f like", "o open", "esc close"}
	b.WriteString(styles.DimStyle.Render(styles.Truncate(strings.Join(help, " · "), width)))
	return b.String()
}

// splitLines splits a string into lines, returning empty slice for empty string
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// wordWrap wraps text to the specified width
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wordLen := len([]rune(word))

		if lineLen+wordLen+1 > width && lineLen > 0 {
			result.WriteString("\n")
			lineLen = 0
		}

		if i > 0 && lineLen > 0 {
			result.WriteString(" ")
			lineLen++
		}

		result.WriteString(word)
		lineLen += wordLen
	}

	return result.String()
}
