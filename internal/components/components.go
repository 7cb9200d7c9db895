// Package components models Discord's component-based message payloads as an
// immutable tagged tree. Nodes are built by plain constructors and validated
// once when the message payload is assembled.
package components

import "fmt"

// Discord component type codes.
const (
	typeActionRow    = 1
	typeButton       = 2
	typeSection      = 9
	typeTextDisplay  = 10
	typeThumbnail    = 11
	typeMediaGallery = 12
	typeSeparator    = 14
	typeContainer    = 17
)

// flagComponentsV2 marks a message as using the component payload format
// instead of plain content.
const flagComponentsV2 = 1 << 15

const maxGalleryItems = 10

const maxSectionTexts = 3

// ButtonStyle enumerates Discord button styles.
type ButtonStyle int

const (
	StylePrimary   ButtonStyle = 1
	StyleSecondary ButtonStyle = 2
	StyleSuccess   ButtonStyle = 3
	StyleDanger    ButtonStyle = 4
	StyleLink      ButtonStyle = 5
)

// SeparatorSpacing enumerates the two recognized separator spacing levels.
type SeparatorSpacing int

const (
	SpacingSmall SeparatorSpacing = 1
	SpacingLarge SeparatorSpacing = 2
)

// ValidationError reports a structural constraint violated during Build.
type ValidationError struct {
	Constraint string
}

func (e *ValidationError) Error() string {
	return "invalid component payload: " + e.Constraint
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Constraint: fmt.Sprintf(format, args...)}
}

// Node is a single component in the message tree.
type Node interface {
	validate() error
	render() map[string]any
}

// TextNode displays a markdown text block.
type TextNode struct {
	Content string
}

func Text(content string) TextNode { return TextNode{Content: content} }

func (t TextNode) validate() error {
	if t.Content == "" {
		return validationErrorf("text display requires content")
	}

	return nil
}

func (t TextNode) render() map[string]any {
	return map[string]any{"type": typeTextDisplay, "content": t.Content}
}

// MediaItem is one entry of a gallery.
type MediaItem struct {
	URL     string
	AltText string
	Spoiler bool
}

// GalleryNode displays up to ten media items in a grid.
type GalleryNode struct {
	Items []MediaItem
}

func Gallery(items ...MediaItem) GalleryNode { return GalleryNode{Items: items} }

// Media is a convenience constructor for a plain gallery item.
func Media(url string) MediaItem { return MediaItem{URL: url} }

func (g GalleryNode) validate() error {
	if len(g.Items) == 0 {
		return validationErrorf("media gallery requires at least one item")
	}

	if len(g.Items) > maxGalleryItems {
		return validationErrorf("media gallery holds at most %d items, got %d", maxGalleryItems, len(g.Items))
	}

	for _, item := range g.Items {
		if item.URL == "" {
			return validationErrorf("media gallery item requires a url")
		}
	}

	return nil
}

func (g GalleryNode) render() map[string]any {
	items := make([]map[string]any, len(g.Items))

	for i, item := range g.Items {
		entry := map[string]any{"media": map[string]any{"url": item.URL}}
		if item.AltText != "" {
			entry["description"] = item.AltText
		}

		if item.Spoiler {
			entry["spoiler"] = true
		}

		items[i] = entry
	}

	return map[string]any{"type": typeMediaGallery, "items": items}
}

// ButtonNode is an interactive or link button inside an action row.
type ButtonNode struct {
	Style    ButtonStyle
	Label    string
	URL      string
	CustomID string
	Disabled bool
}

// LinkButton constructs a link-style button.
func LinkButton(label, url string) ButtonNode {
	return ButtonNode{Style: StyleLink, Label: label, URL: url}
}

// ActionButton constructs an interactive button dispatching customID.
func ActionButton(style ButtonStyle, label, customID string) ButtonNode {
	return ButtonNode{Style: style, Label: label, CustomID: customID}
}

func (b ButtonNode) validate() error {
	if b.Style < StylePrimary || b.Style > StyleLink {
		return validationErrorf("button style %d is not recognized", b.Style)
	}

	if b.URL != "" && b.CustomID != "" {
		return validationErrorf("button must not carry both a url and a custom id")
	}

	if b.URL == "" && b.CustomID == "" {
		return validationErrorf("button requires either a url or a custom id")
	}

	if b.Style == StyleLink && b.URL == "" {
		return validationErrorf("link button requires a url")
	}

	if b.Style != StyleLink && b.URL != "" {
		return validationErrorf("non-link button must use a custom id, not a url")
	}

	return nil
}

func (b ButtonNode) render() map[string]any {
	rendered := map[string]any{
		"type":     typeButton,
		"style":    int(b.Style),
		"label":    b.Label,
		"disabled": b.Disabled,
	}

	if b.URL != "" {
		rendered["url"] = b.URL
	}

	if b.CustomID != "" {
		rendered["custom_id"] = b.CustomID
	}

	return rendered
}

// RowNode lays out buttons horizontally.
type RowNode struct {
	Buttons []ButtonNode
}

func Row(buttons ...ButtonNode) RowNode { return RowNode{Buttons: buttons} }

func (r RowNode) validate() error {
	if len(r.Buttons) == 0 {
		return validationErrorf("action row requires at least one button")
	}

	for _, b := range r.Buttons {
		if err := b.validate(); err != nil {
			return err
		}
	}

	return nil
}

func (r RowNode) render() map[string]any {
	buttons := make([]map[string]any, len(r.Buttons))
	for i, b := range r.Buttons {
		buttons[i] = b.render()
	}

	return map[string]any{"type": typeActionRow, "components": buttons}
}

// SeparatorNode draws a divider with one of two spacing levels.
type SeparatorNode struct {
	Spacing SeparatorSpacing
	Divider bool
}

func Separator(spacing SeparatorSpacing) SeparatorNode {
	return SeparatorNode{Spacing: spacing, Divider: true}
}

func (s SeparatorNode) validate() error {
	if s.Spacing != SpacingSmall && s.Spacing != SpacingLarge {
		return validationErrorf("separator spacing must be small (1) or large (2), got %d", s.Spacing)
	}

	return nil
}

func (s SeparatorNode) render() map[string]any {
	return map[string]any{"type": typeSeparator, "divider": s.Divider, "spacing": int(s.Spacing)}
}

// ThumbnailNode is a small accessory image.
type ThumbnailNode struct {
	URL string
}

func Thumbnail(url string) ThumbnailNode { return ThumbnailNode{URL: url} }

func (t ThumbnailNode) validate() error {
	if t.URL == "" {
		return validationErrorf("thumbnail requires a url")
	}

	return nil
}

func (t ThumbnailNode) render() map[string]any {
	return map[string]any{"type": typeThumbnail, "media": map[string]any{"url": t.URL}}
}

// SectionNode pairs up to three text blocks with an optional accessory.
type SectionNode struct {
	Texts     []TextNode
	Accessory Node
}

func Section(texts ...TextNode) SectionNode { return SectionNode{Texts: texts} }

// WithAccessory returns a copy of the section with the accessory attached.
func (s SectionNode) WithAccessory(accessory Node) SectionNode {
	s.Accessory = accessory

	return s
}

func (s SectionNode) validate() error {
	if len(s.Texts) == 0 {
		return validationErrorf("section requires at least one text child")
	}

	if len(s.Texts) > maxSectionTexts {
		return validationErrorf("section holds at most %d text children, got %d", maxSectionTexts, len(s.Texts))
	}

	for _, t := range s.Texts {
		if err := t.validate(); err != nil {
			return err
		}
	}

	if s.Accessory != nil {
		return s.Accessory.validate()
	}

	return nil
}

func (s SectionNode) render() map[string]any {
	texts := make([]map[string]any, len(s.Texts))
	for i, t := range s.Texts {
		texts[i] = t.render()
	}

	rendered := map[string]any{"type": typeSection, "components": texts}
	if s.Accessory != nil {
		rendered["accessory"] = s.Accessory.render()
	}

	return rendered
}

// ContainerNode groups children under an optional accent color bar.
type ContainerNode struct {
	AccentColor int
	Children    []Node
}

func Container(accentColor int, children ...Node) ContainerNode {
	return ContainerNode{AccentColor: accentColor, Children: children}
}

func (c ContainerNode) validate() error {
	if len(c.Children) == 0 {
		return validationErrorf("container requires at least one child")
	}

	for _, child := range c.Children {
		if err := child.validate(); err != nil {
			return err
		}
	}

	return nil
}

func (c ContainerNode) render() map[string]any {
	children := make([]map[string]any, len(c.Children))
	for i, child := range c.Children {
		children[i] = child.render()
	}

	rendered := map[string]any{"type": typeContainer, "components": children}
	if c.AccentColor != 0 {
		rendered["accent_color"] = c.AccentColor
	}

	return rendered
}
