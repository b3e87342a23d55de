package scrapbook

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type BackgroundType string

const (
	BackgroundColor    BackgroundType = "color"
	BackgroundGradient BackgroundType = "gradient"
	BackgroundPattern  BackgroundType = "pattern"
	BackgroundImage    BackgroundType = "image"
)

type ColorStop struct {
	Color    string  `json:"color"`
	Position float64 `json:"position"`
}

type Gradient struct {
	Kind  string      `json:"kind"`
	Stops []ColorStop `json:"stops"`
	Angle *float64    `json:"angle,omitempty"`
}

type ImageFill struct {
	Src     string  `json:"src"`
	Opacity float64 `json:"opacity"`
	Blur    float64 `json:"blur"`
}

func (f *ImageFill) UnmarshalJSON(data []byte) error {
	type plain ImageFill
	v := plain{Opacity: 1}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = ImageFill(v)
	return nil
}

// Background is the page-level fill; it is not part of the element z-stack.
type Background struct {
	Type      BackgroundType `json:"type"`
	Color     string         `json:"color,omitempty"`
	Gradient  *Gradient      `json:"gradient,omitempty"`
	PatternID string         `json:"pattern_id,omitempty"`
	Image     *ImageFill     `json:"image,omitempty"`
}

func DefaultBackground() Background {
	return Background{Type: BackgroundColor, Color: "#ffffff"}
}

// ParseBackground decodes raw onto the default background and validates it.
func ParseBackground(raw json.RawMessage) (Background, error) {
	bg := DefaultBackground()
	if len(raw) == 0 || string(raw) == "null" {
		return bg, nil
	}
	if err := json.Unmarshal(raw, &bg); err != nil {
		return bg, invalid("background", "malformed payload: %v", err)
	}
	if err := bg.Validate(); err != nil {
		return bg, prefixed("background", err)
	}
	return bg, nil
}

func (b Background) Validate() error {
	switch b.Type {
	case BackgroundColor:
		if strings.TrimSpace(b.Color) == "" {
			return invalid("color", "required")
		}
	case BackgroundGradient:
		if b.Gradient == nil {
			return invalid("gradient", "required")
		}
		if b.Gradient.Kind != "linear" && b.Gradient.Kind != "radial" {
			return invalid("gradient.kind", "must be linear or radial")
		}
		if len(b.Gradient.Stops) < 2 {
			return invalid("gradient.stops", "at least two stops required")
		}
		prev := 0.0
		for i, s := range b.Gradient.Stops {
			if s.Position < 0 || s.Position > 1 {
				return invalid(fmt.Sprintf("gradient.stops[%d].position", i), "must be between 0 and 1")
			}
			if s.Position < prev {
				return invalid(fmt.Sprintf("gradient.stops[%d].position", i), "stops must be ordered")
			}
			prev = s.Position
		}
	case BackgroundPattern:
		if strings.TrimSpace(b.PatternID) == "" {
			return invalid("pattern_id", "required")
		}
	case BackgroundImage:
		if b.Image == nil || strings.TrimSpace(b.Image.Src) == "" {
			return invalid("image.src", "required")
		}
		if b.Image.Opacity < 0 || b.Image.Opacity > 1 {
			return invalid("image.opacity", "must be between 0 and 1")
		}
		if b.Image.Blur < 0 {
			return invalid("image.blur", "must be non-negative")
		}
	default:
		return invalid("type", "unknown background type %q", b.Type)
	}
	return nil
}

func (b Background) clone() Background {
	if b.Gradient != nil {
		g := *b.Gradient
		g.Stops = append([]ColorStop(nil), b.Gradient.Stops...)
		if b.Gradient.Angle != nil {
			a := *b.Gradient.Angle
			g.Angle = &a
		}
		b.Gradient = &g
	}
	if b.Image != nil {
		img := *b.Image
		b.Image = &img
	}
	return b
}

type Page struct {
	ID          string     `json:"id"`
	ScrapbookID string     `json:"scrapbook_id"`
	Name        string     `json:"name"`
	Order       int        `json:"page_order"`
	Background  Background `json:"background"`
	Width       float64    `json:"width"`
	Height      float64    `json:"height"`
	Elements    []Element  `json:"elements"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewPage builds an empty page with a fresh id and the given canvas.
func NewPage(scrapbookID string, order int, width, height float64) Page {
	return Page{
		ID:          uuid.New().String(),
		ScrapbookID: scrapbookID,
		Name:        fmt.Sprintf("Page %d", order+1),
		Order:       order,
		Background:  DefaultBackground(),
		Width:       width,
		Height:      height,
		Elements:    []Element{},
	}
}

func (p *Page) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return invalid("size", "page width and height must be positive")
	}
	if p.Order < 0 {
		return invalid("page_order", "must be non-negative")
	}
	return prefixed("background", p.Background.Validate())
}

// Element returns the element with the given id.
func (p *Page) Element(id string) (*Element, error) {
	for i := range p.Elements {
		if p.Elements[i].ID == id {
			return &p.Elements[i], nil
		}
	}
	return nil, fmt.Errorf("element %s: %w", id, ErrNotFound)
}

// AddElement appends el to the display order.
func (p *Page) AddElement(el Element) {
	el.PageID = p.ID
	el.DisplayOrder = p.nextDisplayOrder()
	p.Elements = append(p.Elements, el)
}

func (p *Page) nextDisplayOrder() int {
	next := 0
	for _, e := range p.Elements {
		if e.DisplayOrder >= next {
			next = e.DisplayOrder + 1
		}
	}
	return next
}

// RemoveElement drops the element; the other elements keep their z-index.
func (p *Page) RemoveElement(id string) error {
	for i := range p.Elements {
		if p.Elements[i].ID == id {
			p.Elements = append(p.Elements[:i], p.Elements[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("element %s: %w", id, ErrNotFound)
}

// MoveElement moves an element to index in the display order and renumbers
// display orders contiguously. Paint order is unaffected.
func (p *Page) MoveElement(id string, index int) error {
	from := -1
	for i := range p.Elements {
		if p.Elements[i].ID == id {
			from = i
			break
		}
	}
	if from < 0 {
		return fmt.Errorf("element %s: %w", id, ErrNotFound)
	}
	if index < 0 || index >= len(p.Elements) {
		return invalid("index", "out of range")
	}
	el := p.Elements[from]
	rest := append(append([]Element{}, p.Elements[:from]...), p.Elements[from+1:]...)
	moved := append(append(append([]Element{}, rest[:index]...), el), rest[index:]...)
	for i := range moved {
		moved[i].DisplayOrder = i
	}
	p.Elements = moved
	return nil
}

// PaintOrder returns the elements sorted by z-index ascending. Elements with
// equal z-index keep their display order.
func (p *Page) PaintOrder() []Element {
	out := make([]Element, len(p.Elements))
	copy(out, p.Elements)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DisplayOrder < out[j].DisplayOrder
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ZIndex < out[j].ZIndex
	})
	return out
}

// Clone deep-copies the page and its elements, keeping identifiers.
func (p Page) Clone() Page {
	p.Background = p.Background.clone()
	els := make([]Element, len(p.Elements))
	for i, e := range p.Elements {
		els[i] = e.Clone()
	}
	p.Elements = els
	return p
}

// PageInput is the autosave payload for one page. Absent fields are nil.
type PageInput struct {
	ID         *string           `json:"id,omitempty"`
	Name       *string           `json:"name,omitempty"`
	Order      *int              `json:"page_order,omitempty"`
	Background *json.RawMessage  `json:"background,omitempty"`
	Width      *float64          `json:"width,omitempty"`
	Height     *float64          `json:"height,omitempty"`
	Elements   []json.RawMessage `json:"elements,omitempty"`
}

// Apply merges the page row fields onto base. Elements are not touched; they
// are upserted individually. With a nil base the canvas defaults to
// defaultWidth x defaultHeight.
func (in PageInput) Apply(base *Page, scrapbookID string, defaultWidth, defaultHeight float64) (*Page, error) {
	var p Page
	if base == nil {
		p = NewPage(scrapbookID, 0, defaultWidth, defaultHeight)
	} else {
		p = base.Clone()
		p.Elements = nil
	}
	if in.ID != nil && *in.ID != "" {
		if base != nil && *in.ID != base.ID {
			return nil, invalid("id", "does not match stored page")
		}
		p.ID = *in.ID
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Order != nil {
		p.Order = *in.Order
	}
	if in.Background != nil {
		bg, err := ParseBackground(*in.Background)
		if err != nil {
			return nil, err
		}
		p.Background = bg
	}
	if in.Width != nil {
		p.Width = *in.Width
	}
	if in.Height != nil {
		p.Height = *in.Height
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}
