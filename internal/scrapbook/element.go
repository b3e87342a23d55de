package scrapbook

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

type ElementType string

const (
	ElementPhoto   ElementType = "photo"
	ElementText    ElementType = "text"
	ElementShape   ElementType = "shape"
	ElementSticker ElementType = "sticker"
	ElementFrame   ElementType = "frame"
)

func (t ElementType) Valid() bool {
	switch t {
	case ElementPhoto, ElementText, ElementShape, ElementSticker, ElementFrame:
		return true
	}
	return false
}

type BorderStyle string

const (
	BorderSolid  BorderStyle = "solid"
	BorderDashed BorderStyle = "dashed"
	BorderDotted BorderStyle = "dotted"
	BorderDouble BorderStyle = "double"
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Transform struct {
	Rotation float64 `json:"rotation"`
	ScaleX   float64 `json:"scale_x"`
	ScaleY   float64 `json:"scale_y"`
	FlipX    bool    `json:"flip_x"`
	FlipY    bool    `json:"flip_y"`
}

type Shadow struct {
	Enabled bool    `json:"enabled"`
	Color   string  `json:"color"`
	Blur    float64 `json:"blur"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
}

type Border struct {
	Enabled bool        `json:"enabled"`
	Color   string      `json:"color"`
	Width   float64     `json:"width"`
	Style   BorderStyle `json:"style"`
	Radius  float64     `json:"radius"`
}

func DefaultTransform() Transform {
	return Transform{ScaleX: 1, ScaleY: 1}
}

func DefaultShadow() Shadow {
	return Shadow{Color: "rgba(0,0,0,0.3)", Blur: 10, OffsetX: 4, OffsetY: 4}
}

func DefaultBorder() Border {
	return Border{Color: "#000000", Width: 1, Style: BorderSolid}
}

// Element is a single visual object on a page. Paint order comes from ZIndex;
// DisplayOrder is the page's list order and breaks z-index ties.
type Element struct {
	ID           string      `json:"id"`
	PageID       string      `json:"page_id"`
	Type         ElementType `json:"element_type"`
	Name         string      `json:"name"`
	Position     Position    `json:"position"`
	Size         Size        `json:"size"`
	Transform    Transform   `json:"transform"`
	Opacity      float64     `json:"opacity"`
	ZIndex       int         `json:"z_index"`
	DisplayOrder int         `json:"display_order"`
	Locked       bool        `json:"locked"`
	Visible      bool        `json:"visible"`
	Shadow       Shadow      `json:"shadow"`
	Border       Border      `json:"border"`
	Properties   Properties  `json:"properties"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func (e *Element) UnmarshalJSON(data []byte) error {
	type plain Element
	aux := struct {
		*plain
		Properties json.RawMessage `json:"properties"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	props, err := DecodeProperties(e.Type, aux.Properties)
	if err != nil {
		return err
	}
	e.Properties = props
	return nil
}

// Validate checks the common attributes and the variant payload.
func (e *Element) Validate() error {
	if !e.Type.Valid() {
		return invalid("element_type", "unknown element type %q", e.Type)
	}
	if e.Size.Width < 0 || e.Size.Height < 0 {
		return invalid("size", "width and height must be non-negative")
	}
	if math.IsNaN(e.Opacity) || e.Opacity < 0 || e.Opacity > 1 {
		return invalid("opacity", "must be between 0 and 1")
	}
	if e.Shadow.Blur < 0 {
		return invalid("shadow.blur", "must be non-negative")
	}
	if e.Border.Width < 0 {
		return invalid("border.width", "must be non-negative")
	}
	if e.Border.Radius < 0 {
		return invalid("border.radius", "must be non-negative")
	}
	switch e.Border.Style {
	case BorderSolid, BorderDashed, BorderDotted, BorderDouble:
	default:
		return invalid("border.style", "unknown border style %q", e.Border.Style)
	}
	if e.Properties == nil {
		return invalid("properties", "required")
	}
	if e.Properties.ElementType() != e.Type {
		return invalid("properties", "payload is %s, element is %s", e.Properties.ElementType(), e.Type)
	}
	if err := e.Properties.Validate(); err != nil {
		return prefixed("properties", err)
	}
	return nil
}

// Clone returns a copy that shares no mutable state with e.
func (e Element) Clone() Element {
	if e.Properties != nil {
		e.Properties = e.Properties.clone()
	}
	return e
}

// ElementInput is the loosely-typed element payload received from clients or
// autosave. Absent fields are nil.
type ElementInput struct {
	ID           *string          `json:"id,omitempty"`
	Type         *ElementType     `json:"element_type,omitempty"`
	Name         *string          `json:"name,omitempty"`
	Position     *Position        `json:"position,omitempty"`
	Size         *Size            `json:"size,omitempty"`
	Transform    *json.RawMessage `json:"transform,omitempty"`
	Opacity      *float64         `json:"opacity,omitempty"`
	ZIndex       *int             `json:"z_index,omitempty"`
	DisplayOrder *int             `json:"display_order,omitempty"`
	Locked       *bool            `json:"locked,omitempty"`
	Visible      *bool            `json:"visible,omitempty"`
	Shadow       *json.RawMessage `json:"shadow,omitempty"`
	Border       *json.RawMessage `json:"border,omitempty"`
	Properties   json.RawMessage  `json:"properties,omitempty"`
}

// ParseElement decodes and validates a brand-new element.
func ParseElement(raw []byte, pageID string) (*Element, error) {
	var in ElementInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, invalid("", "malformed element payload: %v", err)
	}
	return in.Apply(nil, pageID)
}

// Apply merges the input onto base and validates the result. With a nil base
// the element defaults are used and element_type is required. Present fields
// replace the base value wholesale; nested objects that are sent start from
// their defaults, not from the base.
func (in ElementInput) Apply(base *Element, pageID string) (*Element, error) {
	var el Element
	if base == nil {
		el = Element{
			ID:        uuid.New().String(),
			Opacity:   1,
			Visible:   true,
			Transform: DefaultTransform(),
			Shadow:    DefaultShadow(),
			Border:    DefaultBorder(),
		}
		if in.Type == nil {
			return nil, invalid("element_type", "required")
		}
	} else {
		el = base.Clone()
	}
	if in.ID != nil && *in.ID != "" {
		if base != nil && *in.ID != base.ID {
			return nil, invalid("id", "does not match stored element")
		}
		el.ID = *in.ID
	}
	if pageID != "" {
		el.PageID = pageID
	}

	typeChanged := false
	if in.Type != nil {
		typeChanged = base != nil && *in.Type != base.Type
		el.Type = *in.Type
	}
	if !el.Type.Valid() {
		return nil, invalid("element_type", "unknown element type %q", el.Type)
	}
	if in.Name != nil {
		el.Name = *in.Name
	}
	if in.Position != nil {
		el.Position = *in.Position
	}
	if in.Size != nil {
		el.Size = *in.Size
	}
	if in.Transform != nil {
		t := DefaultTransform()
		if err := decodeNested(*in.Transform, &t); err != nil {
			return nil, invalid("transform", "%v", err)
		}
		el.Transform = t
	}
	if in.Opacity != nil {
		el.Opacity = *in.Opacity
	}
	if in.ZIndex != nil {
		el.ZIndex = *in.ZIndex
	}
	if in.DisplayOrder != nil {
		el.DisplayOrder = *in.DisplayOrder
	}
	if in.Locked != nil {
		el.Locked = *in.Locked
	}
	if in.Visible != nil {
		el.Visible = *in.Visible
	}
	if in.Shadow != nil {
		s := DefaultShadow()
		if err := decodeNested(*in.Shadow, &s); err != nil {
			return nil, invalid("shadow", "%v", err)
		}
		el.Shadow = s
	}
	if in.Border != nil {
		b := DefaultBorder()
		if err := decodeNested(*in.Border, &b); err != nil {
			return nil, invalid("border", "%v", err)
		}
		el.Border = b
	}

	switch {
	case len(in.Properties) > 0 && string(in.Properties) != "null":
		props, err := DecodeProperties(el.Type, in.Properties)
		if err != nil {
			return nil, err
		}
		el.Properties = props
	case typeChanged:
		return nil, invalid("properties", "required when element_type changes")
	case base == nil:
		props, err := DecodeProperties(el.Type, nil)
		if err != nil {
			return nil, err
		}
		el.Properties = props
	}

	if err := el.Validate(); err != nil {
		return nil, err
	}
	return &el, nil
}

func decodeNested(raw json.RawMessage, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("malformed object: %w", err)
	}
	return nil
}
