package scrapbook

import (
	"encoding/json"
	"strings"
)

// Properties is the variant payload of an element. The set of implementations
// is closed: photo, text, shape, sticker and frame.
type Properties interface {
	ElementType() ElementType
	Validate() error
	clone() Properties
}

// DecodeProperties decodes raw onto the defaults of the variant named by t.
func DecodeProperties(t ElementType, raw json.RawMessage) (Properties, error) {
	var props Properties
	switch t {
	case ElementPhoto:
		p := &PhotoProperties{Filters: NeutralFilters()}
		if err := decodeProps(raw, p); err != nil {
			return nil, err
		}
		if p.OriginalSrc == "" {
			p.OriginalSrc = p.Src
		}
		props = p
	case ElementText:
		p := defaultTextProperties()
		if err := decodeProps(raw, p); err != nil {
			return nil, err
		}
		props = p
	case ElementShape:
		p := &ShapeProperties{Fill: "#cccccc", Stroke: "#000000"}
		if err := decodeProps(raw, p); err != nil {
			return nil, err
		}
		if (p.ShapeType == ShapeStar || p.ShapeType == ShapePolygon) && p.Points == nil {
			n := 5
			p.Points = &n
		}
		props = p
	case ElementSticker:
		p := &StickerProperties{}
		if err := decodeProps(raw, p); err != nil {
			return nil, err
		}
		props = p
	case ElementFrame:
		p := &FrameProperties{}
		if err := decodeProps(raw, p); err != nil {
			return nil, err
		}
		props = p
	default:
		return nil, invalid("element_type", "unknown element type %q", t)
	}
	return props, nil
}

func decodeProps(raw json.RawMessage, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return invalid("properties", "malformed payload: %v", err)
	}
	return nil
}

// PhotoFilters are CSS-style filter intensities. Brightness, contrast and
// saturation are neutral at 100, the rest at 0.
type PhotoFilters struct {
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
	Saturation float64 `json:"saturation"`
	Blur       float64 `json:"blur"`
	Grayscale  float64 `json:"grayscale"`
	Sepia      float64 `json:"sepia"`
	Hue        float64 `json:"hue"`
}

func NeutralFilters() PhotoFilters {
	return PhotoFilters{Brightness: 100, Contrast: 100, Saturation: 100}
}

type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type PhotoProperties struct {
	Src         string       `json:"src"`
	OriginalSrc string       `json:"original_src"`
	Filters     PhotoFilters `json:"filters"`
	Crop        *Rect        `json:"crop,omitempty"`
	MaskID      string       `json:"mask_id,omitempty"`
	FrameID     string       `json:"frame_id,omitempty"`
}

func (p *PhotoProperties) ElementType() ElementType { return ElementPhoto }

func (p *PhotoProperties) Validate() error {
	if strings.TrimSpace(p.Src) == "" {
		return invalid("src", "required")
	}
	f := p.Filters
	for name, v := range map[string]float64{
		"filters.brightness": f.Brightness,
		"filters.contrast":   f.Contrast,
		"filters.saturation": f.Saturation,
		"filters.blur":       f.Blur,
		"filters.grayscale":  f.Grayscale,
		"filters.sepia":      f.Sepia,
	} {
		if v < 0 {
			return invalid(name, "must be non-negative")
		}
	}
	if f.Grayscale > 100 || f.Sepia > 100 {
		return invalid("filters", "grayscale and sepia are percentages")
	}
	if p.Crop != nil && (p.Crop.Width < 0 || p.Crop.Height < 0) {
		return invalid("crop", "width and height must be non-negative")
	}
	return nil
}

func (p *PhotoProperties) clone() Properties {
	c := *p
	if p.Crop != nil {
		crop := *p.Crop
		c.Crop = &crop
	}
	return &c
}

type TextAlign string

const (
	AlignLeft    TextAlign = "left"
	AlignCenter  TextAlign = "center"
	AlignRight   TextAlign = "right"
	AlignJustify TextAlign = "justify"
)

type TextShadow struct {
	Color   string  `json:"color"`
	Blur    float64 `json:"blur"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
}

type TextProperties struct {
	Content         string      `json:"content"`
	FontFamily      string      `json:"font_family"`
	FontSize        float64     `json:"font_size"`
	FontWeight      string      `json:"font_weight"`
	Italic          bool        `json:"italic"`
	Underline       bool        `json:"underline"`
	Strikethrough   bool        `json:"strikethrough"`
	Align           TextAlign   `json:"align"`
	LineHeight      float64     `json:"line_height"`
	LetterSpacing   float64     `json:"letter_spacing"`
	Color           string      `json:"color"`
	BackgroundColor *string     `json:"background_color,omitempty"`
	TextShadow      *TextShadow `json:"text_shadow,omitempty"`
	// Curve bends the baseline onto an arc; 0 is straight.
	Curve float64 `json:"curve"`
}

func defaultTextProperties() *TextProperties {
	return &TextProperties{
		FontFamily: "Inter",
		FontSize:   24,
		FontWeight: "normal",
		Align:      AlignLeft,
		LineHeight: 1.2,
		Color:      "#000000",
	}
}

func (p *TextProperties) ElementType() ElementType { return ElementText }

func (p *TextProperties) Validate() error {
	if strings.TrimSpace(p.FontFamily) == "" {
		return invalid("font_family", "required")
	}
	if p.FontSize <= 0 {
		return invalid("font_size", "must be positive")
	}
	if p.LineHeight <= 0 {
		return invalid("line_height", "must be positive")
	}
	switch p.Align {
	case AlignLeft, AlignCenter, AlignRight, AlignJustify:
	default:
		return invalid("align", "unknown alignment %q", p.Align)
	}
	if p.TextShadow != nil && p.TextShadow.Blur < 0 {
		return invalid("text_shadow.blur", "must be non-negative")
	}
	return nil
}

func (p *TextProperties) clone() Properties {
	c := *p
	if p.BackgroundColor != nil {
		bg := *p.BackgroundColor
		c.BackgroundColor = &bg
	}
	if p.TextShadow != nil {
		ts := *p.TextShadow
		c.TextShadow = &ts
	}
	return &c
}

type ShapeType string

const (
	ShapeRectangle  ShapeType = "rectangle"
	ShapeCircle     ShapeType = "circle"
	ShapeEllipse    ShapeType = "ellipse"
	ShapeTriangle   ShapeType = "triangle"
	ShapeStar       ShapeType = "star"
	ShapeHeart      ShapeType = "heart"
	ShapePolygon    ShapeType = "polygon"
	ShapeCustomPath ShapeType = "custom-path"
)

type ShapeProperties struct {
	ShapeType   ShapeType `json:"shape_type"`
	Fill        string    `json:"fill"`
	Stroke      string    `json:"stroke"`
	StrokeWidth float64   `json:"stroke_width"`
	Points      *int      `json:"points,omitempty"`
	InnerRadius *float64  `json:"inner_radius,omitempty"`
	Path        string    `json:"path,omitempty"`
}

func (p *ShapeProperties) ElementType() ElementType { return ElementShape }

func (p *ShapeProperties) Validate() error {
	switch p.ShapeType {
	case ShapeRectangle, ShapeCircle, ShapeEllipse, ShapeTriangle, ShapeStar, ShapeHeart, ShapePolygon, ShapeCustomPath:
	case "":
		return invalid("shape_type", "required")
	default:
		return invalid("shape_type", "unknown shape %q", p.ShapeType)
	}
	if p.StrokeWidth < 0 {
		return invalid("stroke_width", "must be non-negative")
	}
	if p.Points != nil && *p.Points < 3 {
		return invalid("points", "must be at least 3")
	}
	if p.InnerRadius != nil && (*p.InnerRadius <= 0 || *p.InnerRadius >= 1) {
		return invalid("inner_radius", "must be between 0 and 1")
	}
	if p.ShapeType == ShapeCustomPath && strings.TrimSpace(p.Path) == "" {
		return invalid("path", "required for custom-path shapes")
	}
	return nil
}

func (p *ShapeProperties) clone() Properties {
	c := *p
	if p.Points != nil {
		n := *p.Points
		c.Points = &n
	}
	if p.InnerRadius != nil {
		r := *p.InnerRadius
		c.InnerRadius = &r
	}
	return &c
}

type StickerProperties struct {
	AssetID  string `json:"asset_id"`
	Src      string `json:"src"`
	Category string `json:"category"`
}

func (p *StickerProperties) ElementType() ElementType { return ElementSticker }

func (p *StickerProperties) Validate() error {
	if strings.TrimSpace(p.Src) == "" {
		return invalid("src", "required")
	}
	return nil
}

func (p *StickerProperties) clone() Properties {
	c := *p
	return &c
}

type FrameProperties struct {
	AssetID  string  `json:"asset_id"`
	Src      string  `json:"src"`
	Category string  `json:"category"`
	Padding  float64 `json:"padding"`
}

func (p *FrameProperties) ElementType() ElementType { return ElementFrame }

func (p *FrameProperties) Validate() error {
	if strings.TrimSpace(p.Src) == "" {
		return invalid("src", "required")
	}
	if p.Padding < 0 {
		return invalid("padding", "must be non-negative")
	}
	return nil
}

func (p *FrameProperties) clone() Properties {
	c := *p
	return &c
}
