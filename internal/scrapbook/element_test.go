package scrapbook

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseElementDefaults(t *testing.T) {
	el, err := ParseElement([]byte(`{"element_type":"text","properties":{"content":"Hello"}}`), "page-1")
	require.NoError(t, err)

	assert.NotEmpty(t, el.ID)
	assert.Equal(t, "page-1", el.PageID)
	assert.Equal(t, 1.0, el.Opacity)
	assert.True(t, el.Visible)
	assert.False(t, el.Locked)
	assert.Equal(t, DefaultTransform(), el.Transform)
	assert.False(t, el.Shadow.Enabled)
	assert.False(t, el.Border.Enabled)
	assert.Equal(t, BorderSolid, el.Border.Style)

	props := el.Properties.(*TextProperties)
	assert.Equal(t, "Hello", props.Content)
	assert.Equal(t, "Inter", props.FontFamily)
	assert.Equal(t, 24.0, props.FontSize)
	assert.Equal(t, "#000000", props.Color)
}

func TestParseElementVariants(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field string
	}{
		{"photo requires src", `{"element_type":"photo","properties":{}}`, "properties.src"},
		{"sticker requires src", `{"element_type":"sticker"}`, "properties.src"},
		{"frame requires src", `{"element_type":"frame","properties":{"padding":4}}`, "properties.src"},
		{"shape requires type", `{"element_type":"shape","properties":{}}`, "properties.shape_type"},
		{"unknown type", `{"element_type":"video"}`, "element_type"},
		{"missing type", `{"name":"x"}`, "element_type"},
		{"opacity range", `{"element_type":"sticker","opacity":1.5,"properties":{"src":"/s.svg"}}`, "opacity"},
		{"negative size", `{"element_type":"sticker","size":{"width":-1,"height":5},"properties":{"src":"/s.svg"}}`, "size"},
		{"bad border style", `{"element_type":"sticker","border":{"style":"wavy"},"properties":{"src":"/s.svg"}}`, "border.style"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseElement([]byte(tt.raw), "p")
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestShapeDefaults(t *testing.T) {
	el, err := ParseElement([]byte(`{"element_type":"shape","properties":{"shape_type":"star"}}`), "p")
	require.NoError(t, err)
	props := el.Properties.(*ShapeProperties)
	require.NotNil(t, props.Points)
	assert.Equal(t, 5, *props.Points)
	assert.Equal(t, "#cccccc", props.Fill)
}

func TestPhotoOriginalSrcDefaultsToSrc(t *testing.T) {
	el, err := ParseElement([]byte(`{"element_type":"photo","properties":{"src":"/edited.jpg"}}`), "p")
	require.NoError(t, err)
	props := el.Properties.(*PhotoProperties)
	assert.Equal(t, "/edited.jpg", props.OriginalSrc)
	assert.Equal(t, NeutralFilters(), props.Filters)
}

func TestElementInputMerge(t *testing.T) {
	base, err := ParseElement([]byte(`{"element_type":"photo","name":"beach","position":{"x":1,"y":2},
		"size":{"width":100,"height":50},"z_index":3,"shadow":{"enabled":true,"blur":4},
		"properties":{"src":"/a.jpg","filters":{"sepia":40}}}`), "p")
	require.NoError(t, err)

	var in ElementInput
	require.NoError(t, json.Unmarshal([]byte(`{"position":{"x":50,"y":60},"locked":true}`), &in))
	merged, err := in.Apply(base, "")
	require.NoError(t, err)

	assert.Equal(t, base.ID, merged.ID)
	assert.Equal(t, Position{50, 60}, merged.Position)
	assert.True(t, merged.Locked)
	assert.Equal(t, "beach", merged.Name)
	assert.Equal(t, base.Size, merged.Size)
	assert.Equal(t, 3, merged.ZIndex)
	assert.Equal(t, base.Shadow, merged.Shadow)
	assert.Equal(t, 40.0, merged.Properties.(*PhotoProperties).Filters.Sepia)

	// The base is not mutated.
	assert.Equal(t, Position{1, 2}, base.Position)
}

func TestElementInputReplacesNestedWholesale(t *testing.T) {
	base, err := ParseElement([]byte(`{"element_type":"sticker","shadow":{"enabled":true,"blur":20,"color":"#ff0000"},
		"properties":{"src":"/s.svg"}}`), "p")
	require.NoError(t, err)

	var in ElementInput
	require.NoError(t, json.Unmarshal([]byte(`{"shadow":{"enabled":true}}`), &in))
	merged, err := in.Apply(base, "")
	require.NoError(t, err)
	assert.True(t, merged.Shadow.Enabled)
	assert.Equal(t, DefaultShadow().Blur, merged.Shadow.Blur)
	assert.Equal(t, DefaultShadow().Color, merged.Shadow.Color)
}

func TestElementInputTypeChange(t *testing.T) {
	base, err := ParseElement([]byte(`{"element_type":"sticker","properties":{"src":"/s.svg"}}`), "p")
	require.NoError(t, err)

	var in ElementInput
	require.NoError(t, json.Unmarshal([]byte(`{"element_type":"text"}`), &in))
	_, err = in.Apply(base, "")
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, json.Unmarshal([]byte(`{"element_type":"text","properties":{"content":"hi"}}`), &in))
	merged, err := in.Apply(base, "")
	require.NoError(t, err)
	assert.Equal(t, ElementText, merged.Type)
	assert.Equal(t, "hi", merged.Properties.(*TextProperties).Content)
}

func TestElementInputIDMismatch(t *testing.T) {
	base, err := ParseElement([]byte(`{"element_type":"sticker","properties":{"src":"/s.svg"}}`), "p")
	require.NoError(t, err)
	other := "someone-else"
	_, err = ElementInput{ID: &other}.Apply(base, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestElementJSONRoundTripKeepsVariant(t *testing.T) {
	el, err := ParseElement([]byte(`{"element_type":"frame","properties":{"src":"/f.png","padding":12}}`), "p")
	require.NoError(t, err)
	raw, err := json.Marshal(el)
	require.NoError(t, err)

	var back Element
	require.NoError(t, json.Unmarshal(raw, &back))
	props, ok := back.Properties.(*FrameProperties)
	require.True(t, ok)
	assert.Equal(t, 12.0, props.Padding)
	assert.NoError(t, back.Validate())
}

func TestPaintOrder(t *testing.T) {
	p := NewPage("sb", 0, 100, 100)
	mk := func(name string, z int) Element {
		el, err := ParseElement([]byte(`{"element_type":"sticker","name":"`+name+`","properties":{"src":"/s.svg"}}`), p.ID)
		require.NoError(t, err)
		el.ZIndex = z
		return *el
	}
	p.AddElement(mk("top", 5))
	p.AddElement(mk("bottom-a", 0))
	p.AddElement(mk("bottom-b", 0))
	p.AddElement(mk("middle", 2))

	var names []string
	for _, e := range p.PaintOrder() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"bottom-a", "bottom-b", "middle", "top"}, names)

	// Moving in display order does not change z-index.
	require.NoError(t, p.MoveElement(p.Elements[0].ID, 3))
	assert.Equal(t, "top", p.Elements[3].Name)
	assert.Equal(t, 5, p.Elements[3].ZIndex)
	assert.Equal(t, 3, p.Elements[3].DisplayOrder)
}

func TestParseBackground(t *testing.T) {
	bg, err := ParseBackground(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultBackground(), bg)

	bg, err = ParseBackground(json.RawMessage(`{"type":"image","image":{"src":"/paper.jpg"}}`))
	require.NoError(t, err)
	assert.Equal(t, 1.0, bg.Image.Opacity)

	_, err = ParseBackground(json.RawMessage(`{"type":"gradient","gradient":{"kind":"linear","stops":[{"color":"#fff","position":0}]}}`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "background.gradient.stops", verr.Field)

	_, err = ParseBackground(json.RawMessage(`{"type":"pattern"}`))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPageValidatePrefixesBackground(t *testing.T) {
	p := Page{Width: 800, Height: 600, Background: Background{Type: BackgroundGradient}}
	var verr *ValidationError
	require.ErrorAs(t, p.Validate(), &verr)
	assert.Equal(t, "background.gradient", verr.Field)

	p.Background = Background{Type: BackgroundColor}
	require.ErrorAs(t, p.Validate(), &verr)
	assert.Equal(t, "background.color", verr.Field)

	p.Background = DefaultBackground()
	assert.NoError(t, p.Validate())
}

func TestPageInputApply(t *testing.T) {
	base := NewPage("sb", 2, 800, 800)
	name := "Cover"
	in := PageInput{Name: &name}
	merged, err := in.Apply(&base, "sb", 100, 100)
	require.NoError(t, err)
	assert.Equal(t, "Cover", merged.Name)
	assert.Equal(t, 2, merged.Order)
	assert.Equal(t, 800.0, merged.Width)

	fresh, err := PageInput{}.Apply(nil, "sb", 640, 480)
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.ID)
	assert.Equal(t, 640.0, fresh.Width)

	neg := -1.0
	_, err = PageInput{Width: &neg}.Apply(&base, "sb", 0, 0)
	assert.ErrorIs(t, err, ErrValidation)
}
