package components

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildMessageVideoGallery(t *testing.T) {
	payload, err := BuildMessage(Gallery(Media("https://cdn.example/v.mp4")))
	require.NoError(t, err)
	require.Equal(t, 1<<15, payload.Flags)
	require.Len(t, payload.Components, 1)

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"flags": 32768,
		"components": [
			{"type": 12, "items": [{"media": {"url": "https://cdn.example/v.mp4"}}]}
		]
	}`, string(data))
}

func TestBuildMessageContainerTree(t *testing.T) {
	payload, err := BuildMessage(Container(0x1877F2,
		Text("### [Post Owner](https://facebook.com/post)"),
		Text("holiday photos"),
		Separator(SpacingSmall),
		Gallery(Media("attachment://0_a.jpg"), Media("attachment://1_b.jpg")),
		Row(LinkButton("And more 2 images on Facebook", "https://facebook.com/post")),
	))
	require.NoError(t, err)

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	var decoded map[string]any

	require.NoError(t, json.Unmarshal(data, &decoded))

	container := decoded["components"].([]any)[0].(map[string]any)
	require.Equal(t, float64(17), container["type"])
	require.Equal(t, float64(0x1877F2), container["accent_color"])
	require.Len(t, container["components"], 5)
}

func TestButtonValidation(t *testing.T) {
	tests := []struct {
		name   string
		button ButtonNode
		wantOK bool
	}{
		{
			name:   "link button",
			button: LinkButton("open", "https://example.com"),
			wantOK: true,
		},
		{
			name:   "action button",
			button: ActionButton(StylePrimary, "go", "go_clicked"),
			wantOK: true,
		},
		{
			name:   "both url and custom id",
			button: ButtonNode{Style: StyleLink, URL: "https://example.com", CustomID: "x"},
		},
		{
			name:   "neither url nor custom id",
			button: ButtonNode{Style: StylePrimary, Label: "empty"},
		},
		{
			name:   "link style without url",
			button: ButtonNode{Style: StyleLink, CustomID: "x"},
		},
		{
			name:   "unknown style",
			button: ButtonNode{Style: 9, URL: "https://example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildMessage(Row(tt.button))
			if tt.wantOK {
				require.NoError(t, err)

				return
			}

			var verr *ValidationError

			require.Error(t, err)
			require.ErrorAs(t, err, &verr)
			require.NotEmpty(t, verr.Constraint)
		})
	}
}

func TestSectionValidation(t *testing.T) {
	_, err := BuildMessage(Section(Text("a"), Text("b"), Text("c")))
	require.NoError(t, err)

	var verr *ValidationError

	_, err = BuildMessage(Section(Text("a"), Text("b"), Text("c"), Text("d")))
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Constraint, "at most 3")
}

func TestSeparatorValidation(t *testing.T) {
	_, err := BuildMessage(Separator(SpacingLarge))
	require.NoError(t, err)

	var verr *ValidationError

	_, err = BuildMessage(SeparatorNode{Spacing: 3, Divider: true})
	require.ErrorAs(t, err, &verr)
}

func TestGalleryValidation(t *testing.T) {
	items := make([]MediaItem, 11)
	for i := range items {
		items[i] = Media("https://cdn.example/x.jpg")
	}

	var verr *ValidationError

	_, err := BuildMessage(Gallery(items...))
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Constraint, "at most 10")

	_, err = BuildMessage(Gallery())
	require.ErrorAs(t, err, &verr)
}

func TestBuildMessageEmpty(t *testing.T) {
	var verr *ValidationError

	_, err := BuildMessage()
	require.ErrorAs(t, err, &verr)
}
