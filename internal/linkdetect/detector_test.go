package linkdetect

import (
	"reflect"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Link
	}{
		{
			name: "no links",
			text: "just a plain message",
			want: nil,
		},
		{
			name: "unrecognized url filtered",
			text: "see https://example.com/watch/123/",
			want: nil,
		},
		{
			name: "tiktok video link",
			text: "check this https://www.tiktok.com/@user/video/123456/",
			want: []Link{
				{
					URL:      "https://www.tiktok.com/@user/video/123456/",
					Platform: PlatformTikTok,
					Position: 11,
				},
			},
		},
		{
			name: "fb watch link",
			text: "https://fb.watch/abc123/",
			want: []Link{
				{
					URL:      "https://fb.watch/abc123/",
					Platform: PlatformFacebook,
					Position: 0,
				},
			},
		},
		{
			name: "facebook share link",
			text: "https://www.facebook.com/share/v/iweQG4zGu/",
			want: []Link{
				{
					URL:      "https://www.facebook.com/share/v/iweQG4zGu/",
					Platform: PlatformFacebook,
					Position: 0,
				},
			},
		},
		{
			name: "instagram reel with item id",
			text: "look https://www.instagram.com/reel/Cxy_12-ab/",
			want: []Link{
				{
					URL:      "https://www.instagram.com/reel/Cxy_12-ab/",
					Platform: PlatformInstagram,
					ItemID:   "Cxy_12-ab",
					Position: 5,
				},
			},
		},
		{
			name: "multiple links in one message",
			text: "a https://www.tiktok.com/@x/video/1/ b https://fb.watch/z9/",
			want: []Link{
				{
					URL:      "https://www.tiktok.com/@x/video/1/",
					Platform: PlatformTikTok,
					Position: 2,
				},
				{
					URL:      "https://fb.watch/z9/",
					Platform: PlatformFacebook,
					Position: 39,
				},
			},
		},
		{
			name: "duplicate url returned once",
			text: "https://fb.watch/q1/ and again https://fb.watch/q1/",
			want: []Link{
				{
					URL:      "https://fb.watch/q1/",
					Platform: PlatformFacebook,
					Position: 0,
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Classify() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		wantPlatform Platform
		wantItemID   string
	}{
		{
			name:         "tiktok",
			url:          "https://www.tiktok.com/@user/video/42/",
			wantPlatform: PlatformTikTok,
		},
		{
			name:         "instagram post",
			url:          "https://instagram.com/p/AbC123/",
			wantPlatform: PlatformInstagram,
			wantItemID:   "AbC123",
		},
		{
			name:         "invalid",
			url:          "https://example.com/video/42/",
			wantPlatform: PlatformInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.url)
			if got.Platform != tt.wantPlatform {
				t.Errorf("Validate() platform = %v, want %v", got.Platform, tt.wantPlatform)
			}

			if got.ItemID != tt.wantItemID {
				t.Errorf("Validate() item id = %q, want %q", got.ItemID, tt.wantItemID)
			}
		})
	}
}
