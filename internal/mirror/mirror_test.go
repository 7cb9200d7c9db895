package mirror

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRewrite(t *testing.T) {
	tests := []struct {
		name string
		url  string
		host string
		want string
	}{
		{
			name: "swaps host and keeps path",
			url:  "https://www.tiktok.com/@user/video/123",
			host: "a.tnktok.com",
			want: "https://a.tnktok.com/@user/video/123",
		},
		{
			name: "keeps query string",
			url:  "https://www.tiktok.com/@user/video/123?lang=en&t=5",
			host: "tfxktok.com",
			want: "https://tfxktok.com/@user/video/123?lang=en&t=5",
		},
		{
			name: "http scheme preserved",
			url:  "http://instagram.com/reel/abc/",
			host: "ddinstagram.com",
			want: "http://ddinstagram.com/reel/abc/",
		},
		{
			name: "host only url",
			url:  "https://tiktok.com",
			host: "a.tnktok.com",
			want: "https://a.tnktok.com",
		},
		{
			name: "no scheme returned unchanged",
			url:  "tiktok.com/@user/video/1",
			host: "a.tnktok.com",
			want: "tiktok.com/@user/video/1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Rewrite(tt.url, tt.host))
		})
	}
}

func TestRewriteRoundTrip(t *testing.T) {
	original := "https://www.tiktok.com/@user/video/9876?is_copy_url=1"

	rewritten := Rewrite(original, "a.tnktok.com")
	require.Equal(t, original, Rewrite(rewritten, "www.tiktok.com"))
}
