package bot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTranslitEnToThai(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "greeting typed on the wrong layout",
			in:   "l;ylfu",
			want: "สวัสดี",
		},
		{
			name: "spaces and unmapped runes pass through",
			in:   "l;ylfu ๆ!",
			want: "สวัสดี ๆ+",
		},
		{
			name: "thai input is left alone",
			in:   "ไทย",
			want: "ไทย",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, TranslitEnToThai(tc.in))
		})
	}
}
