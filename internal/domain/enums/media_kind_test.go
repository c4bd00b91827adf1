package enums

import "testing"

func TestKindFromMime(t *testing.T) {
	cases := []struct {
		mime string
		want MediaKind
	}{
		{"image/jpeg", MediaKindImage},
		{"image/png", MediaKindImage},
		{"image/webp", MediaKindImage},
		{"image/gif", MediaKindGIF},
		{"video/mp4", MediaKindVideo},
		{"video/webm", MediaKindVideo},
		{"audio/mpeg", MediaKindAudio},
		{"audio/wav", MediaKindAudio},
		{"application/pdf", MediaKindImage},
		{"", MediaKindImage},
	}

	for _, tc := range cases {
		if got := KindFromMime(tc.mime); got != tc.want {
			t.Errorf("KindFromMime(%q) = %q, want %q", tc.mime, got, tc.want)
		}
	}
}
