package textproc

import "testing"

// TestNormalizeURL tests canonical identity derivation from raw URLs.
func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want URLParts
	}{
		{
			name: "strips scheme, www, query, fragment",
			raw:  "https://www.example.com/blog/post?utm=1#section",
			want: URLParts{
				Key:      "example.com/blog/post",
				Domain:   "example.com",
				Hostname: "example.com",
				Path:     "/blog/post",
			},
		},
		{
			name: "strips trailing slash",
			raw:  "http://example.com/blog/",
			want: URLParts{
				Key:      "example.com/blog",
				Domain:   "example.com",
				Hostname: "example.com",
				Path:     "/blog",
			},
		},
		{
			name: "strips directory index filename",
			raw:  "http://example.com/docs/index.html",
			want: URLParts{
				Key:      "example.com/docs",
				Domain:   "example.com",
				Hostname: "example.com",
				Path:     "/docs",
			},
		},
		{
			name: "keeps subdomain in hostname but not domain",
			raw:  "https://news.example.co.uk/story",
			want: URLParts{
				Key:      "news.example.co.uk/story",
				Domain:   "example.co.uk",
				Hostname: "news.example.co.uk",
				Path:     "/story",
			},
		},
		{
			name: "schemeless input still parses",
			raw:  "example.com/page",
			want: URLParts{
				Key:      "example.com/page",
				Domain:   "example.com",
				Hostname: "example.com",
				Path:     "/page",
			},
		},
		{
			name: "root URL has empty path",
			raw:  "https://www.example.org/",
			want: URLParts{
				Key:      "example.org",
				Domain:   "example.org",
				Hostname: "example.org",
				Path:     "",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := NormalizeURL(tt.raw)
			if got != tt.want {
				t.Errorf("NormalizeURL(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

// TestNormalizeURLNeverFails tests the parse-failure fallback.
func TestNormalizeURLNeverFails(t *testing.T) {
	t.Parallel()

	t.Run("garbage input falls back to cleaned raw string", func(t *testing.T) {
		t.Parallel()

		got := NormalizeURL("ht tp://not a url?x=1")
		if got.Key == "" {
			t.Error("expected non-empty fallback key")
		}
		if got.Domain != got.Hostname || got.Hostname != got.Path {
			t.Errorf("fallback parts should be identical, got %+v", got)
		}
	})

	t.Run("determinism", func(t *testing.T) {
		t.Parallel()

		a := NormalizeURL("https://www.example.com/a/b/")
		b := NormalizeURL("https://www.example.com/a/b/")
		if a != b {
			t.Errorf("NormalizeURL is not deterministic: %+v vs %+v", a, b)
		}
	})
}
