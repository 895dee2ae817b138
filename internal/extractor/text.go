package extractor

import (
	"net/url"
	"strings"
)

// ExtFromURL infers a file extension from the path suffix of a URL,
// without the dot. Returns "" when the path has no extension.
func ExtFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	path := u.Path
	idx := strings.LastIndex(path, ".")
	if idx < 0 || idx == len(path)-1 {
		return ""
	}
	ext := path[idx+1:]
	if strings.Contains(ext, "/") {
		return ""
	}
	return strings.ToLower(ext)
}

// ExtractAll returns every substring of s delimited by open and close, in
// encounter order.
func ExtractAll(s, open, close string) []string {
	var out []string
	for {
		start := strings.Index(s, open)
		if start < 0 {
			return out
		}
		s = s[start+len(open):]
		end := strings.Index(s, close)
		if end < 0 {
			return out
		}
		out = append(out, s[:end])
		s = s[end+len(close):]
	}
}
