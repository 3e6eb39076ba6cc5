package export

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
)

var whitespace = regexp.MustCompile(`\s+`)

// FileName builds "<title>_<start|all>_to_<end|present>.<ext>" with the title
// lower-cased and whitespace runs replaced by underscores.
func FileName(title string, period Period, ext string) string {
	base := whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(title)), "_")
	start, end := period.Start, period.End
	if start == "" {
		start = "all"
	}
	if end == "" {
		end = "present"
	}
	return fmt.Sprintf("%s_%s_to_%s.%s", base, start, end, strings.TrimPrefix(ext, "."))
}

// MailtoURI builds a mailto link with an empty recipient.
func MailtoURI(subject, body string) string {
	return "mailto:?subject=" + escapeComponent(subject) + "&body=" + escapeComponent(body)
}

// DataURI encodes body as a data: URI. Text payloads are percent-encoded, the rest base64.
func DataURI(contentType string, body []byte) string {
	contentType = strings.ReplaceAll(contentType, " ", "")
	if strings.HasPrefix(contentType, "text/") {
		return "data:" + contentType + "," + escapeURI(string(body))
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(body)
}

const upperhex = "0123456789ABCDEF"

// escapeComponent percent-encodes every byte except A-Z a-z 0-9 and -_.!~*'().
func escapeComponent(s string) string {
	return percentEncode(s, "-_.!~*'()")
}

// escapeURI additionally keeps the reserved URI characters.
func escapeURI(s string) string {
	return percentEncode(s, "-_.!~*'();/?:@&=+$,#")
}

func percentEncode(s, keep string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAlnum(c) || strings.IndexByte(keep, c) >= 0 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func isAlnum(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
