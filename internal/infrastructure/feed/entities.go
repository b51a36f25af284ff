package feed

import "strings"

// Feeds frequently double-escape text, so entity markup survives the
// XML parse and has to be decoded once more. Numeric references map to
// their ASCII equivalents.
var entityDecoder = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&#8216;", "'",
	"&#8217;", "'",
	"&#8220;", `"`,
	"&#8221;", `"`,
	"&#8211;", "-",
	"&#8212;", "--",
	"&#8230;", "...",
)

var entityEncoder = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// DecodeEntities replaces the supported entity set with literal characters.
func DecodeEntities(text string) string {
	return entityDecoder.Replace(text)
}

// EncodeEntities escapes the named entity set; the inverse of
// DecodeEntities for characters that survive a decode.
func EncodeEntities(text string) string {
	return entityEncoder.Replace(text)
}
