package utils

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
)

// DefaultContentType is returned when nothing recognises the content
const DefaultContentType = "application/octet-stream"

// contentTypeAliases maps sniffer results onto the names the processors and
// disposition table use
var contentTypeAliases = map[string]string{
	"image/heif":          "image/heic",
	"image/heic-sequence": "image/heic",
	"image/heif-sequence": "image/heic",
}

// SniffContentType guesses the MIME type of content from its bytes.
// Magic-number matching via filetype is tried first; mimetype covers text
// and container formats filetype does not know. Parameters are stripped and
// HEIF variants are reported as image/heic.
func SniffContentType(content []byte) string {
	if len(content) == 0 {
		return DefaultContentType
	}

	if t, err := filetype.Match(content); err == nil && t != types.Unknown && t.MIME.Value != "" {
		return canonicalContentType(t.MIME.Value)
	}

	detected := mimetype.Detect(content)
	if detected == nil {
		return DefaultContentType
	}
	mediaType := strings.TrimSpace(strings.SplitN(detected.String(), ";", 2)[0])
	if mediaType == "" {
		return DefaultContentType
	}
	return canonicalContentType(mediaType)
}

func canonicalContentType(mediaType string) string {
	if alias, ok := contentTypeAliases[mediaType]; ok {
		return alias
	}
	return mediaType
}
