package core

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultKeyPrefix namespaces every content key in the bucket
const DefaultKeyPrefix = "~meta/mails/v2"

// ContentKeyFromFile streams the file at path through SHA-256 and returns
// "<prefix>/<base64url(digest)>"
func ContentKeyFromFile(prefix, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}

	return contentKey(prefix, h.Sum(nil)), nil
}

// ContentKey returns the content key of an in-memory byte slice
func ContentKey(prefix string, content []byte) string {
	sum := sha256.Sum256(content)
	return contentKey(prefix, sum[:])
}

func contentKey(prefix string, digest []byte) string {
	encoded := base64.RawURLEncoding.EncodeToString(digest)
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		return encoded
	}
	return prefix + "/" + encoded
}

// ContentDisposition returns "inline" for directly viewable images and videos
// and "attachment" for everything else
func ContentDisposition(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/png", "image/heic", "image/webp", "image/gif":
		return "inline"
	case "video/mp4", "video/mpeg", "video/ogg", "video/webm":
		return "inline"
	default:
		return "attachment"
	}
}

// PublicURL joins the public base URL of the bucket with a content key
func PublicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
