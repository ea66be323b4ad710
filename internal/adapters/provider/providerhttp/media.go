package providerhttp

import (
	"net/url"
	"path"
	"strings"

	"golang-wa-dispatch/internal/ports"
)

var imageExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true, "bmp": true,
}

// ClassifyMedia resolves the media kind: explicit hint, then MIME hint, then the
// extension (hinted or taken from the URL path), defaulting to a generic file.
func ClassifyMedia(mediaURL string, opts ports.MediaOptions) ports.MediaKind {
	switch strings.ToLower(strings.TrimSpace(opts.Kind)) {
	case "image":
		return ports.MediaImage
	case "file", "document":
		return ports.MediaFile
	}

	if mime := strings.ToLower(strings.TrimSpace(opts.MIME)); mime != "" {
		if strings.HasPrefix(mime, "image/") {
			return ports.MediaImage
		}
		return ports.MediaFile
	}

	ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(opts.Ext), "."))
	if ext == "" {
		ext = urlExtension(mediaURL)
	}
	if imageExtensions[ext] {
		return ports.MediaImage
	}
	return ports.MediaFile
}

func urlExtension(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		p = u.Path
	}
	return strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
}

// FileName returns the last path element of a media URL, for providers that want a filename.
func FileName(mediaURL string) string {
	p := mediaURL
	if u, err := url.Parse(mediaURL); err == nil && u.Path != "" {
		p = u.Path
	}
	name := path.Base(p)
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// Origin returns scheme://host of an endpoint, or "" when it is not an absolute URL.
func Origin(endpoint string) string {
	u, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
