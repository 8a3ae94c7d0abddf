package embed

import (
	"encoding/base64"
	"strings"

	"github.com/pkg/errors"
)

// DefaultImageBaseURL is the base URL of the default emoticon image host.
const DefaultImageBaseURL = "https://img.guibi.com/emot/qq/"

// ImageHost maps an emoji source path to the URL of its image. The mapping is
// a pure function of BaseURL and the source path.
type ImageHost struct {
	BaseURL string
}

// URL returns the image URL for the given emoji source. Sources that are
// already absolute URLs are returned as-is.
func (h ImageHost) URL(src string) string {
	if strings.Contains(src, "://") || strings.HasPrefix(src, "data:") {
		return src
	}

	base := h.BaseURL
	if base == "" {
		base = DefaultImageBaseURL
	}

	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(src, "/")
}

// ErrNotDataURI is returned by DecodeDataURI for URIs without the data scheme
// or without a base64 payload.
var ErrNotDataURI = errors.New("not a base64 data URI")

// DecodeDataURI decodes a base64 "data:" URI, such as the ones produced for
// typeset formulas.
func DecodeDataURI(uri string) (mime string, data []byte, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, ErrNotDataURI
	}

	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrNotDataURI
	}

	mime, ok = strings.CutSuffix(header, ";base64")
	if !ok {
		return "", nil, ErrNotDataURI
	}

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, errors.Wrap(err, "invalid data URI payload")
	}

	return mime, data, nil
}
