package embed

import "regexp"

var (
	youtubeWatchRegex = regexp.MustCompile(`^(?:(https?)://)?(?:(?:www|m)\.)?youtube\.com/watch.*v=([a-zA-Z0-9_-]+)`)
	youtubeShortRegex = regexp.MustCompile(`^(?:(https?)://)?(?:(?:www|m)\.)?youtu\.be/([a-zA-Z0-9_-]+)`)
	vimeoRegex        = regexp.MustCompile(`^(?:(https?)://)?(?:www\.)?vimeo\.com/(\d+)`)
)

// CanonicalVideoURL rewrites a YouTube or Vimeo page URL into the URL of its
// embeddable player. Any other URL is returned unchanged. A missing scheme
// becomes https.
func CanonicalVideoURL(url string) string {
	match := youtubeWatchRegex.FindStringSubmatch(url)
	if match == nil {
		match = youtubeShortRegex.FindStringSubmatch(url)
	}
	if match != nil {
		return schemeOr(match[1]) + "://www.youtube.com/embed/" + match[2] + "?showinfo=0"
	}

	if match := vimeoRegex.FindStringSubmatch(url); match != nil {
		return schemeOr(match[1]) + "://player.vimeo.com/video/" + match[2] + "/"
	}

	return url
}

func schemeOr(scheme string) string {
	if scheme == "" {
		return "https"
	}
	return scheme
}
