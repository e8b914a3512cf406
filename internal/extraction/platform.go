package extraction

import (
	"net/url"
	"regexp"
	"strings"
)

// Platform is the service a source URL belongs to.
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformGeneric   Platform = "generic"
	PlatformUnknown   Platform = "unknown"
)

// Classification is the result of Classify. Identifiers are best effort and
// may be empty even when the platform is known.
type Classification struct {
	Platform Platform `json:"platform"`
	URL      string   `json:"url"`
	VideoID  string   `json:"video_id,omitempty"`
	PostID   string   `json:"post_id,omitempty"`
	Username string   `json:"username,omitempty"`
	Channel  string   `json:"channel,omitempty"`
}

var (
	youtubeIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^/(?:embed|shorts|live|v)/([A-Za-z0-9_-]+)`),
	}
	youtubeHandle  = regexp.MustCompile(`^/@([A-Za-z0-9._-]+)`)
	youtubeChannel = regexp.MustCompile(`^/c/([^/?#]+)`)

	tiktokVideo = regexp.MustCompile(`^/@([^/]+)/video/(\d+)`)
	tiktokUser  = regexp.MustCompile(`^/@([^/?#]+)`)
	tiktokShort = regexp.MustCompile(`^/t/([A-Za-z0-9]+)`)
	tiktokCode  = regexp.MustCompile(`^/([A-Za-z0-9]+)/?$`)

	instagramPost = regexp.MustCompile(`^/(?:([A-Za-z0-9._]+)/)?(?:p|reel|reels|tv)/([A-Za-z0-9_-]+)`)

	youtubeIDShape = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// Classify determines the platform of raw and extracts what identifiers it
// can. It performs no I/O. A missing scheme is treated as https.
func Classify(raw string) Classification {
	trimmed := strings.TrimSpace(raw)
	c := Classification{Platform: PlatformUnknown, URL: trimmed}
	if trimmed == "" {
		return c
	}

	candidate := trimmed
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}
	u, err := url.Parse(candidate)
	if err != nil || u.Host == "" {
		return c
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return c
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host == "" || strings.ContainsAny(host, " \t") {
		return c
	}
	c.URL = candidate

	switch {
	case isYouTubeHost(host):
		c.Platform = PlatformYouTube
		classifyYouTube(&c, host, u)
	case host == "tiktok.com" || strings.HasSuffix(host, ".tiktok.com"):
		c.Platform = PlatformTikTok
		classifyTikTok(&c, host, u)
	case host == "instagram.com" || host == "instagr.am" || strings.HasSuffix(host, ".instagram.com"):
		c.Platform = PlatformInstagram
		classifyInstagram(&c, u)
	default:
		c.Platform = PlatformGeneric
	}
	return c
}

func isYouTubeHost(host string) bool {
	switch host {
	case "youtube.com", "m.youtube.com", "music.youtube.com", "youtu.be", "youtube-nocookie.com":
		return true
	}
	return strings.HasSuffix(host, ".youtube.com")
}

func classifyYouTube(c *Classification, host string, u *url.URL) {
	if host == "youtu.be" {
		id := strings.Trim(u.Path, "/")
		if i := strings.Index(id, "/"); i >= 0 {
			id = id[:i]
		}
		if youtubeIDShape.MatchString(id) {
			c.VideoID = id
		}
		return
	}
	if v := u.Query().Get("v"); v != "" && youtubeIDShape.MatchString(v) {
		c.VideoID = v
	}
	if c.VideoID == "" {
		for _, re := range youtubeIDPatterns {
			if m := re.FindStringSubmatch(u.Path); m != nil {
				c.VideoID = m[1]
				break
			}
		}
	}
	if m := youtubeHandle.FindStringSubmatch(u.Path); m != nil {
		c.Channel = "@" + m[1]
	} else if m := youtubeChannel.FindStringSubmatch(u.Path); m != nil {
		if name, err := url.PathUnescape(m[1]); err == nil {
			c.Channel = name
		} else {
			c.Channel = m[1]
		}
	}
}

func classifyTikTok(c *Classification, host string, u *url.URL) {
	if m := tiktokVideo.FindStringSubmatch(u.Path); m != nil {
		c.Username = m[1]
		c.VideoID = m[2]
		return
	}
	if m := tiktokShort.FindStringSubmatch(u.Path); m != nil {
		c.VideoID = m[1]
		return
	}
	if m := tiktokUser.FindStringSubmatch(u.Path); m != nil {
		c.Username = m[1]
		return
	}
	if host == "vm.tiktok.com" || host == "vt.tiktok.com" {
		if m := tiktokCode.FindStringSubmatch(u.Path); m != nil {
			c.VideoID = m[1]
		}
	}
}

func classifyInstagram(c *Classification, u *url.URL) {
	if m := instagramPost.FindStringSubmatch(u.Path); m != nil {
		c.Username = m[1]
		c.PostID = m[2]
	}
}

// Author returns the creator handle derivable from the URL alone.
func (c Classification) Author() string {
	switch c.Platform {
	case PlatformTikTok:
		if c.Username != "" {
			return "@" + c.Username
		}
	case PlatformInstagram:
		return c.Username
	case PlatformYouTube:
		return c.Channel
	}
	return ""
}

// ThumbnailURL is the deterministic preview image for the content, if any.
func (c Classification) ThumbnailURL() string {
	if c.Platform == PlatformYouTube && c.VideoID != "" {
		return "https://img.youtube.com/vi/" + c.VideoID + "/hqdefault.jpg"
	}
	return ""
}
