package types

import "fmt"

type Platform string

const (
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformYouTube   Platform = "youtube"
)

func ParsePlatform(raw string) (Platform, error) {
	switch Platform(raw) {
	case PlatformTikTok, PlatformInstagram, PlatformYouTube:
		return Platform(raw), nil
	}
	return "", fmt.Errorf("unknown platform %q", raw)
}

// WorksheetName is the spreadsheet tab a platform's rows live on.
func (p Platform) WorksheetName() string {
	switch p {
	case PlatformTikTok:
		return "TikTok"
	case PlatformInstagram:
		return "Instagram"
	case PlatformYouTube:
		return "YouTube"
	}
	return string(p)
}
