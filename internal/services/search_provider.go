package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/viraltrack/viraltrack-backend/internal/logger"
	"github.com/viraltrack/viraltrack-backend/internal/types"
	"github.com/viraltrack/viraltrack-backend/internal/utils"
)

// VideoCandidate is a raw search result, not yet deduplicated or persisted.
type VideoCandidate struct {
	Platform       types.Platform  `json:"platform"`
	VideoURL       string          `json:"video_url"`
	VideoID        string          `json:"video_id,omitempty"`
	AuthorUsername string          `json:"author_username,omitempty"`
	AuthorName     string          `json:"author_name,omitempty"`
	Description    string          `json:"description,omitempty"`
	Likes          int             `json:"likes"`
	Comments       int             `json:"comments"`
	Shares         int             `json:"shares"`
	Views          int             `json:"views"`
	PostedAt       *time.Time      `json:"posted_at,omitempty"`
	Raw            json.RawMessage `json:"-"`
}

type SearchProviderService interface {
	Search(ctx context.Context, platform types.Platform, query string, maxResults int, minLikes int, recencyWindow string) ([]VideoCandidate, error)
}

type apifySearchProvider struct {
	log        *logger.Logger
	httpClient *http.Client
	apiToken   string
	baseURL    string
	actors     map[types.Platform]string
}

func NewApifySearchProvider(log *logger.Logger) (SearchProviderService, error) {
	serviceLog := log.With("service", "ApifySearchProvider")
	apiToken := utils.GetEnv("APIFY_API_TOKEN", "", log)
	if apiToken == "" {
		return nil, fmt.Errorf("APIFY_API_TOKEN is not set")
	}
	baseURL := utils.GetEnv("APIFY_BASE_URL", "https://api.apify.com", log)
	return &apifySearchProvider{
		log: serviceLog,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
		apiToken: apiToken,
		baseURL:  strings.TrimRight(baseURL, "/"),
		actors: map[types.Platform]string{
			types.PlatformTikTok:    utils.GetEnv("APIFY_TIKTOK_ACTOR", "clockworks~free-tiktok-scraper", log),
			types.PlatformInstagram: utils.GetEnv("APIFY_INSTAGRAM_ACTOR", "apify~instagram-scraper", log),
		},
	}, nil
}

func (p *apifySearchProvider) Search(ctx context.Context, platform types.Platform, query string, maxResults int, minLikes int, recencyWindow string) ([]VideoCandidate, error) {
	if maxResults <= 0 {
		maxResults = 10
	}
	switch platform {
	case types.PlatformTikTok:
		return p.searchTikTok(ctx, query, maxResults, minLikes, recencyWindow)
	case types.PlatformInstagram:
		return p.searchInstagram(ctx, query, maxResults, minLikes)
	default:
		return nil, fmt.Errorf("unsupported platform: %s", platform)
	}
}

func (p *apifySearchProvider) searchTikTok(ctx context.Context, query string, maxResults int, minLikes int, recencyWindow string) ([]VideoCandidate, error) {
	input := map[string]interface{}{
		"searchQueries":        []string{query},
		"resultsPerPage":       maxResults * 2, // fetch extra to survive the likes filter
		"searchSection":        "video",
		"maxProfilesPerQuery":  0,
		"shouldDownloadVideos": false,
		"shouldDownloadCovers": false,
	}
	if cutoff := recencyCutoff(recencyWindow); !cutoff.IsZero() {
		input["oldestPostDate"] = cutoff.UTC().Format("2006-01-02")
	}

	p.log.Info("Starting TikTok search", "query", query)
	raw, err := p.runActor(ctx, p.actors[types.PlatformTikTok], input)
	if err != nil {
		return nil, fmt.Errorf("tiktok search for %q: %w", query, err)
	}

	candidates, err := parseTikTokItems(raw, minLikes)
	if err != nil {
		return nil, fmt.Errorf("tiktok search for %q: %w", query, err)
	}
	candidates = topByLikes(candidates, maxResults)
	p.log.Info("TikTok search complete", "query", query, "results", len(candidates))
	return candidates, nil
}

func (p *apifySearchProvider) searchInstagram(ctx context.Context, query string, maxResults int, minLikes int) ([]VideoCandidate, error) {
	// Instagram search is hashtag based.
	hashtag := strings.ToLower(strings.ReplaceAll(query, " ", ""))
	input := map[string]interface{}{
		"hashtags":     []string{hashtag},
		"resultsLimit": maxResults * 2,
		"resultsType":  "posts",
		"searchType":   "hashtag",
	}

	p.log.Info("Starting Instagram search", "hashtag", hashtag)
	raw, err := p.runActor(ctx, p.actors[types.PlatformInstagram], input)
	if err != nil {
		return nil, fmt.Errorf("instagram search for %q: %w", query, err)
	}

	candidates, err := parseInstagramItems(raw, minLikes)
	if err != nil {
		return nil, fmt.Errorf("instagram search for %q: %w", query, err)
	}
	candidates = topByLikes(candidates, maxResults)
	p.log.Info("Instagram search complete", "hashtag", hashtag, "results", len(candidates))
	return candidates, nil
}

// runActor invokes an Apify actor synchronously and returns the dataset items.
func (p *apifySearchProvider) runActor(ctx context.Context, actorID string, input map[string]interface{}) ([]json.RawMessage, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshal actor input: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/acts/%s/run-sync-get-dataset-items?token=%s",
		p.baseURL, url.PathEscape(actorID), url.QueryEscape(p.apiToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build actor request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("run actor %s: %w", actorID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("actor %s returned status %d: %s", actorID, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var items []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode actor dataset: %w", err)
	}
	return items, nil
}

type tiktokItem struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	DiggCount    int    `json:"diggCount"`
	CommentCount int    `json:"commentCount"`
	ShareCount   int    `json:"shareCount"`
	PlayCount    int    `json:"playCount"`
	CreateTime   int64  `json:"createTime"`
	WebVideoURL  string `json:"webVideoUrl"`
	AuthorMeta   struct {
		Name     string `json:"name"`
		NickName string `json:"nickName"`
	} `json:"authorMeta"`
}

func parseTikTokItems(raw []json.RawMessage, minLikes int) ([]VideoCandidate, error) {
	out := make([]VideoCandidate, 0, len(raw))
	for _, r := range raw {
		var item tiktokItem
		if err := json.Unmarshal(r, &item); err != nil {
			return nil, fmt.Errorf("decode tiktok item: %w", err)
		}
		if item.DiggCount < minLikes {
			continue
		}
		videoURL := item.WebVideoURL
		if videoURL == "" {
			videoURL = fmt.Sprintf("https://www.tiktok.com/@%s/video/%s", item.AuthorMeta.Name, item.ID)
		}
		cand := VideoCandidate{
			Platform:       types.PlatformTikTok,
			VideoURL:       videoURL,
			VideoID:        item.ID,
			AuthorUsername: item.AuthorMeta.Name,
			AuthorName:     item.AuthorMeta.NickName,
			Description:    item.Text,
			Likes:          item.DiggCount,
			Comments:       item.CommentCount,
			Shares:         item.ShareCount,
			Views:          item.PlayCount,
			Raw:            r,
		}
		if item.CreateTime > 0 {
			t := time.Unix(item.CreateTime, 0).UTC()
			cand.PostedAt = &t
		}
		out = append(out, cand)
	}
	return out, nil
}

type instagramItem struct {
	ID             string `json:"id"`
	Type           string `json:"type"`
	URL            string `json:"url"`
	VideoURL       string `json:"videoUrl"`
	Caption        string `json:"caption"`
	OwnerUsername  string `json:"ownerUsername"`
	OwnerFullName  string `json:"ownerFullName"`
	LikesCount     int    `json:"likesCount"`
	CommentsCount  int    `json:"commentsCount"`
	VideoViewCount int    `json:"videoViewCount"`
	Timestamp      string `json:"timestamp"`
}

func parseInstagramItems(raw []json.RawMessage, minLikes int) ([]VideoCandidate, error) {
	out := make([]VideoCandidate, 0, len(raw))
	for _, r := range raw {
		var item instagramItem
		if err := json.Unmarshal(r, &item); err != nil {
			return nil, fmt.Errorf("decode instagram item: %w", err)
		}
		// Only video posts (reels).
		if item.Type != "Video" && item.VideoURL == "" {
			continue
		}
		if item.LikesCount < minLikes {
			continue
		}
		videoURL := item.URL
		if videoURL == "" {
			videoURL = item.VideoURL
		}
		cand := VideoCandidate{
			Platform:       types.PlatformInstagram,
			VideoURL:       videoURL,
			VideoID:        item.ID,
			AuthorUsername: item.OwnerUsername,
			AuthorName:     item.OwnerFullName,
			Description:    item.Caption,
			Likes:          item.LikesCount,
			Comments:       item.CommentsCount,
			Shares:         0, // not exposed by Instagram
			Views:          item.VideoViewCount,
			Raw:            r,
		}
		if item.Timestamp != "" {
			if t, err := time.Parse(time.RFC3339, item.Timestamp); err == nil {
				utc := t.UTC()
				cand.PostedAt = &utc
			}
		}
		out = append(out, cand)
	}
	return out, nil
}

func topByLikes(candidates []VideoCandidate, limit int) []VideoCandidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Likes > candidates[j].Likes
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// recencyCutoff maps the opaque recency label to a cutoff date for providers
// that accept one. Unknown labels default to a week.
func recencyCutoff(label string) time.Time {
	now := time.Now()
	switch label {
	case "today":
		return now.AddDate(0, 0, -1)
	case "this_week":
		return now.AddDate(0, 0, -7)
	case "this_month":
		return now.AddDate(0, 0, -30)
	case "":
		return time.Time{}
	default:
		return now.AddDate(0, 0, -7)
	}
}
