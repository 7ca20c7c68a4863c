package services

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/viraltrack/viraltrack-backend/internal/logger"
	"github.com/viraltrack/viraltrack-backend/internal/types"
	"github.com/viraltrack/viraltrack-backend/internal/utils"
)

// Column layout of every platform worksheet. The transcript and its status
// live in columns J and K; updates rewrite only those two cells.
var sheetHeaders = []interface{}{
	"Date Scraped",
	"Keyword",
	"Video URL",
	"Author",
	"Description",
	"Likes",
	"Comments",
	"Shares",
	"Views",
	"Transcription",
	"Transcription Status",
}

const sheetDescriptionLimit = 200

type SheetInfo struct {
	Title      string   `json:"title"`
	Worksheets []string `json:"worksheets"`
}

// SheetMirrorService keeps an external spreadsheet in sync with stored
// videos. The mirror is a convenience view, not a source of truth: callers
// must treat every returned error as log-and-continue, never as a reason to
// change job or video state.
type SheetMirrorService interface {
	SyncNewVideos(ctx context.Context, user *types.User, keyword *types.Keyword, batch []VideoCandidate) error
	SyncTranscript(ctx context.Context, user *types.User, platform types.Platform, videoURL, transcript string, status types.TranscriptionStatus) error
	VerifyAccess(ctx context.Context, sheetID string) (*SheetInfo, error)
	SetupUserSheet(ctx context.Context, sheetID string) error
}

type googleSheetMirror struct {
	log    *logger.Logger
	sheets *sheets.Service
}

func NewGoogleSheetMirror(log *logger.Logger) (SheetMirrorService, error) {
	serviceLog := log.With("service", "GoogleSheetMirror")
	saPath := utils.GetEnv("GOOGLE_APPLICATION_CREDENTIALS", "", log)

	ctx := context.Background()
	var svc *sheets.Service
	var err error
	if saPath != "" {
		svc, err = sheets.NewService(ctx, option.WithCredentialsFile(saPath), option.WithScopes(sheets.SpreadsheetsScope))
	} else {
		svc, err = sheets.NewService(ctx, option.WithScopes(sheets.SpreadsheetsScope))
	}
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}
	return &googleSheetMirror{log: serviceLog, sheets: svc}, nil
}

func (m *googleSheetMirror) SyncNewVideos(ctx context.Context, user *types.User, keyword *types.Keyword, batch []VideoCandidate) error {
	if user == nil || user.GoogleSheetID == "" || len(batch) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	now := time.Now().UTC().Format("2006-01-02 15:04")
	rows := make([][]interface{}, 0, len(batch))
	for _, cand := range batch {
		rows = append(rows, buildSheetRow(now, keyword.Keyword, cand))
	}

	worksheet := keyword.Platform.WorksheetName()
	_, err := m.sheets.Spreadsheets.Values.
		Append(user.GoogleSheetID, worksheet+"!A1", &sheets.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		m.log.Warn("Failed to append video rows to sheet", "sheet_id", user.GoogleSheetID, "worksheet", worksheet, "rows", len(rows), "error", err)
		return fmt.Errorf("append rows to %s: %w", worksheet, err)
	}
	m.log.Info("Mirrored new videos to sheet", "worksheet", worksheet, "rows", len(rows))
	return nil
}

func (m *googleSheetMirror) SyncTranscript(ctx context.Context, user *types.User, platform types.Platform, videoURL, transcript string, status types.TranscriptionStatus) error {
	if user == nil || user.GoogleSheetID == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	worksheet := platform.WorksheetName()
	rowNum, err := m.findRowByURL(ctx, user.GoogleSheetID, worksheet, videoURL)
	if err != nil {
		m.log.Warn("Failed to locate video row in sheet", "worksheet", worksheet, "video_url", videoURL, "error", err)
		return err
	}
	if rowNum == 0 {
		m.log.Warn("Video URL not found in sheet", "worksheet", worksheet, "video_url", videoURL)
		return nil
	}

	rng := fmt.Sprintf("%s!J%d:K%d", worksheet, rowNum, rowNum)
	_, err = m.sheets.Spreadsheets.Values.
		Update(user.GoogleSheetID, rng, &sheets.ValueRange{
			Values: [][]interface{}{{transcript, string(status)}},
		}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		m.log.Warn("Failed to update transcript in sheet", "worksheet", worksheet, "video_url", videoURL, "error", err)
		return fmt.Errorf("update transcript row %d: %w", rowNum, err)
	}
	return nil
}

// findRowByURL scans the URL column (C) for an exact match and returns the
// 1-based row number, or 0 when absent.
func (m *googleSheetMirror) findRowByURL(ctx context.Context, sheetID, worksheet, videoURL string) (int, error) {
	resp, err := m.sheets.Spreadsheets.Values.
		Get(sheetID, worksheet+"!C:C").
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("read url column: %w", err)
	}
	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if s, ok := row[0].(string); ok && s == videoURL {
			return i + 1, nil
		}
	}
	return 0, nil
}

func (m *googleSheetMirror) VerifyAccess(ctx context.Context, sheetID string) (*SheetInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	ss, err := m.sheets.Spreadsheets.Get(sheetID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet %s: %w", sheetID, err)
	}
	info := &SheetInfo{Title: ss.Properties.Title}
	for _, ws := range ss.Sheets {
		if ws.Properties != nil {
			info.Worksheets = append(info.Worksheets, ws.Properties.Title)
		}
	}
	return info, nil
}

// SetupUserSheet creates the per-platform worksheets with headers, skipping
// tabs that already exist.
func (m *googleSheetMirror) SetupUserSheet(ctx context.Context, sheetID string) error {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	info, err := m.VerifyAccess(ctx, sheetID)
	if err != nil {
		return err
	}
	existing := map[string]bool{}
	for _, title := range info.Worksheets {
		existing[title] = true
	}

	for _, platform := range []types.Platform{types.PlatformTikTok, types.PlatformInstagram} {
		title := platform.WorksheetName()
		if existing[title] {
			continue
		}
		_, err := m.sheets.Spreadsheets.BatchUpdate(sheetID, &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: title},
				},
			}},
		}).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("create worksheet %s: %w", title, err)
		}
		_, err = m.sheets.Spreadsheets.Values.
			Update(sheetID, title+"!A1", &sheets.ValueRange{Values: [][]interface{}{sheetHeaders}}).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("write headers for %s: %w", title, err)
		}
		m.log.Info("Created worksheet", "sheet_id", sheetID, "worksheet", title)
	}
	return nil
}

func buildSheetRow(scrapedAt, keyword string, cand VideoCandidate) []interface{} {
	return []interface{}{
		scrapedAt,
		keyword,
		cand.VideoURL,
		cand.AuthorUsername,
		truncateDescription(cand.Description),
		cand.Likes,
		cand.Comments,
		cand.Shares,
		cand.Views,
		"", // transcript, filled in later
		string(types.TranscriptionPending),
	}
}

func truncateDescription(desc string) string {
	runes := []rune(desc)
	if len(runes) <= sheetDescriptionLimit {
		return desc
	}
	return string(runes[:sheetDescriptionLimit]) + "..."
}

// noopSheetMirror stands in when no sheets credentials are configured. Every
// call succeeds without doing anything.
type noopSheetMirror struct {
	log *logger.Logger
}

func NewNoopSheetMirror(log *logger.Logger) SheetMirrorService {
	return &noopSheetMirror{log: log.With("service", "NoopSheetMirror")}
}

func (m *noopSheetMirror) SyncNewVideos(ctx context.Context, user *types.User, keyword *types.Keyword, batch []VideoCandidate) error {
	return nil
}

func (m *noopSheetMirror) SyncTranscript(ctx context.Context, user *types.User, platform types.Platform, videoURL, transcript string, status types.TranscriptionStatus) error {
	return nil
}

func (m *noopSheetMirror) VerifyAccess(ctx context.Context, sheetID string) (*SheetInfo, error) {
	return nil, fmt.Errorf("sheet mirror not configured")
}

func (m *noopSheetMirror) SetupUserSheet(ctx context.Context, sheetID string) error {
	return nil
}
