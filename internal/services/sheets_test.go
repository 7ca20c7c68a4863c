package services

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/viraltrack/viraltrack-backend/internal/types"
)

func TestBuildSheetRowLayout(t *testing.T) {
	cand := VideoCandidate{
		Platform:       types.PlatformTikTok,
		VideoURL:       "https://www.tiktok.com/@maker/video/v1",
		AuthorUsername: "maker",
		Description:    "how to shape a boule",
		Likes:          5000,
		Comments:       3,
		Shares:         1,
		Views:          90000,
	}

	row := buildSheetRow("2026-08-28 09:00", "sourdough", cand)
	if len(row) != len(sheetHeaders) {
		t.Fatalf("row has %d cells, headers have %d", len(row), len(sheetHeaders))
	}
	if row[0] != "2026-08-28 09:00" || row[1] != "sourdough" || row[2] != cand.VideoURL {
		t.Fatalf("leading cells: %v", row[:3])
	}
	if row[3] != "maker" || row[4] != "how to shape a boule" {
		t.Fatalf("author/description cells: %v", row[3:5])
	}
	if row[5] != 5000 || row[6] != 3 || row[7] != 1 || row[8] != 90000 {
		t.Fatalf("counter cells: %v", row[5:9])
	}
	if row[9] != "" {
		t.Fatalf("transcript cell must start empty, got %v", row[9])
	}
	if row[10] != string(types.TranscriptionPending) {
		t.Fatalf("status cell: %v", row[10])
	}
}

func TestTruncateDescription(t *testing.T) {
	short := "short enough"
	if got := truncateDescription(short); got != short {
		t.Fatalf("short description changed: %q", got)
	}

	long := strings.Repeat("x", sheetDescriptionLimit+50)
	got := truncateDescription(long)
	if len(got) != sheetDescriptionLimit+3 {
		t.Fatalf("truncated length: %d", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("truncated description must end with ellipsis: %q", got[len(got)-10:])
	}

	exact := strings.Repeat("y", sheetDescriptionLimit)
	if got := truncateDescription(exact); got != exact {
		t.Fatal("boundary-length description must not be truncated")
	}

	multibyte := strings.Repeat("é", sheetDescriptionLimit+10)
	got = truncateDescription(multibyte)
	if !utf8.ValidString(got) {
		t.Fatal("truncation split a multi-byte rune")
	}
	if n := utf8.RuneCountInString(got); n != sheetDescriptionLimit+3 {
		t.Fatalf("rune count after truncation: %d", n)
	}
}

func TestNoopMirrorAcceptsEverything(t *testing.T) {
	mirror := NewNoopSheetMirror(newTestLogger(t))
	ctx := context.Background()

	if err := mirror.SyncNewVideos(ctx, &types.User{}, &types.Keyword{}, nil); err != nil {
		t.Fatalf("SyncNewVideos: %v", err)
	}
	if _, err := mirror.VerifyAccess(ctx, "any-sheet"); err == nil {
		t.Fatal("noop mirror must refuse verification, nothing is configured")
	}
}
