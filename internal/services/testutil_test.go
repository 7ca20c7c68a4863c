package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/viraltrack/viraltrack-backend/internal/logger"
	"github.com/viraltrack/viraltrack-backend/internal/types"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&types.User{},
		&types.UserSettings{},
		&types.Keyword{},
		&types.Video{},
		&types.ScrapeJob{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB) *types.User {
	t.Helper()
	user := &types.User{
		ID:        uuid.New(),
		Email:     fmt.Sprintf("user-%s@example.com", uuid.New().String()[:8]),
		Password:  "hashed",
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedKeyword(t *testing.T, db *gorm.DB, userID uuid.UUID, keyword string, platform types.Platform) *types.Keyword {
	t.Helper()
	kw := &types.Keyword{
		ID:            uuid.New(),
		UserID:        userID,
		Keyword:       keyword,
		Platform:      platform,
		IsActive:      true,
		ResultsPerRun: 10,
		CreatedAt:     time.Now().UTC(),
	}
	if err := db.Create(kw).Error; err != nil {
		t.Fatalf("seed keyword: %v", err)
	}
	return kw
}

func candidate(url string, likes int) VideoCandidate {
	return VideoCandidate{
		Platform:       types.PlatformTikTok,
		VideoURL:       url,
		VideoID:        filepath.Base(url),
		AuthorUsername: "creator",
		Description:    "a clip",
		Likes:          likes,
		Views:          likes * 10,
	}
}

// fakeSearchProvider returns canned candidates per keyword and can fail for
// chosen queries.
type fakeSearchProvider struct {
	results map[string][]VideoCandidate
	failFor map[string]bool
	calls   int
}

func (f *fakeSearchProvider) Search(ctx context.Context, platform types.Platform, query string, maxResults, minLikes int, recencyWindow string) ([]VideoCandidate, error) {
	f.calls++
	if f.failFor[query] {
		return nil, fmt.Errorf("provider down for %q", query)
	}
	return f.results[query], nil
}

// fakeMirror records sync calls; with fail set it errors on everything.
type fakeMirror struct {
	fail            bool
	videoBatches    int
	transcriptCalls int
	lastTranscript  string
	lastStatus      types.TranscriptionStatus
}

func (f *fakeMirror) SyncNewVideos(ctx context.Context, user *types.User, keyword *types.Keyword, batch []VideoCandidate) error {
	f.videoBatches++
	if f.fail {
		return fmt.Errorf("mirror write failed")
	}
	return nil
}

func (f *fakeMirror) SyncTranscript(ctx context.Context, user *types.User, platform types.Platform, videoURL, transcript string, status types.TranscriptionStatus) error {
	f.transcriptCalls++
	f.lastTranscript = transcript
	f.lastStatus = status
	if f.fail {
		return fmt.Errorf("mirror write failed")
	}
	return nil
}

func (f *fakeMirror) VerifyAccess(ctx context.Context, sheetID string) (*SheetInfo, error) {
	if f.fail {
		return nil, fmt.Errorf("no access")
	}
	return &SheetInfo{Title: "test sheet"}, nil
}

func (f *fakeMirror) SetupUserSheet(ctx context.Context, sheetID string) error {
	if f.fail {
		return fmt.Errorf("setup failed")
	}
	return nil
}

// fakeMediaTools fabricates a video file and audio output on disk.
type fakeMediaTools struct {
	downloadErr error
	extractErr  error
	audioBytes  []byte
}

func (f *fakeMediaTools) AssertReady(ctx context.Context) error { return nil }

func (f *fakeMediaTools) DownloadVideo(ctx context.Context, videoURL, outDir string) (string, error) {
	if f.downloadErr != nil {
		return "", f.downloadErr
	}
	path := filepath.Join(outDir, "video.mp4")
	if err := os.WriteFile(path, []byte("mp4"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (f *fakeMediaTools) ExtractAudio(ctx context.Context, videoPath, outPath string, opts AudioExtractOptions) (string, error) {
	if f.extractErr != nil {
		return "", f.extractErr
	}
	audio := f.audioBytes
	if audio == nil {
		audio = []byte("flac")
	}
	if err := os.WriteFile(outPath, audio, 0o644); err != nil {
		return "", err
	}
	return outPath, nil
}

// fakeSpeechProvider returns a fixed transcript or error.
type fakeSpeechProvider struct {
	text      string
	err       error
	gcsCalls  int
	byteCalls int
	lastCfg   SpeechConfig
}

func (f *fakeSpeechProvider) TranscribeAudioBytes(ctx context.Context, audio []byte, cfg SpeechConfig) (*SpeechResult, error) {
	f.byteCalls++
	f.lastCfg = cfg
	if f.err != nil {
		return nil, f.err
	}
	return &SpeechResult{Provider: "fake", PrimaryText: f.text}, nil
}

func (f *fakeSpeechProvider) TranscribeAudioGCS(ctx context.Context, gcsURI string, cfg SpeechConfig) (*SpeechResult, error) {
	f.gcsCalls++
	f.lastCfg = cfg
	if f.err != nil {
		return nil, f.err
	}
	return &SpeechResult{Provider: "fake", SourceURI: gcsURI, PrimaryText: f.text}, nil
}

func (f *fakeSpeechProvider) Close() error { return nil }

// fakeBucket records staging traffic.
type fakeBucket struct {
	uploads []string
	deletes []string
}

func (f *fakeBucket) UploadFile(ctx context.Context, key string, file io.Reader) error {
	f.uploads = append(f.uploads, key)
	return nil
}

func (f *fakeBucket) DeleteFile(ctx context.Context, key string) error {
	f.deletes = append(f.deletes, key)
	return nil
}

func (f *fakeBucket) GCSURI(key string) string {
	return "gs://test-bucket/" + key
}
