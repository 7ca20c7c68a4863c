package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/viraltrack/viraltrack-backend/internal/repos"
	"github.com/viraltrack/viraltrack-backend/internal/types"
)

type transcriptionFixture struct {
	db        *gorm.DB
	svc       *transcriptionService
	videoRepo repos.VideoRepo
	mirror    *fakeMirror
	speech    *fakeSpeechProvider
	media     *fakeMediaTools
	bucket    *fakeBucket
}

func newTranscriptionFixture(t *testing.T, media *fakeMediaTools, speech *fakeSpeechProvider) *transcriptionFixture {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger(t)
	videoRepo := repos.NewVideoRepo(db, log)
	userRepo := repos.NewUserRepo(db, log)
	mirror := &fakeMirror{}
	bucket := &fakeBucket{}

	svc := NewTranscriptionService(db, log, videoRepo, userRepo, media, speech, bucket, mirror)
	return &transcriptionFixture{
		db:        db,
		svc:       svc.(*transcriptionService),
		videoRepo: videoRepo,
		mirror:    mirror,
		speech:    speech,
		media:     media,
		bucket:    bucket,
	}
}

func seedVideo(t *testing.T, db *gorm.DB, userID, keywordID uuid.UUID, status types.TranscriptionStatus) *types.Video {
	t.Helper()
	video := &types.Video{
		ID:                  uuid.New(),
		UserID:              userID,
		KeywordID:           keywordID,
		Platform:            types.PlatformTikTok,
		VideoURL:            fmt.Sprintf("https://tiktok.com/v/%s", uuid.New().String()[:8]),
		TranscriptionStatus: status,
		ScrapedAt:           time.Now().UTC(),
	}
	if err := db.Create(video).Error; err != nil {
		t.Fatalf("seed video: %v", err)
	}
	return video
}

func TestClaimRejectsProcessingVideo(t *testing.T) {
	f := newTranscriptionFixture(t, &fakeMediaTools{}, &fakeSpeechProvider{text: "hello"})
	user := seedUser(t, f.db)
	kw := seedKeyword(t, f.db, user.ID, "cats", types.PlatformTikTok)
	video := seedVideo(t, f.db, user.ID, kw.ID, types.TranscriptionProcessing)

	_, err := f.svc.claim(context.Background(), user.ID, video.ID)
	if !errors.Is(err, ErrTranscriptionInProgress) {
		t.Fatalf("want ErrTranscriptionInProgress got %v", err)
	}
}

func TestClaimRejectsForeignVideo(t *testing.T) {
	f := newTranscriptionFixture(t, &fakeMediaTools{}, &fakeSpeechProvider{text: "hello"})
	owner := seedUser(t, f.db)
	kw := seedKeyword(t, f.db, owner.ID, "cats", types.PlatformTikTok)
	video := seedVideo(t, f.db, owner.ID, kw.ID, types.TranscriptionPending)

	stranger := seedUser(t, f.db)
	_, err := f.svc.claim(context.Background(), stranger.ID, video.ID)
	if !errors.Is(err, ErrVideoNotFound) {
		t.Fatalf("want ErrVideoNotFound got %v", err)
	}
}

func TestTranscribeCompletesAndMirrors(t *testing.T) {
	f := newTranscriptionFixture(t, &fakeMediaTools{}, &fakeSpeechProvider{text: "the transcript"})
	user := seedUser(t, f.db)
	kw := seedKeyword(t, f.db, user.ID, "cats", types.PlatformTikTok)
	video := seedVideo(t, f.db, user.ID, kw.ID, types.TranscriptionPending)

	if _, err := f.svc.claim(context.Background(), user.ID, video.ID); err != nil {
		t.Fatalf("claim: %v", err)
	}
	f.svc.transcribe(context.Background(), user.ID, video.ID)

	got, err := f.videoRepo.GetByID(context.Background(), nil, video.ID)
	if err != nil || got == nil {
		t.Fatalf("reload video: %v", err)
	}
	if got.TranscriptionStatus != types.TranscriptionCompleted {
		t.Fatalf("status: want=completed got=%s", got.TranscriptionStatus)
	}
	if got.Transcription != "the transcript" {
		t.Fatalf("transcript: want=%q got=%q", "the transcript", got.Transcription)
	}
	if f.mirror.transcriptCalls != 1 || f.mirror.lastStatus != types.TranscriptionCompleted {
		t.Fatalf("mirror: calls=%d lastStatus=%s", f.mirror.transcriptCalls, f.mirror.lastStatus)
	}
	if f.speech.byteCalls != 1 || f.speech.gcsCalls != 0 {
		t.Fatalf("small audio must go inline: bytes=%d gcs=%d", f.speech.byteCalls, f.speech.gcsCalls)
	}
	if len(f.speech.lastCfg.AlternativeLanguageCodes) == 0 {
		t.Fatal("recognizer must be given alternative language codes for auto-detection")
	}
}

func TestTranscribeFailureLeavesFailedStateAndEmptyTranscript(t *testing.T) {
	media := &fakeMediaTools{downloadErr: fmt.Errorf("unreachable")}
	f := newTranscriptionFixture(t, media, &fakeSpeechProvider{text: "never used"})
	user := seedUser(t, f.db)
	kw := seedKeyword(t, f.db, user.ID, "cats", types.PlatformTikTok)
	video := seedVideo(t, f.db, user.ID, kw.ID, types.TranscriptionPending)

	if _, err := f.svc.claim(context.Background(), user.ID, video.ID); err != nil {
		t.Fatalf("claim: %v", err)
	}
	f.svc.transcribe(context.Background(), user.ID, video.ID)

	got, _ := f.videoRepo.GetByID(context.Background(), nil, video.ID)
	if got.TranscriptionStatus != types.TranscriptionFailed {
		t.Fatalf("status: want=failed got=%s", got.TranscriptionStatus)
	}
	if got.Transcription != "" {
		t.Fatalf("failed video must keep empty transcript, got %q", got.Transcription)
	}
	if f.mirror.lastStatus != types.TranscriptionFailed {
		t.Fatalf("mirror status: want=failed got=%s", f.mirror.lastStatus)
	}
}

func TestFailedVideoCanBeRetriggered(t *testing.T) {
	f := newTranscriptionFixture(t, &fakeMediaTools{}, &fakeSpeechProvider{text: "second try"})
	user := seedUser(t, f.db)
	kw := seedKeyword(t, f.db, user.ID, "cats", types.PlatformTikTok)
	video := seedVideo(t, f.db, user.ID, kw.ID, types.TranscriptionFailed)

	if _, err := f.svc.claim(context.Background(), user.ID, video.ID); err != nil {
		t.Fatalf("claim retry: %v", err)
	}
	f.svc.transcribe(context.Background(), user.ID, video.ID)

	got, _ := f.videoRepo.GetByID(context.Background(), nil, video.ID)
	if got.TranscriptionStatus != types.TranscriptionCompleted {
		t.Fatalf("status: want=completed got=%s", got.TranscriptionStatus)
	}
	if got.Transcription != "second try" {
		t.Fatalf("transcript: want=%q got=%q", "second try", got.Transcription)
	}
}

func TestFailedRetryKeepsPriorTranscript(t *testing.T) {
	media := &fakeMediaTools{downloadErr: fmt.Errorf("unreachable")}
	f := newTranscriptionFixture(t, media, &fakeSpeechProvider{text: "never used"})
	user := seedUser(t, f.db)
	kw := seedKeyword(t, f.db, user.ID, "cats", types.PlatformTikTok)
	video := seedVideo(t, f.db, user.ID, kw.ID, types.TranscriptionCompleted)
	if err := f.db.Model(video).Update("transcription", "the original transcript").Error; err != nil {
		t.Fatalf("seed transcript: %v", err)
	}

	if _, err := f.svc.claim(context.Background(), user.ID, video.ID); err != nil {
		t.Fatalf("claim retry: %v", err)
	}
	f.svc.transcribe(context.Background(), user.ID, video.ID)

	got, _ := f.videoRepo.GetByID(context.Background(), nil, video.ID)
	if got.TranscriptionStatus != types.TranscriptionFailed {
		t.Fatalf("status: want=failed got=%s", got.TranscriptionStatus)
	}
	if got.Transcription != "the original transcript" {
		t.Fatalf("failed retry must keep the stored transcript, got %q", got.Transcription)
	}
}

func TestLargeAudioIsStagedToGCS(t *testing.T) {
	big := make([]byte, inlineAudioLimit+1)
	f := newTranscriptionFixture(t, &fakeMediaTools{audioBytes: big}, &fakeSpeechProvider{text: "long one"})
	user := seedUser(t, f.db)
	kw := seedKeyword(t, f.db, user.ID, "cats", types.PlatformTikTok)
	video := seedVideo(t, f.db, user.ID, kw.ID, types.TranscriptionPending)

	if _, err := f.svc.claim(context.Background(), user.ID, video.ID); err != nil {
		t.Fatalf("claim: %v", err)
	}
	f.svc.transcribe(context.Background(), user.ID, video.ID)

	if f.speech.gcsCalls != 1 || f.speech.byteCalls != 0 {
		t.Fatalf("large audio must go via GCS: bytes=%d gcs=%d", f.speech.byteCalls, f.speech.gcsCalls)
	}
	if len(f.bucket.uploads) != 1 || len(f.bucket.deletes) != 1 {
		t.Fatalf("staged object lifecycle: uploads=%d deletes=%d", len(f.bucket.uploads), len(f.bucket.deletes))
	}
}
