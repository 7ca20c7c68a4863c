package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/viraltrack/viraltrack-backend/internal/logger"
	"github.com/viraltrack/viraltrack-backend/internal/repos"
	"github.com/viraltrack/viraltrack-backend/internal/types"
)

// Audio above this size is staged to GCS and transcribed by URI instead of
// being sent inline.
const inlineAudioLimit = 10 << 20

// maxConcurrentTranscriptions bounds the batch worker pool; each slot holds a
// video download plus an audio file in the temp dir.
const maxConcurrentTranscriptions = 3

// transcriptionLanguages lets the recognizer auto-detect common non-English
// clips instead of forcing everything through en-US.
var transcriptionLanguages = []string{"es-ES", "pt-BR", "fr-FR", "de-DE", "hi-IN"}

// TranscriptionService drives a video through
// pending -> processing -> completed|failed. Processing is the only state
// that rejects a re-trigger; failed videos can always be retried.
type TranscriptionService interface {
	Start(ctx context.Context, userID, videoID uuid.UUID) (*types.Video, error)
	StartAllPending(ctx context.Context, userID uuid.UUID) (int, error)
}

type transcriptionService struct {
	db        *gorm.DB
	log       *logger.Logger
	videoRepo repos.VideoRepo
	userRepo  repos.UserRepo
	media     MediaToolsService
	speech    SpeechProviderService
	bucket    BucketService
	mirror    SheetMirrorService
}

func NewTranscriptionService(
	db *gorm.DB,
	log *logger.Logger,
	videoRepo repos.VideoRepo,
	userRepo repos.UserRepo,
	media MediaToolsService,
	speech SpeechProviderService,
	bucket BucketService,
	mirror SheetMirrorService,
) TranscriptionService {
	return &transcriptionService{
		db:        db,
		log:       log.With("service", "TranscriptionService"),
		videoRepo: videoRepo,
		userRepo:  userRepo,
		media:     media,
		speech:    speech,
		bucket:    bucket,
		mirror:    mirror,
	}
}

// Start claims one video and transcribes it in the background. The returned
// video reflects the claimed state, not the eventual outcome.
func (s *transcriptionService) Start(ctx context.Context, userID, videoID uuid.UUID) (*types.Video, error) {
	video, err := s.claim(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}
	go s.transcribe(context.Background(), userID, videoID)
	return video, nil
}

// StartAllPending transcribes every pending video of the user with a bounded
// worker pool. It returns the number of videos triggered; individual failures
// land on the videos themselves, never on the batch.
func (s *transcriptionService) StartAllPending(ctx context.Context, userID uuid.UUID) (int, error) {
	pending, err := s.videoRepo.ListPendingByUser(ctx, nil, userID, 0)
	if err != nil {
		return 0, fmt.Errorf("list pending videos: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	triggered := 0
	var ids []uuid.UUID
	for _, v := range pending {
		if _, err := s.claim(ctx, userID, v.ID); err != nil {
			s.log.Warn("Skipping video in batch", "video_id", v.ID, "error", err)
			continue
		}
		ids = append(ids, v.ID)
		triggered++
	}

	go func() {
		g, gctx := errgroup.WithContext(context.Background())
		g.SetLimit(maxConcurrentTranscriptions)
		for _, id := range ids {
			id := id
			g.Go(func() error {
				s.transcribe(gctx, userID, id)
				return nil
			})
		}
		_ = g.Wait()
	}()

	return triggered, nil
}

// claim validates ownership and moves the video into processing.
func (s *transcriptionService) claim(ctx context.Context, userID, videoID uuid.UUID) (*types.Video, error) {
	video, err := s.videoRepo.GetByID(ctx, nil, videoID)
	if err != nil {
		return nil, err
	}
	if video == nil || video.UserID != userID {
		return nil, ErrVideoNotFound
	}
	if video.TranscriptionStatus == types.TranscriptionProcessing {
		return nil, ErrTranscriptionInProgress
	}

	if err := s.videoRepo.UpdateFields(ctx, nil, videoID, map[string]interface{}{
		"transcription_status": types.TranscriptionProcessing,
	}); err != nil {
		return nil, fmt.Errorf("mark video processing: %w", err)
	}
	video.TranscriptionStatus = types.TranscriptionProcessing
	return video, nil
}

// transcribe runs the full pipeline for one already-claimed video and always
// leaves it in a terminal state.
func (s *transcriptionService) transcribe(ctx context.Context, userID, videoID uuid.UUID) {
	runLog := s.log.With("video_id", videoID)

	video, err := s.videoRepo.GetByID(ctx, nil, videoID)
	if err != nil || video == nil {
		runLog.Error("Failed to reload claimed video", "error", err)
		return
	}

	transcript, err := s.runPipeline(ctx, video)
	if err != nil {
		runLog.Warn("Transcription failed", "video_url", video.VideoURL, "error", err)
		s.finish(ctx, video, "", types.TranscriptionFailed)
		return
	}

	s.finish(ctx, video, transcript, types.TranscriptionCompleted)
	runLog.Info("Transcription completed", "chars", len(transcript))
}

func (s *transcriptionService) runPipeline(ctx context.Context, video *types.Video) (string, error) {
	if err := s.media.AssertReady(ctx); err != nil {
		return "", err
	}

	workDir, err := os.MkdirTemp("", "transcribe-*")
	if err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	videoPath, err := s.media.DownloadVideo(ctx, video.VideoURL, workDir)
	if err != nil {
		return "", fmt.Errorf("download video: %w", err)
	}

	audioPath := filepath.Join(workDir, "audio.flac")
	if _, err := s.media.ExtractAudio(ctx, videoPath, audioPath, AudioExtractOptions{}); err != nil {
		return "", fmt.Errorf("extract audio: %w", err)
	}

	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("read audio: %w", err)
	}

	cfg := SpeechConfig{
		AlternativeLanguageCodes:   transcriptionLanguages,
		SampleRateHertz:            16000,
		AudioChannelCount:          1,
		EnableAutomaticPunctuation: true,
	}

	var result *SpeechResult
	if len(audio) > inlineAudioLimit && s.bucket != nil {
		key := fmt.Sprintf("transcribe-staging/%s/%d.flac", video.ID, time.Now().UnixNano())
		if err := s.bucket.UploadFile(ctx, key, bytes.NewReader(audio)); err != nil {
			return "", fmt.Errorf("stage audio: %w", err)
		}
		defer func() {
			if err := s.bucket.DeleteFile(context.Background(), key); err != nil {
				s.log.Warn("Failed to delete staged audio", "key", key, "error", err)
			}
		}()
		result, err = s.speech.TranscribeAudioGCS(ctx, s.bucket.GCSURI(key), cfg)
	} else {
		result, err = s.speech.TranscribeAudioBytes(ctx, audio, cfg)
	}
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	return result.PrimaryText, nil
}

// finish writes the terminal state and best-effort mirrors it to the sheet.
// A failure only moves the status; any transcript stored by an earlier
// successful run stays untouched.
func (s *transcriptionService) finish(ctx context.Context, video *types.Video, transcript string, status types.TranscriptionStatus) {
	updates := map[string]interface{}{
		"transcription_status": status,
	}
	if status == types.TranscriptionCompleted {
		updates["transcription"] = transcript
	}
	if err := s.videoRepo.UpdateFields(ctx, nil, video.ID, updates); err != nil {
		s.log.Error("Failed to store transcription result", "video_id", video.ID, "error", err)
		return
	}

	user, err := s.userRepo.GetByID(ctx, nil, video.UserID)
	if err != nil || user == nil {
		s.log.Warn("Skipping transcript mirror, user unavailable", "video_id", video.ID, "error", err)
		return
	}
	if err := s.mirror.SyncTranscript(ctx, user, video.Platform, video.VideoURL, transcript, status); err != nil {
		s.log.Warn("Transcript mirror failed", "video_id", video.ID, "error", err)
	}
}
