package services

import "errors"

var (
	ErrEmailTaken              = errors.New("email already registered")
	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrUserNotFound            = errors.New("user not found")
	ErrKeywordExists           = errors.New("keyword already exists for this platform")
	ErrKeywordNotFound         = errors.New("keyword not found")
	ErrVideoNotFound           = errors.New("video not found")
	ErrJobNotFound             = errors.New("job not found")
	ErrJobAlreadyRunning       = errors.New("a scrape job is already running for this user")
	ErrTranscriptionInProgress = errors.New("transcription already in progress")
	ErrSheetNotConnected       = errors.New("no google sheet connected")
)
