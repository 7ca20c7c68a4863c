package services

import (
	"testing"

	"cloud.google.com/go/speech/apiv1/speechpb"
)

func TestBuildSpeechRecognitionConfig(t *testing.T) {
	cfg := buildSpeechRecognitionConfig("gs://bucket/audio.flac", SpeechConfig{
		AlternativeLanguageCodes: []string{"es-ES", "pt-BR"},
		SampleRateHertz:          16000,
		AudioChannelCount:        1,
	})

	if cfg.LanguageCode != "en-US" {
		t.Fatalf("default language: %s", cfg.LanguageCode)
	}
	if len(cfg.AlternativeLanguageCodes) != 2 || cfg.AlternativeLanguageCodes[0] != "es-ES" {
		t.Fatalf("alternative languages: %v", cfg.AlternativeLanguageCodes)
	}
	if cfg.Encoding != speechpb.RecognitionConfig_FLAC {
		t.Fatalf("encoding inferred from extension: %v", cfg.Encoding)
	}
	if cfg.SampleRateHertz != 16000 || cfg.AudioChannelCount != 1 {
		t.Fatalf("audio params: %+v", cfg)
	}
}

func TestInferSpeechEncoding(t *testing.T) {
	cases := map[string]speechpb.RecognitionConfig_AudioEncoding{
		"gs://b/a.wav":  speechpb.RecognitionConfig_LINEAR16,
		"gs://b/a.mp3":  speechpb.RecognitionConfig_MP3,
		"gs://b/a.opus": speechpb.RecognitionConfig_OGG_OPUS,
		"gs://b/a.xyz":  speechpb.RecognitionConfig_ENCODING_UNSPECIFIED,
	}
	for uri, want := range cases {
		if got := inferSpeechEncoding(uri); got != want {
			t.Errorf("%s: want %v got %v", uri, want, got)
		}
	}
}
