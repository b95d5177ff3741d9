package transcription_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"starreview/internal/services"
	"starreview/internal/services/whisperx"
	"starreview/internal/transcription"
)

func TestModelCacheLoadsOnceUnderConcurrency(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	cache := transcription.NewModelCache(func(context.Context) (whisperx.Model, error) {
		calls.Add(1)
		<-release
		return whisperx.Model{Name: "small", LoadedAt: time.Now()}, nil
	})

	var wg sync.WaitGroup
	results := make(chan whisperx.Model, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			model, err := cache.Get(context.Background())
			if err != nil {
				t.Errorf("Get returned error: %v", err)
				return
			}
			results <- model
		}()
	}
	close(release)
	wg.Wait()
	close(results)

	if calls.Load() != 1 || cache.Loads() != 1 {
		t.Fatalf("expected a single load, got %d", calls.Load())
	}
	for model := range results {
		if model.Name != "small" {
			t.Fatalf("unexpected model %+v", model)
		}
	}
}

func TestModelCacheRemembersFailureUntilReset(t *testing.T) {
	fail := true
	cache := transcription.NewModelCache(func(context.Context) (whisperx.Model, error) {
		if fail {
			return whisperx.Model{}, errors.New("torch wheel missing")
		}
		return whisperx.Model{Name: "small"}, nil
	})

	for i := 0; i < 2; i++ {
		if _, err := cache.Get(context.Background()); !errors.Is(err, services.ErrModelUnavailable) {
			t.Fatalf("expected model unavailable, got %v", err)
		}
	}
	if cache.Loads() != 1 {
		t.Fatalf("expected failure to be cached, loads=%d", cache.Loads())
	}

	fail = false
	cache.Reset()
	model, err := cache.Get(context.Background())
	if err != nil || model.Name != "small" {
		t.Fatalf("expected reload after reset, got %+v %v", model, err)
	}
	if cache.Loads() != 2 {
		t.Fatalf("expected two loads, got %d", cache.Loads())
	}
}
