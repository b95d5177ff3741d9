package testsupport

import (
	"context"
	"path/filepath"
	"testing"

	"starreview/internal/config"
	"starreview/internal/practice"
	"starreview/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// AddVideo registers a small placeholder video file under the config's base
// directory and returns its record.
func AddVideo(t testing.TB, st *store.Store, cfg *config.Config, name string, category practice.Category) *store.Video {
	t.Helper()

	path := filepath.Join(BaseDir(cfg), "videos", name)
	WriteVideo(t, path)
	video, err := st.AddVideo(context.Background(), store.NewVideo{Path: path, Category: category})
	if err != nil {
		t.Fatalf("store.AddVideo: %v", err)
	}
	return video
}
