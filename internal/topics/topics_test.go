package topics

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pandeptwidyaop/bagfilter/internal/cache"
	"github.com/pandeptwidyaop/bagfilter/internal/models"
)

func TestList(t *testing.T) {
	meta := &models.BagMetadata{
		Path: "/data/run1.bag",
		Topics: []models.TopicInfo{
			{Topic: "/imu", Messages: 100, Type: "sensor_msgs/Imu"},
			{Topic: "/cam", Messages: 50, Type: "sensor_msgs/Image"},
		},
	}

	want := []string{"(100) /imu", "(50) /cam"}
	if diff := cmp.Diff(want, List(meta)); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}
}

func TestList_Nil(t *testing.T) {
	got := List(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", got)
	}
}

func TestList_Reversible(t *testing.T) {
	names := []string{"/imu", "/cam/image_raw", "/tf_static", "/with space", "/(weird) name", "/1) odd"}
	meta := &models.BagMetadata{}
	for i, n := range names {
		meta.Topics = append(meta.Topics, models.TopicInfo{Topic: n, Messages: int64(i * 7)})
	}

	entries := List(meta)
	if len(entries) != len(names) {
		t.Fatalf("expected %d entries, got %d", len(names), len(entries))
	}
	if diff := cmp.Diff(names, RawNames(entries)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRawName(t *testing.T) {
	tests := []struct {
		entry    string
		expected string
	}{
		{"(100) /imu", "/imu"},
		{"(0) /empty", "/empty"},
		{"/imu", "/imu"},
		{"() /imu", "() /imu"},
		{"(x) /imu", "(x) /imu"},
		{"(12", "(12"},
		{"(3) /a b", "/a b"},
	}

	for _, tt := range tests {
		t.Run(tt.entry, func(t *testing.T) {
			if got := RawName(tt.entry); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestListCached_NoCache(t *testing.T) {
	store := cache.New(filepath.Join(t.TempDir(), "bag_yaml", "bag_cached.yaml"))

	entries, err := ListCached(store)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty list, got %v", entries)
	}
}

func TestListCached(t *testing.T) {
	store := cache.New(filepath.Join(t.TempDir(), "bag_cached.yaml"))
	meta := &models.BagMetadata{
		Path:   "/data/run1.bag",
		Topics: []models.TopicInfo{{Topic: "/imu", Messages: 100, Type: "sensor_msgs/Imu"}},
	}
	if err := store.Save(meta); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	entries, err := ListCached(store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"(100) /imu"}, entries); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

type failingLoader struct{ err error }

func (f failingLoader) Load() (*models.BagMetadata, error) { return nil, f.err }

func TestListCached_Error(t *testing.T) {
	boom := errors.New("boom")
	_, err := ListCached(failingLoader{err: fmt.Errorf("wrapped: %w", boom)})
	if !errors.Is(err, boom) {
		t.Errorf("expected load error to propagate, got %v", err)
	}
}
