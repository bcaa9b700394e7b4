package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/pandeptwidyaop/bagfilter/internal/models"
)

func testMetadata() *models.BagMetadata {
	return &models.BagMetadata{
		Path: "/data/run1.bag",
		Topics: []models.TopicInfo{
			{Topic: "/imu", Messages: 100, Type: "sensor_msgs/Imu"},
			{Topic: "/cam", Messages: 50, Type: "sensor_msgs/Image"},
		},
	}
}

func TestValidateAffix(t *testing.T) {
	tests := []struct {
		name    string
		affix   string
		wantErr error
	}{
		{"empty", "", nil},
		{"suffix", "_filtered", nil},
		{"dated", "2021-11-16_", nil},
		{"slash", "out/", ErrInvalidAffix},
		{"backslash", `out\`, ErrInvalidAffix},
		{"dotdot", "..", ErrInvalidAffix},
		{"too long", strings.Repeat("x", MaxAffixLength+1), ErrInputTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAffix(tt.affix)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateExclusions(t *testing.T) {
	meta := testMetadata()

	if err := ValidateExclusions(meta, models.NewTopicSet()); err != nil {
		t.Errorf("empty exclusion should be valid, got %v", err)
	}
	if err := ValidateExclusions(meta, models.NewTopicSet("/imu", "/cam")); err != nil {
		t.Errorf("excluding known topics should be valid, got %v", err)
	}

	err := ValidateExclusions(meta, models.NewTopicSet("/imu", "/lidar", "/gps"))
	if !errors.Is(err, ErrUnknownTopic) {
		t.Fatalf("expected ErrUnknownTopic, got %v", err)
	}
	if !strings.HasSuffix(err.Error(), "/gps, /lidar") {
		t.Errorf("expected sorted unknown topics in message, got %q", err.Error())
	}
}

func TestValidateRequest(t *testing.T) {
	meta := testMetadata()

	req := &models.FilterRequest{
		InputPath:      meta.Path,
		OutputDir:      "/out",
		Suffix:         "_filtered",
		ExcludedTopics: models.NewTopicSet("/cam"),
	}
	if err := ValidateRequest(meta, req); err != nil {
		t.Errorf("expected valid request, got %v", err)
	}

	req.Prefix = "../"
	if err := ValidateRequest(meta, req); !errors.Is(err, ErrInvalidAffix) {
		t.Errorf("expected ErrInvalidAffix, got %v", err)
	}
}
