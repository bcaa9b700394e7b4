package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/pandeptwidyaop/bagfilter/internal/models"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ExtractorService reads bag summaries through `<tool> info --yaml`.
type ExtractorService struct {
	builder  *Builder
	executor *ExecutorService
	logger   *zap.Logger
}

func NewExtractorService(builder *Builder, executor *ExecutorService, logger *zap.Logger) *ExtractorService {
	return &ExtractorService{
		builder:  builder,
		executor: executor,
		logger:   logger,
	}
}

// Extract inspects bagPath and returns its metadata. Any failure of the tool,
// including output that is not a bag summary, is an *ExternalToolError.
func (s *ExtractorService) Extract(ctx context.Context, bagPath string) (*models.BagMetadata, error) {
	cmd := s.builder.InfoCommand(bagPath)

	out, err := s.executor.Capture(ctx, models.ActionExtract, bagPath, cmd)
	if err != nil {
		return nil, err
	}

	meta, err := ParseInfo(out)
	if err != nil {
		return nil, &ExternalToolError{
			Tool: cmd.Program,
			Args: cmd.Args,
			Err:  err,
		}
	}

	s.logger.Info("Extracted bag info",
		zap.String("path", meta.Path),
		zap.Int("topics", len(meta.Topics)),
		zap.Float64("duration", meta.Duration),
	)
	return meta, nil
}

// ParseInfo decodes the YAML summary printed by `rosbag info --yaml`.
func ParseInfo(data []byte) (*models.BagMetadata, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("empty info output")
	}

	var meta models.BagMetadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("unexpected info output: %w", err)
	}
	if meta.Path == "" {
		return nil, errors.New("unexpected info output: missing path")
	}

	seen := make(map[string]struct{}, len(meta.Topics))
	for _, t := range meta.Topics {
		if t.Topic == "" {
			return nil, errors.New("unexpected info output: topic without name")
		}
		if _, dup := seen[t.Topic]; dup {
			return nil, fmt.Errorf("unexpected info output: duplicate topic %s", t.Topic)
		}
		seen[t.Topic] = struct{}{}
	}
	return &meta, nil
}
