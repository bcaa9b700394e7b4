// Package validation checks user supplied filter options before any external
// tool is started.
package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pandeptwidyaop/bagfilter/internal/models"
)

var (
	// ErrUnknownTopic indicates an excluded topic is not part of the bag.
	ErrUnknownTopic = errors.New("topic not present in bag")
	// ErrInvalidAffix indicates a filename prefix or suffix is unusable.
	ErrInvalidAffix = errors.New("invalid filename affix")
	// ErrInputTooLong indicates input exceeds maximum length.
	ErrInputTooLong = errors.New("input exceeds maximum length")
)

// MaxAffixLength bounds the prefix and suffix added to output names.
const MaxAffixLength = 128

// ValidateAffix rejects prefixes and suffixes that would move the output
// file out of the chosen directory or produce an unusable name.
func ValidateAffix(affix string) error {
	if len(affix) > MaxAffixLength {
		return ErrInputTooLong
	}
	if strings.ContainsAny(affix, "/\\\x00") {
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidAffix, affix)
	}
	if strings.Contains(affix, "..") {
		return fmt.Errorf("%w: %q contains '..'", ErrInvalidAffix, affix)
	}
	return nil
}

// ValidateExclusions checks that every excluded topic belongs to the bag.
// All unknown topics are reported at once, sorted.
func ValidateExclusions(meta *models.BagMetadata, excluded map[string]struct{}) error {
	var unknown []string
	for name := range excluded {
		if !meta.HasTopic(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("%w: %s", ErrUnknownTopic, strings.Join(unknown, ", "))
}

// ValidateRequest runs every check on a filter request.
func ValidateRequest(meta *models.BagMetadata, req *models.FilterRequest) error {
	if err := ValidateAffix(req.Prefix); err != nil {
		return err
	}
	if err := ValidateAffix(req.Suffix); err != nil {
		return err
	}
	return ValidateExclusions(meta, req.ExcludedTopics)
}
