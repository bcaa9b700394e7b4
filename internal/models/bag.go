package models

import (
	"math"
	"reflect"
	"time"

	"gopkg.in/yaml.v3"
)

// BagMetadata is the summary of a bag as reported by `rosbag info --yaml`.
// Keys the tool emits that are not modeled here are kept in Extra.
//
// Decoded metadata remembers its source document and encodes back to it
// unchanged, so scalars such as `version: 2.0` keep their original form.
// Once a modeled field is changed the struct itself is encoded instead.
type BagMetadata struct {
	Path     string                 `yaml:"path"`
	Duration float64                `yaml:"duration"`
	Start    float64                `yaml:"start"`
	End      float64                `yaml:"end"`
	Topics   []TopicInfo            `yaml:"topics"`
	Extra    map[string]interface{} `yaml:",inline"`

	source *yaml.Node
}

// bagMetadataFields has the fields of BagMetadata but none of its methods.
type bagMetadataFields BagMetadata

// UnmarshalYAML decodes the summary and keeps value as its source document.
func (m *BagMetadata) UnmarshalYAML(value *yaml.Node) error {
	var fields bagMetadataFields
	if err := value.Decode(&fields); err != nil {
		return err
	}
	*m = BagMetadata(fields)
	m.source = value
	return nil
}

// MarshalYAML returns the source document while it still matches the
// modeled fields.
func (m BagMetadata) MarshalYAML() (interface{}, error) {
	current := bagMetadataFields(m)
	current.source = nil
	if m.source == nil {
		return current, nil
	}

	var decoded bagMetadataFields
	if err := m.source.Decode(&decoded); err == nil && reflect.DeepEqual(decoded, current) {
		return m.source, nil
	}
	return current, nil
}

// TopicInfo describes a single topic of a bag.
type TopicInfo struct {
	Topic    string                 `yaml:"topic"`
	Messages int64                  `yaml:"messages"`
	Type     string                 `yaml:"type"`
	Extra    map[string]interface{} `yaml:",inline"`
}

// StartTime returns the start stamp as wall clock time.
func (m *BagMetadata) StartTime() time.Time {
	return stampToTime(m.Start)
}

// EndTime returns the end stamp as wall clock time.
func (m *BagMetadata) EndTime() time.Time {
	return stampToTime(m.End)
}

// TopicNames returns the topic names in bag order.
func (m *BagMetadata) TopicNames() []string {
	names := make([]string, 0, len(m.Topics))
	for _, t := range m.Topics {
		names = append(names, t.Topic)
	}
	return names
}

// HasTopic reports whether the bag contains the named topic.
func (m *BagMetadata) HasTopic(name string) bool {
	for _, t := range m.Topics {
		if t.Topic == name {
			return true
		}
	}
	return false
}

func stampToTime(stamp float64) time.Time {
	sec, frac := math.Modf(stamp)
	return time.Unix(int64(sec), int64(frac*1e9))
}

// FilterRequest carries everything needed to export a filtered bag.
type FilterRequest struct {
	InputPath      string
	OutputDir      string
	Prefix         string
	Suffix         string
	ExcludedTopics map[string]struct{}
}

// NewTopicSet builds a set from topic names.
func NewTopicSet(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
