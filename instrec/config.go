package instrec

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	// DefaultMatchThreshold is minimum overlap score required to add a new frame to an existing track.
	DefaultMatchThreshold = 0.15
	// DefaultInactiveFrameThreshold is max age (in frames) of the last frame in a track after which it is discarded.
	// The smaller it is, the less memory is used, but the likelier object reconstruction
	// is fragmented into multiple volumes.
	DefaultInactiveFrameThreshold = 3
)

const (
	ScorerIoU    = "iou"
	ScorerKalman = "kalman"

	AssociatorGreedy    = "greedy"
	AssociatorHungarian = "hungarian"
)

// ErrInvalidConfig is returned when tracker configuration is out of range.
var ErrInvalidConfig = errors.New("invalid tracker configuration")

// TrackerConfig is the construction-time configuration of InstanceTracker.
// All fields are optional; Get* methods fall back to defaults.
type TrackerConfig struct {
	MatchThreshold         *float64 `json:"match_threshold,omitempty"`
	InactiveFrameThreshold *int     `json:"inactive_frame_threshold,omitempty"`
	// "iou" (default) or "kalman"
	Scorer *string `json:"scorer,omitempty"`
	// "greedy" (default) or "hungarian"
	Associator *string `json:"associator,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
func ptrString(v string) *string    { return &v }

// DefaultTrackerConfig returns configuration with every field set to its default.
func DefaultTrackerConfig() *TrackerConfig {
	return &TrackerConfig{
		MatchThreshold:         ptrFloat64(DefaultMatchThreshold),
		InactiveFrameThreshold: ptrInt(DefaultInactiveFrameThreshold),
		Scorer:                 ptrString(ScorerIoU),
		Associator:             ptrString(AssociatorGreedy),
	}
}

// LoadTrackerConfig loads TrackerConfig from a JSON file.
// Fields omitted from the file keep default values.
func LoadTrackerConfig(path string) (*TrackerConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, errors.Errorf("config file must have .json extension, got %q", ext)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	cfg, err := ParseTrackerConfig(data)
	if err != nil {
		return nil, errors.Wrapf(err, "can't load config %s", cleanPath)
	}
	Logf("instrec: loaded tracker config from %s: match_threshold=%.3f inactive_frame_threshold=%d scorer=%s associator=%s",
		cleanPath, cfg.GetMatchThreshold(), cfg.GetInactiveFrameThreshold(), cfg.GetScorer(), cfg.GetAssociator())
	return cfg, nil
}

// ParseTrackerConfig parses and validates JSON document.
func ParseTrackerConfig(data []byte) (*TrackerConfig, error) {
	cfg := &TrackerConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config JSON")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that configuration values are in range.
func (c *TrackerConfig) Validate() error {
	if c.MatchThreshold != nil {
		v := *c.MatchThreshold
		if math.IsNaN(v) || v < 0 || v > 1 {
			return errors.Wrapf(ErrInvalidConfig, "match_threshold must be between 0 and 1, got %f", v)
		}
	}
	if c.InactiveFrameThreshold != nil && *c.InactiveFrameThreshold < 0 {
		return errors.Wrapf(ErrInvalidConfig, "inactive_frame_threshold must be non-negative, got %d", *c.InactiveFrameThreshold)
	}
	if c.Scorer != nil {
		switch *c.Scorer {
		case ScorerIoU, ScorerKalman:
		default:
			return errors.Wrapf(ErrInvalidConfig, "unknown scorer %q", *c.Scorer)
		}
	}
	if c.Associator != nil {
		switch *c.Associator {
		case AssociatorGreedy, AssociatorHungarian:
		default:
			return errors.Wrapf(ErrInvalidConfig, "unknown associator %q", *c.Associator)
		}
	}
	return nil
}

// GetMatchThreshold returns the match_threshold value or the default.
func (c *TrackerConfig) GetMatchThreshold() float64 {
	if c.MatchThreshold == nil {
		return DefaultMatchThreshold
	}
	return *c.MatchThreshold
}

// GetInactiveFrameThreshold returns the inactive_frame_threshold value or the default.
func (c *TrackerConfig) GetInactiveFrameThreshold() int {
	if c.InactiveFrameThreshold == nil {
		return DefaultInactiveFrameThreshold
	}
	return *c.InactiveFrameThreshold
}

// GetScorer returns the scorer name or the default.
func (c *TrackerConfig) GetScorer() string {
	if c.Scorer == nil {
		return ScorerIoU
	}
	return *c.Scorer
}

// GetAssociator returns the associator name or the default.
func (c *TrackerConfig) GetAssociator() string {
	if c.Associator == nil {
		return AssociatorGreedy
	}
	return *c.Associator
}
