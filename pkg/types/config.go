// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pageforge/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds shared settings for components that call the
// generation oracle.
type AIConfig struct {
	// Model is the oracle model identifier.
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the oracle API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed oracle calls
	// (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// KnowledgeConfig holds settings for the knowledge base.
type KnowledgeConfig struct {
	// KnowledgeDir is the base directory for knowledge data (contains
	// excerpts/, personas/, index/).
	KnowledgeDir string `json:"knowledge_dir" yaml:"knowledge_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// LayoutConfig holds settings for the layout generation stage.
type LayoutConfig struct {
	// DefaultMinSections applies when a request omits MinSections (default 3).
	DefaultMinSections int `json:"default_min_sections" yaml:"default_min_sections"`

	// DefaultMaxSections applies when a request omits MaxSections (default 8).
	DefaultMaxSections int `json:"default_max_sections" yaml:"default_max_sections"`
}

// ContentConfig holds settings for the content generation stage.
type ContentConfig struct {
	AIConfig `yaml:",inline"`

	// CallTimeout bounds a single oracle completion call (default 60s).
	CallTimeout time.Duration `json:"call_timeout" yaml:"call_timeout"`

	// ConfidenceThreshold is the minimum usable grounding confidence;
	// variants below it fall back to templated generic content (default 0.3).
	ConfidenceThreshold float64 `json:"confidence_threshold" yaml:"confidence_threshold"`

	// ExcerptsPerSection is the number of grounding excerpts retrieved
	// per section (default 5).
	ExcerptsPerSection int `json:"excerpts_per_section" yaml:"excerpts_per_section"`
}

// SnapshotConfig holds settings for the persisted page snapshot store.
type SnapshotConfig struct {
	// SnapshotDir is the directory holding the snapshot database.
	SnapshotDir string `json:"snapshot_dir" yaml:"snapshot_dir"`
}

// SessionConfig holds settings for the visitor session store.
type SessionConfig struct {
	// StoreDir is the directory for file-backed session persistence.
	// Empty selects the in-memory store.
	StoreDir string `json:"store_dir,omitempty" yaml:"store_dir,omitempty"`
}

// DetectionConfig holds the detection trigger policy thresholds. The
// policy is monotonic: more clicks, pages, or time never decreases the
// likelihood of triggering.
type DetectionConfig struct {
	// MinEngagement is the engagement score required to trigger (default 10).
	MinEngagement float64 `json:"min_engagement" yaml:"min_engagement"`

	// Cooldown suppresses triggering when the last detection is more
	// recent than this (default 5m).
	Cooldown time.Duration `json:"cooldown" yaml:"cooldown"`
}

// PipelineConfig groups all component configurations for the pipeline.
type PipelineConfig struct {
	Knowledge KnowledgeConfig `json:"knowledge" yaml:"knowledge"`
	Layout    LayoutConfig    `json:"layout" yaml:"layout"`
	Content   ContentConfig   `json:"content" yaml:"content"`
	Snapshot  SnapshotConfig  `json:"snapshot" yaml:"snapshot"`
	Session   SessionConfig   `json:"session" yaml:"session"`
	Detection DetectionConfig `json:"detection" yaml:"detection"`
}
