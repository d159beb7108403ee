package config

import (
	"fmt"
	"os"
)

const (
	EnvLearningExampleLimit        = "LOADEXTRACT_LEARNING_EXAMPLE_LIMIT"
	EnvLearningMaxCorpus           = "LOADEXTRACT_LEARNING_MAX_CORPUS"
	EnvLearningMinSimilarity       = "LOADEXTRACT_LEARNING_MIN_SIMILARITY"
	EnvLearningMaxSynonymsPerField = "LOADEXTRACT_LEARNING_MAX_SYNONYMS"
	EnvLearningDisabled            = "LOADEXTRACT_LEARNING_DISABLED"
)

// LearningConfig controls template reuse and synonym mining.
type LearningConfig struct {
	// ExampleLimit is the number of most recent tenant examples loaded per document.
	ExampleLimit int `toml:"example_limit"`
	// MaxCorpus is the number of examples retained per tenant.
	MaxCorpus           int     `toml:"max_corpus"`
	MinSimilarity       float64 `toml:"min_similarity"`
	MaxSynonymsPerField int     `toml:"max_synonyms_per_field"`
	Disabled            bool    `toml:"disabled"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *LearningConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. Disabled always applies when set.
func (c *LearningConfig) Merge(overlay *LearningConfig) {
	if overlay.ExampleLimit != 0 {
		c.ExampleLimit = overlay.ExampleLimit
	}
	if overlay.MaxCorpus != 0 {
		c.MaxCorpus = overlay.MaxCorpus
	}
	if overlay.MinSimilarity != 0 {
		c.MinSimilarity = overlay.MinSimilarity
	}
	if overlay.MaxSynonymsPerField != 0 {
		c.MaxSynonymsPerField = overlay.MaxSynonymsPerField
	}
	if overlay.Disabled {
		c.Disabled = true
	}
}

func (c *LearningConfig) loadDefaults() {
	if c.ExampleLimit == 0 {
		c.ExampleLimit = 50
	}
	if c.MaxCorpus == 0 {
		c.MaxCorpus = 500
	}
	if c.MinSimilarity == 0 {
		c.MinSimilarity = 0.78
	}
	if c.MaxSynonymsPerField == 0 {
		c.MaxSynonymsPerField = 8
	}
}

func (c *LearningConfig) loadEnv() {
	envInt(EnvLearningExampleLimit, &c.ExampleLimit)
	envInt(EnvLearningMaxCorpus, &c.MaxCorpus)
	envFloat(EnvLearningMinSimilarity, &c.MinSimilarity)
	envInt(EnvLearningMaxSynonymsPerField, &c.MaxSynonymsPerField)
	if v := os.Getenv(EnvLearningDisabled); v == "true" || v == "1" {
		c.Disabled = true
	}
}

func (c *LearningConfig) validate() error {
	if c.ExampleLimit < 1 {
		return fmt.Errorf("example_limit must be positive")
	}
	if c.MaxCorpus < c.ExampleLimit {
		return fmt.Errorf("max_corpus (%d) must be at least example_limit (%d)", c.MaxCorpus, c.ExampleLimit)
	}
	if c.MinSimilarity <= 0 || c.MinSimilarity > 1 {
		return fmt.Errorf("min_similarity must be in (0, 1]: %v", c.MinSimilarity)
	}
	if c.MaxSynonymsPerField < 1 {
		return fmt.Errorf("max_synonyms_per_field must be positive")
	}
	return nil
}
