package engine

import (
	"fmt"
	"strings"

	"linetrack/internal/simhash"
)

// Context models accepted by Config.ContextModel.
const (
	ContextTF    = "tf"
	ContextTFIDF = "tfidf"
)

// Config holds every tunable of the matcher. The zero value is not usable;
// start from DefaultConfig.
type Config struct {
	// Bits is the SimHash width B, 1..64.
	Bits int `json:"bits" yaml:"bits" toml:"bits" envconfig:"BITS"`
	// Candidates is K, the number of fingerprint neighbours scored per deleted line.
	Candidates int `json:"candidates" yaml:"candidates" toml:"candidates" envconfig:"CANDIDATES"`
	// ContextRadius is W, the number of lines taken on each side as context.
	ContextRadius int `json:"context_radius" yaml:"context_radius" toml:"context_radius" envconfig:"CONTEXT_RADIUS"`

	MainThreshold  float64 `json:"main_threshold" yaml:"main_threshold" toml:"main_threshold" envconfig:"MAIN_THRESHOLD"`
	SplitThreshold float64 `json:"split_threshold" yaml:"split_threshold" toml:"split_threshold" envconfig:"SPLIT_THRESHOLD"`
	// MaxSplitSpan is the largest number of new lines one old line may map
	// to. 1 disables split detection.
	MaxSplitSpan int `json:"max_split_span" yaml:"max_split_span" toml:"max_split_span" envconfig:"MAX_SPLIT_SPAN"`

	ContentWeight   float64 `json:"content_weight" yaml:"content_weight" toml:"content_weight" envconfig:"CONTENT_WEIGHT"`
	ContextWeight   float64 `json:"context_weight" yaml:"context_weight" toml:"context_weight" envconfig:"CONTEXT_WEIGHT"`
	StructureWeight float64 `json:"structure_weight" yaml:"structure_weight" toml:"structure_weight" envconfig:"STRUCTURE_WEIGHT"`
	// RetrievalContextWeight blends the context fingerprint into candidate
	// ranking; 0 ranks on the content fingerprint alone.
	RetrievalContextWeight float64 `json:"retrieval_context_weight" yaml:"retrieval_context_weight" toml:"retrieval_context_weight" envconfig:"RETRIEVAL_CONTEXT_WEIGHT"`

	// ContextModel selects plain term frequencies ("tf") or IDF-weighted
	// vectors over the changed regions ("tfidf").
	ContextModel     string `json:"context_model" yaml:"context_model" toml:"context_model" envconfig:"CONTEXT_MODEL"`
	TightPunctuation bool   `json:"tight_punctuation" yaml:"tight_punctuation" toml:"tight_punctuation" envconfig:"TIGHT_PUNCTUATION"`
	// Reconsider lets a deleted line that lost all of its matches to a better
	// claim try again after the main pass.
	Reconsider bool `json:"reconsider" yaml:"reconsider" toml:"reconsider" envconfig:"RECONSIDER"`
	// Workers bounds the parallel scoring phase; 0 means GOMAXPROCS.
	Workers int `json:"workers" yaml:"workers" toml:"workers" envconfig:"WORKERS"`
}

// DefaultConfig returns the standard tuning: 64-bit fingerprints, 15
// candidates, a 4-line context radius, 0.6/0.4 content/context weights,
// thresholds 0.4 (match) and 0.35 (split), splits up to 4 lines.
func DefaultConfig() Config {
	return Config{
		Bits:           simhash.MaxBits,
		Candidates:     15,
		ContextRadius:  4,
		MainThreshold:  0.4,
		SplitThreshold: 0.35,
		MaxSplitSpan:   4,
		ContentWeight:  0.6,
		ContextWeight:  0.4,
		ContextModel:   ContextTF,
		Reconsider:     true,
	}
}

// ConfigError lists every problem found in a Config.
type ConfigError struct {
	Issues []string
}

func (e *ConfigError) Error() string {
	return "invalid engine config: " + strings.Join(e.Issues, "; ")
}

func (e *ConfigError) add(format string, args ...any) {
	e.Issues = append(e.Issues, fmt.Sprintf(format, args...))
}

// Validate checks ranges and returns a *ConfigError describing all issues,
// or nil.
func (c Config) Validate() error {
	var e ConfigError
	if c.Bits < 1 || c.Bits > simhash.MaxBits {
		e.add("bits must be in [1,%d] (got %d)", simhash.MaxBits, c.Bits)
	}
	if c.Candidates < 1 {
		e.add("candidates must be >= 1 (got %d)", c.Candidates)
	}
	if c.ContextRadius < 0 {
		e.add("context_radius must be >= 0 (got %d)", c.ContextRadius)
	}
	unit := func(name string, v float64) {
		if v < 0 || v > 1 {
			e.add("%s must be in [0,1] (got %g)", name, v)
		}
	}
	unit("main_threshold", c.MainThreshold)
	unit("split_threshold", c.SplitThreshold)
	unit("retrieval_context_weight", c.RetrievalContextWeight)
	if c.MaxSplitSpan < 1 {
		e.add("max_split_span must be >= 1 (got %d)", c.MaxSplitSpan)
	}
	if c.ContentWeight < 0 || c.ContextWeight < 0 || c.StructureWeight < 0 {
		e.add("weights must be >= 0 (got %g/%g/%g)", c.ContentWeight, c.ContextWeight, c.StructureWeight)
	} else if c.ContentWeight+c.ContextWeight+c.StructureWeight == 0 {
		e.add("at least one weight must be positive")
	}
	switch c.ContextModel {
	case ContextTF, ContextTFIDF:
	default:
		e.add("context_model must be %q or %q (got %q)", ContextTF, ContextTFIDF, c.ContextModel)
	}
	if c.Workers < 0 {
		e.add("workers must be >= 0 (got %d)", c.Workers)
	}
	if len(e.Issues) == 0 {
		return nil
	}
	return &e
}
