package gesture

import (
	"time"

	"github.com/saheli56/Temple-Run/internal/vision"
)

// ClassifierConfig holds the threshold rules for the contour-metric classifier.
type ClassifierConfig struct {
	// FistSolidity is the minimum solidity for a closed hand.
	FistSolidity float64
	// IndexSolidityLow and IndexSolidityHigh bound the solidity band of a
	// single extended finger.
	IndexSolidityLow  float64
	IndexSolidityHigh float64
	// PalmMaxSolidity is the maximum solidity for an open palm.
	PalmMaxSolidity float64
	// PalmMinDefects is the minimum convexity defect count for an open palm.
	PalmMinDefects int
	// MinConfidence is the floor below which a rule match degrades to none.
	MinConfidence float64
}

// DefaultClassifierConfig returns the classifier thresholds tuned for a
// 320x240 working frame.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		FistSolidity:      0.85,
		IndexSolidityLow:  0.40,
		IndexSolidityHigh: 0.75,
		PalmMaxSolidity:   0.60,
		PalmMinDefects:    3,
		MinConfidence:     0.2,
	}
}

// ContourClassifier maps contour shape metrics to the gesture vocabulary using
// ordered threshold rules. Confidence grows with the margin from the rule
// boundary and is clamped to [0,1].
type ContourClassifier struct {
	cfg ClassifierConfig
}

// NewContourClassifier creates a classifier. Zero-valued config fields fall
// back to the defaults.
func NewContourClassifier(cfg ClassifierConfig) *ContourClassifier {
	def := DefaultClassifierConfig()
	if cfg.FistSolidity == 0 {
		cfg.FistSolidity = def.FistSolidity
	}
	if cfg.IndexSolidityLow == 0 {
		cfg.IndexSolidityLow = def.IndexSolidityLow
	}
	if cfg.IndexSolidityHigh == 0 {
		cfg.IndexSolidityHigh = def.IndexSolidityHigh
	}
	if cfg.PalmMaxSolidity == 0 {
		cfg.PalmMaxSolidity = def.PalmMaxSolidity
	}
	if cfg.PalmMinDefects == 0 {
		cfg.PalmMinDefects = def.PalmMinDefects
	}
	if cfg.MinConfidence == 0 {
		cfg.MinConfidence = def.MinConfidence
	}
	return &ContourClassifier{cfg: cfg}
}

// Classify applies the threshold rules to one frame's shape metrics.
// Rules are evaluated in order: open palm (many defects), fist (high
// solidity), index point (mid-solidity band). Anything else, or a match whose
// margin confidence falls below MinConfidence, is none.
func (c *ContourClassifier) Classify(m vision.Metrics, ts time.Time) Sample {
	cfg := c.cfg

	// Open palm: each convexity defect is a valley between two extended
	// fingers, so three or more defects mean at least four spread fingers.
	if m.DefectCount >= cfg.PalmMinDefects && m.Solidity <= cfg.PalmMaxSolidity {
		conf := clamp01(float64(m.DefectCount+1) / 5.0)
		return c.emit(KindOpenPalm, conf, ts)
	}

	// Fist: compact shape, hull hugs the contour.
	if m.Solidity >= cfg.FistSolidity && m.DefectCount <= 1 {
		conf := clamp01((m.Solidity - cfg.FistSolidity) / (1.0 - cfg.FistSolidity))
		return c.emit(KindFist, conf, ts)
	}

	// Index point: one protrusion lowers solidity into a middle band without
	// producing finger-valley defects.
	if m.DefectCount <= 1 && m.Solidity >= cfg.IndexSolidityLow && m.Solidity < cfg.IndexSolidityHigh {
		center := (cfg.IndexSolidityLow + cfg.IndexSolidityHigh) / 2
		half := (cfg.IndexSolidityHigh - cfg.IndexSolidityLow) / 2
		conf := clamp01(1.0 - abs(m.Solidity-center)/half)
		return c.emit(KindIndexPoint, conf, ts)
	}

	return Sample{Kind: KindNone, Confidence: 0, Timestamp: ts}
}

func (c *ContourClassifier) emit(k Kind, conf float64, ts time.Time) Sample {
	if conf < c.cfg.MinConfidence {
		return Sample{Kind: KindNone, Confidence: 0, Timestamp: ts}
	}
	return Sample{Kind: k, Confidence: conf, Timestamp: ts}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
