package classify

import (
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/mod/semver"

	"github.com/abhisek/essaylens/internal/schema"
)

// SupportedBundleMajor is the bundle format major version this build reads.
const SupportedBundleMajor = "v1"

// Bundle is an exported random forest: a set of binary decision trees in
// the array layout used by scikit-learn, optionally preceded by a standard
// scaler. Class probabilities are averaged across trees and the most
// probable class wins.
type Bundle struct {
	FormatVersion string   `json:"format_version"`
	Name          string   `json:"name,omitempty"`
	TrainedAt     string   `json:"trained_at,omitempty"`
	FeatureNames  []string `json:"feature_names"`
	Scaler        *Scaler  `json:"scaler,omitempty"`
	Classes       []string `json:"classes"`
	Trees         []Tree   `json:"trees"`
}

// Scaler standardizes each feature as (x - Mean) / Scale. A zero scale is
// treated as 1.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func (s *Scaler) transform(v Vector) Vector {
	if s == nil {
		return v
	}
	for i := range v {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		v[i] = (v[i] - s.Mean[i]) / scale
	}
	return v
}

// Tree is one estimator. Nodes[0] is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Node is a split (Left and Right index later nodes) or a leaf (Left and
// Right are -1 and Value holds per-class sample counts).
type Node struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value,omitempty"`
}

func (n Node) leaf() bool { return n.Left < 0 }

var featureArray = map[string]any{
	"type":     "array",
	"items":    map[string]any{"type": "number"},
	"minItems": NumFeatures,
	"maxItems": NumFeatures,
}

// BundleSchema is the JSON Schema every bundle file must satisfy before its
// trees are checked structurally.
var BundleSchema = map[string]any{
	"type":     "object",
	"required": []any{"format_version", "feature_names", "classes", "trees"},
	"properties": map[string]any{
		"format_version": map[string]any{"type": "string"},
		"name":           map[string]any{"type": "string"},
		"trained_at":     map[string]any{"type": "string"},
		"feature_names": map[string]any{
			"type":     "array",
			"items":    map[string]any{"type": "string"},
			"minItems": NumFeatures,
			"maxItems": NumFeatures,
		},
		"scaler": map[string]any{
			"type":     "object",
			"required": []any{"mean", "scale"},
			"properties": map[string]any{
				"mean":  featureArray,
				"scale": featureArray,
			},
		},
		"classes": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string", "minLength": 1},
			"minItems":    1,
			"uniqueItems": true,
		},
		"trees": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []any{"nodes"},
				"properties": map[string]any{
					"nodes": map[string]any{
						"type":     "array",
						"minItems": 1,
						"items": map[string]any{
							"type":     "object",
							"required": []any{"left", "right"},
							"properties": map[string]any{
								"feature":   map[string]any{"type": "integer", "minimum": 0},
								"threshold": map[string]any{"type": "number"},
								"left":      map[string]any{"type": "integer", "minimum": -1},
								"right":     map[string]any{"type": "integer", "minimum": -1},
								"value": map[string]any{
									"type":  "array",
									"items": map[string]any{"type": "number", "minimum": 0},
								},
							},
						},
					},
				},
			},
		},
	},
}

// DecodeBundle parses, schema-validates and structurally checks a bundle.
func DecodeBundle(data []byte) (*Bundle, error) {
	doc, err := schema.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	s, err := schema.Compile("classifier-bundle", BundleSchema)
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(s, doc); err != nil {
		return nil, fmt.Errorf("bundle does not match schema: %w", err)
	}

	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	if err := b.check(); err != nil {
		return nil, err
	}
	return &b, nil
}

func (b *Bundle) check() error {
	v := b.FormatVersion
	if len(v) > 0 && v[0] != 'v' {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("format_version %q is not a semantic version", b.FormatVersion)
	}
	if major := semver.Major(v); major != SupportedBundleMajor {
		return fmt.Errorf("format_version %s is not supported (want %s.x.y)", b.FormatVersion, SupportedBundleMajor)
	}

	for i, name := range b.FeatureNames {
		if name != FeatureNames[i] {
			return fmt.Errorf("feature %d is %q, want %q: bundle was trained on a different feature order", i, name, FeatureNames[i])
		}
	}

	for t, tree := range b.Trees {
		for i, n := range tree.Nodes {
			if err := b.checkNode(len(tree.Nodes), i, n); err != nil {
				return fmt.Errorf("tree %d node %d: %w", t, i, err)
			}
		}
	}
	return nil
}

func (b *Bundle) checkNode(size, i int, n Node) error {
	if n.leaf() {
		if n.Right >= 0 {
			return errors.New("leaf has a right child")
		}
		if len(n.Value) != len(b.Classes) {
			return fmt.Errorf("leaf has %d class values, want %d", len(n.Value), len(b.Classes))
		}
		var sum float64
		for _, x := range n.Value {
			sum += x
		}
		if sum <= 0 {
			return errors.New("leaf has no samples")
		}
		return nil
	}
	if n.Feature >= NumFeatures {
		return fmt.Errorf("feature index %d out of range", n.Feature)
	}
	// Children must come after their parent so prediction always terminates.
	for _, c := range []int{n.Left, n.Right} {
		if c <= i || c >= size {
			return fmt.Errorf("child index %d out of range (%d, %d)", c, i, size)
		}
	}
	return nil
}

// Predict returns the winning class and the averaged class probabilities.
// Ties go to the class listed first.
func (b *Bundle) Predict(v Vector) (string, []float64) {
	v = b.Scaler.transform(v)
	proba := make([]float64, len(b.Classes))
	for _, tree := range b.Trees {
		leaf := tree.walk(v)
		var sum float64
		for _, x := range leaf.Value {
			sum += x
		}
		for k, x := range leaf.Value {
			proba[k] += x / sum
		}
	}

	best := 0
	for k := range proba {
		proba[k] /= float64(len(b.Trees))
		if proba[k] > proba[best] {
			best = k
		}
	}
	return b.Classes[best], proba
}

func (t Tree) walk(v Vector) Node {
	n := t.Nodes[0]
	for !n.leaf() {
		if v[n.Feature] <= n.Threshold {
			n = t.Nodes[n.Left]
		} else {
			n = t.Nodes[n.Right]
		}
	}
	return n
}

// NodeCount returns the total number of nodes across all trees.
func (b *Bundle) NodeCount() int {
	total := 0
	for _, t := range b.Trees {
		total += len(t.Nodes)
	}
	return total
}
