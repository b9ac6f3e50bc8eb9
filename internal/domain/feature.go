package domain

import "strings"

var waterKeywords = []string{
	"dam", "river", "lake", "pond", "marsh", "falls", "waterfall",
	"creek", "canal", "lock", "aqueduct", "reservoir", "gorge",
}

// WaterKeywords returns a copy of the default water-feature vocabulary.
func WaterKeywords() []string {
	return append([]string(nil), waterKeywords...)
}

// FeatureClassifier decides whether a destination name denotes a water
// feature. The zero value uses the default vocabulary.
type FeatureClassifier struct {
	keywords []string
}

// NewFeatureClassifier builds a classifier over the given vocabulary.
// Keywords are matched case-insensitively.
func NewFeatureClassifier(keywords []string) FeatureClassifier {
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}
	return FeatureClassifier{keywords: lowered}
}

// IsWaterFeature reports whether name contains any keyword as a plain
// substring. No tokenization: "Damage Control" matches "dam".
func (f FeatureClassifier) IsWaterFeature(name string) bool {
	keywords := f.keywords
	if keywords == nil {
		keywords = waterKeywords
	}
	lower := strings.ToLower(name)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// IsWaterFeature classifies name against the default vocabulary.
func IsWaterFeature(name string) bool {
	return FeatureClassifier{}.IsWaterFeature(name)
}
