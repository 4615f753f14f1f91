package evolution

import (
	"fmt"
)

// PriorityThreshold selects which metrics receive a candidate: only metrics
// whose priority is strictly greater than this value are considered.
const PriorityThreshold = 0.3

// SuccessProbability is the fixed chance that a candidate passes its
// simulated test run.
const SuccessProbability = 0.8

// Bounds for the random draws behind candidate generation and testing.
const (
	MinExpectedGain = 2.0
	MaxExpectedGain = 12.0
	MinRiskLevel    = 0.1
	MaxRiskLevel    = 0.8
	MinGainScale    = 0.5
	MaxGainScale    = 1.2
)

// fallbackTypes serves any metric missing from the catalog. Candidate
// generation never fails on an unknown metric.
var fallbackTypes = []string{"general_optimization"}

// defaultTypes lists the improvement types available per built-in metric.
var defaultTypes = map[string][]string{
	"algorithm_efficiency": {"optimization", "caching", "parallelization"},
	"self_awareness_level": {"deeper_analysis", "metric_expansion", "pattern_recognition"},
	"improvement_accuracy": {"better_testing", "validation_enhancement", "feedback_loops"},
	"code_quality":         {"refactoring", "design_patterns", "error_handling"},
	"learning_speed":       {"meta_learning", "knowledge_transfer", "adaptive_algorithms"},
}

// defaultTemplates renders the illustrative snippet attached to a candidate,
// keyed by improvement type. Arguments: metric name, next generation number.
var defaultTemplates = map[string]string{
	"optimization": `func improved_%[1]s_v%[2]d(data) {
	if cached := lookupCache(data); cached != nil {
		return cached
	}
	result := processWithOptimization(data)
	storeCache(data, result)
	return result
}`,
	"deeper_analysis": `func enhanced_%[1]s_analysis_v%[2]d() {
	surface := basicAnalysis()
	deep := deepPatternAnalysis()
	meta := analyzeAnalysisQuality()
	return synthesizeComprehensiveView(surface, deep, meta)
}`,
	"meta_learning": `func meta_learning_%[1]s_v%[2]d(experiences) {
	patterns := extractLearningPatterns(experiences)
	metaPatterns := findPatternsInPatterns(patterns)
	updateLearningStrategy(metaPatterns)
	return applyImprovedLearning(experiences)
}`,
}

const fallbackTemplate = "// improved %s algorithm v%d"

// Catalog is the immutable lookup table behind candidate generation: the
// improvement types available per metric, and the description template per
// improvement type.
type Catalog struct {
	types     map[string][]string
	templates map[string]string
}

// DefaultCatalog returns the built-in type lists and templates.
func DefaultCatalog() *Catalog {
	return NewCatalog(defaultTypes)
}

// NewCatalog builds a catalog over a custom type table, keeping the built-in
// description templates. Metrics absent from the table fall back to a generic
// type list at lookup time.
func NewCatalog(types map[string][]string) *Catalog {
	copied := make(map[string][]string, len(types))
	for metric, list := range types {
		copied[metric] = append([]string(nil), list...)
	}
	return &Catalog{types: copied, templates: defaultTemplates}
}

// Types returns the improvement types available for a metric. Unknown
// metrics (and metrics with an empty list) get the generic fallback list.
func (c *Catalog) Types(metric string) []string {
	list, ok := c.types[metric]
	if !ok || len(list) == 0 {
		list = fallbackTypes
	}
	return append([]string(nil), list...)
}

// Describe renders the descriptive snippet for a candidate. Types without a
// dedicated template get a one-line generic description.
func (c *Catalog) Describe(metric, improvementType string, nextGeneration int) string {
	tmpl, ok := c.templates[improvementType]
	if !ok {
		return fmt.Sprintf(fallbackTemplate, metric, nextGeneration)
	}
	return fmt.Sprintf(tmpl, metric, nextGeneration)
}
