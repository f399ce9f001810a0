package analysis

import (
	"context"
	"sort"

	"github.com/jengzang/records-timeline/internal/config"
	"github.com/jengzang/records-timeline/internal/models"
	"github.com/jengzang/records-timeline/internal/service"
)

// Analyzer is the interface that all background timeline jobs implement
type Analyzer interface {
	// Analyze runs the job for task and returns a JSON-serializable summary
	Analyze(ctx context.Context, task *models.AnalysisTask, progress ProgressFunc) (interface{}, error)

	// GetName returns the name of the analyzer
	GetName() string
}

// ProgressFunc reports how much of a task is done
type ProgressFunc func(processed, total int)

// Dependencies are the services analyzers are built from
type Dependencies struct {
	Timeline         *service.TimelineService
	Reclassification *service.ReclassificationService
	Config           config.TimelineConfig
}

// BaseAnalyzer provides common functionality for all analyzers
type BaseAnalyzer struct {
	Deps Dependencies
	Name string
}

// NewBaseAnalyzer creates a new base analyzer
func NewBaseAnalyzer(deps Dependencies, name string) *BaseAnalyzer {
	return &BaseAnalyzer{
		Deps: deps,
		Name: name,
	}
}

// GetName returns the analyzer name
func (a *BaseAnalyzer) GetName() string {
	return a.Name
}

// AnalyzerFactory is a function that creates an analyzer instance
type AnalyzerFactory func(deps Dependencies) Analyzer

// AnalyzerRegistry maps skill names to analyzer factories
var AnalyzerRegistry = make(map[string]AnalyzerFactory)

// RegisterAnalyzer registers an analyzer factory for a skill name
func RegisterAnalyzer(skillName string, factory AnalyzerFactory) {
	AnalyzerRegistry[skillName] = factory
}

// GetAnalyzer retrieves an analyzer instance for a skill name
func GetAnalyzer(skillName string, deps Dependencies) Analyzer {
	factory, ok := AnalyzerRegistry[skillName]
	if !ok {
		return nil
	}
	return factory(deps)
}

// IsKnownSkill checks if a skill has a registered analyzer
func IsKnownSkill(skillName string) bool {
	_, ok := AnalyzerRegistry[skillName]
	return ok
}

// SkillNames lists the registered skills in sorted order
func SkillNames() []string {
	names := make([]string, 0, len(AnalyzerRegistry))
	for name := range AnalyzerRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
