// Package steps provides step definitions and dependency validation for the
// document-to-podcast pipeline.
package steps

import (
	"fmt"
	"sort"

	dbpkg "github.com/jonathan/doc-podcast/internal/db"
)

// Step names
const (
	ExtractSections  = "extract_sections"
	PlanEpisode      = "plan_episode"
	GenerateDialogue = "generate_dialogue"
	ExtractClaims    = "extract_claims"
	VerifyClaims     = "verify_claims"
	AnalyzeCoverage  = "analyze_coverage"
	AssembleReport   = "assemble_report"
	WriteOutputs     = "write_outputs"
)

// StepDefinition defines metadata for a pipeline step
type StepDefinition struct {
	Name         string
	Number       int // 1-based position in the run
	Category     string
	Dependencies []string
}

// StepRegistry holds all step definitions
var StepRegistry = map[string]StepDefinition{
	ExtractSections: {
		Name:         ExtractSections,
		Number:       1,
		Category:     dbpkg.CategoryExtraction,
		Dependencies: []string{},
	},
	PlanEpisode: {
		Name:         PlanEpisode,
		Number:       2,
		Category:     dbpkg.CategoryGeneration,
		Dependencies: []string{ExtractSections},
	},
	GenerateDialogue: {
		Name:         GenerateDialogue,
		Number:       3,
		Category:     dbpkg.CategoryGeneration,
		Dependencies: []string{PlanEpisode},
	},
	ExtractClaims: {
		Name:         ExtractClaims,
		Number:       4,
		Category:     dbpkg.CategoryVerification,
		Dependencies: []string{GenerateDialogue},
	},
	VerifyClaims: {
		Name:         VerifyClaims,
		Number:       5,
		Category:     dbpkg.CategoryVerification,
		Dependencies: []string{ExtractClaims, ExtractSections},
	},
	AnalyzeCoverage: {
		Name:         AnalyzeCoverage,
		Number:       6,
		Category:     dbpkg.CategoryVerification,
		Dependencies: []string{GenerateDialogue, ExtractSections},
	},
	AssembleReport: {
		Name:         AssembleReport,
		Number:       7,
		Category:     dbpkg.CategoryVerification,
		Dependencies: []string{VerifyClaims, AnalyzeCoverage},
	},
	WriteOutputs: {
		Name:         WriteOutputs,
		Number:       8,
		Category:     dbpkg.CategoryOutput,
		Dependencies: []string{AssembleReport},
	},
}

// Total is the number of steps in a run
func Total() int {
	return len(StepRegistry)
}

// Ordered returns the step definitions in run order
func Ordered() []StepDefinition {
	defs := make([]StepDefinition, 0, len(StepRegistry))
	for _, def := range StepRegistry {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Number < defs[j].Number })
	return defs
}

// Label formats a step for progress output, e.g. "Step 3/8"
func Label(stepName string) string {
	def, ok := StepRegistry[stepName]
	if !ok {
		return "Step ?"
	}
	return fmt.Sprintf("Step %d/%d", def.Number, Total())
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Step                string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("step %s has missing dependencies: %v", e.Step, e.MissingDependencies)
}

// ValidateDependencies checks that every dependency of a step has completed
func ValidateDependencies(completed map[string]bool, stepName string) error {
	def, ok := StepRegistry[stepName]
	if !ok {
		return fmt.Errorf("unknown step: %s", stepName)
	}

	var missing []string
	for _, dep := range def.Dependencies {
		if !completed[dep] {
			missing = append(missing, dep)
		}
	}

	if len(missing) > 0 {
		return &DependencyError{
			Step:                stepName,
			MissingDependencies: missing,
		}
	}
	return nil
}

// GetAvailableSteps returns the steps that have not completed and whose dependencies have, in run order
func GetAvailableSteps(completed map[string]bool) []string {
	var available []string
	for _, def := range Ordered() {
		if completed[def.Name] {
			continue
		}
		if ValidateDependencies(completed, def.Name) == nil {
			available = append(available, def.Name)
		}
	}
	return available
}
