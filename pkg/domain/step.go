package domain

// StepKind is the closed set of plan step variants.
// Plan steps arrive as strings (possibly from a generative planner) and are parsed into a
// StepKind by exact match; anything else becomes StepUnknown.
type StepKind int

const (
	StepUnknown StepKind = iota
	StepGatherContext
	StepAskTechnical
	StepAskGeek
	StepAskGeneral
	StepAskArchitecture
	StepGenerateAnswer
	StepGenerateCode
	StepGenerateArchitectureDesign
	StepRunUnitTests
	StepFormatAnswer
)

var stepNames = map[StepKind]string{
	StepGatherContext:              "gather_context",
	StepAskTechnical:               "ask_technical_agent",
	StepAskGeek:                    "ask_geek_agent",
	StepAskGeneral:                 "ask_general_agent",
	StepAskArchitecture:            "ask_architecture_agent",
	StepGenerateAnswer:             "generate_answer",
	StepGenerateCode:               "generate_code",
	StepGenerateArchitectureDesign: "generate_architecture_design",
	StepRunUnitTests:               "run_unit_tests",
	StepFormatAnswer:               "format_answer",
}

var stepsByName = func() map[string]StepKind {
	m := make(map[string]StepKind, len(stepNames))
	for k, v := range stepNames {
		m[v] = k
	}
	return m
}()

// ParseStep resolves a step name. Unrecognized names yield StepUnknown.
func ParseStep(name string) StepKind {
	if k, ok := stepsByName[name]; ok {
		return k
	}
	return StepUnknown
}

// String returns the canonical step name, or "unknown".
func (k StepKind) String() string {
	if n, ok := stepNames[k]; ok {
		return n
	}
	return "unknown"
}

// KnownSteps lists the canonical step names in declaration order.
func KnownSteps() []string {
	out := make([]string, 0, len(stepNames))
	for k := StepGatherContext; k <= StepFormatAnswer; k++ {
		out = append(out, stepNames[k])
	}
	return out
}
