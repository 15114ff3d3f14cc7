package domain

// Agent names recorded in State.AgentsActivated. Stage names of the fixed pipeline
// reuse the same identifiers.
const (
	AgentRouter       = "router"
	AgentPlanner      = "planner"
	AgentRAGRetriever = "rag_retriever"
	AgentExecutor     = "executor"
	AgentFormatter    = "formatter"
	AgentSupervisor   = "supervisor"
	AgentTechnical    = "technical_agent"
	AgentGeek         = "geek_agent"
	AgentGeneral      = "general_agent"
	AgentArchitecture = "architecture_agent"
	AgentCode         = "code_agent"
	AgentTest         = "test_agent"
)

// Classification types produced by the router.
const (
	ClassCode         = "code"
	ClassArchitecture = "architecture"
	ClassConceptual   = "conceptual"
	ClassGeneral      = "general"
)

// Fixed strings observable in the final state.
const (
	// NoPlanResult is written to executor_result when there is nothing to execute.
	NoPlanResult = "No plan generated."

	// EmptyAnswer is the final answer when no stage produced content.
	EmptyAnswer = "No result."

	// PolicyKeyword triggers the supervisor. Matching is a case-insensitive substring test.
	PolicyKeyword = "forbidden"

	// RejectionMessage replaces any final answer containing PolicyKeyword.
	RejectionMessage = "Query was rejected due to safety policies."

	// UnknownStepPrefix prefixes the placeholder result of an unresolved plan step.
	UnknownStepPrefix = "Unknown step: "
)

// Limits applied when recording results.
const (
	// SnippetLimit bounds StepRecord.ResultSnippet, in characters.
	SnippetLimit = 400

	// AuditAnswerLimit bounds the answer part of the formatter's audit note, in characters.
	AuditAnswerLimit = 200

	// DefaultTopK is the number of notes retrieved for context.
	DefaultTopK = 3
)

// Note tags written by the pipeline.
const (
	TagAuto  = "auto"
	TagError = "error"
)
