package domain

import (
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// AgentKey names the side-channel slot a specialized agent writes to.
type AgentKey string

const (
	KeyTech         AgentKey = "tech"
	KeyGeek         AgentKey = "geek"
	KeyGeneral      AgentKey = "general"
	KeyArchitecture AgentKey = "architecture"
	KeyCode         AgentKey = "code"
	KeyTests        AgentKey = "tests"
)

const (
	keyExecutorSteps = "executor_steps"
	keyErrors        = "errors"
)

// StepStatus is the outcome of one dispatched plan step.
type StepStatus string

const (
	StepDone   StepStatus = "done"
	StepFailed StepStatus = "error"
)

// StepRecord is the audit entry for one plan step, keyed "{index}:{step}".
type StepRecord struct {
	Status               StepStatus `json:"status"`
	ActivatedAgentsDelta []string   `json:"activated_agents_delta"`
	ResultSnippet        *string    `json:"result_snippet"`
	Error                string     `json:"error,omitempty"`
}

// ErrorRecord captures a stage or step failure absorbed by the pipeline.
// Trace holds the goroutine stack for panics and the wrap chain for returned errors.
type ErrorRecord struct {
	Agent string `json:"agent"`
	Error string `json:"error"`
	Trace string `json:"trace"`
}

// Extra is the typed side channel of PartialAnswers.
//
// Known agents write to named slots; the dispatcher keeps an insertion-ordered audit of
// executed steps; absorbed failures accumulate in Errors. Values holds keys that only
// exist at runtime (custom plan steps). On the wire all of it is one flat JSON object.
type Extra struct {
	Tech         *string
	Geek         *string
	General      *string
	Architecture *string
	Code         *string
	Tests        *string

	ExecutorSteps *orderedmap.OrderedMap[string, StepRecord]
	Errors        []ErrorRecord
	Values        map[string]any
}

func (e *Extra) slot(key AgentKey) **string {
	switch key {
	case KeyTech:
		return &e.Tech
	case KeyGeek:
		return &e.Geek
	case KeyGeneral:
		return &e.General
	case KeyArchitecture:
		return &e.Architecture
	case KeyCode:
		return &e.Code
	case KeyTests:
		return &e.Tests
	}
	return nil
}

// Output returns the text stored by the agent owning key.
func (e *Extra) Output(key AgentKey) (string, bool) {
	if p := e.slot(key); p != nil && *p != nil {
		return **p, true
	}
	if v, ok := e.Values[string(key)].(string); ok {
		return v, true
	}
	return "", false
}

// SetOutput stores an agent result. Unknown keys land in Values.
func (e *Extra) SetOutput(key AgentKey, text string) {
	if p := e.slot(key); p != nil {
		*p = &text
		return
	}
	e.Set(string(key), text)
}

// Set stores a dynamic value.
func (e *Extra) Set(key string, value any) {
	if e.Values == nil {
		e.Values = make(map[string]any)
	}
	e.Values[key] = value
}

// Get returns a dynamic value.
func (e *Extra) Get(key string) (any, bool) {
	v, ok := e.Values[key]
	return v, ok
}

// ResetExecutorSteps starts a fresh step audit.
func (e *Extra) ResetExecutorSteps() {
	e.ExecutorSteps = orderedmap.New[string, StepRecord]()
}

// RecordStep appends (or replaces) the audit entry for a step.
func (e *Extra) RecordStep(key string, rec StepRecord) {
	if e.ExecutorSteps == nil {
		e.ResetExecutorSteps()
	}
	if rec.ActivatedAgentsDelta == nil {
		rec.ActivatedAgentsDelta = []string{}
	}
	e.ExecutorSteps.Set(key, rec)
}

// Step returns the audit entry for a step key.
func (e *Extra) Step(key string) (StepRecord, bool) {
	if e.ExecutorSteps == nil {
		return StepRecord{}, false
	}
	return e.ExecutorSteps.Get(key)
}

// StepKeys lists the step audit keys in execution order.
func (e *Extra) StepKeys() []string {
	if e.ExecutorSteps == nil {
		return nil
	}
	keys := make([]string, 0, e.ExecutorSteps.Len())
	for pair := e.ExecutorSteps.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// AddError appends an absorbed failure.
func (e *Extra) AddError(rec ErrorRecord) {
	e.Errors = append(e.Errors, rec)
}

var agentKeys = []AgentKey{KeyTech, KeyGeek, KeyGeneral, KeyArchitecture, KeyCode, KeyTests}

func isReserved(key string) bool {
	if key == keyExecutorSteps || key == keyErrors {
		return true
	}
	for _, k := range agentKeys {
		if string(k) == key {
			return true
		}
	}
	return false
}

// MarshalJSON flattens the named slots, the step audit, the errors and the dynamic values
// into one object.
func (e Extra) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Values)+len(agentKeys)+2)
	for k, v := range e.Values {
		if isReserved(k) {
			continue
		}
		out[k] = v
	}
	for _, k := range agentKeys {
		if p := e.slot(k); *p != nil {
			out[string(k)] = **p
		}
	}
	if e.ExecutorSteps != nil {
		out[keyExecutorSteps] = e.ExecutorSteps
	}
	if len(e.Errors) > 0 {
		out[keyErrors] = e.Errors
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON. Step audit order is preserved.
func (e *Extra) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = Extra{}
	for k, v := range raw {
		switch {
		case k == keyExecutorSteps:
			steps := orderedmap.New[string, StepRecord]()
			if err := json.Unmarshal(v, steps); err != nil {
				return fmt.Errorf("extra.%s: %w", k, err)
			}
			e.ExecutorSteps = steps
		case k == keyErrors:
			if err := json.Unmarshal(v, &e.Errors); err != nil {
				return fmt.Errorf("extra.%s: %w", k, err)
			}
		case e.slot(AgentKey(k)) != nil:
			var s *string
			if err := json.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("extra.%s: %w", k, err)
			}
			*e.slot(AgentKey(k)) = s
		default:
			var val any
			if err := json.Unmarshal(v, &val); err != nil {
				return fmt.Errorf("extra.%s: %w", k, err)
			}
			e.Set(k, val)
		}
	}
	return nil
}
