/*
Package maslab is a multi-agent question answering pipeline.

A query flows through a fixed sequence of stages: a keyword router classifies it, a
planner turns the class into a list of steps, a retriever pulls related notes from the
long-term memory, an executor dispatches each step to a specialised agent, a formatter
composes the final answer and a supervisor enforces the safety policy. Every stage
mutates one State record; every failure is recorded inside that record instead of
aborting the run.

# Architecture

The core is hexagonal. The pipeline talks to two driven ports:

  - ports.CompletionService: the text inference backend (OpenAI compatible, or the
    offline echo service).
  - ports.MemoryStore: the append-only note log (in memory, JSON file, redis or sqlite).

Hosts (the maslab CLI, the HTTP API, the MCP server) build a Pipeline and call Run.
Session persistence lives in pkg/session and is optional.

# Usage

	p := maslab.New(
		maslab.WithCompletionService(openai.New(openai.Config{APIKey: key})),
		maslab.WithMemoryStore(file.NewNoteStore("memory.json")),
	)
	state, err := p.Run(ctx, "How to implement a function in python?")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(state.Answer())

Run never fails once the query is accepted: the final answer is always set, falling back
to the "No result." sentinel.
*/
package maslab
