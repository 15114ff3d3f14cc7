/*
Package domain contains the core data model of the mas-lab pipeline.

It defines the per-query State threaded through every stage, the Plan produced by the
planner, the typed side channel used by specialized agents, and the memory Note record.
This package is kept pure and free of I/O, following Hexagonal Architecture principles:
stores and inference clients live behind the interfaces in package ports.

# Key Entities

  - State: The mutable per-query record (query, classification, plan, partial answers,
    final answer, session history, audit log of activated agents).
  - Plan: An ordered list of step names plus advisory tool names and context notes.
  - StepKind: The closed set of step variants the dispatcher knows how to execute.
  - Extra: Named agent outputs, the ordered per-step audit map and the error records.
  - Note: An immutable tagged text record owned by a MemoryStore.
*/
package domain
