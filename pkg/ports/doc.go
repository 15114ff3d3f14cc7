/*
Package ports defines the driven ports (interfaces) of the mas-lab pipeline.

These interfaces decouple the pipeline core from external implementations, allowing
the same stages to run against different inference backends and storage engines.

# Key Interfaces

  - CompletionService: Stateless request/response text inference (OpenAI-compatible, echo).
  - MemoryStore: Append-only note log with naive keyword search (file, memory, redis, sqlite).
  - StateStore: Persists state snapshots by session ID (file, memory, redis).
  - DistributedLocker: Provides distributed locking for concurrent session access.
*/
package ports
