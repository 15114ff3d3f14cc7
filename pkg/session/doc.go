/*
Package session implements session management and persistence orchestration.

A session is a sequence of pipeline runs sharing one conversation history. The Manager
serializes runs per session id with local refcounted mutexes and, when configured, a
distributed lock, so replicas sharing a redis store do not interleave writes.
*/
package session
