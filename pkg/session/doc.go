/*
Package session composes the answer store, the flow controller and the
submission orchestrator into one explicitly constructed Session per respondent.

Sessions are plain values passed by reference; nothing is process-global, so a
server can drive many sessions at once. Persistence is fire-and-forget through a
Persister: the AsyncPersister coalesces snapshots and writes them from a single
goroutine, logging failures instead of surfacing them. Only answers and the
cursor are persisted; the submission status lives with the Session.

The Manager serializes access to a persisted session across goroutines and,
with a DistributedLocker, across replicas.
*/
package session
