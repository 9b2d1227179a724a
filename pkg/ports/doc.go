/*
Package ports defines the driven ports (interfaces) of the intake core.

These interfaces decouple the questionnaire core from external implementations, allowing
it to work with various session stores, submission backends and notification channels.

# Key Interfaces

  - StateStore: Persists and loads the session snapshot (answers + step cursor).
  - DistributedLocker: Provides distributed locking for concurrent session access.
  - SubmissionStore: The storage collaborator receiving the full answer payload.
  - OperatorNotifier / RespondentNotifier: The two notification collaborators.
*/
package ports
