/*
Package domain contains the core domain models of the intake questionnaire.

It defines the answer data model, steps, the persisted session snapshot, recommendation
candidates and the submission lifecycle. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Value / Answers: A respondent's answers keyed by question (scalar, multi-select, text or contact).
  - Step: A screen of the questionnaire with applicability and completion predicates.
  - SessionState: The persisted snapshot of a session (answers + step cursor).
  - Candidate: A ranked program recommendation.
  - SubmissionState: The lifecycle of the terminal submission (Idle, InFlight, Succeeded, Failed).
*/
package domain
