package domain

// ResultsStepID is the sentinel step reached once every applicable step is complete.
// It has no outgoing transitions.
const ResultsStepID = "results"

// ContactKey is the answer key holding the respondent's contact record.
const ContactKey = "contact"

// MsgRetry is the generic, user-visible message for unrecoverable submission failures.
const MsgRetry = "We couldn't submit your answers right now. Please try again in a moment."
