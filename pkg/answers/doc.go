/*
Package answers implements the Answer Store: the canonical, mutable record of all
questionnaire responses for one respondent session.

Mutators are synchronous. Each one notifies an optional change hook that the session
uses to schedule a persistence write; persistence itself never surfaces errors here.
*/
package answers
