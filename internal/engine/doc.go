// Package engine implements the quiz session engine: question selection,
// the session countdown, the session state machine, scoring, result
// persistence and the achievement trigger.
//
// A session moves Loading -> Active -> Finished, or Loading -> Empty for a
// review session with nothing to review, or Loading -> Error when questions
// cannot be fetched. The score shown at the end is computed from the answers
// held in memory; storage failures only change the persistence banner.
package engine
