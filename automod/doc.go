// Moderation engine for anonymous post submissions.
//
// This package (`github.com/veil-social/veil/automod`) contains a planning
// pipeline that decides what happens to a submitted post before it is
// anonymized and forwarded. A planner consults pluggable backends (a content
// classifier, a completion model fed the operator's rule corpus) to produce a
// list of named actions; the engine executes those actions and emits a
// sequence of events describing what happened. Counters are collected so
// decision outcomes can be tracked over time.
//
// See `cmd/veild` for a daemon built on this package.
package automod
