// Package correction runs proposal rules for a request.
//
// A Catalogue holds the rules in registration order and the diagnostic
// dispatch table. For a Request it probes every candidate rule, lets the
// applicable ones draft their edits on fresh builders, compiles the drafts
// and returns the proposals ordered by relevance. A rule that breaks (a
// usage error from compile or a panic) is recorded as a Failure and never
// hides the proposals of other rules.
package correction
