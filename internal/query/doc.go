// Package query is the read-only navigation and inference layer over syntax
// trees used by correction rules.
//
// Every function is pure: it answers from the tree (and, where noted, the
// resolver) and returns NoNodeID, nil or false when there is no answer.
package query
