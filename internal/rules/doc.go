// Package rules is the built-in proposal catalogue: the quick-assists offered
// at a selection and the quick-fixes dispatched for diagnostic codes.
//
// Every rule reads the tree through correction.Context and records its edits
// in a rewrite.Builder; nothing here touches text directly except the few
// fixes that repair lexical damage (a missing quote or semicolon).
package rules
