// Package token defines lexical token kinds and trivia for the Java-subset frontend.
// Invariants:
//   - Token.Text is exactly the source bytes covered by Token.Span.
//   - Comments and whitespace never appear in the token stream; they are attached
//     to the following token as leading Trivia.
//   - Primitive type names (int, boolean, ...) are keywords; every other type name
//     is an identifier resolved by sema.
package token
