// Package token defines Rust lexical token kinds and trivia.
// Invariants:
//   - Token.Span covers the token's bytes in the source file.
//   - Token.Text is the source text, except identifiers which are NFC-normalized.
//   - Whitespace and regular comments are leading Trivia and never appear in
//     the main token stream.
//   - Doc comments (///, //!, /** */, /*! */) are tokens: they are attributes in
//     Rust's grammar and must survive into the item model.
//   - Weak keywords (union, macro_rules, auto, default) are identifiers; the
//     parser recognises them by text.
package token
