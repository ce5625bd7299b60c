// Package minify compresses rendered Rust source.
//
// SingleLine joins the whole crate into one line, dropping every space that
// is not needed to lex the same tokens back. Aggressive additionally joins a
// few pairs that lex differently but that the Rust parser splits again.
// Every compression is checked by re-parsing the result.
package minify
