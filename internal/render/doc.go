// Package render prints a syntax tree as canonical Rust source.
//
// Layout is derived from tokens alone: braces open indented blocks, `;` and
// `,` inside braces end lines, everything else is separated by at most one
// space. Original whitespace and plain comments are not preserved, so
// rendering a re-parsed rendering gives the same bytes.
package render
