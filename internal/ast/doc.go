// Package ast holds the item-level syntax tree of a Rust crate.
//
// The tree is deliberately shallow: items are classified by kind and keep
// their raw tokens, so later stages can splice modules, prune items and
// re-render text without understanding expressions. A Mod item owns a nested
// Tree once resolved; until then it is a pending declaration (`mod x;`).
package ast
