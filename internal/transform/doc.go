// Package transform prunes a resolved crate before rendering.
//
// Passes run in a fixed order: test items (gated by Config.StripTests),
// cfg-disabled items (always) and documentation (gated by Config.StripDocs).
// Pruning is item-level and descends into inline modules; a module whose
// children were all pruned is pruned as well.
package transform
