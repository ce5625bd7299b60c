// Package bundle turns a Cargo project into one source file.
//
// The pipeline is parse, resolve, transform, render and minify; each stage
// opens a trace span. Bundle never writes partial output: any error aborts
// the attempt and the caller keeps whatever it had before.
package bundle
