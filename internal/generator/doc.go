// Package generator turns a movie title into a movieplot.Artifact by chaining
// two text service calls: a plain-language plot with numbered beats, then an
// emoji-only translation of that plot with an explanation.
//
// The generator owns no caching. Any failure in either stage is returned as
// *Error, which also matches services.ErrGeneration, and nothing is retried
// here beyond what the text service client does itself.
package generator
