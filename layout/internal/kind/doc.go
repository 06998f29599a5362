// Package kind defines the closed set of layout item kinds.
//
// The four kinds partition every schema node: Numeric leaves, Bytes
// blocks (raw or wrapping a sub-layout), Array repetitions, and Switch
// tagged unions. The encoder, decoder, and size calculator are total
// over this set.
package kind
