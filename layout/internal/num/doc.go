// Package num implements fixed-width integer encoding shared by the
// layout engine: coercion from arbitrary Go values, range checks, and
// byte-order-aware reads and writes for both native (<= 8 byte) and
// arbitrary-precision widths.
package num
