// Package conv provides checked integer narrowing.
//
// Pool headers carry 64-bit counts while the training pipeline addresses
// objects with 32-bit indices; every narrowing goes through this package
// so overflows surface as errors instead of silent truncation.
package conv
