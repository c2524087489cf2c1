// Package variant defines the immutable inputs of a build-variant
// resolution: package handles resolved by a fetcher, the feature flag
// set selecting the variant, and the validation rules that must hold
// before resolution is allowed to proceed.
package variant
