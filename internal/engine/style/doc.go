// Package style defines the style properties the editing engine knows
// about, the engine-wide defaults, and the layering used to infer the
// style newly typed text would receive.
package style
