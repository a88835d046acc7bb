// Package stack computes the on-screen arrangement of a toast stack.
// Toasts are stacked along the vertical axis, anchored to a configured
// corner, with the newest toast adjacent to the anchored edge. Toasts
// that do not fit are left out of the result without being forgotten.
package stack
