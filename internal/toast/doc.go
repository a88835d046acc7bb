// Package toast holds the notification lifecycle store.
// It tracks active toasts in insertion order, assigns identifiers,
// retires toasts on expiry and extends them while hovered.
package toast
