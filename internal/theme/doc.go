// Package theme resolves toast styling.
// It loads color palettes (bundled or from the user's themes directory)
// and maps a toast level plus a theme to text, background and border colors.
package theme
