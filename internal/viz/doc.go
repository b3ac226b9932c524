// Package viz renders PSF profiles and containment curves for the terminal.
//
//   - [ProfilePlot] and [ContainmentPlot]: asciigraph line charts
//   - [RadiusPlot]: containment radius against energy, one series per fraction
//   - [Rings]: Braille canvas with containment circles around the source
//
// Styles and themes are lipgloss based and shared with the explorer.
package viz
