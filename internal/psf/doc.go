// Package psf implements point-spread-function models for gamma-ray
// instrument responses.
//
// Three tabulated representations share the PSF interface:
//   - King: per-bin King profile parameters (PSF_2D_KING)
//   - MultiGauss: per-bin sum of up to three 2D Gaussians (PSF_3GAUSS)
//   - Table3D: density tabulated over energy, offset and radius (PSF_TABLE)
//
// Any of them converts to an EnergyDependentTable at a fixed offset, which
// in turn yields radial.Profile values for containment calculations.
//
// All energies are in TeV, all angles in deg and all densities in deg^-2.
// Queries outside the calibrated range are clamped to the end bins; bins
// without calibration hold zero and evaluate to zero density.
package psf
