// Package domain implements the E and C index calculation of Takahashi et
// al. (2011) on gridded sea-surface-temperature anomaly fields.
//
// # Data Source
//
// Input fields are monthly SST anomalies on a regular latitude/longitude
// grid, typically ERSSTv5 observations or CESM2-LENS and CMIP6 model output
// subset to the tropical Pacific. Anomalies are referenced to a climatology
// by the producer; this package never re-baselines them.
//
// # Index Construction
//
// The field is restricted to 20°S-20°N, 100-280°E and decomposed into
// empirical orthogonal functions over a configurable reference period, with
// each grid cell weighted by sqrt(cos(latitude)) so equal areas contribute
// equally to the covariance. The full series is then projected onto the two
// leading modes, each principal component is normalized to unit variance
// over the reference period, and the pair is rotated by 45°:
//
//	E = (PC1 - PC2) / √2
//	C = (PC1 + PC2) / √2
//
// E captures eastern-Pacific ENSO variability, C the central-Pacific
// flavor.
//
// # Sign Convention
//
// An EOF decomposition determines each mode only up to sign. To make E and
// C reproducible, a mode whose pattern mean over 5°S-5°N, 140-180°E is
// negative is negated before projection. The same input therefore always
// yields the same polarity regardless of the factorization's sign choice.
//
// # DJF Seasons and Alpha
//
// The nonlinearity coefficient alpha is the quadratic coefficient of a
// degree-2 least-squares fit of PC2 against PC1 over
// December-January-February seasonal means. A DJF season is labeled by the
// year of its January and February months, so Dec 1999-Feb 2000 is the 2000
// season. Incomplete seasons are dropped, and only seasons from 1980 onward
// enter the fit. Fewer than three seasonal points make the fit
// underdetermined and produce an error.
//
// # Missing Data
//
// NaN marks missing values. Cells with any gap during the reference period
// are masked out of the EOF fit entirely; a gap at an unmasked cell outside
// the reference period propagates NaN into that time step's principal
// components and indices rather than being silently dropped.
package domain
