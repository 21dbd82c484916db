// Package domain models yearly crime statistics and the views derived from them.
//
// # Data Source
//
// The reference dataset is the National Crime Records Bureau table "Trial of violent
// crimes by courts" (file 28_Trial_of_violent_crimes_by_courts.csv), covering Indian
// states and union territories from 2001 to 2010. Each row is one crime group in one
// area for one year. Header cells in the published CSV carry stray whitespace, which
// the loader trims before matching.
//
// Column mapping:
//
//	Area_Name                                 -> region
//	Year                                      -> year
//	Group_Name                                -> category
//	Trial_of_Violent_Crimes_by_Courts_Total   -> total_count
//
// Count encoding:
//
//	Blank cells, "NA" and any other non-numeric text are counted as 0.
//	Negative counts do not occur in the source and are clamped to 0.
//	Years may be written as "2005" or "2005.0"; anything else drops the row.
//
// # Time Axis
//
// Observations are yearly. A year is placed on the time axis at January 1 UTC
// (see [YearTimestamp]); forecast horizons extend the axis by whole years.
//
// # Derived Views
//
// Year-over-year change is computed from the raw aggregated counts, while the
// seasonality percentage is computed from the fitted model's seasonal component.
// The two use different baselines and are kept as separate views.
//
// Division by zero is resolved the same way everywhere: when the baseline of a
// ratio is zero the ratio is not computed and the view falls back to a neutral
// value. For year-over-year change the point is omitted, for the seasonality
// percentage the raw seasonal value is shown, and for the insight the change is 0.
package domain
