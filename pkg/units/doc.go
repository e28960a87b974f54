// Package units implements the unit catalog, value grammar and normalizer
// used to compare heterogeneous quantities such as "2" cores against
// "500m" millicores, or "1G" against "512M".
//
// Both CPU and storage conversions use a decimal factor of 1000: one core is
// 1000 millicores and one G is 1000 M. Values whose unit is "m" or "mi"
// (case-insensitive) are already in the base unit; every other unit,
// including none, is read as the large unit.
package units
