// Package model defines shared data types used across the Everline tracker.
//
// Conventions:
//   - Station codes: upstream strings "Y110".."Y124"
//   - Direction and status: upstream single-digit string codes
//   - Durations: integer seconds
//   - Timestamps: time.Time, local wall clock of the fetch
package model
