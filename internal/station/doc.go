// Package station holds the fixed Everline station table.
//
// The line has 15 stations, Y110 (Giheung) to Y124 (Jeondae·Everland).
// Down trains run Y110 → Y124, up trains run Y124 → Y110. Each direction
// has its own table of 14 inter-station running times in seconds.
package station
