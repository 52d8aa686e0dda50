// Package extract implements rule-based slot extraction for booking
// conversations: dates, times, party sizes and customer details.
package extract
