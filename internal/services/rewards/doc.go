// Package rewards reads and claims winnings across events.
package rewards
