// Package votecasting owns the voting side of an election: voter
// registration and approval, vote recording with per-race limits and
// duplicate prevention, and result tallies. It reads election and ballot
// data through a directory port so the lifecycle engine stays the single
// writer of that data.
package votecasting
