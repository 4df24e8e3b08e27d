// Package feed builds Yellowstone/Geyser subscription requests and carries
// the x-token credential on outbound calls.
//
// A SubscribeRequest maps caller-chosen filter names to filter specs for
// accounts, slots and transactions, plus a commitment level. An empty spec
// matches everything in its category, so AllAccounts subscribes to every
// account update.
//
// Credentials are attached by Decorators, pure functions over outgoing
// metadata, installed once on the connection through UnaryInterceptor and
// StreamInterceptor.
package feed
