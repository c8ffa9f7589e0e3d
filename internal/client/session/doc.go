// Package session owns the client's current-user state.
//
// A Manager holds the authoritative session (status, user, last error) and
// mediates every read and write between memory, the durable snapshot store
// and the remote API. Consumers read through Current, get pushed every
// committed transition through Subscribe, and change the session only through
// the Manager's operations.
//
// # State machine
//
//	unknown        -> authenticated    stored snapshot found at Hydrate, or login/register success
//	unknown        -> unauthenticated  nothing stored at Hydrate
//	authenticating -> authenticated    login/register success
//	authenticating -> unauthenticated  login/register failure
//	authenticated  -> authenticated    refresh or profile update success
//	authenticated  -> unauthenticated  logout, account deletion, or any unauthorized failure
//
// # Ordering
//
// Writers run one at a time on a single worker, in submission order. A
// caller may stop waiting (context cancellation) but the operation still
// runs to completion and commits, so memory and storage never diverge.
// Current never blocks.
package session
