// Package client is the single outgoing HTTP gateway to the court REST backend.
//
// A [Client] carries one mutable default credential. Every request issued
// through it, including the resource helpers ([AuthAPI], [CasesAPI], and the
// rest), attaches "Authorization: Bearer <token>" while a credential is set and
// no Authorization header at all otherwise.
//
// Errors are surfaced, not interpreted: a non-2xx response becomes an
// [*APIError] holding the status and raw body, and transport failures are
// wrapped with %w so callers can still reach the cause. There is no retry.
package client
