// Package acl is the anti-corruption layer between the remote quote provider
// and the domain.
//
// Provider payloads are decoded into unexported DTOs and translated into
// [domain.Quote] values here, so nothing outside this package knows the wire
// shape. The translation tolerates the field spellings seen across quote APIs:
//
//	{"_id": "abc", "content": "...", "author": "..."}   quotable.io
//	{"id": 17, "quote": "...", "author": "..."}         numeric ids
//	[{"_id": "abc", ...}]                               single-element list
//
// Transport failures, non-2xx responses and payloads that do not yield a
// complete quote all become [domain.ErrUnavailable] so callers can fall back
// to a local quote with a single check.
package acl
