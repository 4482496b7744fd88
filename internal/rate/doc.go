// Package rate provides the Redis-backed fixed-window login throttle.
//
// # Window semantics
//
// Fixed-window counters: INCR plus conditional EXPIRE on first hit. Key
// prefixes:
//   - "sl:lu:" login per-username
//   - "sl:li:" login per-IP
//
// # What this package must NOT do
//
//   - Decide when throttling applies (the Engine does, from its config).
//   - Be imported outside this module.
package rate
