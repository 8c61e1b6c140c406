// Package ratelimit guards SrvReg admission per remote address, grounded in
// MrSnakeDoc-jump-blueprint's mw.RateLimit middleware. Memory is an
// in-process token bucket; Redis is a fixed-window counter shared across
// multiple DA processes, and Fallback uses Memory whenever a Redis call
// fails.
package ratelimit
