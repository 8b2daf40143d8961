// Package llm is the OpenRouter text service used for plot generation.
//
// CompleteText backs the plain-language plot stage. CompleteJSON requests a
// json_object reply for the emoji stage, and DecodeJSON turns that reply into
// a struct even when the model wraps it in a code fence. Throttling, server
// errors, empty replies and timeouts are retried under a RetryPolicy; the
// final error carries services.ErrTransient, ErrConfiguration (rejected
// credentials) or ErrGeneration so callers can classify it.
package llm
