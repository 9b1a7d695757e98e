// Package client consumes carmarket API error envelopes on the calling side.
//
// Decode turns a non-2xx response into an *APIError after checking the body
// against the envelope schema. The helpers classify any error a call can
// produce and pick the text to show a user:
//
//	err := c.Do(ctx, http.MethodGet, "/api/cars/42", nil, &car)
//	switch {
//	case client.IsNetwork(err), client.IsCircuitOpen(err):
//	    // offline, retry later
//	case client.IsAuth(err):
//	    // redirect to sign-in
//	}
//	toast(client.Message(err))
//
// Client retries idempotent calls per RetryConfig and, with a BreakerConfig,
// stops calling a server that keeps answering 5xx.
package client
