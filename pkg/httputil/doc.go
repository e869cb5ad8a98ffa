// Package httputil provides retry helpers for HTTP clients.
//
// [Retry] runs an operation with exponential backoff, retrying only errors
// wrapped in [RetryableError]. Clients wrap transient failures (network
// errors, 5xx and 429 responses) and return everything else unwrapped:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    ...
//	})
//
// The backend client and the remote blueprint store backends use it.
package httputil
