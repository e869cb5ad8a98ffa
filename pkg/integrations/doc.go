// Package integrations provides HTTP clients for the services blockprint
// talks to.
//
// # Overview
//
// Each remote service has its own subpackage:
//
//   - [backend]: the blueprint generation and Minecraft build backend
//
// # Shared Infrastructure
//
// The [Client] type provides the HTTP plumbing used by every service client:
// default headers, [observability.HTTPHooks] reporting, and retry of
// transient failures through [httputil.Retry]. Non-2xx responses come back
// as a [*StatusError] carrying the server's "detail" message, so service
// clients can turn them into user-facing errors.
//
//	c := integrations.NewClient(map[string]string{"User-Agent": "blockprint"})
//	var health struct{ Status string }
//	err := c.Get(ctx, "http://localhost:8000/api/health", &health)
//
// [backend]: github.com/blockprint/blockprint/pkg/integrations/backend
// [observability.HTTPHooks]: github.com/blockprint/blockprint/pkg/observability.HTTPHooks
// [httputil.Retry]: github.com/blockprint/blockprint/pkg/httputil.Retry
package integrations
