// Package api implements the HTTP handlers of the annotation platform.
// Every JSON endpoint wraps its result in the shared response envelope;
// business-rule failures keep HTTP 200 with success=false, unexpected
// failures return HTTP 500 with the same shape.
package api
