// Package api serves the extraction pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz                         liveness and build version
//	GET  /metrics                         Prometheus metrics (when enabled)
//	POST /v1/diagrams                     XMI body -> diagrams as JSON
//	POST /v1/diagrams/{name}/graph        XMI body -> mxGraph XML
//	POST /v1/diagrams/{name}/preview      XMI body -> dot, svg, png or pdf
//
// Request bodies are raw XMI documents. Errors are JSON objects of the
// form {"error": {"code": "...", "message": "..."}} with the status taken
// from [errors.HTTPStatus]. Every response carries an X-Request-ID header.
package api
