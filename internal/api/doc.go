// Package api is the HTTP/JSON client of the task service.
//
// # Endpoints
//
//	POST   /signup              {name, email, password, confirmPassword}
//	POST   /signin              {email, password} -> {token, ...user}
//	GET    /tasks?date=<max>    -> []Task
//	POST   /tasks               {desc, estimateAt}
//	PUT    /tasks/{id}/toggle
//	DELETE /tasks/{id}
//
// # Authentication
//
// There is no process-wide default header. Every protected call receives an
// explicit Auth value carrying the bearer token of the current session; the
// zero Auth sends no Authorization header, which is how a signed-out client
// is represented.
//
// # Errors
//
// Non-2xx responses are returned as *Error carrying the status, the message
// the service reported and the X-Request-ID sent with the request. Message
// turns any error into the text shown to the user.
package api
