// Package removebg provides the background removal client used by the editor.
//
// The editor depends only on the [Remover] interface. [Client] implements it
// against the remove.bg HTTP API: the current image is encoded as PNG and
// posted as multipart form data, and the response body is decoded into a
// replacement buffer.
//
// # Request Format
//
//	POST {endpoint}
//	X-Api-Key: {api key}
//	Content-Type: multipart/form-data
//
//	image_file = <PNG bytes>
//	size       = auto
//
// # Error Handling
//
// Every failure (missing key, transport error, non-2xx status, undecodable
// response) is reported as ErrRemovalFailed, so callers can recover with a
// single errors.Is check. Non-2xx responses additionally wrap a *StatusError
// carrying the HTTP status and the service's error title when present.
//
// # Cancellation
//
// Remove honors context cancellation; the editor cancels in-flight requests
// when the session is reset.
package removebg
