// Package http provides the HTTP surface of the stash storage engine.
//
// Every route is wrapped by a single middleware pipeline (see Session)
// that admits the request, resolves or mints the caller's session from
// the Authorization header, negotiates the input and output content
// types, and re-issues a freshly signed bearer token on the response.
// Handlers then read the assembled request context and talk to the
// item repository.
//
// # Routes
//
//	GET    /        session status probe (or console page in public mode)
//	GET    /{key}   read the item stored under the caller's session
//	POST   /{key}   create or replace an item (201)
//	PUT    /{key}   create or replace an item (200)
//	DELETE /{key}   remove an item; missing keys are fine
//
// # Usage
//
//	handler := http.NewHandler(&http.HandlerConfig{
//	    Codec:      codec,
//	    SessionTTL: 300,
//	}, repo)
//	http.ListenAndServe(":5709", handler.Router())
package http
