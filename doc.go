// Package stash implements a stateless session-scoped storage engine.
//
// Clients talk to stash over HTTP and store exactly one typed value per
// key: a string, a JSON document, or a binary blob. Every item belongs
// to the session that wrote it, and a session is nothing more than a
// signed bearer token the server mints on first contact and re-issues
// with every response. No session state lives on the server.
//
// # Key Components
//
//   - Claims / Codec: the signed session identity and its JWT codec
//   - Tag / NegotiateAccept / NegotiateContentType: content negotiation
//     onto the closed set of storage kinds (string, json, blob, html)
//   - Value: the tagged union stored per (client, key) pair
//   - ItemRepo: interface for item persistence (PostgreSQL, SQLite)
//
// # Example Usage
//
//	codec, err := stash.NewCodec(stash.CodecConfig{
//	    PrivateKeyPEM: priv,
//	    PublicKeyPEM:  pub,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	claims := stash.NewClaims("localhost:5709", 300)
//	token, err := codec.Encode(claims)
//
// See the http package for the REST API and middleware pipeline, and
// the database package for the repository backends.
package stash
