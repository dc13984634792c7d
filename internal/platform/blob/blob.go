// Copyright (c) 2026 Pinboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package blob provides the opaque object-storage collaborator for uploaded images.

The rest of the application only sees [ObjectStore]: hand it bytes, get back a
retrievable address. Storage mechanics (bucket layout, signing, endpoints) stay
behind this boundary.

# Failure Semantics

Uploads are not retried here. A failed upload is surfaced to the caller, which
must abort the mutation it was part of rather than persist a partial record.
*/
package blob

import (
	"context"
	"io"
)

// ObjectStore is the contract for storing binary objects.
type ObjectStore interface {

	/*
		Store uploads an object and returns its publicly retrievable address.

		Parameters:
		  - context: context.Context
		  - key: string (Storage key, e.g. "users/2026/01/02/<uuid>.png")
		  - contentType: string (MIME type of the object)
		  - body: io.Reader (Object bytes)

		Returns:
		  - string: Retrievable address of the stored object
		  - error: Upload failures (never retried internally)
	*/
	Store(context context.Context, key string, contentType string, body io.Reader) (string, error)
}
