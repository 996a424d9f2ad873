package pagination

import (
	"encoding/base64"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/orderdesk/orderdesk/pkg/apperrors"
)

// Cursor is the composite sort key of the last row a page returned:
// creation timestamp plus row id to break ties. It is the resume point for
// keyset pagination and is never persisted server-side.
type Cursor struct {
	CreatedAt time.Time `msgpack:"t"`
	ID        string    `msgpack:"i"`
}

// Encode renders the cursor as an opaque URL-safe token.
func (c Cursor) Encode() string {
	raw, err := msgpack.Marshal(c)
	if err != nil {
		// Cursor has no unmarshalable fields; this cannot happen with
		// the current shape.
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor parses an opaque token back into a cursor. Malformed or
// tampered tokens are rejected with a validation error; the same policy
// applies on every cursor-consuming endpoint.
func DecodeCursor(token string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, apperrors.Validation("invalid cursor")
	}

	var c Cursor
	if err := msgpack.Unmarshal(raw, &c); err != nil {
		return Cursor{}, apperrors.Validation("invalid cursor")
	}
	if c.ID == "" || c.CreatedAt.IsZero() {
		return Cursor{}, apperrors.Validation("invalid cursor")
	}
	return c, nil
}
