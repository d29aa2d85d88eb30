// Package blob abstraksi object store utk file upload (bukti pembayaran,
// foto produk). Key bersifat path-like, hasilnya URL stabil.
package blob

import (
	"context"
	"io"
)

type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}
