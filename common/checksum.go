package common

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"io"

	"gocloud.dev/blob"
)

// Checksum returns the SHA-1 hash of a document body, used to verify
// that regenerating from an unchanged feed yields byte-identical
// output.
func Checksum(body []byte) string {

	h := sha1.New()
	h.Write(body)

	hash := h.Sum(nil)
	return hex.EncodeToString(hash[:])
}

// ChecksumFile returns the SHA-1 hash of a document stored in a
// blob.Bucket instance.
func ChecksumFile(ctx context.Context, bucket *blob.Bucket, path string) (string, error) {

	fh, err := bucket.NewReader(ctx, path, nil)

	if err != nil {
		return "", err
	}

	defer fh.Close()

	h := sha1.New()

	_, err = io.Copy(h, fh)

	if err != nil {
		return "", err
	}

	hash := h.Sum(nil)
	return hex.EncodeToString(hash[:]), nil
}
