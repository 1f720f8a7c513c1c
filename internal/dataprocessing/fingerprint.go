package dataprocessing

import (
	"encoding/hex"
	"encoding/json"

	"golang.org/x/crypto/blake2b"

	"fteapp/pkg/contracts/domain"
)

// Fingerprint is a blake2b-256 digest of the table's JSON encoding. Equal
// tables always share a fingerprint; it is used as the API version and ETag.
func Fingerprint(tbl domain.Table) string {
	data, err := json.Marshal(tbl)
	if err != nil {
		return ""
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
