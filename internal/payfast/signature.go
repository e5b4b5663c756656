package payfast

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// Field is a single signed key/value pair. Signatures are computed over an
// ordered field slice, never a map, because the canonicalization below is a
// fixed wire format shared with the gateway.
type Field struct {
	Key   string
	Value string
}

// Sign computes the gateway signature over the given fields: fields with
// empty values are dropped, the rest are sorted by key ascending,
// URL-encoded and joined as key=value pairs with '&', the passphrase is
// appended as a final pair when configured, and the MD5 digest of the
// resulting string is rendered as lowercase hex.
func Sign(fields []Field, passphrase string) string {
	kept := make([]Field, 0, len(fields))
	for _, f := range fields {
		if f.Value != "" {
			kept = append(kept, f)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Key < kept[j].Key })

	var b strings.Builder
	for i, f := range kept {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(f.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(f.Value))
	}

	if passphrase != "" {
		b.WriteString("&passphrase=")
		b.WriteString(url.QueryEscape(passphrase))
	}

	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// VerifySignature recomputes the signature over the fields and compares it
// case-insensitively to the supplied one.
func VerifySignature(fields []Field, passphrase, supplied string) bool {
	return Sign(fields, passphrase) == strings.ToLower(supplied)
}
