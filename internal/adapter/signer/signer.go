// Package signer implements the SDK-HMAC-SHA256 canonical request signature
// required by the cloud OCR service.
//
// The scheme is SigV4-like: the method, the canonical URI, the lower-cased
// sorted headers and the SHA-256 of the body are folded into a canonical
// request whose hash is signed with the secret key.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sort"
	"strings"
	"time"
)

const (
	// Algorithm is the signature scheme identifier.
	Algorithm = "SDK-HMAC-SHA256"
	// HeaderDate carries the signing timestamp.
	HeaderDate = "X-Sdk-Date"
	// DateFormat is the UTC timestamp layout of HeaderDate.
	DateFormat = "20060102T150405Z"
)

// Signer signs requests with one access/secret key pair.
type Signer struct {
	AccessKey string
	SecretKey string
	// Now defaults to time.Now; tests inject a fixed clock.
	Now func() time.Time
}

// New returns a Signer using the wall clock.
func New(accessKey, secretKey string) *Signer {
	return &Signer{AccessKey: accessKey, SecretKey: secretKey, Now: time.Now}
}

// Sign signs a request with the given keys and the wall clock.
func Sign(method, host, uriPath string, headers http.Header, body []byte, accessKey, secretKey string) http.Header {
	return New(accessKey, secretKey).Sign(method, host, uriPath, headers, body)
}

// Sign returns a copy of headers extended with Host, X-Sdk-Date and Authorization.
// The input header set is left untouched. The query string is always empty.
func (s *Signer) Sign(method, host, uriPath string, headers http.Header, body []byte) http.Header {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	timestamp := now().UTC().Format(DateFormat)

	out := headers.Clone()
	if out == nil {
		out = http.Header{}
	}
	out.Set("Host", host)
	out.Set(HeaderDate, timestamp)

	signed := SignedHeaders(out)
	canonical := CanonicalRequest(method, uriPath, out, signed, body)
	signature := s.signature(StringToSign(timestamp, canonical))

	out.Set("Authorization", Algorithm+" Access="+s.AccessKey+
		", SignedHeaders="+strings.Join(signed, ";")+
		", Signature="+signature)
	return out
}

func (s *Signer) signature(stringToSign string) string {
	mac := hmac.New(sha256.New, []byte(s.SecretKey))
	_, _ = mac.Write([]byte(stringToSign))
	return hex.EncodeToString(mac.Sum(nil))
}

// StringToSign builds the string signed with the secret key.
func StringToSign(timestamp, canonicalRequest string) string {
	return Algorithm + "\n" + timestamp + "\n" + hashHex([]byte(canonicalRequest))
}

// CanonicalRequest folds the request parts into the provider's canonical form.
func CanonicalRequest(method, uriPath string, headers http.Header, signed []string, body []byte) string {
	var b strings.Builder
	b.WriteString(method)
	b.WriteByte('\n')
	b.WriteString(CanonicalURI(uriPath))
	b.WriteByte('\n')
	b.WriteByte('\n')
	b.WriteString(CanonicalHeaders(headers, signed))
	b.WriteByte('\n')
	b.WriteString(strings.Join(signed, ";"))
	b.WriteByte('\n')
	b.WriteString(hashHex(body))
	return b.String()
}

// SignedHeaders returns the lower-cased header names in lexicographic order.
func SignedHeaders(headers http.Header) []string {
	names := make([]string, 0, len(headers))
	seen := make(map[string]struct{}, len(headers))
	for k := range headers {
		lk := strings.ToLower(k)
		if _, dup := seen[lk]; dup {
			continue
		}
		seen[lk] = struct{}{}
		names = append(names, lk)
	}
	sort.Strings(names)
	return names
}

// CanonicalHeaders renders "name:trimmed-value\n" for every signed header.
func CanonicalHeaders(headers http.Header, signed []string) string {
	lower := make(map[string]string, len(headers))
	for k, v := range headers {
		if len(v) > 0 {
			lower[strings.ToLower(k)] = v[0]
		}
	}
	var b strings.Builder
	for _, name := range signed {
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(strings.TrimSpace(lower[name]))
		b.WriteByte('\n')
	}
	return b.String()
}

// CanonicalURI percent-encodes every path segment and guarantees a trailing slash.
func CanonicalURI(uriPath string) string {
	segments := strings.Split(uriPath, "/")
	for i, seg := range segments {
		segments[i] = Escape(seg)
	}
	p := strings.Join(segments, "/")
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

// Escape percent-encodes s leaving only the RFC 3986 unreserved set
// (A-Z a-z 0-9 - . _ ~) untouched. Non-ASCII runes are encoded byte by byte
// from their UTF-8 form with upper-case hex digits.
func Escape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0f])
	}
	return b.String()
}

const upperHex = "0123456789ABCDEF"

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	}
	return false
}

func hashHex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
