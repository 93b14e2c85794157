package signer_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/4laawi/recruit-assistant/internal/adapter/signer"
)

const (
	testAK   = "AKTESTACCESSKEY0001"
	testSK   = "SKTESTSECRETKEY0001"
	testHost = "ocr.ap-southeast-1.myhuaweicloud.com"
)

func fixedClock() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

func TestSign_GoldenVector(t *testing.T) {
	s := &signer.Signer{AccessKey: testAK, SecretKey: testSK, Now: fixedClock}
	in := http.Header{"Content-Type": {"application/json"}}

	out := s.Sign(http.MethodPost, testHost, "/v2/proj123/ocr/general-text", in, []byte(`{"image":"aGVsbG8="}`))

	assert.Equal(t, testHost, out.Get("Host"))
	assert.Equal(t, "20240102T030405Z", out.Get("X-Sdk-Date"))
	assert.Equal(t,
		"SDK-HMAC-SHA256 Access=AKTESTACCESSKEY0001, SignedHeaders=content-type;host;x-sdk-date, "+
			"Signature=984b7d67c6400c7ee92f9f899191ad2e2545e7f85eaf3ba64049460dec0eb7db",
		out.Get("Authorization"))

	// the caller's header set is not mutated
	assert.Empty(t, in.Get("Authorization"))
	assert.Len(t, in, 1)
}

func TestSign_GoldenVectorEmptyBody(t *testing.T) {
	s := &signer.Signer{AccessKey: testAK, SecretKey: testSK, Now: fixedClock}
	out := s.Sign(http.MethodGet, testHost, "/v1/a b", nil, nil)
	assert.Equal(t,
		"SDK-HMAC-SHA256 Access=AKTESTACCESSKEY0001, SignedHeaders=host;x-sdk-date, "+
			"Signature=1db98914cf7e6b9fee2a97a4d6117d5daba9ccf11e928bb7baf2ad798263a2ad",
		out.Get("Authorization"))
}

func TestSign_Deterministic(t *testing.T) {
	s := &signer.Signer{AccessKey: testAK, SecretKey: testSK, Now: fixedClock}
	h := http.Header{"Content-Type": {"application/json"}, "X-Project-Id": {"  p1 "}}
	a := s.Sign(http.MethodPost, testHost, "/v2/p/ocr/general-text", h, []byte("body"))
	b := s.Sign(http.MethodPost, testHost, "/v2/p/ocr/general-text", h, []byte("body"))
	assert.Equal(t, a.Get("Authorization"), b.Get("Authorization"))

	c := s.Sign(http.MethodPost, testHost, "/v2/p/ocr/general-text", h, []byte("other"))
	assert.NotEqual(t, a.Get("Authorization"), c.Get("Authorization"))
}

func TestSign_PackageFunctionUsesWallClock(t *testing.T) {
	out := signer.Sign(http.MethodPost, testHost, "/x", http.Header{}, nil, testAK, testSK)
	ts, err := time.Parse(signer.DateFormat, out.Get("X-Sdk-Date"))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), ts, time.Minute)
	assert.Contains(t, out.Get("Authorization"), "Access="+testAK)
}

func TestCanonicalURI(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/v2/proj/ocr/general-text", "/v2/proj/ocr/general-text/"},
		{"/v2/proj/ocr/general-text/", "/v2/proj/ocr/general-text/"},
		{"/", "/"},
		{"/a b/c+d", "/a%20b/c%2Bd/"},
		{"/keep-._~AZaz09", "/keep-._~AZaz09/"},
		{"/reserved!*'();:@&=$,?#[]", "/reserved%21%2A%27%28%29%3B%3A%40%26%3D%24%2C%3F%23%5B%5D/"},
		{"/é", "/%C3%A9/"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := signer.CanonicalURI(tt.in)
			assert.Equal(t, tt.want, got)
			assert.True(t, len(got) > 0 && got[len(got)-1] == '/')
		})
	}
}

func TestCanonicalHeaders(t *testing.T) {
	h := http.Header{"Content-Type": {" application/json "}, "Host": {"h"}}
	signed := signer.SignedHeaders(h)
	assert.Equal(t, []string{"content-type", "host"}, signed)
	assert.Equal(t, "content-type:application/json\nhost:h\n", signer.CanonicalHeaders(h, signed))
}

func TestCanonicalRequest_Layout(t *testing.T) {
	h := http.Header{"Host": {"h"}}
	got := signer.CanonicalRequest("PUT", "/p", h, []string{"host"}, nil)
	assert.Equal(t, "PUT\n/p/\n\nhost:h\n\nhost\ne3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", got)
}
