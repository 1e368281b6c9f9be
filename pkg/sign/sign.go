// Package sign implements the per-exchange request signing protocols.
// Signers are pure: given the same method, URL, payload, credentials and
// nonce they produce byte-identical output, which keeps them testable
// against fixed vectors. The nonce is opaque; sequencing is the caller's
// concern.
package sign

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"maps"
	"net/url"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/zawasp/ExchangeSharp/pkg/core"
)

// Material describes the side effects of signing a pending request:
// the headers to add and the final body bytes to send.
type Material struct {
	Headers map[string]string
	Body    []byte
}

// Apply copies the material onto the request, replacing the unsigned
// payload with the final body bytes.
func (m *Material) Apply(req *core.Request) {
	for k, v := range m.Headers {
		req.SetHeader(k, v)
	}
	req.Body = m.Body
	req.Payload = nil
}

// Signer produces the authentication material a private call needs.
type Signer interface {
	Sign(method, requestURL string, payload core.Params, creds core.Credentials, nonce string) (*Material, error)
}

// canonicalJSON serializes a payload with sorted keys so repeated signing
// of the same payload yields identical bytes.
func canonicalJSON(payload core.Params) ([]byte, error) {
	raw, err := sonic.ConfigStd.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("serialize payload: %w", err)
	}
	return raw, nil
}

// KeyHashSigner implements the key-in-payload scheme: the public key and
// nonce are appended to the JSON payload, and a keyed SHA-512 hash of the
// serialized JSON travels in a header as lower-case hex.
type KeyHashSigner struct {
	// Header is the header carrying the digest (e.g., "signature").
	Header string
	// KeyField is the payload field holding the public key (e.g., "key").
	KeyField string
	// NonceField is the payload field holding the nonce (e.g., "nonce").
	NonceField string
}

// Sign implements Signer.
func (s KeyHashSigner) Sign(_, _ string, payload core.Params, creds core.Credentials, nonce string) (*Material, error) {
	if creds.SecretKey == "" {
		return nil, core.ErrNoCredentials
	}

	body := make(core.Params, len(payload)+2)
	maps.Copy(body, payload)
	body[s.KeyField] = creds.APIKey
	body[s.NonceField] = nonce

	raw, err := canonicalJSON(body)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha512.New, []byte(creds.SecretKey))
	mac.Write(raw)

	return &Material{
		Headers: map[string]string{
			s.Header:       hex.EncodeToString(mac.Sum(nil)),
			"Content-Type": "application/json",
		},
		Body: raw,
	}, nil
}

// AuthHeaderSigner implements the nonce+HMAC Authorization scheme: the nonce
// is stripped from the payload, an MD5 content digest of the body (the
// exchange mandates MD5 here) is base64-encoded, and the signing base string
// {apiKey}{METHOD}{percent-encoded lower-cased URL}{nonce}{digest} is
// HMAC-SHA256 signed with the base64-decoded secret. The result travels as
// "{Scheme} {apiKey}:{signature}:{nonce}" in the Authorization header.
type AuthHeaderSigner struct {
	// Scheme is the authorization scheme token (e.g., "amx").
	Scheme string
}

// Sign implements Signer. An empty payload produces a zero-length body and
// no content digest; the base string then carries an empty digest segment.
func (s AuthHeaderSigner) Sign(method, requestURL string, payload core.Params, creds core.Credentials, nonce string) (*Material, error) {
	if creds.SecretKey == "" {
		return nil, core.ErrNoCredentials
	}

	body := make(core.Params, len(payload))
	for k, v := range payload {
		if strings.EqualFold(k, "nonce") {
			continue
		}
		body[k] = v
	}

	var raw []byte
	var contentDigest string
	if len(body) > 0 {
		var err error
		raw, err = canonicalJSON(body)
		if err != nil {
			return nil, err
		}
		sum := md5.Sum(raw)
		contentDigest = base64.StdEncoding.EncodeToString(sum[:])
	}

	secret, err := base64.StdEncoding.DecodeString(creds.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("decode secret key: %w", err)
	}

	base := creds.APIKey +
		strings.ToUpper(method) +
		strings.ToLower(url.QueryEscape(requestURL)) +
		nonce +
		contentDigest

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(base))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	headers := map[string]string{
		"Authorization": fmt.Sprintf("%s %s:%s:%s", s.Scheme, creds.APIKey, signature, nonce),
	}
	if len(raw) > 0 {
		headers["Content-Type"] = "application/json"
	}

	return &Material{Headers: headers, Body: raw}, nil
}
