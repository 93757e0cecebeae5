package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"
)

// KeySetFetcher retrieves an issuer's signing keys, indexed by key ID.
type KeySetFetcher interface {
	FetchKeySet(ctx context.Context, jwksURL string) (map[string]*rsa.PublicKey, error)
}

// HTTPKeySetFetcher fetches JSON Web Key Set documents over HTTP.
type HTTPKeySetFetcher struct {
	Client *http.Client
}

// NewHTTPKeySetFetcher creates a fetcher whose requests time out after timeout.
func NewHTTPKeySetFetcher(timeout time.Duration) *HTTPKeySetFetcher {
	return &HTTPKeySetFetcher{Client: &http.Client{Timeout: timeout}}
}

type jsonWebKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jsonWebKeySet struct {
	Keys []jsonWebKey `json:"keys"`
}

// maxKeySetBytes bounds the size of a key set document.
const maxKeySetBytes = 1 << 20

func (f *HTTPKeySetFetcher) FetchKeySet(ctx context.Context, jwksURL string) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jwksURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build key set request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch key set %s: %w", jwksURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch key set %s: unexpected status %d", jwksURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxKeySetBytes))
	if err != nil {
		return nil, fmt.Errorf("read key set %s: %w", jwksURL, err)
	}
	return ParseKeySet(body)
}

// ParseKeySet decodes a JSON Web Key Set document, keeping RSA signing keys.
func ParseKeySet(data []byte) (map[string]*rsa.PublicKey, error) {
	var set jsonWebKeySet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("decode key set: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" || k.Kid == "" || (k.Use != "" && k.Use != "sig") {
			continue
		}
		pub, err := rsaPublicKey(k.N, k.E)
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", k.Kid, err)
		}
		keys[k.Kid] = pub
	}
	return keys, nil
}

func rsaPublicKey(n, e string) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}
	exp := new(big.Int).SetBytes(eBytes)
	if len(nBytes) == 0 || !exp.IsInt64() || exp.Int64() < 3 || exp.Int64() > 1<<31-1 {
		return nil, fmt.Errorf("invalid RSA parameters")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: int(exp.Int64())}, nil
}

// EncodeKeySet renders RSA public keys as a JSON Web Key Set document.
func EncodeKeySet(keys map[string]*rsa.PublicKey) ([]byte, error) {
	set := jsonWebKeySet{Keys: make([]jsonWebKey, 0, len(keys))}
	for kid, pub := range keys {
		set.Keys = append(set.Keys, jsonWebKey{
			Kty: "RSA",
			Kid: kid,
			Use: "sig",
			Alg: "RS256",
			N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		})
	}
	return json.Marshal(set)
}
