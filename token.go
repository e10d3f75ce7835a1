package stash

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// BearerScheme is the authorization scheme expected on inbound tokens
// and used on every re-issued one.
const BearerScheme = "Bearer"

// DefaultAlgorithm signs tokens when no algorithm is configured.
const DefaultAlgorithm = "RS256"

// CodecConfig holds the key material and signing options for a Codec.
// Key material is PEM-encoded RSA; both halves are required.
type CodecConfig struct {
	PrivateKeyPEM []byte
	PublicKeyPEM  []byte
	// Algorithm is the JWS algorithm name (RS256, RS384, RS512).
	// Empty selects DefaultAlgorithm.
	Algorithm string
	// EnforceTTL makes Decode reject tokens whose issued-at plus ttl is
	// in the past. When false the ttl claim is advisory only and
	// echoed back to the client untouched.
	EnforceTTL bool
}

// Codec signs session claims into compact bearer tokens and verifies
// them back. The key pair is immutable after construction, so a single
// Codec is safe for concurrent use across requests.
type Codec struct {
	method     jwt.SigningMethod
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	enforceTTL bool
}

// tokenClaims is the wire shape of Claims inside a JWT payload.
type tokenClaims struct {
	TTL int `json:"ttl"`
	jwt.RegisteredClaims
}

// NewCodec parses the configured key pair and returns a ready Codec.
// Any failure here is a configuration error and should abort startup,
// never be retried per request.
func NewCodec(cfg CodecConfig) (*Codec, error) {
	alg := cfg.Algorithm
	if alg == "" {
		alg = DefaultAlgorithm
	}

	method := jwt.GetSigningMethod(alg)
	if method == nil {
		return nil, fmt.Errorf("new codec: unsupported signing algorithm: %s", alg)
	}
	if _, ok := method.(*jwt.SigningMethodRSA); !ok {
		return nil, fmt.Errorf("new codec: algorithm %s is not an RSA method", alg)
	}

	if len(cfg.PrivateKeyPEM) == 0 {
		return nil, errors.New("new codec: private key is required")
	}
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(cfg.PrivateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("new codec: parse private key: %w", err)
	}

	if len(cfg.PublicKeyPEM) == 0 {
		return nil, errors.New("new codec: public key is required")
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(cfg.PublicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("new codec: parse public key: %w", err)
	}

	return &Codec{
		method:     method,
		privateKey: privateKey,
		publicKey:  publicKey,
		enforceTTL: cfg.EnforceTTL,
	}, nil
}

// Encode signs the claims with the private key and returns the compact
// token string, without the bearer scheme prefix.
func (c *Codec) Encode(claims Claims) (string, error) {
	wire := tokenClaims{
		TTL: claims.TTL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  claims.ID.String(),
			Issuer:   claims.Issuer,
			IssuedAt: jwt.NewNumericDate(claims.IssuedAt.Truncate(time.Second)),
		},
	}

	token, err := jwt.NewWithClaims(c.method, wire).SignedString(c.privateKey)
	if err != nil {
		return "", fmt.Errorf("encode token: %w", err)
	}
	return token, nil
}

// Decode verifies a full Authorization header value and reconstructs
// the claims signed inside it.
//
// A missing or unexpected scheme yields ErrAuthScheme; signature or
// payload failures yield ErrInvalidToken. With EnforceTTL set, a token
// past issued-at + ttl is treated as invalid too.
func (c *Codec) Decode(headerValue string) (Claims, error) {
	scheme, compact, found := strings.Cut(strings.TrimSpace(headerValue), " ")
	if !found || !strings.EqualFold(scheme, BearerScheme) {
		return Claims{}, fmt.Errorf("decode token: scheme %q: %w", scheme, ErrAuthScheme)
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{c.method.Alg()}))

	var wire tokenClaims
	_, err := parser.ParseWithClaims(strings.TrimSpace(compact), &wire, func(t *jwt.Token) (any, error) {
		return c.publicKey, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("decode token: %w: %w", ErrInvalidToken, err)
	}

	id, err := uuid.Parse(wire.Subject)
	if err != nil {
		return Claims{}, fmt.Errorf("decode token: parse session id: %w", ErrInvalidToken)
	}
	if wire.IssuedAt == nil {
		return Claims{}, fmt.Errorf("decode token: missing issued-at: %w", ErrInvalidToken)
	}

	claims := Claims{
		ID:       id,
		Issuer:   wire.Issuer,
		TTL:      wire.TTL,
		IssuedAt: wire.IssuedAt.Time.UTC(),
	}

	if c.enforceTTL {
		expiry := claims.IssuedAt.Add(time.Duration(claims.TTL) * time.Second)
		if !time.Now().Before(expiry) {
			return Claims{}, fmt.Errorf("decode token: expired at %s: %w", expiry.Format(time.RFC3339), ErrInvalidToken)
		}
	}

	return claims, nil
}
