package bmc

import (
	"fmt"

	"github.com/ironbmc/bmc/pkg/ipmi"
)

// negotiatedCipherSuite bundles the two layers a v2.0 session needs once
// Open Session Request/Response has settled on an algorithm pair: one to
// seal payloads, one to sign them. This library only ever negotiates
// AES-CBC-128 over HMAC-SHA1-96, but keeping the pair together (rather
// than building each layer separately at the NewSession call site) is
// what lets that call site stay oblivious to how either one is keyed.
type negotiatedCipherSuite struct {
	confidentiality *ipmi.AES128CBC
	integrity       *ipmi.HMACSHA196
}

// deriveCipherSuite builds the confidentiality and integrity layers for
// confAlg/integAlg, keying each from km (ordinarily the session's
// derived SIK via sikKeyMaterialGenerator). It fails if either algorithm
// isn't one this library implements.
func deriveCipherSuite(confAlg ipmi.ConfidentialityAlgorithm, integAlg ipmi.IntegrityAlgorithm, km AdditionalKeyMaterialGenerator) (*negotiatedCipherSuite, error) {
	confidentiality, err := newConfidentialityLayer(confAlg, km)
	if err != nil {
		return nil, err
	}
	return &negotiatedCipherSuite{
		confidentiality: confidentiality,
		integrity:       newIntegrityLayer(integAlg, km),
	}, nil
}

// newConfidentialityLayer instantiates the payload cipher for confAlg,
// keyed from K2 (spec 13.32's per-purpose key derivation numbers each
// use of the SIK: K1 for integrity, K2 for confidentiality).
func newConfidentialityLayer(confAlg ipmi.ConfidentialityAlgorithm, km AdditionalKeyMaterialGenerator) (*ipmi.AES128CBC, error) {
	switch confAlg {
	case ipmi.ConfidentialityAlgorithmAESCBC128:
		var key [16]byte
		copy(key[:], km.K(2))
		return ipmi.NewAES128CBC(key)
	default:
		return nil, fmt.Errorf("bmc: unsupported confidentiality algorithm: %v", confAlg)
	}
}

// newIntegrityLayer instantiates the trailer signer for integAlg, keyed
// from K1. Unlike newConfidentialityLayer this can't fail: the only
// integrity algorithm this library negotiates during Open Session
// Request is HMACSHA1_96, so a mismatch here would already have
// surfaced as an earlier handshake error.
func newIntegrityLayer(integAlg ipmi.IntegrityAlgorithm, km AdditionalKeyMaterialGenerator) *ipmi.HMACSHA196 {
	var k1 [20]byte
	copy(k1[:], km.K(1))
	return ipmi.NewHMACSHA196(k1)
}
