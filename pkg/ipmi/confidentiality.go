package ipmi

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/ironbmc/bmc/pkg/layerexts"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// ConfidentialityAlgorithm identifies the RMCP+ payload encryption
// algorithm negotiated in Open Session Request/Response (spec 4.6).
// This library only implements the two algorithms that the "suite
// 17-equivalent"/"suite 0" cipher suites it supports require.
type ConfidentialityAlgorithm uint8

const (
	ConfidentialityAlgorithmNone      ConfidentialityAlgorithm = 0x00
	ConfidentialityAlgorithmAESCBC128 ConfidentialityAlgorithm = 0x01
)

func (c ConfidentialityAlgorithm) String() string {
	switch c {
	case ConfidentialityAlgorithmNone:
		return "none"
	case ConfidentialityAlgorithmAESCBC128:
		return "AES-CBC-128"
	default:
		return fmt.Sprintf("ConfidentialityAlgorithm(0x%02x)", uint8(c))
	}
}

// AES128CBC implements the RMCP+ "AES-CBC-128" confidentiality payload:
// a random 16-byte IV followed by ciphertext padded the IPMI way (pad
// bytes 1, 2, 3, ... then one byte giving the pad length) (spec 4.6). It implements
// layerexts.SerializableDecodingLayer so it can sit in the same
// DecodingLayer/SerializableLayer pipeline as every other IPMI layer,
// even though "decoding" it here means decrypting.
type AES128CBC struct {
	layers.BaseLayer

	key        [16]byte
	Plaintext  []byte
}

// NewAES128CBC constructs an AES128CBC confidentiality layer bound to
// the session's K2 key material.
func NewAES128CBC(key [16]byte) (*AES128CBC, error) {
	return &AES128CBC{key: key}, nil
}

func (a *AES128CBC) LayerType() gopacket.LayerType { return LayerTypeConfidentialityAESCBC128 }

func (a *AES128CBC) CanDecode() gopacket.LayerClass { return a.LayerType() }

func (a *AES128CBC) NextLayerType() gopacket.LayerType { return LayerTypeMessage }

// DecodeFromBytes decrypts an IV-prefixed, padded ciphertext into
// a.Plaintext.
func (a *AES128CBC) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < aes.BlockSize {
		df.SetTruncated()
		return NewParseError("AES128CBC", fmt.Errorf("need at least %d bytes for IV, got %d", aes.BlockSize, len(data)))
	}
	iv := data[:aes.BlockSize]
	ciphertext := data[aes.BlockSize:]
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return NewParseError("AES128CBC", fmt.Errorf("ciphertext length %d not a multiple of block size", len(ciphertext)))
	}

	block, err := aes.NewCipher(a.key[:])
	if err != nil {
		return NewParseError("AES128CBC", err)
	}
	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	padLength := int(plaintext[len(plaintext)-1])
	if padLength > len(plaintext)-1 || padLength >= aes.BlockSize {
		return NewParseError("AES128CBC", fmt.Errorf("invalid PKCS#7 pad length %d", padLength))
	}
	for i := 0; i < padLength; i++ {
		if int(plaintext[len(plaintext)-2-i]) != padLength-i {
			return NewParseError("AES128CBC", fmt.Errorf("corrupt PKCS#7 padding"))
		}
	}
	a.Plaintext = plaintext[:len(plaintext)-1-padLength]
	a.BaseLayer = layers.BaseLayer{Contents: data, Payload: a.Plaintext}
	return nil
}

// SerializeTo pads and encrypts a.Plaintext, prepending a freshly
// generated IV.
func (a *AES128CBC) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	padLength := aes.BlockSize - 1 - (len(a.Plaintext) % aes.BlockSize)
	padded := make([]byte, len(a.Plaintext)+padLength+1)
	copy(padded, a.Plaintext)
	for i := 0; i < padLength; i++ {
		padded[len(a.Plaintext)+i] = byte(i + 1)
	}
	padded[len(padded)-1] = byte(padLength)

	block, err := aes.NewCipher(a.key[:])
	if err != nil {
		return err
	}

	out, err := b.PrependBytes(aes.BlockSize + len(padded))
	if err != nil {
		return err
	}
	iv := out[:aes.BlockSize]
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return fmt.Errorf("ipmi: generating AES-CBC IV: %w", err)
	}
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[aes.BlockSize:], padded)
	return nil
}

// PadLength returns the amount of padding layerexts.SetBits-style code
// would need to add for a given plaintext length, useful for computing
// confidentiality-trailer-relative offsets without actually encrypting.
func PadLength(plaintextLen int) int {
	return aes.BlockSize - 1 - (plaintextLen % aes.BlockSize) + 1
}

var _ = layerexts.SerializableDecodingLayer(&AES128CBC{})
