package layerexts

import "fmt"

// StringFormat is the type code held in bits [7:6] of an IPMI Type/Length
// byte (used for SDR ID strings and a handful of other fields).
type StringFormat uint8

const (
	StringFormatBinary     StringFormat = 0 // unspecified binary / unicode passthrough
	StringFormatBCDPlus    StringFormat = 1
	StringFormatSixBitASCII StringFormat = 2
	StringFormatASCII      StringFormat = 3 // 8-bit ASCII+Latin1
)

// bcdPlusAlphabet maps a 4-bit BCD+ nibble to its character. 0x0-0x9 are
// digits; 0xA is space, 0xB is dash, 0xC is period; 0xD-0xF are reserved.
var bcdPlusAlphabet = [16]byte{
	'0', '1', '2', '3', '4', '5', '6', '7', '8', '9',
	' ', '-', '.', 0, 0, 0,
}

// DecodeBCDPlus decodes n nibbles (2 per byte, low nibble first) of BCD+
// data into a string. An out-of-range nibble (0xD-0xF) is a parse error.
func DecodeBCDPlus(data []byte, n int) (string, error) {
	out := make([]byte, 0, n)
	for i := 0; i < n; i++ {
		b := data[i/2]
		var nibble byte
		if i%2 == 0 {
			nibble = b & 0x0F
		} else {
			nibble = (b >> 4) & 0x0F
		}
		if nibble > 0x0C {
			return "", fmt.Errorf("layerexts: invalid BCD+ nibble 0x%x at position %d", nibble, i)
		}
		out = append(out, bcdPlusAlphabet[nibble])
	}
	return string(out), nil
}

// EncodeBCDPlus encodes s (digits, space, dash, period only) into packed
// BCD+ nibbles, low nibble first.
func EncodeBCDPlus(s string) ([]byte, error) {
	out := make([]byte, (len(s)+1)/2)
	for i, r := range s {
		var nibble byte
		switch {
		case r >= '0' && r <= '9':
			nibble = byte(r - '0')
		case r == ' ':
			nibble = 0xA
		case r == '-':
			nibble = 0xB
		case r == '.':
			nibble = 0xC
		default:
			return nil, fmt.Errorf("layerexts: character %q not representable in BCD+", r)
		}
		if i%2 == 0 {
			out[i/2] |= nibble
		} else {
			out[i/2] |= nibble << 4
		}
	}
	return out, nil
}

// sixBitToChar maps a 6-bit code to its ASCII character, offset from 0x20: code 0
// maps to ' ' (0x20), code 1 to '!' (0x21), and so on up to code 0x3F.
func sixBitToChar(code uint8) byte {
	return byte(code) + 0x20
}

func charToSixBit(c byte) (uint8, error) {
	if c < 0x20 || c > 0x5F {
		return 0, fmt.Errorf("layerexts: character %q out of 6-bit ASCII range", c)
	}
	return c - 0x20, nil
}

// Decode6BitASCII unpacks n characters from 6-bit-packed ASCII data. Four
// characters are packed into three bytes: byte0 holds char0 in its low 6
// bits and the low 2 bits of char1 in its high 2 bits; byte1 holds the
// remaining 4 bits of char1 in its low nibble and the low 4 bits of char2
// in its high nibble; byte2 holds the remaining 2 bits of char2 in its low
// 2 bits and all 6 bits of char3 in its high 6 bits.
func Decode6BitASCII(data []byte, n int) (string, error) {
	out := make([]byte, 0, n)
	for i := 0; i < n; i++ {
		group := i / 4
		pos := i % 4
		base := group * 3
		var code uint8
		switch pos {
		case 0:
			if base >= len(data) {
				return "", fmt.Errorf("layerexts: 6-bit ASCII data truncated at char %d", i)
			}
			code = GetBits(data[base], 0, 6)
		case 1:
			if base+1 >= len(data) {
				return "", fmt.Errorf("layerexts: 6-bit ASCII data truncated at char %d", i)
			}
			lo := GetBits(data[base], 6, 2)
			hi := GetBits(data[base+1], 0, 4)
			code = lo | hi<<2
		case 2:
			if base+2 >= len(data) {
				return "", fmt.Errorf("layerexts: 6-bit ASCII data truncated at char %d", i)
			}
			lo := GetBits(data[base+1], 4, 4)
			hi := GetBits(data[base+2], 0, 2)
			code = lo | hi<<4
		case 3:
			if base+2 >= len(data) {
				return "", fmt.Errorf("layerexts: 6-bit ASCII data truncated at char %d", i)
			}
			code = GetBits(data[base+2], 2, 6)
		}
		out = append(out, sixBitToChar(code))
	}
	return string(out), nil
}

// Encode6BitASCII packs s into 6-bit-packed ASCII bytes using the same
// layout Decode6BitASCII expects.
func Encode6BitASCII(s string) ([]byte, error) {
	n := len(s)
	nbytes := (n*6 + 7) / 8
	out := make([]byte, nbytes)
	for i := 0; i < n; i++ {
		code, err := charToSixBit(s[i])
		if err != nil {
			return nil, err
		}
		group := i / 4
		pos := i % 4
		base := group * 3
		switch pos {
		case 0:
			SetBits(&out[base], 0, 6, code)
		case 1:
			SetBits(&out[base], 6, 2, code&0x3)
			SetBits(&out[base+1], 0, 4, code>>2)
		case 2:
			SetBits(&out[base+1], 4, 4, code&0xF)
			SetBits(&out[base+2], 0, 2, code>>4)
		case 3:
			SetBits(&out[base+2], 2, 6, code)
		}
	}
	return out, nil
}

// DecodeASCII reads n bytes as plain ASCII/Latin1, passed through unchanged
// (this is also used for the "Unicode" format, which this library treats
// as UTF-8 passthrough per spec).
func DecodeASCII(data []byte, n int) (string, error) {
	if len(data) < n {
		return "", fmt.Errorf("layerexts: need %d bytes of ASCII data, have %d", n, len(data))
	}
	return string(data[:n]), nil
}

// EncodeASCII is the identity encoding for plain ASCII/Latin1/UTF-8 data.
func EncodeASCII(s string) []byte {
	return []byte(s)
}

// DecodeTypeLengthString decodes an IPMI Type/Length-tagged string: the
// first byte's top 2 bits select the StringFormat and its low 6 bits give
// the declared length L (characters for BCD+/6-bit ASCII, bytes for
// ASCII/binary). It returns the decoded string and the total number of
// bytes consumed, including the Type/Length byte itself.
func DecodeTypeLengthString(data []byte) (string, int, error) {
	if len(data) < 1 {
		return "", 0, fmt.Errorf("layerexts: empty type/length string")
	}
	format := StringFormat(GetBits(data[0], 6, 2))
	length := int(GetBits(data[0], 0, 6))
	body := data[1:]

	switch format {
	case StringFormatBinary:
		s, err := DecodeASCII(body, length)
		if err != nil {
			return "", 0, err
		}
		return s, 1 + length, nil
	case StringFormatBCDPlus:
		nbytes := (length + 1) / 2
		if len(body) < nbytes {
			return "", 0, fmt.Errorf("layerexts: BCD+ string truncated")
		}
		s, err := DecodeBCDPlus(body, length)
		if err != nil {
			return "", 0, err
		}
		return s, 1 + nbytes, nil
	case StringFormatSixBitASCII:
		// length here is in bytes of packed data; number of characters is
		// the number that fit into that many bytes.
		nchars := (length * 8) / 6
		s, err := Decode6BitASCII(body, nchars)
		if err != nil {
			return "", 0, err
		}
		return s, 1 + length, nil
	case StringFormatASCII:
		s, err := DecodeASCII(body, length)
		if err != nil {
			return "", 0, err
		}
		return s, 1 + length, nil
	default:
		return "", 0, fmt.Errorf("layerexts: impossible string format %d", format)
	}
}

// EncodeTypeLengthString encodes s using the given format, returning the
// Type/Length byte followed by the encoded body.
func EncodeTypeLengthString(format StringFormat, s string) ([]byte, error) {
	switch format {
	case StringFormatBinary, StringFormatASCII:
		body := EncodeASCII(s)
		if len(body) > 0x3F {
			return nil, fmt.Errorf("layerexts: string %q too long for type/length byte", s)
		}
		out := make([]byte, 1+len(body))
		out[0] = byte(format)<<6 | byte(len(body))
		copy(out[1:], body)
		return out, nil
	case StringFormatBCDPlus:
		body, err := EncodeBCDPlus(s)
		if err != nil {
			return nil, err
		}
		if len(s) > 0x3F {
			return nil, fmt.Errorf("layerexts: string %q too long for type/length byte", s)
		}
		out := make([]byte, 1+len(body))
		out[0] = byte(format)<<6 | byte(len(s))
		copy(out[1:], body)
		return out, nil
	case StringFormatSixBitASCII:
		body, err := Encode6BitASCII(s)
		if err != nil {
			return nil, err
		}
		if len(body) > 0x3F {
			return nil, fmt.Errorf("layerexts: string %q too long for type/length byte", s)
		}
		out := make([]byte, 1+len(body))
		out[0] = byte(format)<<6 | byte(len(body))
		copy(out[1:], body)
		return out, nil
	default:
		return nil, fmt.Errorf("layerexts: unsupported string format %d", format)
	}
}
