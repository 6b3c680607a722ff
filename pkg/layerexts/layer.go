// Package layerexts provides the small bitfield and string-encoding helpers
// that IPMI's packed wire layouts need on top of gopacket's layer model.
package layerexts

import "github.com/google/gopacket"

// SerializableDecodingLayer is the contract every IPMI command body and SDR
// record layer implements: it can both decode itself from wire bytes and
// serialize itself back to them. The command catalogue and SDR parser use
// this as their uniform per-record/per-command interface (spec's "a
// response parser is uniquely determined by the request value").
type SerializableDecodingLayer interface {
	gopacket.DecodingLayer
	gopacket.SerializableLayer
}
