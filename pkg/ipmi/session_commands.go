package ipmi

import (
	"fmt"

	"github.com/ironbmc/bmc/pkg/layerexts"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// AuthType identifies the IPMI 1.5 per-message authentication algorithm,
// or the "no authentication" marker used to fetch a challenge.
type AuthType uint8

const (
	AuthTypeNone             AuthType = 0x00
	AuthTypeMD2              AuthType = 0x01
	AuthTypeMD5              AuthType = 0x02
	AuthTypeStraightPassword AuthType = 0x04
	AuthTypeOEM              AuthType = 0x05
)

func (a AuthType) String() string {
	switch a {
	case AuthTypeNone:
		return "none"
	case AuthTypeMD2:
		return "MD2"
	case AuthTypeMD5:
		return "MD5"
	case AuthTypeStraightPassword:
		return "straight password"
	case AuthTypeOEM:
		return "OEM"
	default:
		return fmt.Sprintf("AuthType(0x%02x)", uint8(a))
	}
}

// GetSessionChallengeRequest requests a session challenge for a given
// username under a proposed authentication type, the first step of IPMI
// 1.5 session establishment.
type GetSessionChallengeRequest struct {
	layers.BaseLayer

	AuthType AuthType
	Username [16]byte
}

func (g *GetSessionChallengeRequest) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(17)
	if err != nil {
		return err
	}
	bytes[0] = uint8(g.AuthType)
	copy(bytes[1:], g.Username[:])
	return nil
}

// GetSessionChallengeResponse carries the temporary session ID and 16-byte
// challenge string used to derive the Activate Session authentication
// code.
type GetSessionChallengeResponse struct {
	layers.BaseLayer

	TemporarySessionID uint32
	Challenge          [16]byte
}

func (g *GetSessionChallengeResponse) LayerType() gopacket.LayerType {
	return LayerTypeGetSessionChallengeRsp
}

func (g *GetSessionChallengeResponse) CanDecode() gopacket.LayerClass { return g.LayerType() }

func (g *GetSessionChallengeResponse) NextLayerType() gopacket.LayerType {
	return gopacket.LayerTypePayload
}

func (g *GetSessionChallengeResponse) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < 20 {
		df.SetTruncated()
		return NewParseError("GetSessionChallengeResponse", fmt.Errorf("need 20 bytes, got %d", len(data)))
	}
	g.TemporarySessionID = uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
	copy(g.Challenge[:], data[4:20])
	g.BaseLayer = layers.BaseLayer{Contents: data[:20], Payload: data[20:]}
	return nil
}

func (g *GetSessionChallengeResponse) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(20)
	if err != nil {
		return err
	}
	bytes[0] = uint8(g.TemporarySessionID)
	bytes[1] = uint8(g.TemporarySessionID >> 8)
	bytes[2] = uint8(g.TemporarySessionID >> 16)
	bytes[3] = uint8(g.TemporarySessionID >> 24)
	copy(bytes[4:], g.Challenge[:])
	return nil
}

// ActivateSessionRequest moves a challenged session into the active state
// under a chosen per-message AuthType, and is itself authenticated with
// the temporary session's challenge (spec 4.5).
type ActivateSessionRequest struct {
	layers.BaseLayer

	AuthType                 AuthType
	MaxPrivilegeLevel         PrivilegeLevel
	Challenge                 [16]byte
	InitialOutboundSequenceNumber uint32
}

func (a *ActivateSessionRequest) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(22)
	if err != nil {
		return err
	}
	bytes[0] = uint8(a.AuthType)
	copy(bytes[1:17], a.Challenge[:])
	bytes[17] = uint8(a.InitialOutboundSequenceNumber)
	bytes[18] = uint8(a.InitialOutboundSequenceNumber >> 8)
	bytes[19] = uint8(a.InitialOutboundSequenceNumber >> 16)
	bytes[20] = uint8(a.InitialOutboundSequenceNumber >> 24)
	bytes[21] = uint8(a.MaxPrivilegeLevel)
	return nil
}

// ActivateSessionResponse confirms the negotiated AuthType, the permanent
// session ID, and the initial inbound sequence number the BMC will expect
// on subsequent requests.
type ActivateSessionResponse struct {
	layers.BaseLayer

	AuthType                     AuthType
	SessionID                    uint32
	InitialInboundSequenceNumber uint32
	MaxPrivilegeLevel            PrivilegeLevel
}

func (a *ActivateSessionResponse) LayerType() gopacket.LayerType { return LayerTypeActivateSessionRsp }

func (a *ActivateSessionResponse) CanDecode() gopacket.LayerClass { return a.LayerType() }

func (a *ActivateSessionResponse) NextLayerType() gopacket.LayerType { return gopacket.LayerTypePayload }

func (a *ActivateSessionResponse) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < 10 {
		df.SetTruncated()
		return NewParseError("ActivateSessionResponse", fmt.Errorf("need 10 bytes, got %d", len(data)))
	}
	a.AuthType = AuthType(data[0])
	a.SessionID = uint32(data[1]) | uint32(data[2])<<8 | uint32(data[3])<<16 | uint32(data[4])<<24
	a.InitialInboundSequenceNumber = uint32(data[5]) | uint32(data[6])<<8 | uint32(data[7])<<16 | uint32(data[8])<<24
	a.MaxPrivilegeLevel = PrivilegeLevel(data[9])
	a.BaseLayer = layers.BaseLayer{Contents: data[:10], Payload: data[10:]}
	return nil
}

func (a *ActivateSessionResponse) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(10)
	if err != nil {
		return err
	}
	bytes[0] = uint8(a.AuthType)
	bytes[1] = uint8(a.SessionID)
	bytes[2] = uint8(a.SessionID >> 8)
	bytes[3] = uint8(a.SessionID >> 16)
	bytes[4] = uint8(a.SessionID >> 24)
	bytes[5] = uint8(a.InitialInboundSequenceNumber)
	bytes[6] = uint8(a.InitialInboundSequenceNumber >> 8)
	bytes[7] = uint8(a.InitialInboundSequenceNumber >> 16)
	bytes[8] = uint8(a.InitialInboundSequenceNumber >> 24)
	bytes[9] = uint8(a.MaxPrivilegeLevel)
	return nil
}

// SetSessionPrivilegeLevelRequest requests a privilege change on the
// active session; its single data byte is the requested level, or 0 to
// query the current level without changing it.
type SetSessionPrivilegeLevelRequest struct {
	layers.BaseLayer

	RequestedPrivilegeLevel PrivilegeLevel
}

func (s *SetSessionPrivilegeLevelRequest) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(1)
	if err != nil {
		return err
	}
	bytes[0] = uint8(s.RequestedPrivilegeLevel)
	return nil
}

// SetSessionPrivilegeLevelResponse echoes the privilege level now in
// effect after the request is processed.
type SetSessionPrivilegeLevelResponse struct {
	layers.BaseLayer

	NewPrivilegeLevel PrivilegeLevel
}

func (s *SetSessionPrivilegeLevelResponse) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < 1 {
		df.SetTruncated()
		return NewParseError("SetSessionPrivilegeLevelResponse", fmt.Errorf("need 1 byte, got %d", len(data)))
	}
	s.NewPrivilegeLevel = PrivilegeLevel(data[0])
	s.BaseLayer = layers.BaseLayer{Contents: data[:1], Payload: data[1:]}
	return nil
}

// CloseSessionRequest tears down a session by ID; SessionHandle is only
// meaningful when closing a session other than the one the request
// itself is carried on, which requires the multi-session-handle v2.0
// extension.
type CloseSessionRequest struct {
	layers.BaseLayer

	SessionID     uint32
	SessionHandle uint8
}

func (c *CloseSessionRequest) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	length := 4
	if c.SessionHandle != 0 {
		length = 5
	}
	bytes, err := b.PrependBytes(length)
	if err != nil {
		return err
	}
	bytes[0] = uint8(c.SessionID)
	bytes[1] = uint8(c.SessionID >> 8)
	bytes[2] = uint8(c.SessionID >> 16)
	bytes[3] = uint8(c.SessionID >> 24)
	if length == 5 {
		bytes[4] = c.SessionHandle
	}
	return nil
}

// GetSessionInfoResponse reports how many sessions a channel supports and
// is currently using, plus identifying details of one selected session.
type GetSessionInfoResponse struct {
	layers.BaseLayer

	SessionHandle     uint8
	ActiveSessionCount uint8
	MaxSessionCount    uint8
	HasSessionDetail   bool
	SessionSlotID      uint8
	UserID             uint8
	PrivilegeLevel     PrivilegeLevel
	Channel            ChannelNumber
}

func (g *GetSessionInfoResponse) LayerType() gopacket.LayerType { return LayerTypeGetSessionInfoRsp }

func (g *GetSessionInfoResponse) CanDecode() gopacket.LayerClass { return g.LayerType() }

func (g *GetSessionInfoResponse) NextLayerType() gopacket.LayerType { return gopacket.LayerTypePayload }

func (g *GetSessionInfoResponse) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < 3 {
		df.SetTruncated()
		return NewParseError("GetSessionInfoResponse", fmt.Errorf("need at least 3 bytes, got %d", len(data)))
	}
	g.SessionHandle = data[0]
	g.ActiveSessionCount = data[1]
	g.MaxSessionCount = data[2]
	consumed := 3
	if len(data) >= 8 {
		g.HasSessionDetail = true
		g.SessionSlotID = data[3]
		g.UserID = layerexts.GetBits(data[4], 0, 6)
		g.PrivilegeLevel = PrivilegeLevel(layerexts.GetBits(data[5], 0, 4))
		g.Channel = ChannelNumber(layerexts.GetBits(data[7], 0, 4))
		consumed = 8
	}
	g.BaseLayer = layers.BaseLayer{Contents: data[:consumed], Payload: data[consumed:]}
	return nil
}

func (g *GetSessionInfoResponse) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	length := 3
	if g.HasSessionDetail {
		length = 8
	}
	bytes, err := b.PrependBytes(length)
	if err != nil {
		return err
	}
	bytes[0] = g.SessionHandle
	bytes[1] = g.ActiveSessionCount
	bytes[2] = g.MaxSessionCount
	if g.HasSessionDetail {
		bytes[3] = g.SessionSlotID
		layerexts.SetBits(&bytes[4], 0, 6, g.UserID)
		layerexts.SetBits(&bytes[5], 0, 4, uint8(g.PrivilegeLevel))
		layerexts.SetBits(&bytes[7], 0, 4, uint8(g.Channel))
	}
	return nil
}
