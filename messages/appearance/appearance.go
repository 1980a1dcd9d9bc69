// Package appearance implements AvatarAppearance, the message that
// carries another avatar's texture-entry stream and visual-param vector —
// the wire input to the avatar package's skeleton/appearance composition.
// This package only unwraps the envelope; texture-entry bitfield decoding
// and skeleton blending live in avatar, which is the only consumer of the
// raw bytes kept here.
package appearance

import (
	"github.com/google/uuid"

	"github.com/benthic-mmo/metaverse-client-sub001/codec"
	"github.com/benthic-mmo/metaverse-client-sub001/messages/wire"
)

const IDAvatarAppearance = 158

type AvatarAppearance struct {
	Sender            uuid.UUID
	IsTrial           bool
	TextureEntry      []byte
	VisualParams      []uint8
	AppearanceVersion uint32
	COFVersion        uint32
}

func (AvatarAppearance) Frequency() codec.Frequency { return codec.Low }
func (AvatarAppearance) MessageID() uint32           { return IDAvatarAppearance }

func (m AvatarAppearance) Encode() []byte {
	w := wire.NewWriter()
	w.UUID(m.Sender)
	w.Bool(m.IsTrial)
	w.Var2(m.TextureEntry)
	w.Var1(m.VisualParams)
	w.U32(m.AppearanceVersion)
	w.U32(m.COFVersion)
	return w.Bytes()
}

func DecodeAvatarAppearance(b []byte) (AvatarAppearance, error) {
	r := wire.NewReader(b)
	var m AvatarAppearance
	var err error
	if m.Sender, err = r.UUID(); err != nil {
		return m, err
	}
	if m.IsTrial, err = r.Bool(); err != nil {
		return m, err
	}
	if m.TextureEntry, err = r.Var2(); err != nil {
		return m, err
	}
	if m.VisualParams, err = r.Var1(); err != nil {
		return m, err
	}
	if m.AppearanceVersion, err = r.U32(); err != nil {
		return m, err
	}
	if m.COFVersion, err = r.U32(); err != nil {
		return m, err
	}
	return m, nil
}
