// Package environment implements LayerData, the transport envelope for
// terrain (and wind/cloud) patches. The envelope itself is thin: a layer
// type byte plus an opaque compressed block. Decoding that block into
// heightfield patches is the terrain package's job, not this one's — this
// package only unwraps the wire framing spec §4.6 describes.
package environment

import (
	"github.com/benthic-mmo/metaverse-client-sub001/codec"
	"github.com/benthic-mmo/metaverse-client-sub001/messages/wire"
)

const IDLayerData = 95

// LayerType identifies which of the four patch planes a LayerData message
// carries: land, wind, cloud, or water.
type LayerType uint8

const (
	LayerLand  LayerType = 'L'
	LayerWind  LayerType = '7'
	LayerCloud LayerType = '8'
	LayerWater LayerType = 'W'
)

type LayerData struct {
	Type LayerType
	Data []byte
}

func (LayerData) Frequency() codec.Frequency { return codec.Low }
func (LayerData) MessageID() uint32           { return IDLayerData }

func (m LayerData) Encode() []byte {
	w := wire.NewWriter()
	w.U8(uint8(m.Type))
	w.Var2(m.Data)
	return w.Bytes()
}

func DecodeLayerData(b []byte) (LayerData, error) {
	r := wire.NewReader(b)
	var m LayerData
	typ, err := r.U8()
	if err != nil {
		return m, err
	}
	m.Type = LayerType(typ)
	if m.Data, err = r.Var2(); err != nil {
		return m, err
	}
	return m, nil
}
