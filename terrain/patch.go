package terrain

import (
	"encoding/binary"
	"errors"
	"hash/fnv"
	"math"
)

// endOfPatchesSentinel is the quantized_world_bits value signaling no
// more patches follow in this LayerData body (spec §4.6).
const endOfPatchesSentinel = 97

var (
	ErrEndOfPatches = errors.New("terrain: end of patches sentinel")
	ErrMalformedPatch = errors.New("terrain: malformed patch header or body")
)

// Coord is a patch's position in the region's patch grid.
type Coord struct {
	X, Y int
}

// Header is one patch's decoded header fields, kept alongside the
// dequantized samples because WithinRange (the terrain invariant of spec
// §8 property 5) needs dc_offset/range after decode, and mesh stitching
// needs the coordinate and patch size.
type Header struct {
	Coord       Coord
	DCOffset    float32
	Range       uint16
	WorldBits   uint8
	PatchSize   int
}

// Patch is one fully decoded heightfield patch.
type Patch struct {
	Header Header
	Height [patchDim][patchDim]float64
	HashKey uint32
}

func byteSwap32(v uint32) uint32 {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return binary.BigEndian.Uint32(b[:])
}

func byteSwap16(v uint16) uint16 {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return binary.BigEndian.Uint16(b[:])
}

// DecodePatch reads one patch (header + heightfield) from r. patchSize is
// the interior cell count per side (16 for standard, non-extended
// regions). It returns ErrEndOfPatches when the header's
// quantized_world_bits equals the sentinel — the caller should stop
// reading, not treat it as a failure.
func DecodePatch(r *bitReader, patchSize int) (Patch, error) {
	quantizedWorldBits, err := r.readU8(8)
	if err != nil {
		return Patch{}, err
	}
	if quantizedWorldBits == endOfPatchesSentinel {
		return Patch{}, ErrEndOfPatches
	}

	dcRaw, err := r.readU32(32)
	if err != nil {
		return Patch{}, err
	}
	dcOffset := math.Float32frombits(byteSwap32(dcRaw))

	rangeRaw, err := r.readU16(16)
	if err != nil {
		return Patch{}, err
	}
	rng := byteSwap16(rangeRaw)

	coordBits := 10
	d, err := r.readUint(coordBits)
	if err != nil {
		return Patch{}, err
	}
	half := coordBits / 2
	x := int(d >> uint(half))
	y := int(d & ((1 << uint(half)) - 1))

	worldBits := (quantizedWorldBits & 0x0F) + 2

	raw, err := decodeHeightStream(r, patchSize, worldBits)
	if err != nil {
		return Patch{}, err
	}

	prequant := (quantizedWorldBits >> 4) + 2
	quantize := float64(uint32(1) << prequant)
	mult := float64(rng) / quantize
	addval := mult*float64(uint32(1)<<(prequant-1)) + float64(dcOffset)

	dequantRaw := raw
	samples := inverseDCT2D(dequantRaw)
	for i := 0; i < patchDim; i++ {
		for j := 0; j < patchDim; j++ {
			samples[i][j] = samples[i][j]*mult + addval
		}
	}

	hdr := Header{
		Coord:     Coord{X: x, Y: y},
		DCOffset:  dcOffset,
		Range:     rng,
		WorldBits: worldBits,
		PatchSize: patchSize,
	}
	return Patch{
		Header:  hdr,
		Height:  samples,
		HashKey: hashSamples(samples),
	}, nil
}

// decodeHeightStream implements the raw heightfield cell encoding (spec
// §4.6 "Heightfield raw stream"): a run-length-ish bool-prefixed scheme
// terminated early by an explicit "all zero" marker.
func decodeHeightStream(r *bitReader, patchSize int, worldBits uint8) ([patchDim * patchDim]float64, error) {
	var out [patchDim * patchDim]float64
	total := patchSize * patchSize
	if total > len(out) {
		total = len(out)
	}
	for i := 0; i < total; i++ {
		nonzero, err := r.readBool()
		if err != nil {
			return out, err
		}
		if !nonzero {
			continue
		}
		more, err := r.readBool()
		if err != nil {
			return out, err
		}
		if !more {
			break // remaining cells stay zero
		}
		negative, err := r.readBool()
		if err != nil {
			return out, err
		}
		mag, err := r.readUint(int(worldBits))
		if err != nil {
			return out, err
		}
		v := float64(mag)
		if negative {
			v = -v
		}
		out[i] = v
	}
	return out, nil
}

// hashSamples derives a stable 32-bit patch identity from decoded
// samples, used as the mesh cache key so two textures with identical
// terrain compare equal without a full buffer compare (spec §4.6
// "Patch identity").
func hashSamples(h [patchDim][patchDim]float64) uint32 {
	f := fnv.New32a()
	var buf [8]byte
	for i := 0; i < patchDim; i++ {
		for j := 0; j < patchDim; j++ {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(h[i][j]))
			f.Write(buf[:])
		}
	}
	return f.Sum32()
}

// WithinRange reports whether every decoded sample lies within
// [dc_offset-range, dc_offset+range], the terrain decode invariant from
// spec §8 property 5.
func (p Patch) WithinRange() bool {
	lo := float64(p.Header.DCOffset) - float64(p.Header.Range)
	hi := float64(p.Header.DCOffset) + float64(p.Header.Range)
	for i := 0; i < patchDim; i++ {
		for j := 0; j < patchDim; j++ {
			v := p.Height[i][j]
			if v < lo || v > hi {
				return false
			}
		}
	}
	return true
}

// DecodeLayerBody decodes every patch in a LayerData body until the
// end-of-patches sentinel or the bitstream is exhausted.
func DecodeLayerBody(body []byte, patchSize int) ([]Patch, error) {
	r := newBitReader(body)
	var patches []Patch
	for {
		p, err := DecodePatch(r, patchSize)
		if errors.Is(err, ErrEndOfPatches) {
			return patches, nil
		}
		if errors.Is(err, ErrShortBitstream) {
			return patches, nil
		}
		if err != nil {
			return patches, err
		}
		patches = append(patches, p)
	}
}
