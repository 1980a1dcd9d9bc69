package avatar

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/google/uuid"
)

var ErrMalformedTextureEntry = errors.New("avatar: malformed texture entry")

// maxFaces bounds how many face-override bits a field's bitfield can
// address. Avatars and most prims never exceed this in practice; a
// bitfield running longer than this many bits is almost certainly a
// decode desync and is rejected rather than silently truncated.
const maxFaces = 32

// TextureEntry is the fully decoded nine-field stream: one default value
// plus a sparse map of per-face overrides, per field.
type TextureEntry struct {
	TextureID  FieldUUID
	Color      FieldBytes
	RepeatU    FieldFloat
	RepeatV    FieldFloat
	OffsetU    FieldFloat
	OffsetV    FieldFloat
	Rotation   FieldFloat
	Material   FieldByte
	Media      FieldByte
	Glow       FieldFloat
	MaterialID FieldUUID
}

type FieldUUID struct {
	Default  uuid.UUID
	PerFace  map[int]uuid.UUID
}

type FieldBytes struct {
	Default []byte
	PerFace map[int][]byte
}

type FieldFloat struct {
	Default float64
	PerFace map[int]float64
}

type FieldByte struct {
	Default uint8
	PerFace map[int]uint8
}

// bitstream helpers for the per-field face bitfield: 7 bits per byte,
// high bit = continuation, MSB-first accumulation within the 7-bit
// group (spec §4.7).
type teReader struct {
	buf []byte
	pos int
}

func (r *teReader) take(n int) ([]byte, error) {
	if r.pos+n > len(r.buf) {
		return nil, ErrMalformedTextureEntry
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// readFaceBitfield reads the variable-length face bitfield: each byte
// contributes its low 7 bits (MSB-first) to a growing bit accumulator;
// bit 7 set means another byte follows. Bit n of the accumulated value
// (counting from the least significant bit) marks face n. A zero first
// byte means "no overrides, field complete".
func (r *teReader) readFaceBitfield() ([]int, error) {
	var bits uint64
	nbits := 0
	for {
		b, err := r.take(1)
		if err != nil {
			return nil, err
		}
		v := b[0]
		bits = bits<<7 | uint64(v&0x7F)
		nbits += 7
		if nbits > maxFaces {
			return nil, ErrMalformedTextureEntry
		}
		if v&0x80 == 0 {
			break
		}
	}
	var faces []int
	for i := 0; i < nbits; i++ {
		if bits&(1<<uint(i)) != 0 {
			faces = append(faces, i)
		}
	}
	return faces, nil
}

func (r *teReader) readUUID() (uuid.UUID, error) {
	b, err := r.take(16)
	if err != nil {
		return uuid.Nil, err
	}
	var u uuid.UUID
	copy(u[:], b)
	return u, nil
}

func (r *teReader) readU8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *teReader) readF32() (float32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

func (r *teReader) readI16() (int16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.LittleEndian.Uint16(b)), nil
}

// DecodeTextureEntry parses the nine-field stream. Faces absent from
// every override set inherit the field's default (spec §4.7).
func DecodeTextureEntry(data []byte) (TextureEntry, error) {
	r := &teReader{buf: data}
	var te TextureEntry

	texID, err := r.readUUID()
	if err != nil {
		return te, err
	}
	te.TextureID.Default = texID
	te.TextureID.PerFace, err = decodeUUIDOverrides(r)
	if err != nil {
		return te, err
	}

	colorBytes, err := r.take(4)
	if err != nil {
		return te, err
	}
	te.Color.Default = append([]byte(nil), colorBytes...)
	te.Color.PerFace, err = decodeBytesOverrides(r, 4)
	if err != nil {
		return te, err
	}

	if te.RepeatU.Default, te.RepeatU.PerFace, err = decodeF32Field(r); err != nil {
		return te, err
	}
	if te.RepeatV.Default, te.RepeatV.PerFace, err = decodeF32Field(r); err != nil {
		return te, err
	}
	if te.OffsetU.Default, te.OffsetU.PerFace, err = decodeOffsetField(r); err != nil {
		return te, err
	}
	if te.OffsetV.Default, te.OffsetV.PerFace, err = decodeOffsetField(r); err != nil {
		return te, err
	}
	if te.Rotation.Default, te.Rotation.PerFace, err = decodeRotationField(r); err != nil {
		return te, err
	}

	mat, err := r.readU8()
	if err != nil {
		return te, err
	}
	te.Material.Default = mat
	te.Material.PerFace, err = decodeByteOverrides(r)
	if err != nil {
		return te, err
	}

	media, err := r.readU8()
	if err != nil {
		return te, err
	}
	te.Media.Default = media
	te.Media.PerFace, err = decodeByteOverrides(r)
	if err != nil {
		return te, err
	}

	glowByte, err := r.readU8()
	if err != nil {
		return te, err
	}
	te.Glow.Default = float64(glowByte) * 255.0
	glowOverrides, err := decodeByteOverrides(r)
	if err != nil {
		return te, err
	}
	te.Glow.PerFace = make(map[int]float64, len(glowOverrides))
	for face, b := range glowOverrides {
		te.Glow.PerFace[face] = float64(b) * 255.0
	}

	matID, err := r.readUUID()
	if err != nil {
		return te, err
	}
	te.MaterialID.Default = matID
	te.MaterialID.PerFace, err = decodeUUIDOverrides(r)
	if err != nil {
		return te, err
	}

	return te, nil
}

func decodeUUIDOverrides(r *teReader) (map[int]uuid.UUID, error) {
	faces, err := r.readFaceBitfield()
	if err != nil {
		return nil, err
	}
	out := make(map[int]uuid.UUID, len(faces))
	for _, f := range faces {
		v, err := r.readUUID()
		if err != nil {
			return nil, err
		}
		out[f] = v
	}
	return out, nil
}

func decodeBytesOverrides(r *teReader, width int) (map[int][]byte, error) {
	faces, err := r.readFaceBitfield()
	if err != nil {
		return nil, err
	}
	out := make(map[int][]byte, len(faces))
	for _, f := range faces {
		v, err := r.take(width)
		if err != nil {
			return nil, err
		}
		out[f] = append([]byte(nil), v...)
	}
	return out, nil
}

func decodeByteOverrides(r *teReader) (map[int]uint8, error) {
	faces, err := r.readFaceBitfield()
	if err != nil {
		return nil, err
	}
	out := make(map[int]uint8, len(faces))
	for _, f := range faces {
		v, err := r.readU8()
		if err != nil {
			return nil, err
		}
		out[f] = v
	}
	return out, nil
}

func decodeF32Field(r *teReader) (float64, map[int]float64, error) {
	def, err := r.readF32()
	if err != nil {
		return 0, nil, err
	}
	faces, err := r.readFaceBitfield()
	if err != nil {
		return 0, nil, err
	}
	out := make(map[int]float64, len(faces))
	for _, f := range faces {
		v, err := r.readF32()
		if err != nil {
			return 0, nil, err
		}
		out[f] = float64(v)
	}
	return float64(def), out, nil
}

// decodeOffsetField decodes offset U/V: i16 / 32767 (spec §4.7).
func decodeOffsetField(r *teReader) (float64, map[int]float64, error) {
	def, err := r.readI16()
	if err != nil {
		return 0, nil, err
	}
	faces, err := r.readFaceBitfield()
	if err != nil {
		return 0, nil, err
	}
	out := make(map[int]float64, len(faces))
	for _, f := range faces {
		v, err := r.readI16()
		if err != nil {
			return 0, nil, err
		}
		out[f] = float64(v) / 32767.0
	}
	return float64(def) / 32767.0, out, nil
}

// decodeRotationField decodes rotation: stored as an i16 produced by
// wrapping radians into (-pi, pi] then `(r/2pi)*32768 + 0.5` rounded; the
// decoder inverts that mapping (spec §4.7).
func decodeRotationField(r *teReader) (float64, map[int]float64, error) {
	def, err := r.readI16()
	if err != nil {
		return 0, nil, err
	}
	faces, err := r.readFaceBitfield()
	if err != nil {
		return 0, nil, err
	}
	out := make(map[int]float64, len(faces))
	for _, f := range faces {
		v, err := r.readI16()
		if err != nil {
			return 0, nil, err
		}
		out[f] = rotationFromI16(v)
	}
	return rotationFromI16(def), out, nil
}

func rotationFromI16(v int16) float64 {
	return (float64(v) / 32768.0) * 2 * math.Pi
}
