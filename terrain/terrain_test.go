package terrain

import "testing"

func TestBitReaderReadBits(t *testing.T) {
	// 0b10110000 -> first 4 bits are 1,0,1,1
	r := newBitReader([]byte{0xB0})
	bits, err := r.readBits(4)
	if err != nil {
		t.Fatal(err)
	}
	want := []uint8{1, 0, 1, 1}
	for i := range want {
		if bits[i] != want[i] {
			t.Fatalf("bit %d: got %d want %d", i, bits[i], want[i])
		}
	}
}

func TestPackBitsBigEndian(t *testing.T) {
	got := packBitsBigEndian([]uint8{1, 0, 0, 0})
	if got != 8 {
		t.Fatalf("got %d, want 8", got)
	}
}

func TestCoordinateUnpacking(t *testing.T) {
	// 10-bit coordinate field: x=8 (5 bits: 01000), y=8 (5 bits: 01000)
	// packed as 0100001000 -> the first 10 bits of 0x42, 0x00 (10 bits across 2 bytes)
	r := newBitReader([]byte{0x42, 0x00})
	d, err := r.readUint(10)
	if err != nil {
		t.Fatal(err)
	}
	half := 5
	x := int(d >> uint(half))
	y := int(d & ((1 << uint(half)) - 1))
	if x != 8 || y != 8 {
		t.Fatalf("got x=%d y=%d, want x=8 y=8", x, y)
	}
}

func TestHashSamplesStable(t *testing.T) {
	var h [patchDim][patchDim]float64
	h[0][0] = 1.5
	a := hashSamples(h)
	b := hashSamples(h)
	if a != b {
		t.Fatalf("hash not stable: %d != %d", a, b)
	}
	h[0][1] = 2.5
	c := hashSamples(h)
	if c == a {
		t.Fatalf("hash did not change with different samples")
	}
}

func TestMeshCacheRequiresNeighbors(t *testing.T) {
	c := NewCache()
	mk := func(x, y int) Patch {
		return Patch{Header: Header{Coord: Coord{X: x, Y: y}, PatchSize: 2}}
	}

	// arrival order: (1,1), (0,0), (1,0), (0,1) -- expect exactly one
	// mesh emission, after (0,1) arrives (spec S4).
	var emitted []MeshUpdate
	emitted = append(emitted, c.Add(mk(1, 1))...)
	emitted = append(emitted, c.Add(mk(0, 0))...)
	emitted = append(emitted, c.Add(mk(1, 0))...)
	emitted = append(emitted, c.Add(mk(0, 1))...)

	if len(emitted) != 1 {
		t.Fatalf("expected exactly 1 mesh emission, got %d", len(emitted))
	}
	if emitted[0].Coord != (Coord{X: 0, Y: 0}) {
		t.Fatalf("expected mesh for (0,0), got %+v", emitted[0].Coord)
	}
}

func TestIDCTDCOnlyConstantField(t *testing.T) {
	var raw [patchDim * patchDim]float64
	raw[0] = 1 // pure DC coefficient after zigzag position 0
	out := inverseDCT2D(raw)
	// a pure DC term should produce a constant field
	first := out[0][0]
	for i := 0; i < patchDim; i++ {
		for j := 0; j < patchDim; j++ {
			diff := out[i][j] - first
			if diff < -1e-6 || diff > 1e-6 {
				t.Fatalf("expected constant field from DC-only input, got variance at (%d,%d): %f vs %f", i, j, out[i][j], first)
			}
		}
	}
}
