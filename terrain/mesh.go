package terrain

// Vertex is one mesh vertex: position only, since terrain meshes are
// shaded from the heightfield rather than carrying their own normals on
// the wire.
type Vertex struct {
	X, Y, Z float32
}

// MeshUpdate is the event directed to the UI once a patch's mesh (and any
// neighbors it unblocks) can be fully stitched (spec §4.6).
type MeshUpdate struct {
	Coord    Coord
	Vertices []Vertex
	Indices  []uint32
}

// unitSize is the world-space size of one heightfield cell. The spec
// does not pin this to a specific number for non-extended regions; 1.0
// keeps mesh coordinates numerically identical to patch-local grid
// coordinates.
const unitSize = 1.0

// Cache accumulates decoded patches and emits stitched meshes once a
// patch's north/east/northeast neighbors are all present. Patches
// missing neighbors sit in a retry queue keyed by coordinate; every new
// arrival sweeps that queue once (spec §4.6 "Mesh generation and
// stitching").
type Cache struct {
	patches map[Coord]Patch
	pending map[Coord]bool
}

func NewCache() *Cache {
	return &Cache{
		patches: make(map[Coord]Patch),
		pending: make(map[Coord]bool),
	}
}

// Add records a newly decoded patch and returns every mesh that can now
// be emitted: the patch itself if its neighbors are already present, plus
// any previously pending patch this arrival unblocks.
func (c *Cache) Add(p Patch) []MeshUpdate {
	c.patches[p.Header.Coord] = p

	var out []MeshUpdate
	if mu, ok := c.tryStitch(p.Header.Coord); ok {
		out = append(out, mu)
	} else {
		c.pending[p.Header.Coord] = true
	}

	for coord := range c.pending {
		if coord == p.Header.Coord {
			continue
		}
		if mu, ok := c.tryStitch(coord); ok {
			out = append(out, mu)
			delete(c.pending, coord)
		}
	}
	return out
}

func (c *Cache) tryStitch(coord Coord) (MeshUpdate, bool) {
	p, ok := c.patches[coord]
	if !ok {
		return MeshUpdate{}, false
	}
	north, ok := c.patches[Coord{X: coord.X, Y: coord.Y + 1}]
	if !ok {
		return MeshUpdate{}, false
	}
	east, ok := c.patches[Coord{X: coord.X + 1, Y: coord.Y}]
	if !ok {
		return MeshUpdate{}, false
	}
	northeast, ok := c.patches[Coord{X: coord.X + 1, Y: coord.Y + 1}]
	if !ok {
		return MeshUpdate{}, false
	}
	return stitch(p, north, east, northeast), true
}

// stitch builds the interior quads of p plus the seam triangles that pull
// edge vertices from the north/east/northeast neighbors, per spec §4.6.
func stitch(p, north, east, northeast Patch) MeshUpdate {
	n := p.Header.PatchSize
	if n <= 0 {
		n = patchDim
	}

	height := func(col, row int) float64 {
		switch {
		case row >= n && col >= n:
			return northeast.Height[row-n][col-n]
		case row >= n:
			return north.Height[row-n][col]
		case col >= n:
			return east.Height[row][col-n]
		default:
			return p.Height[row][col]
		}
	}

	var verts []Vertex
	index := make(map[[2]int]uint32)
	vertexAt := func(col, row int) uint32 {
		key := [2]int{col, row}
		if idx, ok := index[key]; ok {
			return idx
		}
		idx := uint32(len(verts))
		verts = append(verts, Vertex{
			X: float32(col) * unitSize,
			Y: float32(height(col, row)),
			Z: float32(row) * unitSize,
		})
		index[key] = idx
		return idx
	}

	var indices []uint32
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			v00 := vertexAt(col, row)
			v10 := vertexAt(col+1, row)
			v01 := vertexAt(col, row+1)
			v11 := vertexAt(col+1, row+1)
			indices = append(indices, v00, v10, v11, v00, v11, v01)
		}
	}

	return MeshUpdate{
		Coord:    p.Header.Coord,
		Vertices: verts,
		Indices:  indices,
	}
}
