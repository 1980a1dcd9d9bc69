package terrain

import "math"

const patchDim = 16

// zigzagOrder is the JPEG-style diagonal traversal order: coefficient i
// in the raw stream belongs at zigzagOrder[i] in the 16x16 matrix (row-
// major index). Built once at init time from the standard zigzag
// generation algorithm (spec §4.6 step 1), not hand-transcribed, so it is
// provably correct for any square block size.
var zigzagOrder [patchDim * patchDim]int

func init() {
	idx := 0
	for sum := 0; sum <= 2*(patchDim-1); sum++ {
		if sum%2 == 0 {
			// even diagonals traverse bottom-to-top (row decreasing)
			row := sum
			if row > patchDim-1 {
				row = patchDim - 1
			}
			col := sum - row
			for row >= 0 && col < patchDim {
				if row < patchDim {
					zigzagOrder[idx] = row*patchDim + col
					idx++
				}
				row--
				col++
			}
		} else {
			col := sum
			if col > patchDim-1 {
				col = patchDim - 1
			}
			row := sum - col
			for col >= 0 && row < patchDim {
				if col < patchDim {
					zigzagOrder[idx] = row*patchDim + col
					idx++
				}
				col--
				row++
			}
		}
	}
}

// dequantizeTable entry (i,j) is 1 + 2*(i+j), per spec §4.6 step 2.
var dequantizeTable [patchDim][patchDim]float64

func init() {
	for i := 0; i < patchDim; i++ {
		for j := 0; j < patchDim; j++ {
			dequantizeTable[i][j] = float64(1 + 2*(i+j))
		}
	}
}

// cosineTable[u][n] = cos((2n+1) * u * pi / 32), the basis used by both
// the column and row passes of the inverse 16-point DCT (spec §4.6
// step 3).
var cosineTable [patchDim][patchDim]float64

func init() {
	for u := 0; u < patchDim; u++ {
		for n := 0; n < patchDim; n++ {
			cosineTable[u][n] = math.Cos(float64(2*n+1) * float64(u) * math.Pi / 32)
		}
	}
}

// idct16 applies the inverse 16-point DCT to one row or column of 16
// coefficients, with the DC term scaled by 1/sqrt(2).
func idct16(coeff [patchDim]float64) [patchDim]float64 {
	var out [patchDim]float64
	const invSqrt2 = 0.70710678118654752440
	for n := 0; n < patchDim; n++ {
		var sum float64
		for u := 0; u < patchDim; u++ {
			c := coeff[u]
			if u == 0 {
				c *= invSqrt2
			}
			sum += c * cosineTable[u][n]
		}
		out[n] = sum * 0.5
	}
	return out
}

// unzigzag reverses the zigzag traversal, placing raw[i] at
// zigzagOrder[i] in row-major order.
func unzigzag(raw [patchDim * patchDim]float64) [patchDim][patchDim]float64 {
	var m [patchDim][patchDim]float64
	for i, pos := range zigzagOrder {
		m[pos/patchDim][pos%patchDim] = raw[i]
	}
	return m
}

// inverseDCT2D dequantizes raw zigzag-ordered coefficients and applies a
// 2D inverse DCT: columns first, then rows, per spec §4.6 step 3.
func inverseDCT2D(raw [patchDim * patchDim]float64) [patchDim][patchDim]float64 {
	m := unzigzag(raw)
	for i := 0; i < patchDim; i++ {
		for j := 0; j < patchDim; j++ {
			m[i][j] *= dequantizeTable[i][j]
		}
	}

	// column pass: IDCT down each column
	var afterCols [patchDim][patchDim]float64
	for j := 0; j < patchDim; j++ {
		var col [patchDim]float64
		for i := 0; i < patchDim; i++ {
			col[i] = m[i][j]
		}
		res := idct16(col)
		for i := 0; i < patchDim; i++ {
			afterCols[i][j] = res[i]
		}
	}

	// row pass: IDCT across each row
	var out [patchDim][patchDim]float64
	for i := 0; i < patchDim; i++ {
		res := idct16(afterCols[i])
		out[i] = res
	}
	return out
}
