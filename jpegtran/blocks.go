package jpegtran

// trimWidth drops partial MCU columns at the right edge. It reports false
// when the image is narrower than one MCU and was left as is.
func (img *coeffImage) trimWidth() bool {
	mw, _ := img.mcuSize()
	w := img.width / mw * mw
	if w == 0 {
		return false
	}
	if w == img.width {
		return true
	}
	img.width = w
	old := img.snapshot()
	img.layout()
	for i, c := range img.comps {
		c.blocks = cropBlocks(old[i], c.bw, c.bh)
	}
	return true
}

// trimHeight drops partial MCU rows at the bottom edge
func (img *coeffImage) trimHeight() bool {
	_, mh := img.mcuSize()
	h := img.height / mh * mh
	if h == 0 {
		return false
	}
	if h == img.height {
		return true
	}
	img.height = h
	old := img.snapshot()
	img.layout()
	for i, c := range img.comps {
		c.blocks = cropBlocks(old[i], c.bw, c.bh)
	}
	return true
}

type grid struct {
	bw, bh int
	blocks []block
}

func (img *coeffImage) snapshot() []grid {
	out := make([]grid, len(img.comps))
	for i, c := range img.comps {
		out[i] = grid{c.bw, c.bh, c.blocks}
	}
	return out
}

func cropBlocks(g grid, bw, bh int) []block {
	out := make([]block, bw*bh)
	for by := 0; by < bh && by < g.bh; by++ {
		copy(out[by*bw:(by+1)*bw], g.blocks[by*g.bw:by*g.bw+min(bw, g.bw)])
	}
	return out
}

// fullBlocks returns how many block columns and rows of c lie inside whole MCUs
func (img *coeffImage) fullBlocks(c *component) (int, int) {
	mw, mh := img.mcuSize()
	if len(img.comps) == 1 {
		return img.width / mw, img.height / mh
	}
	return img.width / mw * c.h, img.height / mh * c.v
}

// flipH mirrors the image left to right. Without trimming, partial MCU
// columns at the right edge stay in place.
func (img *coeffImage) flipH(trim bool) {
	if trim {
		img.trimWidth()
	}
	for _, c := range img.comps {
		cols, _ := img.fullBlocks(c)
		if trim && cols == 0 {
			cols = c.bw
		}
		for by := 0; by < c.bh; by++ {
			row := c.blocks[by*c.bw : by*c.bw+cols]
			for l, r := 0, len(row)-1; l < r; l, r = l+1, r-1 {
				row[l], row[r] = row[r], row[l]
			}
			for bx := range row {
				negateOddColumns(&row[bx])
			}
		}
	}
}

// flipV mirrors the image top to bottom
func (img *coeffImage) flipV(trim bool) {
	if trim {
		img.trimHeight()
	}
	for _, c := range img.comps {
		_, rows := img.fullBlocks(c)
		if trim && rows == 0 {
			rows = c.bh
		}
		for t, b := 0, rows-1; t < b; t, b = t+1, b-1 {
			top := c.blocks[t*c.bw : (t+1)*c.bw]
			bottom := c.blocks[b*c.bw : (b+1)*c.bw]
			for bx := range top {
				top[bx], bottom[bx] = bottom[bx], top[bx]
			}
		}
		for i := range c.blocks[:rows*c.bw] {
			negateOddRows(&c.blocks[i])
		}
	}
}

// transpose mirrors the image across its main diagonal
func (img *coeffImage) transpose() {
	for _, c := range img.comps {
		out := make([]block, len(c.blocks))
		for by := 0; by < c.bh; by++ {
			for bx := 0; bx < c.bw; bx++ {
				src := c.at(bx, by)
				dst := &out[bx*c.bh+by]
				for v := 0; v < 8; v++ {
					for u := 0; u < 8; u++ {
						dst[v*8+u] = src[u*8+v]
					}
				}
			}
		}
		c.blocks = out
		c.bw, c.bh = c.bh, c.bw
		c.h, c.v = c.v, c.h
	}
	img.width, img.height = img.height, img.width
	img.hmax, img.vmax = img.vmax, img.hmax
	img.mcusX, img.mcusY = img.mcusY, img.mcusX

	seen := map[*quantTable]bool{}
	for _, c := range img.comps {
		t := img.qt[c.tq]
		if t == nil || seen[t] {
			continue
		}
		seen[t] = true
		for v := 0; v < 8; v++ {
			for u := v + 1; u < 8; u++ {
				t.q[v*8+u], t.q[u*8+v] = t.q[u*8+v], t.q[v*8+u]
			}
		}
	}
}

// negateOddColumns negates the odd horizontal frequencies
func negateOddColumns(b *block) {
	for v := 0; v < 8; v++ {
		for u := 1; u < 8; u += 2 {
			b[v*8+u] = -b[v*8+u]
		}
	}
}

// negateOddRows negates the odd vertical frequencies
func negateOddRows(b *block) {
	for v := 1; v < 8; v += 2 {
		for u := 0; u < 8; u++ {
			b[v*8+u] = -b[v*8+u]
		}
	}
}
