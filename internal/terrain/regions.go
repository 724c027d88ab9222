package terrain

import "github.com/stonehollow/bwsim/internal/fp"

// BuildRegions partitions the map's walkable tiles into connected
// components using a deterministic flood fill in row-major tile order
// (ties never arise: the scan order alone decides which unvisited tile
// seeds the next region, so two runs over the same tile data always
// produce identically-numbered regions). Non-walkable tiles are left
// unassigned (RegionID == -1).
func (m *Map) BuildRegions() {
	n := len(m.tiles)
	visited := make([]bool, n)
	m.regions = m.regions[:0]

	var queue []fp.XY
	for y := int32(0); y < m.Height; y++ {
		for x := int32(0); x < m.Width; x++ {
			p := fp.XY{X: x, Y: y}
			idx := m.index(p)
			if visited[idx] || !m.tiles[idx].Walkable() {
				continue
			}
			regionID := int32(len(m.regions))
			region := Region{ID: regionID, Walkable: true}

			queue = queue[:0]
			queue = append(queue, p)
			visited[idx] = true
			var sumX, sumY int64

			for len(queue) > 0 {
				cur := queue[0]
				queue = queue[1:]
				curIdx := m.index(cur)
				m.tiles[curIdx].RegionID = regionID
				region.TileCount++
				region.Area += walkableMiniCount(&m.tiles[curIdx])
				sumX += int64(cur.X)
				sumY += int64(cur.Y)

				for _, d := range fourNeighbors {
					np := fp.XY{X: cur.X + d.X, Y: cur.Y + d.Y}
					if !m.InBounds(np) {
						continue
					}
					nIdx := m.index(np)
					if visited[nIdx] {
						continue
					}
					if !m.tiles[nIdx].Walkable() {
						continue
					}
					visited[nIdx] = true
					queue = append(queue, np)
				}
			}

			if region.TileCount > 0 {
				region.Center = fp.XY{
					X: int32(sumX / int64(region.TileCount)),
					Y: int32(sumY / int64(region.TileCount)),
				}
			}
			m.regions = append(m.regions, region)
		}
	}

	m.linkNeighbors()
}

var fourNeighbors = [4]fp.XY{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}}

func walkableMiniCount(t *Tile) int32 {
	var n int32
	for _, mt := range t.Minis {
		if mt.Walkable {
			n++
		}
	}
	return n
}

// linkNeighbors scans every tile adjacency and records cross-region edges,
// deduplicated, in ascending neighbor-region-ID order so the result is a
// pure function of the tile data.
func (m *Map) linkNeighbors() {
	seen := make(map[[2]int32]bool)
	for y := int32(0); y < m.Height; y++ {
		for x := int32(0); x < m.Width; x++ {
			p := fp.XY{X: x, Y: y}
			a := m.Tile(p).RegionID
			if a < 0 {
				continue
			}
			for _, d := range fourNeighbors {
				np := fp.XY{X: p.X + d.X, Y: p.Y + d.Y}
				if !m.InBounds(np) {
					continue
				}
				b := m.Tile(np).RegionID
				if b < 0 || b == a {
					continue
				}
				key := [2]int32{a, b}
				if a > b {
					key = [2]int32{b, a}
				}
				if seen[key] {
					continue
				}
				seen[key] = true
				m.regions[a].Neighbors = append(m.regions[a].Neighbors, b)
				m.regions[b].Neighbors = append(m.regions[b].Neighbors, a)
				if m.regions[a].Walkable && m.regions[b].Walkable {
					m.regions[a].WalkableNeighbors = append(m.regions[a].WalkableNeighbors, b)
					m.regions[b].WalkableNeighbors = append(m.regions[b].WalkableNeighbors, a)
				}
			}
		}
	}
	for i := range m.regions {
		sortInt32(m.regions[i].Neighbors)
		sortInt32(m.regions[i].WalkableNeighbors)
	}
}

// sortInt32 is a small insertion sort — region neighbor lists are tiny, so
// this avoids pulling in sort.Slice for a handful of elements per region.
func sortInt32(s []int32) {
	for i := 1; i < len(s); i++ {
		v := s[i]
		j := i - 1
		for j >= 0 && s[j] > v {
			s[j+1] = s[j]
			j--
		}
		s[j+1] = v
	}
}
