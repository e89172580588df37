package quantpool

import (
	"slices"

	"github.com/hupe1980/quantpool/pool"
)

// chunkRef pairs a chunk descriptor with the column it belongs to.
// References exist only for the duration of one streaming pass.
type chunkRef struct {
	chunk       *pool.ChunkDescription
	columnIndex int
	localIndex  int
}

// gatherAndSortChunks collects one reference per chunk across all regular
// columns and the reserved string-identifier slots, then sorts them by the
// chunk's offset in the backing storage. Columns may be physically
// interleaved; replaying in this order reads the storage strictly forward,
// as if the file were consumed front to back.
func gatherAndSortChunks(p *pool.Pool) []chunkRef {
	var refs []chunkRef
	for columnIdx, localIdx := range p.ColumnIndexToLocalIndex {
		for i := range p.Chunks[localIdx] {
			refs = append(refs, chunkRef{
				chunk:       &p.Chunks[localIdx][i],
				columnIndex: columnIdx,
				localIndex:  localIdx,
			})
		}
	}

	stringIndices := []int{
		p.StringDocIDLocalIndex,
		p.StringGroupIDLocalIndex,
		p.StringSubgroupIDLocalIndex,
	}
	for _, localIdx := range stringIndices {
		if localIdx == pool.SentinelLocalIndex {
			continue
		}
		for i := range p.Chunks[localIdx] {
			refs = append(refs, chunkRef{
				chunk:      &p.Chunks[localIdx][i],
				localIndex: localIdx,
			})
		}
	}

	slices.SortStableFunc(refs, func(a, b chunkRef) int {
		return a.chunk.Offset - b.chunk.Offset
	})

	return refs
}
