// Package batch splits an ordered list into consecutive fixed-size chunks.
package batch

// Split returns consecutive chunks of at most size items, preserving order.
// size <= 0 yields a single chunk holding everything. An empty input yields
// no chunks. Chunks share the backing array of items.
func Split[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 || size >= len(items) {
		return [][]T{items}
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for lo := 0; lo < len(items); lo += size {
		hi := min(lo+size, len(items))
		chunks = append(chunks, items[lo:hi:hi])
	}
	return chunks
}
