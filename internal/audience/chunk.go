package audience

// Chunk partitions records into groups of at most size elements, preserving
// order. The last group holds the remainder. An empty input yields no groups.
// A non-positive size is treated as 1.
func Chunk[T any](records []T, size int) [][]T {
	if size <= 0 {
		size = 1
	}
	var chunks [][]T
	for i := 0; i < len(records); i += size {
		end := i + size
		if end > len(records) {
			end = len(records)
		}
		chunks = append(chunks, records[i:end])
	}
	return chunks
}
