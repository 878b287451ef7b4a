package repository

// Chunks splits items into ordered windows of at most size elements.
func Chunks[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = len(items)
	}
	var chunks [][]T
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

// ExistingKeys is the batched existence check shared by the import pipeline:
// it deduplicates keys, issues one find per chunk sequentially so no single
// store query exceeds chunkSize, and returns the union of matches. The result
// is the same for any chunk size.
func ExistingKeys[K comparable](keys []K, chunkSize int, find func([]K) ([]K, error)) (map[K]struct{}, error) {
	seen := make(map[K]struct{}, len(keys))
	deduped := make([]K, 0, len(keys))
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, key)
	}

	existing := make(map[K]struct{})
	for _, chunk := range Chunks(deduped, chunkSize) {
		found, err := find(chunk)
		if err != nil {
			return nil, err
		}
		for _, key := range found {
			existing[key] = struct{}{}
		}
	}
	return existing, nil
}
