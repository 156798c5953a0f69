package domain

// RetrievedSource is one search hit, best match first as returned by the
// index. Orchestrators never re-sort; tie order is the index's business.
type RetrievedSource struct {
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
	Filename string  `json:"filename"`
}

type Answer struct {
	Text    string            `json:"answer"`
	Sources []RetrievedSource `json:"sources"`
}

// IngestResult reports what one synchronous ingestion stored. ChunkIDs
// preserve original chunk order; a re-ingested document gets fresh ids.
type IngestResult struct {
	DocumentID string   `json:"document_id"`
	Collection string   `json:"collection"`
	ChunkIDs   []string `json:"chunk_ids"`
}
