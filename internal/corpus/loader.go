package corpus

import (
	"bytes"
	"context"
	"fmt"

	"jobmatch-backend/internal/storage"
)

// Loader fetches corpus datasets from the object store.
type Loader struct {
	store storage.ObjectStore
}

func NewLoader(store storage.ObjectStore) *Loader {
	return &Loader{store: store}
}

// Load fetches and parses the corpus for one (platform, region) pair.
func (l *Loader) Load(ctx context.Context, platform, region string) ([]Posting, error) {
	data, err := l.store.GetObject(ctx, SummaryKey(platform, region))
	if err != nil {
		return nil, fmt.Errorf("fetch corpus %s/%s: %w", platform, region, err)
	}
	postings, err := ReadCSV(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse corpus %s/%s: %w", platform, region, err)
	}
	return postings, nil
}
