package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"

	"jobmatch-backend/internal/corpus"
	"jobmatch-backend/internal/ensemble"
	"jobmatch-backend/internal/storage"
)

var ErrArtifactNotFound = errors.New("artifact: no model for this platform and region")

const (
	stagedPrefix    = "temp/models"
	canonicalPrefix = "models"
)

// Store reads and writes model bundles. Training writes into a staging prefix
// first so a live model is never partially overwritten, then Promote moves the
// staged files into the serving location.
type Store struct {
	objects storage.ObjectStore
	logger  *slog.Logger
}

func NewStore(objects storage.ObjectStore, logger *slog.Logger) *Store {
	return &Store{objects: objects, logger: logger}
}

func stagedDir(platform, region string) string {
	return path.Join(stagedPrefix, platform, region)
}

func canonicalDir(platform, region string) string {
	return path.Join(canonicalPrefix, platform, region)
}

// Stage writes every file of the bundle under the staging prefix.
func (s *Store) Stage(ctx context.Context, platform, region string, b *Bundle) error {
	dir := stagedDir(platform, region)

	files := map[string]func() ([]byte, error){
		clusterModelFile: func() ([]byte, error) { return encodeGob(b.Cluster) },
		centroidsFile:    func() ([]byte, error) { return encodeGob(b.Cluster.Centroids) },
		embeddingsFile:   func() ([]byte, error) { return encodeGob(b.Embeddings) },
		labelsFile:       func() ([]byte, error) { return encodeGob(b.Labels) },
		corpusFile: func() ([]byte, error) {
			var buf bytes.Buffer
			if err := corpus.WriteCSV(&buf, b.Postings); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		},
	}
	for _, c := range b.Classifiers {
		c := c
		files[classifierFile(c.Name())] = func() ([]byte, error) { return encodeGob(&c) }
	}

	for name, encode := range files {
		data, err := encode()
		if err != nil {
			return fmt.Errorf("stage %s: %w", name, err)
		}
		if err := s.objects.PutObject(ctx, path.Join(dir, name), bytes.NewReader(data)); err != nil {
			return fmt.Errorf("stage %s: %w", name, err)
		}
	}
	return nil
}

// PromoteResult reports, per staged file, whether it reached the serving
// location.
type PromoteResult struct {
	Promoted []string
	Failed   []string
}

func (r PromoteResult) Ok() bool { return len(r.Failed) == 0 }

// Promote copies every staged file into the serving location, reads each copy
// back to verify it, then deletes the staged originals. Files that fail to
// copy or verify stay staged so a retry can pick them up; the serving model is
// only partially updated in that case and the caller decides whether that run
// counts as failed.
func (s *Store) Promote(ctx context.Context, platform, region string) (PromoteResult, error) {
	staged := stagedDir(platform, region)
	serving := canonicalDir(platform, region)

	keys, err := s.objects.ListObjects(ctx, staged)
	if err != nil {
		return PromoteResult{}, fmt.Errorf("list staged artifacts: %w", err)
	}
	if len(keys) == 0 {
		return PromoteResult{}, fmt.Errorf("%w: nothing staged for %s/%s", ErrArtifactNotFound, platform, region)
	}

	var res PromoteResult
	for _, key := range keys {
		name := path.Base(key)
		if err := s.promoteObject(ctx, key, path.Join(serving, name)); err != nil {
			s.logger.Error("artifact promote failed", "file", name, "platform", platform, "region", region, "error", err)
			res.Failed = append(res.Failed, name)
			continue
		}
		res.Promoted = append(res.Promoted, name)
	}

	// Clear the staging area only for files that made it.
	for _, name := range res.Promoted {
		key := path.Join(staged, name)
		if err := s.objects.DeleteObject(ctx, key); err != nil {
			s.logger.Warn("staged artifact not cleaned up", "key", key, "error", err)
		}
	}
	return res, nil
}

// promoteObject copies one staged file and reads the copy back, so a staged
// original is only released once the serving copy is known good.
func (s *Store) promoteObject(ctx context.Context, from, to string) error {
	data, err := s.objects.GetObject(ctx, from)
	if err != nil {
		return err
	}
	if err := s.objects.PutObject(ctx, to, bytes.NewReader(data)); err != nil {
		return err
	}

	written, err := s.objects.GetObject(ctx, to)
	if err != nil {
		return fmt.Errorf("verify %s: %w", to, err)
	}
	if !bytes.Equal(written, data) {
		return fmt.Errorf("verify %s: stored copy does not match staged content", to)
	}
	return nil
}

// Load reads the serving bundle for one (platform, region) pair.
func (s *Store) Load(ctx context.Context, platform, region string) (*Bundle, error) {
	dir := canonicalDir(platform, region)

	get := func(name string) ([]byte, error) {
		data, err := s.objects.GetObject(ctx, path.Join(dir, name))
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: missing %s for %s/%s", ErrArtifactNotFound, name, platform, region)
		}
		return data, err
	}

	b := &Bundle{}

	data, err := get(clusterModelFile)
	if err != nil {
		return nil, err
	}
	if err := decodeGob(data, &b.Cluster); err != nil {
		return nil, err
	}

	if data, err = get(embeddingsFile); err != nil {
		return nil, err
	}
	if err := decodeGob(data, &b.Embeddings); err != nil {
		return nil, err
	}

	if data, err = get(labelsFile); err != nil {
		return nil, err
	}
	if err := decodeGob(data, &b.Labels); err != nil {
		return nil, err
	}

	if data, err = get(corpusFile); err != nil {
		return nil, err
	}
	if b.Postings, err = corpus.ReadCSV(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	keys, err := s.objects.ListObjects(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("list model files: %w", err)
	}
	for _, key := range keys {
		name := path.Base(key)
		if !strings.HasPrefix(name, "classifier_") {
			continue
		}
		data, err := get(name)
		if err != nil {
			return nil, err
		}
		var c ensemble.Classifier
		if err := decodeGob(data, &c); err != nil {
			return nil, err
		}
		b.Classifiers = append(b.Classifiers, c)
	}
	if len(b.Classifiers) == 0 {
		return nil, fmt.Errorf("%w: no classifiers for %s/%s", ErrArtifactNotFound, platform, region)
	}

	sortRosterOrder(b.Classifiers)
	return b, nil
}

// sortRosterOrder restores the fixed training order, since object listings
// come back lexicographic.
func sortRosterOrder(classifiers []ensemble.Classifier) {
	rank := make(map[string]int)
	for i, c := range ensemble.NewRoster() {
		rank[c.Name()] = i
	}
	sort.SliceStable(classifiers, func(i, j int) bool {
		return rank[classifiers[i].Name()] < rank[classifiers[j].Name()]
	})
}
