package corpus

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexcase/internal/domain"
	"github.com/kailas-cloud/lexcase/internal/domain/document"
)

// maxLineBytes bounds a single JSONL record.
const maxLineBytes = 4 << 20

// Config holds the corpus locations.
type Config struct {
	LawsPath       string
	PrecedentsPath string
	// SkipMalformed logs and skips bad records instead of failing the load.
	SkipMalformed bool
}

// Store reads statute and precedent collections from line-delimited JSON files.
type Store struct {
	cfg    Config
	logger *zap.Logger
}

// New creates a corpus store.
func New(cfg Config, logger *zap.Logger) *Store {
	return &Store{cfg: cfg, logger: logger}
}

// record is the on-disk shape of one JSONL line.
type record struct {
	ID      *string  `json:"id"`
	Title   string   `json:"title"`
	Text    *string  `json:"text"`
	Source  string   `json:"source"`
	Chamber string   `json:"chamber"`
	Date    string   `json:"date"`
	EK      string   `json:"ek"`
	KK      string   `json:"kk"`
	Tags    []string `json:"tags"`
	Demo    bool     `json:"demo"`
}

// Load reads the configured collection of the given kind.
func (s *Store) Load(ctx context.Context, kind document.Kind) ([]document.Document, error) {
	switch kind {
	case document.KindLaw:
		return s.LoadFile(ctx, s.cfg.LawsPath, kind)
	case document.KindPrecedent:
		return s.LoadFile(ctx, s.cfg.PrecedentsPath, kind)
	default:
		return nil, fmt.Errorf("load corpus: unknown kind %q", kind)
	}
}

// LoadFile reads one collection file. A missing file yields an empty collection.
// Blank lines are skipped. A malformed line, a line without id or text, or a
// duplicate id fails the load with a *domain.LoadError unless SkipMalformed is set.
func (s *Store) LoadFile(ctx context.Context, path string, kind document.Kind) ([]document.Document, error) {
	if _, err := document.ParseKind(string(kind)); err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	if path == "" {
		s.logger.Warn("Corpus path not configured", zap.String("kind", string(kind)))
		return nil, nil
	}

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("Corpus file not found, collection is empty",
				zap.String("kind", string(kind)), zap.String("path", path))
			return nil, nil
		}
		return nil, fmt.Errorf("open corpus %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	docs, err := s.read(ctx, f, path, kind)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Corpus loaded",
		zap.String("kind", string(kind)),
		zap.String("path", path),
		zap.Int("documents", len(docs)),
	)
	return docs, nil
}

func (s *Store) read(ctx context.Context, r io.Reader, path string, kind document.Kind) ([]document.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var docs []document.Document
	seen := make(map[string]int)
	line := 0

	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("load corpus %s: %w", path, err)
		}

		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		doc, err := parseRecord([]byte(raw), kind)
		if err == nil {
			if first, dup := seen[doc.ID()]; dup {
				err = fmt.Errorf("duplicate id %q (first seen on line %d)", doc.ID(), first)
			}
		}
		if err != nil {
			if s.cfg.SkipMalformed {
				s.logger.Warn("Skipping malformed corpus record",
					zap.String("path", path), zap.Int("line", line), zap.Error(err))
				continue
			}
			return nil, domain.NewLoadError(path, line, err)
		}

		seen[doc.ID()] = line
		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, domain.NewLoadError(path, line+1, err)
	}

	return docs, nil
}

func parseRecord(data []byte, kind document.Kind) (document.Document, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return document.Document{}, fmt.Errorf("decode record: %w", err)
	}
	if rec.ID == nil || *rec.ID == "" {
		return document.Document{}, errors.New("missing required field \"id\"")
	}
	if rec.Text == nil {
		return document.Document{}, fmt.Errorf("record %q: missing required field \"text\"", *rec.ID)
	}

	var meta document.Meta
	if kind == document.KindLaw {
		meta = document.NewStatuteMeta(rec.Source, rec.Demo)
	} else {
		meta = document.NewPrecedentMeta(rec.Chamber, rec.Date, rec.EK, rec.KK, rec.Tags, rec.Demo)
	}

	doc, err := document.New(*rec.ID, rec.Title, *rec.Text, meta)
	if err != nil {
		return document.Document{}, fmt.Errorf("build document: %w", err)
	}
	return doc, nil
}
