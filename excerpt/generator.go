package excerpt

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"text/template"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/lorecraft/core"
	"github.com/poiesic/lorecraft/keywords"
	"github.com/poiesic/lorecraft/token"
)

// Generator turns documents into excerpt documents: token-bounded chunks
// annotated with metadata, keywords, and their location in the source's
// markdown heading hierarchy.
type Generator struct {
	codec          token.Codec
	extractor      keywords.Extractor
	tmpl           *template.Template
	pool           *ants.Pool
	chunkSize      int
	overlap        float64
	mergeThreshold float64
	logger         *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator) error

// WithChunkSize sets the token window size for chunking.
func WithChunkSize(size int) Option {
	return func(g *Generator) error {
		g.chunkSize = size
		return nil
	}
}

// WithOverlap sets the chunk overlap fraction.
func WithOverlap(overlap float64) Option {
	return func(g *Generator) error {
		g.overlap = overlap
		return nil
	}
}

// WithMergeThreshold sets the trailing-chunk merge threshold.
func WithMergeThreshold(threshold float64) Option {
	return func(g *Generator) error {
		g.mergeThreshold = threshold
		return nil
	}
}

// WithTemplate replaces the default excerpt template.
func WithTemplate(tmpl *template.Template) Option {
	return func(g *Generator) error {
		if tmpl != nil {
			g.tmpl = tmpl
		}
		return nil
	}
}

// WithPoolSize sets the worker pool size for concurrent excerpt assembly.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(g *Generator) error {
		if size < 1 {
			size = 1
		}
		if g.pool != nil {
			g.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		g.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) error {
		if logger == nil {
			logger = slog.Default()
		}
		g.logger = logger
		return nil
	}
}

// NewGenerator creates an excerpt generator.
func NewGenerator(codec token.Codec, extractor keywords.Extractor, opts ...Option) (*Generator, error) {
	if codec == nil {
		return nil, ErrCodecRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	g := &Generator{
		codec:          codec,
		extractor:      extractor,
		tmpl:           DefaultTemplate(),
		pool:           pool,
		chunkSize:      DefaultChunkSize,
		overlap:        DefaultOverlap,
		mergeThreshold: DefaultMergeThreshold,
		logger:         slog.Default().With("component", "excerpt-generator"),
	}

	for _, opt := range opts {
		if optErr := opt(g); optErr != nil {
			g.Release()
			return nil, optErr
		}
	}

	return g, nil
}

// Release frees the generator's worker pool.
func (g *Generator) Release() {
	if g.pool != nil {
		g.pool.Release()
	}
}

// Excerpts chunks the document and assembles one excerpt document per
// chunk. Chunks are processed concurrently; the minimap, when the source is
// markdown, is fully built before any worker starts so lookups are
// read-only. Excerpts keep the source's metadata, reference it via
// ParentDocumentId, and are returned in chunk order.
func (g *Generator) Excerpts(ctx context.Context, doc *core.Document) ([]*core.Document, error) {
	chunks, err := Split(g.codec, doc.Text,
		SplitChunkSize(g.chunkSize),
		SplitOverlap(g.overlap),
		SplitMergeThreshold(g.mergeThreshold),
	)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	var minimap *Minimap
	if doc.IsMarkdown() {
		minimap = BuildMinimap(doc.Text)
	}

	g.logger.Debug("assembling excerpts", "document", doc.Id, "chunks", len(chunks))

	excerpts := make([]*core.Document, len(chunks))
	errs := make([]error, len(chunks))
	var wg sync.WaitGroup

	for i, chunk := range chunks {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		i, chunk := i, chunk
		wg.Add(1)
		if submitErr := g.pool.Submit(func() {
			defer wg.Done()
			excerpts[i], errs[i] = g.assemble(doc, chunk, minimap)
		}); submitErr != nil {
			wg.Done()
			errs[i] = submitErr
		}
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return excerpts, nil
}

// assemble builds one excerpt document from a chunk.
func (g *Generator) assemble(doc *core.Document, chunk Chunk, minimap *Minimap) (*core.Document, error) {
	kws, err := g.extractor.Extract(chunk.Text)
	if err != nil {
		return nil, err
	}

	location := ""
	if minimap != nil {
		location, err = minimap.Location(chunk.Offset)
		if err != nil {
			return nil, err
		}
	}

	var sb strings.Builder
	if err := g.tmpl.Execute(&sb, templateContext{
		Document: doc,
		Keywords: strings.Join(kws, ", "),
		Location: location,
		Content:  chunk.Text,
	}); err != nil {
		return nil, err
	}
	text := sb.String()

	return &core.Document{
		Id:               core.IDFromContent(text),
		ParentDocumentId: doc.Id,
		Type:             core.DocumentTypeExcerpt,
		Text:             text,
		Metadata:         doc.Metadata,
		Tokens:           g.codec.Count(text),
		Keywords:         kws,
	}, nil
}
