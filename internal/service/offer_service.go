// Package service wires roster, policy documents, retrieval and letter
// assembly into the offer generation pipeline.
package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"offerletter/internal/document"
	"offerletter/internal/domain"
	oerrors "offerletter/internal/errors"
	"offerletter/internal/index"
	"offerletter/internal/letter"
	"offerletter/internal/policy"
	"offerletter/internal/roster"
)

// Sources are the input files of one ingestion.
type Sources struct {
	Roster       string
	LeavePolicy  string
	TravelPolicy string
}

// Paths lists the source files in ingestion order.
func (s Sources) Paths() []string {
	return []string{s.Roster, s.LeavePolicy, s.TravelPolicy}
}

// Components are the pluggable parts of the retrieval pipeline. Every
// ingestion asks the factories for a fresh embedder and store, so a running
// index is never mutated by a re-ingestion.
type Components struct {
	Chunker     domain.Chunker
	NewEmbedder func() (domain.Embedder, error)
	NewStore    func() (domain.VectorStore, error)
}

// ResolvedOffer is everything a letter is built from, resolved for one request.
type ResolvedOffer struct {
	Employee     roster.Employee
	Entitlements policy.Snapshot
	Position     string
	Context      []domain.SearchResult
	GeneratedAt  time.Time
}

// Status describes the outcome of the most recent ingestion.
type Status struct {
	Ready      bool
	Employees  int
	Chunks     int
	IngestedAt time.Time
	Err        error
}

// Option configures a Service.
type Option func(*Service)

// WithTopK sets how many policy passages are retrieved per request.
func WithTopK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithClock replaces the clock used to date letters.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger for ingestion and retrieval diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

type snapshot struct {
	roster     *roster.Roster
	index      *index.Index
	ingestedAt time.Time
}

type ingestResult struct {
	state *snapshot
	err   error
}

// Service generates offer letters. Ingest must succeed before Generate;
// after that Generate and Prepare are safe for concurrent use, including
// while a re-ingestion is running.
type Service struct {
	sources Sources
	comp    Components
	topK    int
	now     func() time.Time
	logger  *log.Logger

	mu     sync.Mutex
	result atomic.Pointer[ingestResult]
}

// New builds a Service. It does not touch the filesystem; call Ingest.
func New(sources Sources, comp Components, opts ...Option) (*Service, error) {
	if comp.Chunker == nil || comp.NewEmbedder == nil || comp.NewStore == nil {
		return nil, oerrors.NewConfig("chunker, embedder and vector store are required")
	}
	s := &Service{
		sources: sources,
		comp:    comp,
		topK:    index.DefaultTopK,
		now:     time.Now,
		logger:  log.New(log.Writer(), "offerletter: ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Sources returns the configured input files.
func (s *Service) Sources() Sources { return s.sources }

// Ingest loads the roster and both policy documents and builds a fresh
// similarity index. It is all-or-nothing: on failure the service stops
// serving until a later Ingest succeeds.
func (s *Service) Ingest(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	st, err := s.build(ctx)
	if err != nil {
		s.result.Store(&ingestResult{err: err})
		s.logger.Printf("ingestion failed: %v", err)
		return err
	}
	s.result.Store(&ingestResult{state: st})
	s.logger.Printf("ingested %d employees and %d policy chunks in %s",
		st.roster.Len(), st.index.Len(), time.Since(start).Round(time.Millisecond))
	return nil
}

func (s *Service) build(ctx context.Context) (*snapshot, error) {
	r, err := roster.Load(s.sources.Roster)
	if err != nil {
		return nil, err
	}

	var chunks []domain.Chunk
	for _, src := range []struct {
		path string
		tag  domain.SourceTag
	}{
		{s.sources.LeavePolicy, domain.SourceLeave},
		{s.sources.TravelPolicy, domain.SourceTravel},
	} {
		doc, err := document.Load(src.path, src.tag)
		if err != nil {
			return nil, err
		}
		cs, err := s.comp.Chunker.Chunk(doc)
		if err != nil {
			return nil, err
		}
		for _, c := range cs {
			c.ID = len(chunks)
			chunks = append(chunks, c)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	emb, err := s.comp.NewEmbedder()
	if err != nil {
		return nil, oerrors.NewIngestionFailure("embedder", err)
	}
	store, err := s.comp.NewStore()
	if err != nil {
		return nil, oerrors.NewIngestionFailure("vector store", err)
	}
	ix, err := index.Build(ctx, emb, store, chunks)
	if err != nil {
		if oerrors.Is(err, oerrors.ErrEmptyIndex) {
			return nil, err
		}
		return nil, oerrors.NewIngestionFailure("similarity index", err)
	}
	return &snapshot{roster: r, index: ix, ingestedAt: s.now()}, nil
}

func (s *Service) ready() (*snapshot, error) {
	res := s.result.Load()
	switch {
	case res == nil:
		return nil, oerrors.NewNotReady("offer service")
	case res.err != nil:
		if oerrors.Is(res.err, oerrors.ErrIngestionFailure) {
			return nil, res.err
		}
		return nil, oerrors.NewIngestionFailure("offer service", res.err)
	}
	return res.state, nil
}

// IsReady reports whether the last ingestion succeeded.
func (s *Service) IsReady() bool {
	res := s.result.Load()
	return res != nil && res.err == nil
}

// LastError returns the error of the last ingestion, or nil.
func (s *Service) LastError() error {
	if res := s.result.Load(); res != nil {
		return res.err
	}
	return nil
}

// Status summarises the last ingestion.
func (s *Service) Status() Status {
	res := s.result.Load()
	if res == nil {
		return Status{}
	}
	if res.err != nil {
		return Status{Err: res.err}
	}
	return Status{
		Ready:      true,
		Employees:  res.state.roster.Len(),
		Chunks:     res.state.index.Len(),
		IngestedAt: res.state.ingestedAt,
	}
}

// Employees lists the roster in load order, or nil when not ready.
func (s *Service) Employees() []roster.Employee {
	st, err := s.ready()
	if err != nil {
		return nil
	}
	return st.roster.Employees()
}

// Prepare resolves everything needed for the letter of the employee
// matching name. Retrieval is best effort: its failure is logged and the
// offer is returned without context.
func (s *Service) Prepare(ctx context.Context, name string) (ResolvedOffer, error) {
	st, err := s.ready()
	if err != nil {
		return ResolvedOffer{}, err
	}
	emp, err := st.roster.Resolve(name)
	if err != nil {
		return ResolvedOffer{}, err
	}
	if err := ctx.Err(); err != nil {
		return ResolvedOffer{}, err
	}

	query := fmt.Sprintf("band %s department %s leave policy travel policy salary benefits", emp.Band, emp.Department)
	hits, err := st.index.Query(ctx, query, s.topK)
	if err != nil {
		s.logger.Printf("policy retrieval for %q failed: %v", emp.Name, err)
		hits = nil
	}

	return ResolvedOffer{
		Employee:     emp,
		Entitlements: policy.Resolve(emp.Band, emp.Department),
		Position:     policy.PositionTitle(emp.Department),
		Context:      hits,
		GeneratedAt:  s.now(),
	}, nil
}

// Generate returns the offer letter for the employee matching name.
func (s *Service) Generate(ctx context.Context, name string) (string, error) {
	offer, err := s.Prepare(ctx, name)
	if err != nil {
		return "", err
	}
	return Render(offer), nil
}

// Render assembles the letter text of a resolved offer.
func Render(offer ResolvedOffer) string {
	return letter.Assemble(offer.Employee, offer.Entitlements, offer.Position, offer.GeneratedAt)
}
