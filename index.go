package regdesk

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/nao1215/regdesk/domain/model"
)

// CollisionPolicy decides what happens when two records share an identity.
type CollisionPolicy int

const (
	// LastWriteWins keeps the record inserted last. It is the only policy.
	LastWriteWins CollisionPolicy = iota
)

// String returns the string representation of CollisionPolicy
func (p CollisionPolicy) String() string {
	return "last-write-wins"
}

// Index is the read-only lookup structure built once from the mapped reports.
// It owns copies of every record; callers only receive values.
type Index struct {
	ielts      map[string]model.IELTSRecord
	school     map[string]model.SchoolRecord
	countries  []string
	names      []string
	collisions map[model.ProductType]int
	policy     model.BlankPolicy
}

// IndexOption configures BuildIndex.
type IndexOption func(*indexConfig)

type indexConfig struct {
	blankPolicy model.BlankPolicy
	logger      *slog.Logger
}

// WithBlankPolicy selects which blank values are left out of the country and name sets.
func WithBlankPolicy(policy model.BlankPolicy) IndexOption {
	return func(c *indexConfig) {
		c.blankPolicy = policy
	}
}

// WithIndexLogger sets the logger used to report identity collisions.
func WithIndexLogger(logger *slog.Logger) IndexOption {
	return func(c *indexConfig) {
		c.logger = logger
	}
}

// BuildIndex indexes both record lists in order. Records sharing an identity
// within one product resolve LastWriteWins.
func BuildIndex(ieltsRecords []model.IELTSRecord, schoolRecords []model.SchoolRecord, opts ...IndexOption) *Index {
	cfg := indexConfig{blankPolicy: model.BlankNamesOnly}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	idx := &Index{
		ielts:      make(map[string]model.IELTSRecord, len(ieltsRecords)),
		school:     make(map[string]model.SchoolRecord, len(schoolRecords)),
		collisions: make(map[model.ProductType]int, 2),
		policy:     cfg.blankPolicy,
	}
	countries := make(map[string]struct{})
	names := make(map[string]struct{})

	for _, r := range ieltsRecords {
		insert(idx.ielts, r, idx.collisions, cfg.logger)
		collect(countries, names, r, cfg.blankPolicy)
	}
	for _, r := range schoolRecords {
		insert(idx.school, r, idx.collisions, cfg.logger)
		collect(countries, names, r, cfg.blankPolicy)
	}

	idx.countries = sortedKeys(countries)
	idx.names = sortedKeys(names)
	return idx
}

func insert[R model.Record](m map[string]R, r R, collisions map[model.ProductType]int, logger *slog.Logger) {
	id := r.Identity()
	if _, exists := m[id]; exists {
		collisions[r.Product()]++
		logger.Debug("identity collision", "product", r.Product().String(), "identity", id)
	}
	m[id] = r
}

func collect(countries, names map[string]struct{}, r model.Record, policy model.BlankPolicy) {
	if country := r.GetCountry(); country != "" || !policy.ExcludesBlankCountries() {
		countries[country] = struct{}{}
	}
	if name := r.GetCandidateName(); name != "" {
		names[name] = struct{}{}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Lookup resolves key by exact match on its identity. A miss returns
// ErrRecordNotFound; an unknown product returns ErrInvalidProductType.
func (idx *Index) Lookup(key model.LookupKey) (model.Record, error) {
	id := key.Identity()
	switch key.Product {
	case model.ProductIELTS:
		if r, ok := idx.ielts[id]; ok {
			return r, nil
		}
	case model.ProductSchool:
		if r, ok := idx.school[id]; ok {
			return r, nil
		}
	default:
		return nil, fmt.Errorf("%w: %v", ErrInvalidProductType, key.Product)
	}
	return nil, fmt.Errorf("%w: %s %q", ErrRecordNotFound, key.Product, id)
}

// LookupIELTS returns the IELTS record for the identity triple.
func (idx *Index) LookupIELTS(country, candidateName, referenceID string) (model.IELTSRecord, bool) {
	r, ok := idx.ielts[model.Identity(country, candidateName, referenceID)]
	return r, ok
}

// LookupSchool returns the School record for the identity triple.
func (idx *Index) LookupSchool(country, candidateName, registrationID string) (model.SchoolRecord, bool) {
	r, ok := idx.school[model.Identity(country, candidateName, registrationID)]
	return r, ok
}

// Countries returns the sorted, deduplicated countries of both reports.
func (idx *Index) Countries() []string {
	return slices.Clone(idx.countries)
}

// CandidateNames returns the sorted, deduplicated non-blank candidate names.
func (idx *Index) CandidateNames() []string {
	return slices.Clone(idx.names)
}

// Len returns the number of distinct identities indexed for product.
func (idx *Index) Len(product model.ProductType) int {
	switch product {
	case model.ProductIELTS:
		return len(idx.ielts)
	case model.ProductSchool:
		return len(idx.school)
	default:
		return 0
	}
}

// Collisions returns how many inserts for product replaced an earlier record.
func (idx *Index) Collisions(product model.ProductType) int {
	return idx.collisions[product]
}

// BlankPolicy returns the policy the dropdown sets were built with.
func (idx *Index) BlankPolicy() model.BlankPolicy {
	return idx.policy
}

// FormatRecord renders a record as its labeled lines joined by newlines.
func FormatRecord(r model.Record) string {
	lines := r.Lines()
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.String()
	}
	return strings.Join(out, "\n")
}

// Snapshot holds the current Index. Rebuilt indexes are published with Swap so
// readers always see one consistent index.
type Snapshot struct {
	current atomic.Pointer[Index]
}

// NewSnapshot creates a snapshot holding idx.
func NewSnapshot(idx *Index) *Snapshot {
	s := &Snapshot{}
	s.current.Store(idx)
	return s
}

// Load returns the current index.
func (s *Snapshot) Load() *Index {
	return s.current.Load()
}

// Swap publishes idx and returns the previous index.
func (s *Snapshot) Swap(idx *Index) *Index {
	return s.current.Swap(idx)
}
