package regdesk

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nao1215/regdesk/domain/model"
	"golang.org/x/sync/singleflight"
)

// Messages shown by a front end for the expected empty outcomes.
const (
	// NoInformationMessage is shown when a lookup finds no record
	NoInformationMessage = "No information found!!"
	// NoCandidateMessage is shown when a barcode is requested before a successful lookup
	NoCandidateMessage = "No candidate selected!!"
)

// Desk is the entry point a front end calls into: lookups rendered as text,
// and barcodes rendered as PNG. Build one with NewBuilder.
type Desk struct {
	config   *DeskBuilder
	snapshot *Snapshot
	composer *BarcodeComposer
	logger   *slog.Logger
	reloads  singleflight.Group

	mu      sync.RWMutex
	summary IngestSummary
}

// NewDesk wraps an already built index. A nil index serves no records.
// Reload is unavailable on such a desk.
func NewDesk(idx *Index, opts ...ComposerOption) *Desk {
	if idx == nil {
		idx = BuildIndex(nil, nil)
	}
	return &Desk{
		snapshot: NewSnapshot(idx),
		composer: NewBarcodeComposer(opts...),
		logger:   slog.Default(),
	}
}

// Index returns the index currently served.
func (d *Desk) Index() *Index {
	return d.snapshot.Load()
}

// Summary returns the outcome of the last ingestion.
func (d *Desk) Summary() IngestSummary {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.summary
}

// Reload re-reads the configured reports and atomically replaces the served index.
// Lookups in flight keep the index they started with. Concurrent calls share
// one ingestion.
func (d *Desk) Reload(ctx context.Context) error {
	if d.config == nil {
		return ErrNoReports
	}
	_, err, shared := d.reloads.Do("reload", func() (any, error) {
		idx, summary, err := d.config.ingest(ctx)
		if err != nil {
			return nil, err
		}
		d.snapshot.Swap(idx)
		d.mu.Lock()
		d.summary = summary
		d.mu.Unlock()
		return nil, nil
	})
	if shared {
		d.logger.Debug("reload shared with a concurrent caller")
	}
	return err
}

// Lookup resolves a key against the current index.
func (d *Desk) Lookup(key model.LookupKey) (model.Record, error) {
	return d.Index().Lookup(key)
}

// GetInformation returns the formatted record for the lookup. A miss returns
// ("", ErrRecordNotFound); an unknown product returns ErrInvalidProductType.
func (d *Desk) GetInformation(productType, country, candidateName, referenceID string) (string, error) {
	product, err := model.ParseProductType(productType)
	if err != nil {
		return "", err
	}
	record, err := d.Lookup(model.LookupKey{
		Product:       product,
		Country:       country,
		CandidateName: candidateName,
		ReferenceID:   referenceID,
	})
	if err != nil {
		d.logger.Debug("lookup miss", "product", product.String(), "country", country, "candidate", candidateName, "reference", referenceID)
		return "", err
	}
	return FormatRecord(record), nil
}

// GenerateBarcode returns the barcode-only PNG for referenceID. Rendering
// failures yield the placeholder image.
func (d *Desk) GenerateBarcode(referenceID string) []byte {
	return d.composer.ComposeOrFallback(referenceID, "")
}

// GenerateCompositeBarcode returns the composite PNG of the formatted text and
// the barcode for referenceID. Rendering failures yield the placeholder image.
func (d *Desk) GenerateCompositeBarcode(referenceID, formattedText string) []byte {
	out, err := d.composer.Composite(referenceID, formattedText)
	if err != nil {
		d.logger.Error("barcode rendering failed", "payload", referenceID, "error", err)
		return d.composer.FallbackPNG()
	}
	return out
}

// Countries returns the country dropdown values.
func (d *Desk) Countries() []string {
	return d.Index().Countries()
}

// CandidateNames returns the candidate name suggestions.
func (d *Desk) CandidateNames() []string {
	return d.Index().CandidateNames()
}

// ProductTypes returns the product dropdown values.
func (d *Desk) ProductTypes() []string {
	types := model.ProductTypes()
	out := make([]string, len(types))
	for i, p := range types {
		out[i] = p.String()
	}
	return out
}
