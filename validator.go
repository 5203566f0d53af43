package regdesk

import (
	"fmt"
	"strings"

	"github.com/nao1215/regdesk/domain/model"
)

// validator handles configuration checks for DeskBuilder
type validator struct{}

// newValidator creates a new validator instance
func newValidator() *validator {
	return &validator{}
}

// validateReportPath checks that a configured report has a supported format.
// The file itself is not touched: a report that is missing or unreadable is
// logged when the desk is built and contributes no records.
func (v *validator) validateReportPath(product model.ProductType, path string) error {
	if !model.NewReportFile(path).IsSupported() {
		return fmt.Errorf("%w: %s report %s", ErrUnsupportedFormat, product, path)
	}
	return nil
}

// validateSources checks every configured report and that at least one is configured.
func (v *validator) validateSources(sources map[model.ProductType]reportSource) error {
	configured := 0
	for _, product := range model.ProductTypes() {
		src, ok := sources[product]
		if !ok || strings.TrimSpace(src.path) == "" {
			continue
		}
		configured++
		if err := v.validateReportPath(product, src.path); err != nil {
			return err
		}
	}
	if configured == 0 {
		return ErrNoReports
	}
	return nil
}
