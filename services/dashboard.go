package services

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"housing-dashboard/config"
	"housing-dashboard/report"
	"housing-dashboard/utils"
)

// Assembler writes the final report. *report.Assembler implements it.
type Assembler interface {
	Write(w io.Writer, doc report.Document) error
}

// Dashboard runs both pipelines and hands their results to the assembler.
type Dashboard struct {
	rental    *RentalPipeline
	ownership *OwnershipPipeline
	assembler Assembler
	logger    *utils.Logger
	now       func() time.Time
}

// NewDashboard wires both pipelines with the same renderer.
func NewDashboard(cols config.Columns, renderer ChartRenderer, assembler Assembler, logger *utils.Logger) *Dashboard {
	return &Dashboard{
		rental:    NewRentalPipeline(cols.Rental, renderer, logger),
		ownership: NewOwnershipPipeline(cols.Ownership, renderer, logger),
		assembler: assembler,
		logger:    logger,
		now:       time.Now,
	}
}

// Build processes the rental then the ownership workbook. The pipelines share
// no state; the first failure aborts the run.
func (d *Dashboard) Build(rentalSrc, ownershipSrc Source) (*report.Document, error) {
	runID := uuid.NewString()
	start := time.Now()
	d.logger.Info("[dashboard] Run %s: rental=%s ownership=%s", runID, rentalSrc.Name(), ownershipSrc.Name())

	rental, err := d.rental.Process(rentalSrc)
	if err != nil {
		return nil, err
	}
	ownership, err := d.ownership.Process(ownershipSrc)
	if err != nil {
		return nil, err
	}

	d.logger.Elapsed("[dashboard] Run "+runID, start)
	return &report.Document{
		Meta: report.Meta{
			RunID:           runID,
			GeneratedAt:     d.now(),
			RentalSource:    rentalSrc.Name(),
			OwnershipSource: ownershipSrc.Name(),
		},
		Rental:    rental,
		Ownership: ownership,
	}, nil
}

// Generate builds the document and writes the report to w.
func (d *Dashboard) Generate(w io.Writer, rentalSrc, ownershipSrc Source) (*report.Document, error) {
	doc, err := d.Build(rentalSrc, ownershipSrc)
	if err != nil {
		return nil, err
	}
	if err := d.assembler.Write(w, *doc); err != nil {
		return nil, fmt.Errorf("dashboard: write report: %w", err)
	}
	return doc, nil
}
