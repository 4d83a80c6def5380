// Package report renders the self-contained HTML dashboard from the results
// of the rental and ownership pipelines.
package report

import (
	"embed"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"time"

	"housing-dashboard/models"
)

//go:embed templates/dashboard.html
var templates embed.FS

// Meta identifies one generated report.
type Meta struct {
	RunID           string    `json:"run_id"`
	GeneratedAt     time.Time `json:"generated_at"`
	RentalSource    string    `json:"rental_source"`
	OwnershipSource string    `json:"ownership_source"`
}

// Document is everything that goes into one report.
type Document struct {
	Meta      Meta
	Rental    *models.RentalResult
	Ownership *models.OwnershipResult
}

// Images holds the static charts as data URIs.
type Images struct {
	Scatter string `json:"scatter"`
	Heatmap string `json:"heatmap"`
	Table   string `json:"table"`
}

// Dataset is the JSON shape of one pipeline result. The statistics are
// flattened next to the listings.
type Dataset[L any] struct {
	models.AggregateStats
	Listings []L      `json:"listings"`
	Images   Images   `json:"images"`
	Notices  []string `json:"notices"`
	Dropped  int      `json:"dropped"`
}

// Payload is the data object the dashboard script reads.
type Payload struct {
	Meta      Meta                              `json:"meta"`
	Rental    *Dataset[models.RentalListing]    `json:"rental"`
	Ownership *Dataset[models.OwnershipListing] `json:"ownership"`
}

// NewPayload converts a Document into its JSON shape.
func NewPayload(doc Document) Payload {
	p := Payload{Meta: doc.Meta}
	if doc.Rental != nil {
		p.Rental = dataset(*doc.Rental)
	}
	if doc.Ownership != nil {
		p.Ownership = dataset(*doc.Ownership)
	}
	return p
}

func dataset[L any](res models.PipelineResult[L]) *Dataset[L] {
	d := &Dataset[L]{
		AggregateStats: res.Stats,
		Listings:       res.Listings,
		Images: Images{
			Scatter: DataURI(res.Charts.Scatter),
			Heatmap: DataURI(res.Charts.Heatmap),
			Table:   DataURI(res.Charts.Table),
		},
		Notices: res.Notices,
		Dropped: res.Dropped,
	}
	if d.Listings == nil {
		d.Listings = []L{}
	}
	if d.Notices == nil {
		d.Notices = []string{}
	}
	return d
}

// DataURI embeds a PNG. An empty image yields an empty string.
func DataURI(png []byte) string {
	if len(png) == 0 {
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

// Assembler renders Documents with the embedded dashboard template.
type Assembler struct {
	tmpl *template.Template
}

// NewAssembler parses the dashboard template.
func NewAssembler() (*Assembler, error) {
	tmpl, err := template.New("dashboard.html").ParseFS(templates, "templates/dashboard.html")
	if err != nil {
		return nil, fmt.Errorf("report: parse template: %w", err)
	}
	return &Assembler{tmpl: tmpl}, nil
}

type view struct {
	Title       string
	GeneratedAt string
	RunID       string
	Data        template.JS
}

// Write renders the report for doc into w.
func (a *Assembler) Write(w io.Writer, doc Document) error {
	// json.Marshal escapes <, > and &, so the payload cannot close the script tag.
	data, err := json.Marshal(NewPayload(doc))
	if err != nil {
		return fmt.Errorf("report: encode payload: %w", err)
	}
	v := view{
		Title:       "Housing analysis",
		GeneratedAt: doc.Meta.GeneratedAt.Format("2006-01-02 15:04"),
		RunID:       doc.Meta.RunID,
		Data:        template.JS(data),
	}
	if err := a.tmpl.Execute(w, v); err != nil {
		return fmt.Errorf("report: render: %w", err)
	}
	return nil
}
