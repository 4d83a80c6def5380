package services

import (
	"fmt"
	"io"
	"strings"

	"housing-dashboard/models"
	"housing-dashboard/report"
	"housing-dashboard/utils"
)

// PrintSummary writes a console overview of a finished run.
func PrintSummary(w io.Writer, doc *report.Document) {
	sep := strings.Repeat("═", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 HOUSING DASHBOARD\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)
	fmt.Fprintf(w, "  Run       : %s\n", doc.Meta.RunID)
	fmt.Fprintf(w, "  Generated : %s\n\n", doc.Meta.GeneratedAt.Format("2006-01-02 15:04:05"))

	if doc.Rental != nil {
		printDataset(w, "Rental listings", "Monthly rent", doc.Rental.Stats, doc.Rental.Dropped, doc.Rental.Notices)
	}
	if doc.Ownership != nil {
		printDataset(w, "Ownership listings", "Price", doc.Ownership.Stats, doc.Ownership.Dropped, doc.Ownership.Notices)
	}

	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)
}

func printDataset(w io.Writer, title, totalLabel string, s models.AggregateStats, dropped int, notes []string) {
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\033[1;33m  %s\033[0m\n", title)
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Listings          : \033[1m%d\033[0m (dropped %d)\n", s.Count, dropped)
	fmt.Fprintf(w, "  Mean price per m² : \033[1;32m%s kr.\033[0m\n", utils.Thousands(s.MeanPricePerSqm))
	fmt.Fprintf(w, "  Mean area         : \033[1;32m%d m²\033[0m\n", s.MeanArea)
	fmt.Fprintf(w, "  %-17s : \033[1;32m%s kr.\033[0m (median %s kr.)\n", "Mean "+strings.ToLower(totalLabel),
		utils.Thousands(s.MeanTotalPrice), utils.Thousands(s.MedianTotalPrice))
	fmt.Fprintf(w, "  Map centre        : %.5f, %.5f\n", s.CenterLatitude, s.CenterLongitude)

	if len(s.RoomCountHistogram) > 0 {
		fmt.Fprintf(w, "  Rooms             :")
		for _, rc := range s.RoomCountHistogram {
			fmt.Fprintf(w, " %d×%d", rc.RoomCount, rc.Count)
		}
		fmt.Fprintln(w)
	}

	for i, cc := range s.CityHistogram {
		if i == 5 {
			fmt.Fprintf(w, "  ... %d more cities\n", len(s.CityHistogram)-5)
			break
		}
		bar := strings.Repeat("█", min(cc.Count, 30))
		fmt.Fprintf(w, "  %-24s %s (%d)\n", truncate(cc.City, 22), bar, cc.Count)
	}

	for _, note := range notes {
		fmt.Fprintf(w, "  • %s\n", note)
	}
	fmt.Fprintln(w)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
