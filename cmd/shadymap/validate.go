package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/shady-map-service/internal/adapter/boundary"
	"github.com/couchcryptid/shady-map-service/internal/adapter/feed"
	"github.com/couchcryptid/shady-map-service/internal/domain"
	"github.com/couchcryptid/shady-map-service/internal/sites"
)

var validateFeed string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check feed rows and the site catalog for data quality problems",
	Long: `Validate reads the feed and the site catalog and reports rows that would be
dropped, coordinates outside the valid lat/lng range, and spots outside the
Toronto boundary when the outline can be loaded. Ingestion itself accepts
out-of-range coordinates; this command only reports them.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		location := validateFeed
		if location == "" {
			location = cfg.FeedURL
		}

		records, err := feed.NewClient(location, cfg.FeedTimeout, logger).Fetch(ctx)
		if err != nil {
			return err
		}
		catalog, err := sites.Load(cfg.SitesFile)
		if err != nil {
			return err
		}
		var outline *domain.Boundary
		if cfg.BoundaryURL != "" {
			outline, err = boundary.NewLoader(cfg.BoundaryURL, cfg.FeedTimeout, logger).Load(ctx)
			if err != nil {
				logger.Warn("boundary unavailable, skipping boundary check", "error", err)
				outline = nil
			}
		}

		if !validate(cmd.OutOrStdout(), records, catalog, outline) {
			return errors.New("validation failed")
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateFeed, "feed", "", "Feed URL or CSV path (defaults to FEED_URL)")
	rootCmd.AddCommand(validateCmd)
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name    string
	skipped bool
	errors  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// validate runs every phase, writes a report to w and reports whether all
// phases passed. Row numbers are spreadsheet line numbers (header is line 1).
func validate(w io.Writer, records []domain.RawRecord, catalog *sites.Catalog, outline *domain.Boundary) bool {
	parse := &phase{name: "Feed rows have numeric coordinates"}
	bounds := &phase{name: "Feed coordinates within lat/lng range"}
	region := &phase{name: "Feed spots inside boundary", skipped: outline == nil}
	catalogPhase := &phase{name: "Site catalog coordinates within range"}

	counts := make(map[domain.Category]int, len(domain.Categories))
	var accepted int
	for i, rec := range records {
		line := i + 2
		p, ok := domain.NormalizeRecord(rec)
		if !ok {
			parse.errorf("line %d (%s): latitude %s, longitude %s", line, display(rec.Name), display(rec.Latitude), display(rec.Longitude))
			continue
		}
		accepted++
		counts[p.Category]++

		if !inRange(p.Latitude, p.Longitude) {
			bounds.errorf("line %d (%s): %.6f, %.6f", line, p.Name, p.Latitude, p.Longitude)
			continue
		}
		if outline != nil && !outline.Contains(p.Latitude, p.Longitude) {
			region.errorf("line %d (%s): %.6f, %.6f", line, p.Name, p.Latitude, p.Longitude)
		}
	}

	checkSites := func(kind domain.SiteKind, list []domain.Site) {
		for _, s := range list {
			if !inRange(s.Latitude, s.Longitude) {
				catalogPhase.errorf("%s site %q: %.5f, %.5f", kind, s.Title, s.Latitude, s.Longitude)
			}
		}
	}
	checkSites(domain.SiteCurated, catalog.Curated)
	checkSites(domain.SiteArtwork, catalog.Artwork)

	phases := []*phase{parse, bounds, region, catalogPhase}

	fmt.Fprintln(w, "=== Shady Spots Feed Validation ===")
	fmt.Fprintln(w)
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		switch {
		case p.skipped:
			status = "SKIP"
		case !p.passed():
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Rows: %d read, %d accepted, %d dropped\n", len(records), accepted, len(records)-accepted)
	for _, c := range domain.Categories {
		fmt.Fprintf(w, "  %-10s %d\n", c, counts[c])
	}
	fmt.Fprintf(w, "Sites: %d curated, %d artwork\n", len(catalog.Curated), len(catalog.Artwork))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return true
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return false
}

func inRange(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func display(s *string) string {
	if s == nil {
		return "<missing>"
	}
	return fmt.Sprintf("%q", *s)
}
