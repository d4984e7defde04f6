// File: internal/extract/extract.go

// Package extract reads the product table across its pages, or degrades to
// heuristic card scraping when no table exists.
package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/inventa-tools/inventa-cli/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	tableSelector = "table"
	rowSelector   = "table tbody tr"
	nextSelector  = `//button[contains(., 'Next')]`

	beforeShot   = "before_extraction.png"
	failureShot  = "extraction_error.png"
	fallbackHTML = "product_page.html"

	placeholderContent = "Page content extracted, see HTML file"

	pageIdleTimeout = 15 * time.Second
)

const headersScript = `Array.from(document.querySelectorAll('table thead th')).map(th => th.textContent)`

const rowsScript = `Array.from(document.querySelectorAll('table tbody tr'))
	.map(tr => Array.from(tr.querySelectorAll('td')).map(td => td.textContent))`

// Config tunes the extraction loop. The fallback selector lists are a
// replaceable heuristic policy, tried in order per container.
type Config struct {
	RowTimeout   time.Duration
	ProbeTimeout time.Duration
	// MaxPages bounds the pagination loop when positive; zero keeps the loop
	// unbounded, terminating only when the Next control disappears or
	// reports disabled.
	MaxPages          int
	PageRate          float64
	ContainerSelector string
	NameSelectors     []string
	PriceSelectors    []string
}

// Extractor reads the Result Set from the current page state.
type Extractor struct {
	cfg     Config
	diagDir string
	log     *zap.Logger
	limiter *rate.Limiter
}

// New creates an Extractor. A positive PageRate paces page turns.
func New(cfg Config, diagDir string, logger *zap.Logger) *Extractor {
	e := &Extractor{
		cfg:     cfg,
		diagDir: diagDir,
		log:     logger.Named("extractor"),
	}
	if cfg.PageRate > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(cfg.PageRate), 1)
	}
	return e
}

// Extract probes for a table and runs exactly one of the two modes. Table
// mode failures are fatal; fallback mode always yields a result set.
func (e *Extractor) Extract(ctx context.Context, page schemas.PageDriver) (schemas.ResultSet, error) {
	e.log.Info("Extracting product data...")

	if err := page.Screenshot(ctx, filepath.Join(e.diagDir, beforeShot)); err != nil {
		e.log.Debug("Could not capture pre-extraction screenshot.", zap.Error(err))
	}

	hasTable, err := page.Exists(ctx, tableSelector)
	if err != nil {
		return nil, e.fail(ctx, page, 1, fmt.Errorf("table probe: %w", err))
	}
	if hasTable {
		return e.extractTable(ctx, page)
	}

	e.log.Info("No table found, extracting fallback content.")
	return e.extractFallback(ctx, page), nil
}

// extractTable reads the header row once, then accumulates every page's rows
// until pagination ends.
func (e *Extractor) extractTable(ctx context.Context, page schemas.PageDriver) (schemas.ResultSet, error) {
	var headers []string
	if err := page.Eval(ctx, headersScript, &headers); err != nil {
		return nil, e.fail(ctx, page, 1, fmt.Errorf("read headers: %w", err))
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	records := schemas.ResultSet{}
	pageNum := 1

	for {
		e.log.Info("Processing page...", zap.Int("page", pageNum))

		found, err := page.WaitVisible(ctx, rowSelector, e.cfg.RowTimeout)
		if err != nil {
			return nil, e.fail(ctx, page, pageNum, fmt.Errorf("wait for rows: %w", err))
		}
		if !found {
			return nil, e.fail(ctx, page, pageNum, fmt.Errorf("no data rows became visible"))
		}

		var rows [][]string
		if err := page.Eval(ctx, rowsScript, &rows); err != nil {
			return nil, e.fail(ctx, page, pageNum, fmt.Errorf("read rows: %w", err))
		}
		for _, cells := range rows {
			record := schemas.ProductRecord{}
			// Cells beyond the header count are ignored; headers beyond the
			// cell count leave no entry.
			for i, cell := range cells {
				if i < len(headers) {
					record[headers[i]] = strings.TrimSpace(cell)
				}
			}
			records = append(records, record)
		}

		if e.cfg.MaxPages > 0 && pageNum >= e.cfg.MaxPages {
			e.log.Warn("Page bound reached, stopping pagination early.",
				zap.Int("max_pages", e.cfg.MaxPages))
			break
		}
		if !e.advance(ctx, page) {
			break
		}
		pageNum++
	}

	e.log.Info("Table extraction finished.",
		zap.Int("records", len(records)), zap.Int("pages", pageNum))
	return records, nil
}

// advance probes for a usable Next control and turns the page. Any absence,
// disabled state, or probe error is the normal end-of-pagination condition.
func (e *Extractor) advance(ctx context.Context, page schemas.PageDriver) bool {
	found, err := page.WaitVisible(ctx, nextSelector, e.cfg.ProbeTimeout)
	if err != nil || !found {
		return false
	}
	if _, disabled, err := page.Attribute(ctx, nextSelector, "disabled"); err != nil || disabled {
		return false
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return false
		}
	}

	if err := page.Click(ctx, nextSelector); err != nil {
		e.log.Debug("Next click failed, ending pagination.", zap.Error(err))
		return false
	}
	if err := page.WaitNetworkIdle(ctx, pageIdleTimeout); err != nil {
		return false
	}
	return true
}

// fallbackItem is the per-container result of the heuristic scrape script.
// Nil means the corresponding sub-selector matched nothing.
type fallbackItem struct {
	Name    *string `json:"name"`
	Price   *string `json:"price"`
	Content *string `json:"content"`
}

// extractFallback scrapes card-like containers. It degrades rather than
// fails: per-element errors skip the element, and zero containers yield a
// placeholder record plus a raw content dump for manual inspection.
func (e *Extractor) extractFallback(ctx context.Context, page schemas.PageDriver) schemas.ResultSet {
	items, err := e.scrapeContainers(ctx, page)
	if err != nil {
		e.log.Error("Fallback scrape failed, degrading to placeholder output.", zap.Error(err))
		items = nil
	}

	records := schemas.ResultSet{}
	for _, item := range items {
		record := schemas.ProductRecord{}
		if item.Name != nil {
			record["Name"] = strings.TrimSpace(*item.Name)
		}
		if item.Price != nil {
			record["Price"] = strings.TrimSpace(*item.Price)
		}
		if len(record) == 0 {
			content := ""
			if item.Content != nil {
				content = strings.TrimSpace(*item.Content)
			}
			record["Content"] = content
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		e.dumpContent(ctx, page)
		records = append(records, schemas.ProductRecord{"Content": placeholderContent})
	}

	e.log.Info("Fallback extraction finished.", zap.Int("records", len(records)))
	return records
}

// scrapeContainers runs the whole heuristic in one page-side pass so a
// broken container cannot abort its siblings.
func (e *Extractor) scrapeContainers(ctx context.Context, page schemas.PageDriver) ([]fallbackItem, error) {
	container, err := json.Marshal(e.cfg.ContainerSelector)
	if err != nil {
		return nil, err
	}
	nameSels, err := json.Marshal(e.cfg.NameSelectors)
	if err != nil {
		return nil, err
	}
	priceSels, err := json.Marshal(e.cfg.PriceSelectors)
	if err != nil {
		return nil, err
	}

	script := fmt.Sprintf(`((container, nameSels, priceSels) => {
	const out = [];
	document.querySelectorAll(container).forEach((el) => {
		try {
			const item = {name: null, price: null, content: null};
			for (const s of nameSels) {
				const n = el.querySelector(s);
				if (n) { item.name = n.textContent; break; }
			}
			for (const s of priceSels) {
				const n = el.querySelector(s);
				if (n) { item.price = n.textContent; break; }
			}
			if (item.name === null && item.price === null) {
				item.content = el.textContent;
			}
			out.push(item);
		} catch (err) { /* skip unreadable containers */ }
	});
	return out;
})(%s, %s, %s)`, container, nameSels, priceSels)

	var items []fallbackItem
	if err := page.Eval(ctx, script, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// dumpContent writes the full page HTML next to the placeholder output.
func (e *Extractor) dumpContent(ctx context.Context, page schemas.PageDriver) {
	content, err := page.Content(ctx)
	if err != nil {
		e.log.Debug("Could not read page content for dump.", zap.Error(err))
		return
	}
	path := filepath.Join(e.diagDir, fallbackHTML)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		e.log.Debug("Could not write page content dump.", zap.Error(err))
	}
}

// fail captures the diagnostic screenshot and wraps the cause. Table mode
// only: fallback mode never surfaces errors.
func (e *Extractor) fail(ctx context.Context, page schemas.PageDriver, pageNum int, cause error) error {
	extErr := &schemas.ExtractError{Page: pageNum, Cause: cause}
	e.log.Error("Data extraction failed.", zap.Error(extErr))
	if err := page.Screenshot(ctx, filepath.Join(e.diagDir, failureShot)); err != nil {
		e.log.Debug("Could not capture extraction failure screenshot.", zap.Error(err))
	}
	return extErr
}
