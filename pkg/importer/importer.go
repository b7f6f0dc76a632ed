// Package importer implements the reconciliation engine: it fans a search
// term out to supplier backends, matches the returned candidates against
// the inventory repository, and creates or updates manufacturer, part,
// supplier-part, parameter and price-break records idempotently.
//
// An Importer owns run-scoped mutable state (the alias tables and the
// manufacturer part established for the current search term) and is NOT
// safe for concurrent ImportPart calls; use one Importer per import stream.
package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/partforge/partsync/pkg/catalog"
	"github.com/partforge/partsync/pkg/config"
	"github.com/partforge/partsync/pkg/errors"
	"github.com/partforge/partsync/pkg/inventory"
	"github.com/partforge/partsync/pkg/logging"
	"github.com/partforge/partsync/pkg/prompt"
	"github.com/partforge/partsync/pkg/severity"
	"github.com/partforge/partsync/pkg/suppliers"
)

// Importer drives imports for one stream of search terms.
type Importer struct {
	client    inventory.Client
	catalog   *catalog.Catalog
	suppliers []suppliers.Supplier
	chooser   prompt.Chooser
	log       zerolog.Logger

	interactive bool
	maxResults  int
	datasheets  string
	currency    string

	// templates indexes every repository parameter template by name.
	templates map[string]inventory.ParameterTemplate

	// establishedMP is the manufacturer part established for the current
	// search term. At most one manufacturer part is treated as "the"
	// existing one across all supplier results of a call, so a component
	// sourced from several suppliers maps to a single part.
	establishedMP *inventory.ManufacturerPart
}

// Option configures an Importer.
type Option func(*Importer)

// WithChooser makes the import interactive using the given chooser.
func WithChooser(c prompt.Chooser) Option {
	return func(imp *Importer) {
		imp.chooser = c
		imp.interactive = true
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(imp *Importer) { imp.log = log }
}

// WithMaxResults caps how many candidates are offered per supplier.
func WithMaxResults(n int) Option {
	return func(imp *Importer) {
		if n > 0 {
			imp.maxResults = n
		}
	}
}

// WithDatasheets selects the datasheet attachment mode (config.Datasheet*).
func WithDatasheets(mode string) Option {
	return func(imp *Importer) { imp.datasheets = mode }
}

// WithCurrency sets the currency reported for price breaks when the
// candidate does not carry one.
func WithCurrency(currency string) Option {
	return func(imp *Importer) { imp.currency = currency }
}

// New creates an Importer. It reconciles the configured category tree and
// parameter templates with the repository (see catalog.Setup) and preloads
// the template index, so construction performs repository calls.
func New(ctx context.Context, client inventory.Client, cat *catalog.Catalog, sups []suppliers.Supplier, opts ...Option) (*Importer, error) {
	imp := &Importer{
		client:     client,
		catalog:    cat,
		suppliers:  sups,
		chooser:    prompt.NonInteractive{},
		log:        *logging.Default(),
		maxResults: 10,
		datasheets: config.DatasheetLink,
		currency:   "EUR",
	}
	for _, opt := range opts {
		opt(imp)
	}

	if err := cat.Setup(ctx, client); err != nil {
		return nil, err
	}

	templates, err := client.ParameterTemplates(ctx)
	if err != nil {
		return nil, err
	}
	imp.templates = make(map[string]inventory.ParameterTemplate, len(templates))
	for _, t := range templates {
		imp.templates[t.Name] = t
	}

	return imp, nil
}

// ImportOption scopes a single ImportPart call.
type ImportOption func(*importCall)

type importCall struct {
	existingPart *inventory.Part
	onlySupplier string
	stockLoc     int
	stockAmount  float64
}

// WithExistingPart attaches candidates to a pre-selected repository part
// instead of resolving or creating one.
func WithExistingPart(part *inventory.Part) ImportOption {
	return func(c *importCall) { c.existingPart = part }
}

// WithOnlySupplier restricts the search to a single registered supplier.
func WithOnlySupplier(name string) ImportOption {
	return func(c *importCall) { c.onlySupplier = name }
}

// WithStock adds stock at the given location after a successful import.
func WithStock(locationID int, amount float64) ImportOption {
	return func(c *importCall) {
		c.stockLoc = locationID
		c.stockAmount = amount
	}
}

// searchOutcome is one supplier's completed search.
type searchOutcome struct {
	candidates []*suppliers.Candidate
	total      int
	err        error
}

// ImportPart imports one search term. Searches are dispatched to all
// suppliers concurrently, but results are processed strictly in
// registration order, which is what makes the shared established-
// manufacturer-part state safe. The returned level aggregates every step,
// worst outcome wins.
func (imp *Importer) ImportPart(ctx context.Context, term string, opts ...ImportOption) severity.Level {
	call := &importCall{}
	for _, opt := range opts {
		opt(call)
	}

	sups := imp.suppliers
	if call.onlySupplier != "" {
		sups = nil
		for _, s := range imp.suppliers {
			if s.Name() == call.onlySupplier {
				sups = append(sups, s)
			}
		}
	}

	imp.log.Info().Str("term", term).Msg("searching")
	imp.establishedMP = nil
	result := severity.Success

	// Fire all searches without blocking; each future is buffered so a
	// drained goroutine never leaks.
	futures := make([]chan searchOutcome, len(sups))
	for i, s := range sups {
		ch := make(chan searchOutcome, 1)
		futures[i] = ch
		go func(s suppliers.Supplier) {
			candidates, total, err := s.Search(ctx, term)
			ch <- searchOutcome{candidates: candidates, total: total, err: err}
		}(s)
	}

	for i, s := range sups {
		imp.log.Info().Str("supplier", s.Name()).Msg("collecting results")
		outcome := <-futures[i]

		if outcome.err != nil {
			imp.logAPIFailure(outcome.err, "search failed")
			drain(futures[i+1:])
			return severity.Error
		}

		candidate, lvl := imp.selectCandidate(s, term, outcome)
		result = severity.Combine(result, lvl)
		if candidate == nil {
			continue
		}

		lvl, err := imp.importCandidate(ctx, s, candidate, call)
		result = severity.Combine(result, lvl)
		if err != nil {
			imp.logAPIFailure(err, "failed to import part")
			result = severity.Error
		}

		if result == severity.Error {
			// Let the outstanding search calls finish before returning so
			// no background work leaks across import calls.
			drain(futures[i+1:])
			return severity.Error
		}
	}

	if imp.establishedMP == nil {
		result = severity.Combine(result, severity.Failure)
	}

	return result
}

// selectCandidate applies the per-supplier selection rules: zero results
// skip silently, a single result is taken, multiple results prompt when
// interactive and otherwise skip with Incomplete.
func (imp *Importer) selectCandidate(s suppliers.Supplier, term string, outcome searchOutcome) (*suppliers.Candidate, severity.Level) {
	switch {
	case len(outcome.candidates) == 0:
		imp.log.Info().Str("supplier", s.Name()).Str("term", term).Msg("no results")
		return nil, severity.Success

	case len(outcome.candidates) == 1:
		return outcome.candidates[0], severity.Success

	case imp.interactive:
		candidates := outcome.candidates
		if len(candidates) > imp.maxResults {
			candidates = candidates[:imp.maxResults]
		}
		if outcome.total > len(candidates) {
			imp.log.Info().
				Str("supplier", s.Name()).
				Int("total", outcome.total).
				Int("shown", len(candidates)).
				Msg("showing only the first results")
		}
		label := fmt.Sprintf("found multiple parts at %s, select which one to import", s.Name())
		idx, err := imp.chooser.Select(label, formatCandidates(candidates))
		if err != nil || idx == prompt.None {
			return nil, severity.Incomplete
		}
		return candidates[idx], severity.Success

	default:
		imp.log.Warn().
			Str("supplier", s.Name()).
			Int("results", outcome.total).
			Msg("found multiple parts, skipping import")
		return nil, severity.Incomplete
	}
}

// formatCandidates renders candidates as aligned "MPN | manufacturer | SKU
// (link)" rows for selection.
func formatCandidates(candidates []*suppliers.Candidate) []string {
	mpnWidth, mfrWidth, skuWidth := 0, 0, 0
	for _, c := range candidates {
		mpnWidth = max(mpnWidth, len(c.MPN))
		mfrWidth = max(mfrWidth, len(c.Manufacturer))
		skuWidth = max(skuWidth, len(c.SKU))
	}

	rows := make([]string, len(candidates))
	for i, c := range candidates {
		rows[i] = fmt.Sprintf("%-*s | %-*s | %-*s (%s)",
			mpnWidth, c.MPN, mfrWidth, c.Manufacturer, skuWidth, c.SKU, c.SupplierLink)
	}
	return rows
}

// logAPIFailure reports a failed repository or supplier call, extracting
// structured detail from the response payload when present.
func (imp *Importer) logAPIFailure(err error, msg string) {
	if apiErr, ok := errors.IsAPIError(err); ok {
		detail := apiErr.Detail()
		imp.log.Error().
			Int("status", apiErr.StatusCode).
			Str("endpoint", apiErr.Endpoint).
			Msg(msg + " with:\n" + strings.TrimRight(detail, "\n"))
		return
	}
	imp.log.Error().Err(err).Msg(msg)
}

// drain blocks until every outstanding search future has completed.
func drain(futures []chan searchOutcome) {
	for _, ch := range futures {
		<-ch
	}
}
