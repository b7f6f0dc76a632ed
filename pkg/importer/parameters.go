package importer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/partforge/partsync/internal/fuzzy"
	"github.com/partforge/partsync/pkg/catalog"
	"github.com/partforge/partsync/pkg/errors"
	"github.com/partforge/partsync/pkg/inventory"
	"github.com/partforge/partsync/pkg/prompt"
	"github.com/partforge/partsync/pkg/severity"
	"github.com/partforge/partsync/pkg/suppliers"
)

const (
	// parameterWorkers bounds the concurrent parameter writes per part.
	parameterWorkers = 4
	// parameterMatchCount is how many ranked raw parameters are offered.
	parameterMatchCount = 20
)

// reconcileParameters matches the candidate's raw parameters to the
// templates required by the part's category and synchronizes the
// repository records. Individual write failures are folded into Incomplete
// without aborting the batch; partial success is acceptable here, unlike
// top-level import failures.
func (imp *Importer) reconcileParameters(ctx context.Context, part *inventory.Part, category *catalog.Category, candidate *suppliers.Candidate, updateExisting bool) severity.Level {
	if part == nil {
		if inventory.IsDryRun(imp.client) {
			return severity.Success
		}
		return severity.Failure
	}

	if category == nil {
		var ok bool
		category, ok = imp.catalog.CategoryByPartCategoryID(part.CategoryID)
		if !ok {
			imp.log.Error().Int("category", part.CategoryID).
				Msg("part category is not present in the categories configuration")
			return severity.Failure
		}
	}

	existingList, err := imp.client.Parameters(ctx, part.ID)
	if err != nil {
		imp.logAPIFailure(err, "failed to load part parameters")
		return severity.Incomplete
	}
	existing := make(map[string]inventory.Parameter, len(existingList))
	for _, p := range existingList {
		existing[p.TemplateName] = p
	}

	required := make(map[string]bool, len(category.Parameters))
	for _, name := range category.Parameters {
		required[name] = true
	}

	// Match raw names through the alias table; the first unassigned match
	// wins. Raw parameters are walked in sorted-key order to keep "first"
	// deterministic.
	matched := make(map[string]string)
	for _, rawName := range sortedKeys(candidate.Parameters) {
		for _, template := range imp.catalog.TemplatesForAlias(rawName) {
			if _, taken := matched[template.Name]; required[template.Name] && !taken {
				matched[template.Name] = candidate.Parameters[rawName]
			}
		}
	}

	// Required parameters not matched and not already populated.
	var unassigned []string
	for _, name := range category.Parameters {
		if _, ok := matched[name]; ok {
			continue
		}
		if p, ok := existing[name]; ok && p.Value != "" {
			continue
		}
		unassigned = append(unassigned, name)
	}

	if len(unassigned) > 0 && imp.interactive {
		unassigned = imp.rescueParameters(candidate, matched, unassigned)
	}

	result := imp.applyParameters(ctx, part, existing, matched, updateExisting)

	if len(unassigned) > 0 {
		imp.log.Warn().
			Strs("parameters", unassigned).
			Str("supplier_link", candidate.SupplierLink).
			Msg("failed to match parameters from supplier API")
		result = severity.Combine(result, severity.Incomplete)
	}

	return result
}

// rescueParameters interactively assigns values for required parameters the
// alias table could not match, returning the names still unassigned. A
// selection may register the raw name as a new alias when the template is
// unambiguous.
func (imp *Importer) rescueParameters(candidate *suppliers.Candidate, matched map[string]string, unassigned []string) []string {
	var still []string
	for _, name := range unassigned {
		alias, value, ok := imp.selectParameter(name, candidate.Parameters)
		if !ok {
			still = append(still, name)
			continue
		}
		matched[name] = value

		if alias == "" {
			continue
		}
		templates := imp.catalog.TemplatesForAlias(name)
		if len(templates) != 1 {
			imp.log.Warn().Str("alias", alias).Str("parameter", name).
				Msg("failed to add parameter alias")
			continue
		}
		imp.catalog.AddParameterAlias(alias, templates[0])
	}
	return still
}

// selectParameter offers the candidate's raw parameters ranked by fuzzy
// partial similarity between the wanted name and either the raw name or
// the raw value. Returns the chosen raw name (for alias registration), the
// value, and whether anything was chosen; manual entry yields no alias.
func (imp *Importer) selectParameter(name string, raw map[string]string) (alias, value string, ok bool) {
	type entry struct {
		name  string
		value string
		score int
	}
	entries := make([]entry, 0, len(raw))
	for _, rawName := range sortedKeys(raw) {
		rawValue := raw[rawName]
		score := fuzzy.PartialRatio(name, rawName)
		if s := fuzzy.PartialRatio(name, rawValue); s > score {
			score = s
		}
		entries = append(entries, entry{name: rawName, value: rawValue, score: score})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].score > entries[j].score })
	if len(entries) > parameterMatchCount {
		entries = entries[:parameterMatchCount]
	}

	valueWidth := 0
	for _, e := range entries {
		if len(e.value) > valueWidth {
			valueWidth = len(e.value)
		}
	}
	options := make([]string, 0, len(entries)+1)
	for _, e := range entries {
		options = append(options, fmt.Sprintf("%-*s | %s", valueWidth, e.value, e.name))
	}
	options = append(options, "Enter Value Manually ...")

	label := fmt.Sprintf("failed to match value for parameter '%s', select value", name)
	idx, err := imp.chooser.Select(label, options)
	if err != nil || idx == prompt.None {
		return "", "", false
	}
	if idx < len(entries) {
		return entries[idx].name, entries[idx].value, true
	}

	manual, err := imp.chooser.Input("value")
	if err != nil || manual == "" {
		return "", "", false
	}
	return "", manual, true
}

// applyParameters writes the matched values with a bounded worker pool.
// Creates happen for known templates without an existing record; updates
// only when requested and the sanitized value differs. Every individual
// failure becomes a warning folded into Incomplete.
func (imp *Importer) applyParameters(ctx context.Context, part *inventory.Part, existing map[string]inventory.Parameter, matched map[string]string, updateExisting bool) severity.Level {
	result := severity.Success
	dryRun := inventory.IsDryRun(imp.client)

	var mu sync.Mutex
	var warnings []string
	warn := func(format string, args ...any) {
		mu.Lock()
		warnings = append(warnings, fmt.Sprintf(format, args...))
		mu.Unlock()
	}

	g := new(errgroup.Group)
	g.SetLimit(parameterWorkers)

	scheduled := 0
	for _, name := range sortedKeys(matched) {
		value := sanitizeParameterValue(matched[name])
		if value == "" {
			continue
		}

		if current, ok := existing[name]; ok {
			if updateExisting && current.Value != value {
				scheduled++
				g.Go(func() error {
					if err := imp.client.UpdateParameter(ctx, current.ID, value); err != nil {
						warn("failed to update parameter %q to %q: %s", current.TemplateName, value, apiDetail(err))
					}
					return nil
				})
			}
			continue
		}

		if template, ok := imp.templates[name]; ok {
			scheduled++
			g.Go(func() error {
				if err := imp.client.CreateParameter(ctx, part.ID, template.ID, value); err != nil {
					warn("failed to create parameter %q: %s", template.Name, apiDetail(err))
				}
				return nil
			})
		} else if !dryRun {
			imp.log.Warn().Str("parameter", name).Msg("failed to find template parameter")
			result = severity.Combine(result, severity.Incomplete)
		}
	}

	if scheduled > 0 {
		imp.log.Info().Int("writes", scheduled).Msg("updating part parameters")
	}
	_ = g.Wait()

	for _, warning := range warnings {
		imp.log.Warn().Msg(warning)
		result = severity.Combine(result, severity.Incomplete)
	}

	return result
}

func apiDetail(err error) string {
	if apiErr, ok := errors.IsAPIError(err); ok {
		return strings.TrimSpace(apiErr.Detail())
	}
	return err.Error()
}

// sanitizeParameterValue normalizes a raw supplier parameter value: outer
// whitespace is trimmed, a lone "-" means an explicitly empty value, the
// tolerance glyph "±" is stripped, whitespace runs collapse to single
// spaces, and the unit spellings "Ohm"/"ohms" become "ohm". An empty
// result is dropped by the caller, never written.
func sanitizeParameterValue(value string) string {
	value = strings.TrimSpace(value)
	if value == "-" {
		return ""
	}
	value = strings.ReplaceAll(value, "±", "")
	value = strings.Join(strings.Fields(value), " ")
	value = strings.ReplaceAll(value, "Ohm", "ohm")
	value = strings.ReplaceAll(value, "ohms", "ohm")
	return value
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
