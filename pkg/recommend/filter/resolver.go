package filter

import (
	"context"

	"fashion-recommender-be/internal/pkg/logger"
	"fashion-recommender-be/pkg/store"
)

const module = "FILTER"

// Corrector is the NLU side of filter handling.
type Corrector interface {
	ValidateFilters(ctx context.Context, proposed store.FilterSet, vocab store.Vocabulary) (store.FilterSet, error)
	ExpandFilters(ctx context.Context, current store.FilterSet, resultCount int, vocab store.Vocabulary) (store.FilterSet, string, error)
}

// Expansion is a broadened filter set and the note to show the user.
type Expansion struct {
	Filters store.FilterSet
	Message string
}

// Resolver grounds user filters in the live catalog vocabulary.
type Resolver struct {
	corrector  Corrector
	vocabulary store.VocabularyProvider
	logger     logger.ILogger
}

func NewResolver(corrector Corrector, vocabulary store.VocabularyProvider, log logger.ILogger) *Resolver {
	return &Resolver{corrector: corrector, vocabulary: vocabulary, logger: log}
}

// ValidateAndCorrect maps out-of-vocabulary values to allowed ones or drops
// them. Values already in the vocabulary are kept in canonical form and only
// the rest go to the NLU. It never adds keys and fails open: when the
// vocabulary or the NLU is unavailable the (normalized) input comes back
// unchanged.
func (r *Resolver) ValidateAndCorrect(ctx context.Context, proposed store.FilterSet) store.FilterSet {
	clean := proposed.Normalize()
	if len(clean) == 0 {
		return clean
	}

	vocab, err := r.vocabulary.Vocabulary(ctx)
	if err != nil {
		r.logger.Warn(module, "Vocabulary unavailable, keeping filters as given", map[string]interface{}{"error": err.Error()})
		return clean
	}

	known, unknown := canonicalize(clean, vocab)
	if len(unknown) == 0 {
		return known
	}

	corrected, err := r.corrector.ValidateFilters(ctx, unknown, vocab)
	if err != nil {
		r.logger.Warn(module, "Filter validation failed, keeping filters as given", map[string]interface{}{
			"filters": clean,
			"error":   err.Error(),
		})
		return clean
	}

	out := known.Clone()
	for key, values := range corrected.Normalize() {
		if _, asked := unknown[key]; !asked {
			continue
		}
		fixed := allowedValues(key, values, vocab)
		if len(fixed) == 0 {
			continue
		}
		out[key] = union(out[key], fixed)
	}

	r.logger.Info(module, "Filters corrected", map[string]interface{}{
		"proposed":  clean,
		"unknown":   unknown,
		"corrected": out,
	})
	return out
}

// Expand broadens current for a retry. ok is false when the NLU failed or
// offered nothing usable, which tells the caller to stop relaxing.
func (r *Resolver) Expand(ctx context.Context, current store.FilterSet, resultCount int) (*Expansion, bool) {
	vocab, err := r.vocabulary.Vocabulary(ctx)
	if err != nil {
		r.logger.Warn(module, "Vocabulary unavailable for expansion", map[string]interface{}{"error": err.Error()})
		vocab = store.Vocabulary{}
	}

	proposal, message, err := r.corrector.ExpandFilters(ctx, current, resultCount, vocab)
	if err != nil {
		r.logger.Warn(module, "Filter expansion failed", map[string]interface{}{"error": err.Error()})
		return nil, false
	}
	proposal = proposal.Normalize()

	expanded := store.FilterSet{}
	for key, values := range current {
		extra, ok := proposal[key]
		if !ok {
			r.logger.Warn(module, "Expansion dropped a constraint, ignoring it", map[string]interface{}{
				"attribute": key,
				"proposal":  proposal,
			})
			return nil, false
		}
		expanded[key] = union(values, canonicalValues(key, extra, vocab))
	}

	if expanded.Equal(current) {
		r.logger.Info(module, "Expansion made no progress", map[string]interface{}{"filters": current})
		return nil, false
	}

	r.logger.Info(module, "Filters expanded", map[string]interface{}{
		"from":         current,
		"to":           expanded,
		"result_count": resultCount,
	})
	return &Expansion{Filters: expanded, Message: message}, true
}

// canonicalize splits filters into values the vocabulary allows, in their
// canonical letter case, and values it does not know. Attributes without a
// known vocabulary count as allowed.
func canonicalize(filters store.FilterSet, vocab store.Vocabulary) (known, unknown store.FilterSet) {
	known, unknown = store.FilterSet{}, store.FilterSet{}
	for key, values := range filters {
		if len(vocab[key]) == 0 {
			known[key] = values
			continue
		}
		for _, v := range values {
			if c, ok := vocab.Canonical(key, v); ok {
				known[key] = union(known[key], []string{c})
			} else {
				unknown[key] = union(unknown[key], []string{v})
			}
		}
	}
	return known, unknown
}

// allowedValues keeps the canonical form of the values the vocabulary allows.
// Attributes without a known vocabulary keep every value.
func allowedValues(key string, values []string, vocab store.Vocabulary) []string {
	if len(vocab[key]) == 0 {
		return canonicalValues(key, values, vocab)
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if c, ok := vocab.Canonical(key, v); ok {
			out = union(out, []string{c})
		}
	}
	return out
}

func canonicalValues(key string, values []string, vocab store.Vocabulary) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if c, ok := vocab.Canonical(key, v); ok {
			v = c
		}
		out = union(out, []string{v})
	}
	return out
}

func union(base, extra []string) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, v := range append(append([]string(nil), base...), extra...) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
