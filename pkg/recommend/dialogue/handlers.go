package dialogue

import (
	"errors"
	"fmt"

	"fashion-recommender-be/internal/constant"
	"fashion-recommender-be/pkg/apperr"
	"fashion-recommender-be/pkg/events"
	"fashion-recommender-be/pkg/nlu"
	"fashion-recommender-be/pkg/recommend/response"
	"fashion-recommender-be/pkg/recommend/search"
	"fashion-recommender-be/pkg/store"

	"golang.org/x/sync/errgroup"
)

func (o *Orchestrator) handleNone(t *turn, d *nlu.Decision) error {
	t.say(response.Text(o.compose(t, nlu.TaskOutOfDomain, nil, constant.ReplyOutOfDomain)))
	return nil
}

func (o *Orchestrator) handleReset(t *turn, d *nlu.Decision) error {
	t.session = o.sessions.Reset(t.session.ID)
	t.replaced = true
	t.say(response.Text(constant.ReplyReset))
	o.emit(t, events.TypeSessionReset, map[string]interface{}{})
	return nil
}

func (o *Orchestrator) handleIdentify(t *turn, d *nlu.Decision) error {
	res, err := o.language.ExtractCustomerID(t.ctx, d.Text)
	if err != nil {
		return err
	}
	if !res.Found {
		msg := res.Message
		if msg == "" {
			msg = constant.ReplyAskCustomerID
		}
		t.say(response.Text(msg))
		return nil
	}

	customer, err := o.catalog.FindCustomer(t.ctx, res.ID)
	if errors.Is(err, apperr.ErrNotFound) {
		t.say(response.Textf(constant.ReplyCustomerNotFound, res.ID))
		return nil
	}
	if err != nil {
		return err
	}

	id := customer.ID
	name := customer.FullName()
	t.session.CustomerID = &id
	t.session.CustomerName = name
	t.dirty = true

	t.say(response.Text(o.compose(t, nlu.TaskWelcome, map[string]interface{}{
		nlu.KeyCustomerName: name,
	}, fmt.Sprintf(constant.ReplyWelcome, name))))
	o.emit(t, events.TypeCustomerIdentified, map[string]interface{}{
		"customer_id": id,
	})

	o.recommendFromHistory(t)
	return nil
}

func (o *Orchestrator) handleSearch(t *turn, d *nlu.Decision) error {
	t.say(response.Text(constant.NoteSearching))

	outcome, err := o.searcher.Search(t.ctx, d.Filters, func(n search.Notice) {
		t.say(response.Text(noticeText(n)))
	})
	if err != nil {
		return err
	}

	if len(outcome.Products) == 0 {
		t.say(response.Text(constant.NoteNoResults))
		return nil
	}

	shown := o.sampleProducts(outcome.Products)
	t.session.ReplaceShown(shown)
	t.session.ActiveFilters = outcome.Filters.Clone()
	t.dirty = true

	t.say(
		response.Text(constant.NoteFound),
		response.ProductGallery(shown, o.describeProducts(t, shown)),
		response.Text(o.postSuggestion(t)),
	)
	o.emit(t, events.TypeSearchCompleted, map[string]interface{}{
		"filters":   outcome.Filters,
		"count":     len(outcome.Products),
		"queries":   outcome.Queries,
		"satisfied": outcome.Satisfied,
	})
	return nil
}

// describeProducts writes a short description for every product in
// parallel. A failed description leaves that caption with the bare name.
func (o *Orchestrator) describeProducts(t *turn, products []store.Product) []string {
	out := make([]string, len(products))
	g, ctx := errgroup.WithContext(t.ctx)
	for i := range products {
		g.Go(func() error {
			text, err := o.language.Compose(ctx, nlu.TaskProductCaption, t.text, map[string]interface{}{
				nlu.KeyProductName: products[i].DisplayName,
				nlu.KeyAttributes:  products[i].Attributes,
			})
			if err != nil {
				o.logger.Debug(module, "Caption unavailable", map[string]interface{}{
					"product_id": products[i].ID,
					"error":      err.Error(),
				})
				return nil
			}
			out[i] = text
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (o *Orchestrator) handleDetail(t *turn, d *nlu.Decision) error {
	if len(t.session.ShownProducts) == 0 {
		t.say(response.Text(constant.ReplyNothingShown))
		return nil
	}

	pos, err := o.language.ResolveSelection(t.ctx, d.Text, t.session.ShownProducts)
	if errors.Is(err, apperr.ErrAmbiguous) {
		t.say(response.Text(constant.ReplyNotUnderstood))
		return nil
	}
	if err != nil {
		return err
	}

	product := o.enrich(t, t.session.ShownProducts[pos])
	description := o.compose(t, nlu.TaskProductDescription, map[string]interface{}{
		nlu.KeyProductName:  product.DisplayName,
		nlu.KeyAttributes:   product.Attributes,
		nlu.KeyIdentified:   t.session.CustomerID != nil,
		nlu.KeyCustomerName: t.session.CustomerName,
	}, constant.NoteDescriptionFallback)

	t.session.BaseProduct = &product
	t.dirty = true
	t.say(response.ProductPhoto(product, description))
	return nil
}

// enrich reloads the product for its full attribute set. The shown copy is
// good enough when the store cannot answer.
func (o *Orchestrator) enrich(t *turn, p store.Product) store.Product {
	full, err := o.catalog.FindProduct(t.ctx, p.ID)
	if err != nil {
		o.logger.Warn(module, "Product reload failed, using shown copy", map[string]interface{}{
			"product_id": p.ID,
			"error":      err.Error(),
		})
		return p.Clone()
	}
	if full.ImageURL == "" {
		full.ImageURL = p.ImageURL
	}
	return full.Clone()
}

func (o *Orchestrator) handleSimilar(t *turn, d *nlu.Decision) error {
	var base *store.Product
	if len(t.session.ShownProducts) > 0 {
		pos, err := o.language.ResolveSelection(t.ctx, d.Text, t.session.ShownProducts)
		switch {
		case err == nil:
			p := t.session.ShownProducts[pos].Clone()
			base = &p
		case errors.Is(err, apperr.ErrAmbiguous):
		default:
			return err
		}
	}
	if base == nil && t.session.BaseProduct != nil {
		p := t.session.BaseProduct.Clone()
		base = &p
	}
	if base == nil {
		t.say(response.Text(constant.ReplyAskBase))
		return nil
	}

	idx, ok := o.index.Current()
	if !ok {
		t.say(response.Text(constant.ReplyUnavailable))
		return nil
	}

	recs := o.similarTo(t, idx, *base)
	if len(recs) == 0 {
		t.say(response.Textf(constant.ReplyNoSimilar, base.DisplayName))
		return nil
	}

	t.session.BaseProduct = base
	t.session.ReplaceShown(productsOf(recs))
	t.dirty = true

	t.say(
		response.Textf(constant.ReplySimilarIntro, base.DisplayName),
		recommendationGallery(recs),
		response.Text(o.postSuggestion(t)),
	)
	o.emit(t, events.TypeSimilarShown, map[string]interface{}{
		"base_product_id": base.ID,
		"product_ids":     idsOf(recs),
	})
	return nil
}

func (o *Orchestrator) postSuggestion(t *turn) string {
	return o.compose(t, nlu.TaskPostSuggestion, nil, constant.ReplyPostSuggestion)
}

func noticeText(n search.Notice) string {
	switch n.Kind {
	case search.NoticeShortfall:
		if n.Count == 0 {
			return constant.NoteNoProducts
		}
		return fmt.Sprintf(constant.NoteOnlyFound, n.Count)
	case search.NoticeExpanded:
		if n.Message != "" {
			return n.Message
		}
		return constant.NoteBroadening
	default:
		return constant.NoteExpansionFailed
	}
}
