package dialogue

import (
	"fmt"

	"fashion-recommender-be/internal/constant"
	"fashion-recommender-be/pkg/events"
	"fashion-recommender-be/pkg/nlu"
	"fashion-recommender-be/pkg/recommend/response"
	"fashion-recommender-be/pkg/similarity"
	"fashion-recommender-be/pkg/store"

	"golang.org/x/sync/errgroup"
)

type recommendation struct {
	Product   store.Product
	Score     float64
	Rationale string
}

// similarTo samples from the neighbour pool of base and writes a rationale
// for each pick. Rationales are optional; a failed one leaves the caption
// without it.
func (o *Orchestrator) similarTo(t *turn, idx *similarity.Index, base store.Product) []recommendation {
	neighbours := idx.Query(base.ID, o.config.NeighbourPool)
	if len(neighbours) == 0 {
		return nil
	}

	picked := o.pick(len(neighbours), o.config.SampleSize)
	recs := make([]recommendation, 0, len(picked))
	for _, pos := range picked {
		n := neighbours[pos]
		p, ok := idx.Product(n.ProductID)
		if !ok {
			continue
		}
		recs = append(recs, recommendation{Product: p, Score: n.Score})
	}

	g, ctx := errgroup.WithContext(t.ctx)
	for i := range recs {
		g.Go(func() error {
			text, err := o.language.Compose(ctx, nlu.TaskSimilarRationale, t.text, map[string]interface{}{
				nlu.KeyBaseName:    base.DisplayName,
				nlu.KeyProductName: recs[i].Product.DisplayName,
				nlu.KeyScore:       recs[i].Score,
			})
			if err != nil {
				o.logger.Debug(module, "Rationale unavailable", map[string]interface{}{
					"product_id": recs[i].Product.ID,
					"error":      err.Error(),
				})
				return nil
			}
			recs[i].Rationale = text
			return nil
		})
	}
	_ = g.Wait()

	return recs
}

// recommendFromHistory picks a product the customer interacted with as the
// new base and shows its neighbours. Failures are reported to the user but
// never undo the identification that preceded it.
func (o *Orchestrator) recommendFromHistory(t *turn) {
	idx, ok := o.index.Current()
	if !ok {
		t.say(response.Text(constant.ReplyUnavailable))
		return
	}

	ids, err := o.catalog.HistoryProducts(t.ctx, *t.session.CustomerID)
	if err != nil {
		o.logger.Warn(module, "History lookup failed", map[string]interface{}{
			"customer_id": *t.session.CustomerID,
			"error":       err.Error(),
		})
		t.say(response.Text(constant.ReplyServiceDown))
		return
	}

	candidates := make([]int64, 0, len(ids))
	for _, id := range ids {
		if idx.Contains(id) {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		t.session.ReplaceShown(nil)
		t.say(response.Text(constant.ReplyNoHistory))
		return
	}

	base, _ := idx.Product(candidates[o.intn(len(candidates))])
	recs := o.similarTo(t, idx, base)

	t.say(
		response.Text(constant.ReplyHistoryIntro),
		response.ProductPhoto(base, ""),
	)
	if len(recs) == 0 {
		t.session.BaseProduct = &base
		t.session.ReplaceShown(nil)
		t.say(response.Textf(constant.ReplyNoSimilar, base.DisplayName))
		return
	}

	t.say(
		response.Text(o.compose(t, nlu.TaskHistoryMessage, map[string]interface{}{
			nlu.KeyCustomerName: t.session.CustomerName,
			nlu.KeyProductName:  base.DisplayName,
		}, fmt.Sprintf(constant.ReplyHistoryMessage, base.DisplayName))),
		recommendationGallery(recs),
		response.Text(o.postSuggestion(t)),
	)

	t.session.BaseProduct = &base
	t.session.ReplaceShown(productsOf(recs))
	o.emit(t, events.TypeSimilarShown, map[string]interface{}{
		"base_product_id": base.ID,
		"product_ids":     idsOf(recs),
		"source":          "history",
	})
}

func recommendationGallery(recs []recommendation) response.OutboundMessage {
	items := make([]response.GalleryItem, len(recs))
	for i, r := range recs {
		caption := r.Product.DisplayName
		if r.Rationale != "" {
			caption += "\n" + r.Rationale
		}
		caption += fmt.Sprintf("\nSimilarity: %.3f", r.Score)
		items[i] = response.GalleryItem{ImageURL: r.Product.ImageURL, Caption: caption}
	}
	return response.Gallery(items)
}

func productsOf(recs []recommendation) []store.Product {
	out := make([]store.Product, len(recs))
	for i, r := range recs {
		out[i] = r.Product
	}
	return out
}

func idsOf(recs []recommendation) []int64 {
	out := make([]int64, len(recs))
	for i, r := range recs {
		out[i] = r.Product.ID
	}
	return out
}
