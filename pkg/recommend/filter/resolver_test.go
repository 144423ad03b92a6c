package filter

import (
	"context"
	"errors"
	"testing"
	"time"

	"fashion-recommender-be/internal/pkg/logger"
	"fashion-recommender-be/pkg/nlu"
	"fashion-recommender-be/pkg/nlu/nlutest"
	"fashion-recommender-be/pkg/store"
	"fashion-recommender-be/pkg/workpool"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticVocabulary struct {
	vocab store.Vocabulary
	err   error
}

func (s staticVocabulary) Vocabulary(ctx context.Context) (store.Vocabulary, error) {
	return s.vocab, s.err
}

var testVocab = store.Vocabulary{
	"basecolour":     {"Purple", "Pink", "Red", "Blue", "Black"},
	"gender":         {"Men", "Women", "Unisex"},
	"mastercategory": {"Apparel", "Footwear", "Accessories"},
	"season":         {"Summer", "Winter", "Fall", "Spring"},
}

func newResolver(f *nlutest.Fake, vocab staticVocabulary) *Resolver {
	client := nlu.NewClient(f, workpool.New(2, time.Second), logger.NewNopLogger())
	return NewResolver(client, vocab, logger.NewNopLogger())
}

func TestValidateAndCorrectIsFixedPointOnVocabulary(t *testing.T) {
	f := nlutest.New()
	r := newResolver(f, staticVocabulary{vocab: testVocab})

	in := store.FilterSet{"basecolour": {"Purple", "Pink"}, "gender": {"Women"}}
	out := r.ValidateAndCorrect(context.Background(), in)

	assert.Equal(t, in, out)
	assert.Equal(t, out, r.ValidateAndCorrect(context.Background(), out))
	assert.Equal(t, 0, f.Calls(nlu.TaskValidateFilters), "nothing to correct, no NLU round trip")
}

func TestValidateAndCorrectDropsUnknownKeysAndBlanks(t *testing.T) {
	r := newResolver(nlutest.New(), staticVocabulary{vocab: testVocab})

	out := r.ValidateAndCorrect(context.Background(), store.FilterSet{
		"basecolour": {" blue ", ""},
		"price":      {"cheap"},
		"season":     {},
	})

	assert.Equal(t, store.FilterSet{"basecolour": {"Blue"}}, out)
}

func TestValidateAndCorrectUsesNLU(t *testing.T) {
	f := nlutest.New().On(nlu.TaskValidateFilters, func(req nlu.Request) (*nlu.Result, error) {
		return &nlu.Result{Label: nlu.LabelOK, Slots: map[string]interface{}{
			nlu.SlotFilters: map[string]interface{}{
				"basecolour": "purple",
				"gender":     "Women",
				"usage":      "Casual", // not asked for
			},
		}}, nil
	})
	r := newResolver(f, staticVocabulary{vocab: testVocab})

	out := r.ValidateAndCorrect(context.Background(), store.FilterSet{
		"basecolour": {"Purpel"},
		"gender":     {"Women"},
	})

	assert.Equal(t, store.FilterSet{"basecolour": {"Purple"}, "gender": {"Women"}}, out)
	assert.Equal(t, 1, f.Calls(nlu.TaskValidateFilters))
}

func TestValidateAndCorrectSendsOnlyUnknownValues(t *testing.T) {
	f := nlutest.New().On(nlu.TaskValidateFilters, func(req nlu.Request) (*nlu.Result, error) {
		return &nlu.Result{Label: nlu.LabelOK, Slots: map[string]interface{}{
			nlu.SlotFilters: map[string]interface{}{
				"basecolour": []interface{}{"purple", "Teal"},
				"gender":     "Men",
			},
		}}, nil
	})
	r := newResolver(f, staticVocabulary{vocab: testVocab})

	out := r.ValidateAndCorrect(context.Background(), store.FilterSet{
		"basecolour": {"red", "Purpel"},
		"gender":     {"women"},
	})

	assert.Equal(t, store.FilterSet{"basecolour": {"Red", "Purple"}, "gender": {"Women"}}, out,
		"canonical values survive whatever the NLU answers and unknown corrections are dropped")

	requests := f.Requests(nlu.TaskValidateFilters)
	require.Len(t, requests, 1)
	assert.Equal(t, map[string]interface{}{"basecolour": "Purpel"}, requests[0].Context["filters"])
	assert.Equal(t, map[string][]string{"basecolour": testVocab["basecolour"]}, requests[0].Context["vocabulary"])
}

func TestValidateAndCorrectDropsUncorrectableKey(t *testing.T) {
	f := nlutest.New().Label(nlu.TaskValidateFilters, nlu.LabelOK, map[string]interface{}{
		nlu.SlotFilters: map[string]interface{}{},
	})
	r := newResolver(f, staticVocabulary{vocab: testVocab})

	out := r.ValidateAndCorrect(context.Background(), store.FilterSet{
		"season": {"Monsoon"},
		"gender": {"Men"},
	})

	assert.Equal(t, store.FilterSet{"gender": {"Men"}}, out)
}

func TestValidateAndCorrectFailsOpen(t *testing.T) {
	in := store.FilterSet{"basecolour": {"Lilac"}}

	t.Run("nlu unavailable", func(t *testing.T) {
		r := newResolver(nlutest.New().Fail(nlu.TaskValidateFilters, errors.New("timeout")), staticVocabulary{vocab: testVocab})
		assert.Equal(t, in, r.ValidateAndCorrect(context.Background(), in))
	})

	t.Run("vocabulary unavailable", func(t *testing.T) {
		r := newResolver(nlutest.New(), staticVocabulary{err: errors.New("db down")})
		assert.Equal(t, in, r.ValidateAndCorrect(context.Background(), in))
	})
}

func expandTo(filters map[string]interface{}) *nlutest.Fake {
	return nlutest.New().Label(nlu.TaskExpandFilters, nlu.LabelOK, map[string]interface{}{
		nlu.SlotFilters: filters,
		nlu.SlotMessage: "Including related colours",
	})
}

func TestExpand(t *testing.T) {
	current := store.FilterSet{"basecolour": {"Purple"}, "gender": {"Women"}}

	t.Run("broadens and keeps constraints", func(t *testing.T) {
		r := newResolver(expandTo(map[string]interface{}{
			"basecolour": []interface{}{"Pink", "Red"},
			"gender":     "Women",
			"season":     "Summer",
		}), staticVocabulary{vocab: testVocab})

		exp, ok := r.Expand(context.Background(), current, 2)

		require.True(t, ok)
		assert.Equal(t, store.FilterSet{"basecolour": {"Purple", "Pink", "Red"}, "gender": {"Women"}}, exp.Filters)
		assert.Equal(t, "Including related colours", exp.Message)
	})

	t.Run("dropping a constraint is rejected", func(t *testing.T) {
		r := newResolver(expandTo(map[string]interface{}{"basecolour": []interface{}{"Purple", "Pink"}}), staticVocabulary{vocab: testVocab})
		_, ok := r.Expand(context.Background(), current, 2)
		assert.False(t, ok)
	})

	t.Run("no progress is absent", func(t *testing.T) {
		r := newResolver(expandTo(map[string]interface{}{"basecolour": "Purple", "gender": "Women"}), staticVocabulary{vocab: testVocab})
		_, ok := r.Expand(context.Background(), current, 2)
		assert.False(t, ok)
	})

	t.Run("nlu failure is absent", func(t *testing.T) {
		r := newResolver(nlutest.New().Fail(nlu.TaskExpandFilters, errors.New("boom")), staticVocabulary{vocab: testVocab})
		_, ok := r.Expand(context.Background(), current, 2)
		assert.False(t, ok)
	})
}
