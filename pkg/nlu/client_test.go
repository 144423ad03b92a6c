package nlu_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"fashion-recommender-be/internal/pkg/logger"
	"fashion-recommender-be/pkg/apperr"
	"fashion-recommender-be/pkg/nlu"
	"fashion-recommender-be/pkg/nlu/nlutest"
	"fashion-recommender-be/pkg/store"
	"fashion-recommender-be/pkg/workpool"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(f *nlutest.Fake) *nlu.Client {
	return nlu.NewClient(f, workpool.New(4, time.Second), logger.NewNopLogger())
}

var shown = []store.Product{
	{ID: 1, DisplayName: "Blue Shirt"},
	{ID: 2, DisplayName: "Red Dress"},
	{ID: 3, DisplayName: "Black Jeans"},
}

func TestResolveSelection(t *testing.T) {
	tests := []struct {
		name    string
		label   string
		slots   map[string]interface{}
		want    int
		wantErr error
	}{
		{name: "by position", label: nlu.LabelSelected, slots: map[string]interface{}{nlu.SlotSelection: int64(2)}, want: 1},
		{name: "float from JSON", label: nlu.LabelSelected, slots: map[string]interface{}{nlu.SlotSelection: float64(3)}, want: 2},
		{name: "out of range", label: nlu.LabelSelected, slots: map[string]interface{}{nlu.SlotSelection: int64(4)}, wantErr: apperr.ErrAmbiguous},
		{name: "zero", label: nlu.LabelSelected, slots: map[string]interface{}{nlu.SlotSelection: int64(0)}, wantErr: apperr.ErrAmbiguous},
		{name: "unresolved", label: nlu.LabelNone, wantErr: apperr.ErrAmbiguous},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(nlutest.New().Label(nlu.TaskSelectProduct, tt.label, tt.slots))
			got, err := c.ResolveSelection(context.Background(), "that one", shown)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveSelectionWithNothingShown(t *testing.T) {
	f := nlutest.New()
	c := newClient(f)

	_, err := c.ResolveSelection(context.Background(), "the first", nil)

	assert.ErrorIs(t, err, apperr.ErrAmbiguous)
	assert.Equal(t, 0, f.Calls(nlu.TaskSelectProduct))
}

func TestTransportErrorsBecomeUnavailable(t *testing.T) {
	c := newClient(nlutest.New().Fail(nlu.TaskGreeting, errors.New("timeout")))

	_, err := c.IsGreeting(context.Background(), "hola")

	assert.ErrorIs(t, err, apperr.ErrCollaboratorUnavailable)
}

func TestClassifyIntentDefaultsText(t *testing.T) {
	c := newClient(nlutest.New().Label(nlu.TaskIntent, "search", map[string]interface{}{
		nlu.SlotFilters: map[string]interface{}{"basecolour": "Blue"},
	}))

	d, err := c.ClassifyIntent(context.Background(), "blue stuff", nlu.IntentContext{State: store.StateIdle})

	require.NoError(t, err)
	assert.Equal(t, "search", d.Action)
	assert.Equal(t, "blue stuff", d.Text)
	assert.Equal(t, store.FilterSet{"basecolour": {"Blue"}}, d.Filters)
}

func TestExtractCustomerID(t *testing.T) {
	c := newClient(nlutest.New().Label(nlu.TaskCustomerID, nlu.LabelFound, map[string]interface{}{nlu.SlotCustomerID: int64(77)}))
	r, err := c.ExtractCustomerID(context.Background(), "I am client 77")
	require.NoError(t, err)
	assert.True(t, r.Found)
	assert.Equal(t, int64(77), r.ID)

	c = newClient(nlutest.New().Label(nlu.TaskCustomerID, nlu.LabelMissing, map[string]interface{}{nlu.SlotMessage: "Which id?"}))
	r, err = c.ExtractCustomerID(context.Background(), "I am a client")
	require.NoError(t, err)
	assert.False(t, r.Found)
	assert.Equal(t, "Which id?", r.Message)
}
