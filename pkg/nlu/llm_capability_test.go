package nlu

import (
	"context"
	"errors"
	"strings"
	"testing"

	"fashion-recommender-be/pkg/apperr"
	"fashion-recommender-be/pkg/llm"
	"fashion-recommender-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	answer string
	err    error
	prompt string
}

func (s *stubProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return s.Generate(ctx, history[len(history)-1].Content, options...)
}

func (s *stubProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	s.prompt = prompt
	return s.answer, s.err
}

func TestClassifyParsesTasks(t *testing.T) {
	tests := []struct {
		name      string
		task      Task
		answer    string
		wantLabel string
		check     func(t *testing.T, r *Result)
	}{
		{
			name:      "greeting wrapped in prose",
			task:      TaskGreeting,
			answer:    "Sure! {\"greeting\": true}",
			wantLabel: LabelGreeting,
		},
		{
			name:      "not a greeting",
			task:      TaskGreeting,
			answer:    `{"greeting": false}`,
			wantLabel: LabelOther,
		},
		{
			name:      "search intent with mixed filter shapes",
			task:      TaskIntent,
			answer:    `{"action": "Search", "filters": {"basecolour": "Blue", "year": 2012, "season": ["Summer", "Fall"]}, "text": "blue shirts"}`,
			wantLabel: "search",
			check: func(t *testing.T, r *Result) {
				assert.Equal(t, store.FilterSet{
					"basecolour": {"Blue"},
					"year":       {"2012"},
					"season":     {"Summer", "Fall"},
				}, r.Slots[SlotFilters])
				assert.Equal(t, "blue shirts", r.Slots[SlotText])
			},
		},
		{
			name:      "customer id found",
			task:      TaskCustomerID,
			answer:    `{"customer_id": 5120}`,
			wantLabel: LabelFound,
			check: func(t *testing.T, r *Result) {
				assert.Equal(t, int64(5120), r.Slots[SlotCustomerID])
			},
		},
		{
			name:      "customer id missing",
			task:      TaskCustomerID,
			answer:    `{"customer_id": null, "message": "What is your customer number?"}`,
			wantLabel: LabelMissing,
			check: func(t *testing.T, r *Result) {
				assert.Equal(t, "What is your customer number?", r.Slots[SlotMessage])
			},
		},
		{
			name:      "expansion with message",
			task:      TaskExpandFilters,
			answer:    `{"message": "Adding similar colours", "filters": {"basecolour": ["Purple", "Pink"]}}`,
			wantLabel: LabelOK,
			check: func(t *testing.T, r *Result) {
				assert.Equal(t, store.FilterSet{"basecolour": {"Purple", "Pink"}}, r.Slots[SlotFilters])
				assert.Equal(t, "Adding similar colours", r.Slots[SlotMessage])
			},
		},
		{
			name:      "selection",
			task:      TaskSelectProduct,
			answer:    `{"selection": 2}`,
			wantLabel: LabelSelected,
		},
		{
			name:      "no selection",
			task:      TaskSelectProduct,
			answer:    `{"selection": null}`,
			wantLabel: LabelNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewLLMCapability(&stubProvider{answer: tt.answer})
			r, err := c.Classify(context.Background(), Request{Task: tt.task, Text: "hi"})
			require.NoError(t, err)
			assert.Equal(t, tt.wantLabel, r.Label)
			if tt.check != nil {
				tt.check(t, r)
			}
		})
	}
}

func TestClassifyErrors(t *testing.T) {
	t.Run("provider failure is unavailable", func(t *testing.T) {
		c := NewLLMCapability(&stubProvider{err: errors.New("dial tcp: refused")})
		_, err := c.Classify(context.Background(), Request{Task: TaskGreeting})
		assert.ErrorIs(t, err, apperr.ErrCollaboratorUnavailable)
	})

	t.Run("prose without JSON is unparsable", func(t *testing.T) {
		c := NewLLMCapability(&stubProvider{answer: "I think it's a greeting"})
		_, err := c.Classify(context.Background(), Request{Task: TaskGreeting})
		assert.ErrorIs(t, err, apperr.ErrUnparsableResponse)
	})

	t.Run("validation without filters is unparsable", func(t *testing.T) {
		c := NewLLMCapability(&stubProvider{answer: `{"ok": true}`})
		_, err := c.Classify(context.Background(), Request{Task: TaskValidateFilters})
		assert.ErrorIs(t, err, apperr.ErrUnparsableResponse)
	})
}

func TestPromptCarriesContext(t *testing.T) {
	p := &stubProvider{answer: `{"selection": 1}`}
	c := NewLLMCapability(p)

	_, err := c.Classify(context.Background(), Request{
		Task:    TaskSelectProduct,
		Text:    "the second one",
		Context: map[string]interface{}{"shown": []string{"Blue Shirt", "Red Dress"}},
	})
	require.NoError(t, err)

	assert.True(t, strings.Contains(p.prompt, "2. Red Dress"))
	assert.True(t, strings.Contains(p.prompt, "the second one"))
}

func TestComposeRejectsEmptyText(t *testing.T) {
	c := NewLLMCapability(&stubProvider{answer: "   "})
	_, err := c.Compose(context.Background(), Request{Task: TaskPostSuggestion})
	assert.ErrorIs(t, err, apperr.ErrUnparsableResponse)
}

func TestComposePromptsCarryProductContext(t *testing.T) {
	tests := []struct {
		name    string
		task    Task
		context map[string]interface{}
		want    []string
		absent  []string
	}{
		{
			name: "history message names the base product",
			task: TaskHistoryMessage,
			context: map[string]interface{}{
				KeyCustomerName: "Ada Lovelace",
				KeyProductName:  "Navy Linen Shirt",
			},
			want: []string{"Ada Lovelace", `"Navy Linen Shirt"`},
		},
		{
			name: "description of an anonymous customer lists attributes",
			task: TaskProductDescription,
			context: map[string]interface{}{
				KeyProductName: "Red Dress",
				KeyAttributes:  map[string]string{"basecolour": "Red", "usage": "Party"},
				KeyIdentified:  false,
			},
			want:   []string{`"Red Dress"`, `"basecolour":"Red"`, `"usage":"Party"`},
			absent: []string{"is identified"},
		},
		{
			name: "description for an identified customer",
			task: TaskProductDescription,
			context: map[string]interface{}{
				KeyProductName:  "Red Dress",
				KeyIdentified:   true,
				KeyCustomerName: "Ada Lovelace",
			},
			want:   []string{"Ada Lovelace is identified"},
			absent: []string{"Product attributes"},
		},
		{
			name: "gallery caption",
			task: TaskProductCaption,
			context: map[string]interface{}{
				KeyProductName: "Black Sneakers",
				KeyAttributes:  map[string]string{"articletype": "Casual Shoes"},
			},
			want: []string{`"Black Sneakers"`, "Casual Shoes"},
		},
		{
			name: "similar rationale",
			task: TaskSimilarRationale,
			context: map[string]interface{}{
				KeyBaseName:    "Blue Jeans",
				KeyProductName: "Grey Jeans",
			},
			want: []string{`"Blue Jeans"`, `"Grey Jeans"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &stubProvider{answer: "Lovely pick."}
			c := NewLLMCapability(p)

			_, err := c.Compose(context.Background(), Request{Task: tt.task, Context: tt.context})
			require.NoError(t, err)

			for _, w := range tt.want {
				assert.Contains(t, p.prompt, w)
			}
			for _, a := range tt.absent {
				assert.NotContains(t, p.prompt, a)
			}
		})
	}
}
