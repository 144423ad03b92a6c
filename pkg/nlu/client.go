package nlu

import (
	"context"
	"fmt"

	"fashion-recommender-be/internal/pkg/logger"
	"fashion-recommender-be/pkg/apperr"
	"fashion-recommender-be/pkg/store"
	"fashion-recommender-be/pkg/workpool"
)

const module = "NLU"

// Decision is a classified turn.
type Decision struct {
	Action  string
	Filters store.FilterSet
	Text    string
}

// IntentContext is the session view handed to intent classification.
type IntentContext struct {
	State        string
	CustomerName string
	BaseProduct  string
	Shown        []string
	Filters      store.FilterSet
}

// CustomerIDResult carries either an id or the clarification to send back.
type CustomerIDResult struct {
	ID      int64
	Found   bool
	Message string
}

// Client exposes typed NLU operations. Every call goes through the shared
// work pool and comes back with an apperr kind on failure.
type Client struct {
	capability Capability
	pool       *workpool.Pool
	logger     logger.ILogger
}

func NewClient(capability Capability, pool *workpool.Pool, log logger.ILogger) *Client {
	return &Client{capability: capability, pool: pool, logger: log}
}

func (c *Client) classify(ctx context.Context, req Request) (*Result, error) {
	res, err := workpool.Run(ctx, c.pool, func(ctx context.Context) (*Result, error) {
		return c.capability.Classify(ctx, req)
	})
	if err != nil {
		return nil, c.fail(req.Task, err)
	}
	if res == nil {
		return nil, c.fail(req.Task, apperr.Unparsable(string(req.Task), "empty result"))
	}
	return res, nil
}

func (c *Client) fail(task Task, err error) error {
	if apperr.Kind(err) == nil {
		err = apperr.Unavailable("nlu", err)
	}
	c.logger.Warn(module, "NLU call failed", map[string]interface{}{
		"task":  string(task),
		"error": err.Error(),
	})
	return err
}

func (c *Client) IsGreeting(ctx context.Context, text string) (bool, error) {
	res, err := c.classify(ctx, Request{Task: TaskGreeting, Text: text})
	if err != nil {
		return false, err
	}
	return res.Label == LabelGreeting, nil
}

func (c *Client) ClassifyIntent(ctx context.Context, text string, ic IntentContext) (*Decision, error) {
	res, err := c.classify(ctx, Request{
		Task: TaskIntent,
		Text: text,
		Context: map[string]interface{}{
			"state":         ic.State,
			KeyCustomerName: ic.CustomerName,
			"base_product":  ic.BaseProduct,
			"shown":         ic.Shown,
			"filters":       filterSetToSlot(ic.Filters),
		},
	})
	if err != nil {
		return nil, err
	}

	filters, ok := FilterSetFromSlot(res.Slots[SlotFilters])
	if !ok {
		return nil, c.fail(TaskIntent, apperr.Unparsable(string(TaskIntent), "filters slot"))
	}
	decision := &Decision{Action: res.Label, Filters: filters, Text: toString(res.Slots[SlotText])}
	if decision.Text == "" {
		decision.Text = text
	}
	c.logger.Debug(module, "Intent classified", map[string]interface{}{
		"action":  decision.Action,
		"filters": decision.Filters,
	})
	return decision, nil
}

func (c *Client) ExtractCustomerID(ctx context.Context, text string) (*CustomerIDResult, error) {
	res, err := c.classify(ctx, Request{Task: TaskCustomerID, Text: text})
	if err != nil {
		return nil, err
	}
	if res.Label == LabelFound {
		if id, ok := toInt64(res.Slots[SlotCustomerID]); ok {
			return &CustomerIDResult{ID: id, Found: true}, nil
		}
		return nil, c.fail(TaskCustomerID, apperr.Unparsable(string(TaskCustomerID), "customer_id slot"))
	}
	return &CustomerIDResult{Message: toString(res.Slots[SlotMessage])}, nil
}

// ValidateFilters asks for the vocabulary-grounded correction of proposed.
func (c *Client) ValidateFilters(ctx context.Context, proposed store.FilterSet, vocab store.Vocabulary) (store.FilterSet, error) {
	res, err := c.classify(ctx, Request{
		Task: TaskValidateFilters,
		Context: map[string]interface{}{
			"filters":    filterSetToSlot(proposed),
			"vocabulary": vocabularyFor(proposed, vocab),
		},
	})
	if err != nil {
		return nil, err
	}
	filters, ok := FilterSetFromSlot(res.Slots[SlotFilters])
	if !ok {
		return nil, c.fail(TaskValidateFilters, apperr.Unparsable(string(TaskValidateFilters), "filters slot"))
	}
	return filters, nil
}

// ExpandFilters asks for a broader filter set plus a short note for the user.
func (c *Client) ExpandFilters(ctx context.Context, current store.FilterSet, resultCount int, vocab store.Vocabulary) (store.FilterSet, string, error) {
	res, err := c.classify(ctx, Request{
		Task: TaskExpandFilters,
		Context: map[string]interface{}{
			"filters":      filterSetToSlot(current),
			"result_count": resultCount,
			"vocabulary":   vocabularyFor(current, vocab),
		},
	})
	if err != nil {
		return nil, "", err
	}
	filters, ok := FilterSetFromSlot(res.Slots[SlotFilters])
	if !ok {
		return nil, "", c.fail(TaskExpandFilters, apperr.Unparsable(string(TaskExpandFilters), "filters slot"))
	}
	return filters, toString(res.Slots[SlotMessage]), nil
}

// ResolveSelection maps free text onto a 0-based position in shown.
func (c *Client) ResolveSelection(ctx context.Context, text string, shown []store.Product) (int, error) {
	if len(shown) == 0 {
		return 0, fmt.Errorf("nothing shown: %w", apperr.ErrAmbiguous)
	}
	names := make([]string, len(shown))
	for i, p := range shown {
		names[i] = p.DisplayName
	}

	res, err := c.classify(ctx, Request{
		Task:    TaskSelectProduct,
		Text:    text,
		Context: map[string]interface{}{"shown": names},
	})
	if err != nil {
		return 0, err
	}
	if res.Label != LabelSelected {
		return 0, fmt.Errorf("selection %q: %w", text, apperr.ErrAmbiguous)
	}
	n, ok := toInt64(res.Slots[SlotSelection])
	if !ok || n < 1 || int(n) > len(shown) {
		return 0, fmt.Errorf("selection %v out of range 1..%d: %w", res.Slots[SlotSelection], len(shown), apperr.ErrAmbiguous)
	}
	return int(n) - 1, nil
}

// Compose produces a user-facing sentence for task.
func (c *Client) Compose(ctx context.Context, task Task, text string, values map[string]interface{}) (string, error) {
	out, err := workpool.Run(ctx, c.pool, func(ctx context.Context) (string, error) {
		return c.capability.Compose(ctx, Request{Task: task, Text: text, Context: values})
	})
	if err != nil {
		return "", c.fail(task, err)
	}
	return out, nil
}

// vocabularyFor trims the vocabulary to the keys under discussion.
func vocabularyFor(filters store.FilterSet, vocab store.Vocabulary) map[string][]string {
	out := make(map[string][]string, len(filters))
	for key := range filters {
		if values, ok := vocab[key]; ok {
			out[key] = values
		}
	}
	return out
}
