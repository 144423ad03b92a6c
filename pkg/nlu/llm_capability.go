package nlu

import (
	"context"
	"fmt"
	"strings"

	"fashion-recommender-be/pkg/apperr"
	"fashion-recommender-be/pkg/llm"
)

// LLMCapability implements Capability on top of a chat model.
type LLMCapability struct {
	provider llm.LLMProvider
}

var _ Capability = (*LLMCapability)(nil)

func NewLLMCapability(provider llm.LLMProvider) *LLMCapability {
	return &LLMCapability{provider: provider}
}

func (c *LLMCapability) Classify(ctx context.Context, req Request) (*Result, error) {
	prompt, err := buildClassifyPrompt(req)
	if err != nil {
		return nil, err
	}

	// Temperature 0 for deterministic output
	response, err := c.provider.Generate(ctx, prompt, llm.WithTemperature(0), llm.WithJSONFormat())
	if err != nil {
		return nil, apperr.Unavailable("llm", err)
	}

	obj, err := decodeObject(response)
	if err != nil {
		return nil, apperr.Unparsable(string(req.Task), err.Error())
	}
	return parseResult(req.Task, obj)
}

func (c *LLMCapability) Compose(ctx context.Context, req Request) (string, error) {
	prompt, err := buildComposePrompt(req)
	if err != nil {
		return "", err
	}
	response, err := c.provider.Generate(ctx, prompt, llm.WithTemperature(0.5), llm.WithMaxTokens(200))
	if err != nil {
		return "", apperr.Unavailable("llm", err)
	}
	text := strings.TrimSpace(response)
	if text == "" {
		return "", apperr.Unparsable(string(req.Task), "empty text")
	}
	return text, nil
}

// parseResult maps the raw JSON of each task onto a label and slots.
func parseResult(task Task, obj map[string]interface{}) (*Result, error) {
	switch task {
	case TaskGreeting:
		g, ok := obj["greeting"].(bool)
		if !ok {
			return nil, apperr.Unparsable(string(task), "missing boolean greeting")
		}
		if g {
			return &Result{Label: LabelGreeting}, nil
		}
		return &Result{Label: LabelOther}, nil

	case TaskIntent:
		action := strings.ToLower(toString(obj["action"]))
		if action == "" {
			return nil, apperr.Unparsable(string(task), "missing action")
		}
		filters, ok := FilterSetFromSlot(obj["filters"])
		if !ok {
			return nil, apperr.Unparsable(string(task), "filters is not an object")
		}
		return &Result{Label: action, Slots: map[string]interface{}{
			SlotFilters: filters,
			SlotText:    toString(obj["text"]),
		}}, nil

	case TaskCustomerID:
		if id, ok := toInt64(obj["customer_id"]); ok {
			return &Result{Label: LabelFound, Slots: map[string]interface{}{SlotCustomerID: id}}, nil
		}
		return &Result{Label: LabelMissing, Slots: map[string]interface{}{SlotMessage: toString(obj["message"])}}, nil

	case TaskValidateFilters, TaskExpandFilters:
		filters, ok := FilterSetFromSlot(obj["filters"])
		if !ok || obj["filters"] == nil {
			return nil, apperr.Unparsable(string(task), "missing filters object")
		}
		return &Result{Label: LabelOK, Slots: map[string]interface{}{
			SlotFilters: filters,
			SlotMessage: toString(obj["message"]),
		}}, nil

	case TaskSelectProduct:
		if n, ok := toInt64(obj["selection"]); ok {
			return &Result{Label: LabelSelected, Slots: map[string]interface{}{SlotSelection: n}}, nil
		}
		return &Result{Label: LabelNone}, nil
	}
	return nil, fmt.Errorf("unknown classification task %q", task)
}
