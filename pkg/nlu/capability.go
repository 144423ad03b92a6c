// Package nlu wraps the natural-language-understanding capability the
// dialogue depends on: classification into labels with structured slots,
// and short free-text composition for user-facing replies.
package nlu

import "context"

// Task names one NLU operation.
type Task string

// Classification tasks
const (
	TaskGreeting        Task = "greeting"
	TaskIntent          Task = "intent"
	TaskCustomerID      Task = "customer_id"
	TaskValidateFilters Task = "validate_filters"
	TaskExpandFilters   Task = "expand_filters"
	TaskSelectProduct   Task = "select_product"
)

// Composition tasks
const (
	TaskGreetingReply      Task = "greeting_reply"
	TaskWelcome            Task = "welcome"
	TaskProductDescription Task = "product_description"
	TaskProductCaption     Task = "product_caption"
	TaskSimilarRationale   Task = "similar_rationale"
	TaskHistoryMessage     Task = "history_message"
	TaskOutOfDomain        Task = "out_of_domain"
	TaskPostSuggestion     Task = "post_suggestion"
)

// Labels returned by classification tasks
const (
	LabelGreeting = "greeting"
	LabelOther    = "other"
	LabelFound    = "found"
	LabelMissing  = "missing"
	LabelSelected = "selected"
	LabelNone     = "none"
	LabelOK       = "ok"
)

// Slot keys
const (
	SlotFilters    = "filters"
	SlotText       = "text"
	SlotCustomerID = "customer_id"
	SlotMessage    = "message"
	SlotSelection  = "selection"
)

// Context keys read by the composition prompts
const (
	KeyCustomerName = "customer_name"
	KeyProductName  = "product_name"
	KeyBaseName     = "base_name"
	KeyAttributes   = "attributes"
	KeyIdentified   = "identified"
	KeyScore        = "score"
)

type Request struct {
	Task    Task
	Text    string
	Context map[string]interface{}
}

type Result struct {
	Label string
	Slots map[string]interface{}
}

// Capability is the external NLU service.
type Capability interface {
	Classify(ctx context.Context, req Request) (*Result, error)
	Compose(ctx context.Context, req Request) (string, error)
}
