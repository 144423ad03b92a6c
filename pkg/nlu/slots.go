package nlu

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"fashion-recommender-be/pkg/store"
)

// extractJSON cuts the first {...} block out of a model answer.
func extractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}
	return response[startIdx : endIdx+1]
}

func decodeObject(response string) (map[string]interface{}, error) {
	raw := extractJSON(response)
	if raw == "" {
		return nil, fmt.Errorf("no JSON object in response")
	}
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func toStringSlice(v interface{}) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		return t
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := toString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := toString(t); s != "" {
			return []string{s}
		}
		return nil
	}
}

func toInt64(v interface{}) (int64, bool) {
	switch t := v.(type) {
	case float64:
		if t != float64(int64(t)) {
			return 0, false
		}
		return int64(t), true
	case int:
		return int64(t), true
	case int64:
		return t, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return n, err == nil
	case json.Number:
		n, err := t.Int64()
		return n, err == nil
	default:
		return 0, false
	}
}

// FilterSetFromSlot converts a loosely typed filters slot into a FilterSet.
// Scalars become single-value entries; unknown keys are kept for the caller
// to normalize.
func FilterSetFromSlot(v interface{}) (store.FilterSet, bool) {
	switch t := v.(type) {
	case nil:
		return store.FilterSet{}, true
	case store.FilterSet:
		return t.Clone(), true
	case map[string][]string:
		return store.FilterSet(t).Clone(), true
	case map[string]interface{}:
		out := store.FilterSet{}
		for key, raw := range t {
			if values := toStringSlice(raw); len(values) > 0 {
				out[strings.ToLower(strings.TrimSpace(key))] = values
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// filterSetToSlot renders filters for prompts: scalars stay scalars.
func filterSetToSlot(f store.FilterSet) map[string]interface{} {
	out := make(map[string]interface{}, len(f))
	for k, v := range f {
		if len(v) == 1 {
			out[k] = v[0]
		} else {
			out[k] = v
		}
	}
	return out
}
