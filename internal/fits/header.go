package fits

import (
	"fmt"
	"math"
	"strings"
)

// Card is one header keyword. Value is a string, bool, int64 or float64.
type Card struct {
	Key     string
	Value   interface{}
	Comment string
}

// Header is an ordered list of cards. Keys are stored upper case.
type Header struct {
	cards []Card
}

func (h *Header) Cards() []Card { return append([]Card(nil), h.cards...) }

// Set replaces the card for key or appends a new one.
func (h *Header) Set(key string, value interface{}, comment string) {
	key = strings.ToUpper(key)
	switch v := value.(type) {
	case int:
		value = int64(v)
	case float32:
		value = float64(v)
	}
	for i := range h.cards {
		if h.cards[i].Key == key {
			h.cards[i].Value = value
			if comment != "" {
				h.cards[i].Comment = comment
			}
			return
		}
	}
	h.cards = append(h.cards, Card{Key: key, Value: value, Comment: comment})
}

func (h *Header) Get(key string) (interface{}, bool) {
	key = strings.ToUpper(key)
	for _, c := range h.cards {
		if c.Key == key {
			return c.Value, true
		}
	}
	return nil, false
}

func (h *Header) Has(key string) bool {
	_, ok := h.Get(key)
	return ok
}

func (h *Header) String(key string) string {
	v, ok := h.Get(key)
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func (h *Header) Float(key string) (float64, bool) {
	v, ok := h.Get(key)
	if !ok {
		return 0, false
	}
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	}
	return 0, false
}

func (h *Header) Int(key string) (int, bool) {
	v, ok := h.Get(key)
	if !ok {
		return 0, false
	}
	switch x := v.(type) {
	case int64:
		return int(x), true
	case float64:
		if x == math.Trunc(x) {
			return int(x), true
		}
	}
	return 0, false
}
