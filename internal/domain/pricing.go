package domain

import (
	"sort"

	"golang.org/x/text/currency"
)

// PricingSet holds named price figures computed for a cart or an item.
type PricingSet struct {
	prices map[string]Money
}

func NewPricingSet() *PricingSet {
	return &PricingSet{prices: make(map[string]Money)}
}

func (s *PricingSet) Set(name string, m Money) {
	if s.prices == nil {
		s.prices = make(map[string]Money)
	}
	s.prices[name] = m
}

func (s *PricingSet) Get(name string) (Money, bool) {
	m, ok := s.prices[name]
	return m, ok
}

// Names returns the figure names in lexical order.
func (s *PricingSet) Names() []string {
	names := make([]string, 0, len(s.prices))
	for name := range s.prices {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

func (s *PricingSet) Len() int {
	return len(s.prices)
}

// PricingContext is created per pricing run and filled by listeners
// before prices are determined.
type PricingContext struct {
	Currency   currency.Unit
	attributes map[string]string
}

func NewPricingContext(cur currency.Unit) *PricingContext {
	return &PricingContext{Currency: cur, attributes: make(map[string]string)}
}

func (c *PricingContext) Set(key, value string) {
	if c.attributes == nil {
		c.attributes = make(map[string]string)
	}
	c.attributes[key] = value
}

func (c *PricingContext) Get(key string) (string, bool) {
	v, ok := c.attributes[key]
	return v, ok
}
