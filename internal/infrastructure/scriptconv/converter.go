// Package scriptconv bridges the zh-TW display script and the zh-CN
// indexing script used by the catalog search service.
package scriptconv

import (
	"fmt"

	"github.com/longbridgeapp/opencc"
)

// Converter wraps a pair of OpenCC converters. Stateless after
// construction; safe for concurrent use.
type Converter struct {
	tw2s *opencc.OpenCC
	s2tw *opencc.OpenCC
}

// New builds both directions up front so a bad dictionary fails at
// startup rather than mid-query.
func New() (*Converter, error) {
	tw2s, err := opencc.New("tw2s")
	if err != nil {
		return nil, fmt.Errorf("opencc tw2s: %w", err)
	}
	s2tw, err := opencc.New("s2tw")
	if err != nil {
		return nil, fmt.Errorf("opencc s2tw: %w", err)
	}
	return &Converter{tw2s: tw2s, s2tw: s2tw}, nil
}

// ToIndexing converts display-script text to the catalog's indexing
// script. Returns the input unchanged on conversion failure.
func (c *Converter) ToIndexing(s string) string {
	out, err := c.tw2s.Convert(s)
	if err != nil {
		return s
	}
	return out
}

// ToDisplay converts indexing-script text back to the display script.
func (c *Converter) ToDisplay(s string) string {
	out, err := c.s2tw.Convert(s)
	if err != nil {
		return s
	}
	return out
}
