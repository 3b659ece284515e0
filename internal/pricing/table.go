package pricing

import (
	"fmt"
	"math/big"
	"strings"
)

// Endpoint is one priced route. Pattern segments starting with ':' match a
// single path segment and are captured as parameters.
type Endpoint struct {
	Pattern     string
	Price       *big.Int
	Description string
	Query       string
}

// EndpointSpec is the declaration form used to build a table, with the
// price as a decimal string in the token's smallest unit.
type EndpointSpec struct {
	Pattern     string `json:"pattern"`
	Price       string `json:"price"`
	Description string `json:"description"`
	Query       string `json:"query"`
}

// Table resolves request paths to priced endpoints. Exact matches win over
// pattern matches; among patterns, declaration order decides.
type Table struct {
	endpoints []Endpoint
	exact     map[string]int
}

// NewTable builds a table from endpoint declarations. Prices must parse as
// non-negative decimal integers and patterns may contain at most one
// parameter segment.
func NewTable(specs []EndpointSpec) (*Table, error) {
	table := &Table{
		exact: make(map[string]int),
	}

	for _, spec := range specs {
		pattern := strings.TrimSpace(spec.Pattern)
		if pattern == "" || !strings.HasPrefix(pattern, "/") {
			return nil, fmt.Errorf("invalid endpoint pattern %q", spec.Pattern)
		}

		params := 0
		for _, segment := range splitPath(pattern) {
			if strings.HasPrefix(segment, ":") {
				if len(segment) == 1 {
					return nil, fmt.Errorf("empty parameter name in pattern %q", pattern)
				}
				params++
			}
		}
		if params > 1 {
			return nil, fmt.Errorf("pattern %q has %d parameters, at most one is supported", pattern, params)
		}

		price, ok := new(big.Int).SetString(spec.Price, 10)
		if !ok || price.Sign() < 0 {
			return nil, fmt.Errorf("invalid price %q for endpoint %q", spec.Price, pattern)
		}

		if spec.Query == "" {
			return nil, fmt.Errorf("endpoint %q has no query", pattern)
		}

		table.endpoints = append(table.endpoints, Endpoint{
			Pattern:     pattern,
			Price:       price,
			Description: spec.Description,
			Query:       spec.Query,
		})
		if params == 0 {
			table.exact[pattern] = len(table.endpoints) - 1
		}
	}

	return table, nil
}

// Lookup resolves a request path to an endpoint. The query string is
// ignored. Returns the matched endpoint, captured parameters, and whether
// a match was found.
func (t *Table) Lookup(path string) (*Endpoint, map[string]string, bool) {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}

	if i, ok := t.exact[path]; ok {
		return &t.endpoints[i], nil, true
	}

	segments := splitPath(path)
	for i := range t.endpoints {
		ep := &t.endpoints[i]
		if params, ok := matchPattern(ep.Pattern, segments); ok {
			return ep, params, true
		}
	}

	return nil, nil, false
}

// Endpoints returns all declared endpoints in declaration order.
func (t *Table) Endpoints() []Endpoint {
	return t.endpoints
}

func matchPattern(pattern string, segments []string) (map[string]string, bool) {
	patternSegments := splitPath(pattern)
	if len(patternSegments) != len(segments) {
		return nil, false
	}

	var params map[string]string
	for i, ps := range patternSegments {
		if strings.HasPrefix(ps, ":") {
			if segments[i] == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string, 1)
			}
			params[ps[1:]] = segments[i]
			continue
		}
		if ps != segments[i] {
			return nil, false
		}
	}
	return params, true
}

func splitPath(path string) []string {
	return strings.Split(strings.Trim(path, "/"), "/")
}
