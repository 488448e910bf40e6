package pagination

import (
	"fmt"
	"slices"
	"strings"

	"go.einride.tech/aip/ordering"
)

// SortConfig lists the sortable fields and alternative spellings for them.
type SortConfig struct {
	Allowed []string
	Aliases map[string]string
}

func (c SortConfig) resolve(field string) (string, error) {
	field = strings.TrimSpace(field)
	if canonical, ok := c.Aliases[field]; ok {
		field = canonical
	}
	if !slices.Contains(c.Allowed, field) {
		return "", fmt.Errorf("invalid sort field: %q", field)
	}
	return field, nil
}

func (c SortConfig) paths() []string {
	paths := append([]string(nil), c.Allowed...)
	for alias := range c.Aliases {
		paths = append(paths, alias)
	}
	return paths
}

// ParseSortParams parses repeated "field[,field...][,asc|desc]" values, the
// Spring Data sort query format. The direction applies
// to every field in its value and defaults to ascending.
func ParseSortParams(values []string, cfg SortConfig) ([]SortKey, error) {
	var keys []SortKey
	for _, value := range values {
		parts := strings.Split(value, ",")
		direction := Ascending
		if len(parts) > 1 {
			if parsed, err := ParseDirection(parts[len(parts)-1]); err == nil {
				direction = parsed
				parts = parts[:len(parts)-1]
			}
		}
		for _, part := range parts {
			if strings.TrimSpace(part) == "" {
				continue
			}
			field, err := cfg.resolve(part)
			if err != nil {
				return nil, err
			}
			keys = append(keys, SortKey{Field: field, Direction: direction})
		}
	}
	return keys, nil
}

type orderByRequest string

func (r orderByRequest) GetOrderBy() string { return string(r) }

// ParseOrderBy parses an AIP-132 order_by expression such as
// "value desc, id".
func ParseOrderBy(orderBy string, cfg SortConfig) ([]SortKey, error) {
	parsed, err := ordering.ParseOrderBy(orderByRequest(strings.TrimSpace(orderBy)))
	if err != nil {
		return nil, err
	}
	if err := parsed.ValidateForPaths(cfg.paths()...); err != nil {
		return nil, err
	}
	keys := make([]SortKey, 0, len(parsed.Fields))
	for _, f := range parsed.Fields {
		field, err := cfg.resolve(f.Path)
		if err != nil {
			return nil, err
		}
		direction := Ascending
		if f.Desc {
			direction = Descending
		}
		keys = append(keys, SortKey{Field: field, Direction: direction})
	}
	return keys, nil
}
