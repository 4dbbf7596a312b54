package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Genres is the set of music genres a venue or artist is associated with. The order of the entries carries no meaning,
// so the set is always kept trimmed, de-duplicated and sorted
type Genres []string

// Normalized returns the genres as a sorted set without blank or duplicate entries
func (g Genres) Normalized() Genres {
	seen := make(map[string]bool, len(g))
	ret := Genres{}
	for _, genre := range g {
		genre = strings.TrimSpace(genre)
		if genre == "" || seen[genre] {
			continue
		}
		seen[genre] = true
		ret = append(ret, genre)
	}
	sort.Strings(ret)
	return ret
}

// Value implements driver.Valuer - the genres are stored as JSON array
func (g Genres) Value() (driver.Value, error) {
	data, err := json.Marshal(g.Normalized())
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (g *Genres) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*g = Genres{}
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("Scan: cannot read genres from %T", src)
	}
	var list []string
	if len(data) > 0 {
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("Scan: illegal genre list: %v", err)
		}
	}
	*g = Genres(list).Normalized()
	return nil
}
