package strategy

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/hand"
)

// DealerCodes are the dealer up-card columns of every table row
var DealerCodes = []string{"2", "3", "4", "5", "6", "7", "8", "9", "T", "A"}

// Row maps a dealer up-card code to a table code
type Row map[string]Code

// Table is a parsed basic strategy document
type Table struct {
	Name        string
	Description string
	Actions     map[Code]string
	Hard        map[int]Row
	Soft        map[string]Row
	Pairs       map[string]Row
}

type document struct {
	StrategyName string                     `json:"strategy_name"`
	Description  string                     `json:"description"`
	Actions      map[string]string          `json:"actions"`
	HardHands    map[string]json.RawMessage `json:"hard_hands"`
	SoftHands    map[string]json.RawMessage `json:"soft_hands"`
	PairSplit    map[string]json.RawMessage `json:"pair_splitting"`
}

// ParseTable decodes a strategy document. Each sub-table may carry a
// "description" string alongside its rows; non-object entries are skipped.
func ParseTable(data []byte) (*Table, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode strategy document: %w", err)
	}
	if len(doc.HardHands) == 0 && len(doc.SoftHands) == 0 && len(doc.PairSplit) == 0 {
		return nil, fmt.Errorf("strategy document has no tables")
	}

	t := &Table{
		Name:        doc.StrategyName,
		Description: doc.Description,
		Actions:     make(map[Code]string, len(doc.Actions)),
		Hard:        make(map[int]Row),
		Soft:        make(map[string]Row),
		Pairs:       make(map[string]Row),
	}
	for k, v := range doc.Actions {
		t.Actions[Code(k)] = v
	}

	hard, err := parseRows("hard_hands", doc.HardHands)
	if err != nil {
		return nil, err
	}
	for key, row := range hard {
		total, err := strconv.Atoi(strings.TrimSuffix(key, "+"))
		if err != nil {
			return nil, fmt.Errorf("hard_hands: bad total %q", key)
		}
		t.Hard[total] = row
	}

	if t.Soft, err = parseRows("soft_hands", doc.SoftHands); err != nil {
		return nil, err
	}
	for key := range t.Soft {
		if len(key) < 2 || key[0] != 'A' {
			return nil, fmt.Errorf("soft_hands: bad key %q", key)
		}
		if _, err := deck.RankForCode(key[1:]); err != nil {
			return nil, fmt.Errorf("soft_hands: %w", err)
		}
	}

	if t.Pairs, err = parseRows("pair_splitting", doc.PairSplit); err != nil {
		return nil, err
	}
	for key := range t.Pairs {
		if _, err := deck.RankForCode(key); err != nil {
			return nil, fmt.Errorf("pair_splitting: %w", err)
		}
	}

	return t, nil
}

func parseRows(section string, raw map[string]json.RawMessage) (map[string]Row, error) {
	rows := make(map[string]Row, len(raw))
	for key, msg := range raw {
		trimmed := strings.TrimSpace(string(msg))
		if !strings.HasPrefix(trimmed, "{") {
			continue
		}
		var row Row
		if err := json.Unmarshal(msg, &row); err != nil {
			return nil, fmt.Errorf("%s[%s]: %w", section, key, err)
		}
		for dealer, code := range row {
			if !code.Valid() {
				return nil, fmt.Errorf("%s[%s][%s]: unknown action code %q", section, key, dealer, code)
			}
		}
		rows[key] = row
	}
	return rows, nil
}

// Lookup returns the table code for a classified hand against a dealer
// up-card code. Hard totals above the highest row use that row when it is
// 17 or more.
func (t *Table) Lookup(a hand.Analysis, dealerCode string) (Code, bool) {
	var row Row
	switch a.Type {
	case hand.Pair:
		row = t.Pairs[a.PairRank]
	case hand.Soft:
		row = t.Soft[a.SoftKey()]
	case hand.Hard:
		row = t.hardRow(a.Value)
	}
	if row == nil {
		return "", false
	}
	code, ok := row[dealerCode]
	return code, ok
}

func (t *Table) hardRow(total int) Row {
	if row, ok := t.Hard[total]; ok {
		return row
	}
	totals := t.HardTotals()
	if len(totals) == 0 {
		return nil
	}
	highest := totals[len(totals)-1]
	if total > highest && highest >= 17 {
		return t.Hard[highest]
	}
	return nil
}

// HardTotals returns the hard row keys in ascending order
func (t *Table) HardTotals() []int {
	out := make([]int, 0, len(t.Hard))
	for k := range t.Hard {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// SoftKeys returns the soft row keys in sorted order
func (t *Table) SoftKeys() []string {
	return sortedKeys(t.Soft)
}

// PairKeys returns the pair row keys in sorted order
func (t *Table) PairKeys() []string {
	return sortedKeys(t.Pairs)
}

func sortedKeys(m map[string]Row) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
