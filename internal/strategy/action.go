package strategy

import (
	"fmt"
	"strings"
)

// Action is a player decision
type Action string

const (
	Hit    Action = "hit"
	Stand  Action = "stand"
	Double Action = "double"
	Split  Action = "split"
)

// AllActions lists the player decisions in display order
var AllActions = []Action{Hit, Stand, Double, Split}

// Title returns the capitalised action name
func (a Action) Title() string {
	switch a {
	case Hit:
		return "Hit"
	case Stand:
		return "Stand"
	case Double:
		return "Double"
	case Split:
		return "Split"
	default:
		return string(a)
	}
}

// ParseAction accepts "hit", "h", "stand", "s", "double", "d", "split", "p"
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hit", "h":
		return Hit, nil
	case "stand", "s":
		return Stand, nil
	case "double", "d":
		return Double, nil
	case "split", "p":
		return Split, nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Code is a strategy table cell such as "H" or "Dh"
type Code string

const (
	CodeHit             Code = "H"
	CodeStand           Code = "S"
	CodeDouble          Code = "D"
	CodeDoubleElseHit   Code = "Dh"
	CodeDoubleElseStand Code = "Ds"
	CodeSplit           Code = "P"
	CodeSplitElseHit    Code = "Ph"
	CodeSplitElseStand  Code = "Ps"
)

// resolution is the action a code asks for and what to do when that
// action is not available. An empty fallback means hit.
type resolution struct {
	primary     Action
	fallback    Action
	explanation string
}

var resolutions = map[Code]resolution{
	CodeHit:             {primary: Hit, explanation: "Hit - take another card"},
	CodeStand:           {primary: Stand, explanation: "Stand - take no more cards"},
	CodeDouble:          {primary: Double, explanation: "Double Down - double the bet and take exactly one card"},
	CodeDoubleElseHit:   {primary: Double, fallback: Hit, explanation: "Double if allowed, otherwise hit"},
	CodeDoubleElseStand: {primary: Double, fallback: Stand, explanation: "Double if allowed, otherwise stand"},
	CodeSplit:           {primary: Split, explanation: "Split - play the pair as two hands"},
	CodeSplitElseHit:    {primary: Split, fallback: Hit, explanation: "Split if allowed, otherwise hit"},
	CodeSplitElseStand:  {primary: Split, fallback: Stand, explanation: "Split if allowed, otherwise stand"},
}

// Valid reports whether c is a known table code
func (c Code) Valid() bool {
	_, ok := resolutions[c]
	return ok
}

// Resolve turns a table code into a concrete action given what the hand
// is allowed to do. A plain D with doubling unavailable resolves to hit.
func (c Code) Resolve(canDouble, canSplit bool) Action {
	r, ok := resolutions[c]
	if !ok {
		return Hit
	}

	allowed := true
	switch r.primary {
	case Double:
		allowed = canDouble
	case Split:
		allowed = canSplit
	}
	if allowed {
		return r.primary
	}
	if r.fallback == "" {
		return Hit
	}
	return r.fallback
}

// ExplanationFor returns the human readable meaning of a code
func ExplanationFor(c Code) string {
	if r, ok := resolutions[c]; ok {
		return r.explanation
	}
	return "Unknown action"
}
