package morph

import (
	"fmt"
	"strings"
)

// State is the shape the point sets are heading toward.
type State int

const (
	Tree State = iota
	Scatter
	Love
)

var stateNames = [...]string{
	Tree:    "TREE",
	Scatter: "SCATTER",
	Love:    "LOVE",
}

// States lists every state in command order.
func States() []State { return []State{Tree, Scatter, Love} }

func (s State) Valid() bool { return s >= Tree && s <= Love }

func (s State) String() string {
	if !s.Valid() {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// ParseState accepts the state names in any case.
func ParseState(name string) (State, error) {
	for _, s := range States() {
		if strings.EqualFold(name, stateNames[s]) {
			return s, nil
		}
	}
	return Tree, fmt.Errorf("%w: %q", ErrUnknownState, name)
}

func (s State) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownState, int(s))
	}
	return []byte(stateNames[s]), nil
}

func (s *State) UnmarshalText(text []byte) error {
	v, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
