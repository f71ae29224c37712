package dag

// State is one recorded node: an Op together with its result bitwidth
// and a reference to the state recorded immediately before it in the
// same epoch.
type State struct {
	NZBW        int
	Op          Op
	Location    string
	Visit       uint64
	PrevInEpoch StateId
}

// StateArena holds every State recorded in one epoch, indexed by
// StateId.
type StateArena struct {
	states []State
	last   StateId
}

func newStateArena() *StateArena {
	return &StateArena{last: noStateId}
}

// Len returns the number of states recorded so far.
func (a *StateArena) Len() int { return len(a.states) }

// Insert records a new state and returns its id.
func (a *StateArena) Insert(nzbw int, op Op, location string) StateId {
	id := StateId(len(a.states))
	a.states = append(a.states, State{
		NZBW:        nzbw,
		Op:          op,
		Location:    location,
		PrevInEpoch: a.last,
	})
	a.last = id
	return id
}

// Get returns the state with the given id. Panics if id is out of
// range.
func (a *StateArena) Get(id StateId) *State {
	return &a.states[id]
}

// Last returns the id of the most recently inserted state, or
// noStateId if the arena is empty.
func (a *StateArena) Last() StateId { return a.last }

// Ids returns every state id currently in the arena, in insertion
// order.
func (a *StateArena) Ids() []StateId {
	ids := make([]StateId, len(a.states))
	for i := range ids {
		ids[i] = StateId(i)
	}
	return ids
}
