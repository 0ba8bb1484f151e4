// internal/app/store/state/statestore.go
package statestore

import (
	"sync"
	"time"

	"github.com/dalemusser/labcarbon/internal/domain/models"
)

// State is the full dashboard state. Values handed out by the Store are
// copies; mutating them does not affect the store.
type State struct {
	OrganizationID  string                     `json:"organizationId,omitempty"`
	Snapshots       []models.EquipmentSnapshot `json:"snapshots"`
	CurrentSnapshot *models.EquipmentSnapshot  `json:"currentSnapshot"`
	Equipment       []models.Equipment         `json:"equipment"`
	RawExperiments  []models.Experiment        `json:"rawExperiments"`
	HistoricalData  models.HistoricalData      `json:"historicalData"`
	LastSyncTime    *time.Time                 `json:"lastSyncTime"`
	IsLoading       bool                       `json:"isLoading"`
	Error           *string                    `json:"error"`
}

func initialState(orgID string) State {
	return State{
		OrganizationID: orgID,
		Snapshots:      []models.EquipmentSnapshot{},
		Equipment:      []models.Equipment{},
		RawExperiments: []models.Experiment{},
		HistoricalData: models.EmptyHistoricalData(),
	}
}

func (s State) clone() State {
	out := s
	out.Snapshots = models.CloneSnapshots(s.Snapshots)
	if s.CurrentSnapshot != nil {
		c := s.CurrentSnapshot.Clone()
		out.CurrentSnapshot = &c
	}
	out.Equipment = models.CloneEquipment(s.Equipment)
	out.RawExperiments = models.CloneExperiments(s.RawExperiments)
	out.HistoricalData = s.HistoricalData.Clone()
	if s.LastSyncTime != nil {
		t := *s.LastSyncTime
		out.LastSyncTime = &t
	}
	if s.Error != nil {
		e := *s.Error
		out.Error = &e
	}
	return out
}

// Listener receives a copy of the state after every write.
type Listener func(State)

// Store holds the dashboard state shared by HTTP handlers and the sync job.
type Store struct {
	mu        sync.RWMutex
	state     State
	listeners map[uint64]Listener
	nextID    uint64
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		state:     initialState(""),
		listeners: make(map[uint64]Listener),
	}
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// OrganizationID returns the scoped organization, or "" when unscoped.
func (s *Store) OrganizationID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.OrganizationID
}

// Equipment returns a copy of the equipment list.
func (s *Store) Equipment() []models.Equipment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneEquipment(s.state.Equipment)
}

// Snapshots returns a copy of the snapshot sequence.
func (s *Store) Snapshots() []models.EquipmentSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneSnapshots(s.state.Snapshots)
}

// HistoricalData returns a copy of the rollups.
func (s *Store) HistoricalData() models.HistoricalData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.HistoricalData.Clone()
}

// RawExperiments returns a copy of the document-store records.
func (s *Store) RawExperiments() []models.Experiment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneExperiments(s.state.RawExperiments)
}

// EquipmentByID returns the equipment with id, if present.
func (s *Store) EquipmentByID(id string) (models.Equipment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, eq := range s.state.Equipment {
		if eq.ID == id {
			return eq, true
		}
	}
	return models.Equipment{}, false
}

// EquipmentByType returns every item of the given type.
func (s *Store) EquipmentByType(t models.EquipmentType) []models.Equipment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Equipment{}
	for _, eq := range s.state.Equipment {
		if eq.Type == t {
			out = append(out, eq)
		}
	}
	return out
}

// EquipmentByStatus returns every item with the given status. It is only
// meaningful for an organization scope and returns nil when none is set.
func (s *Store) EquipmentByStatus(status models.EquipmentStatus) []models.Equipment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.OrganizationID == "" {
		return nil
	}
	out := []models.Equipment{}
	for _, eq := range s.state.Equipment {
		if eq.Status == status {
			out = append(out, eq)
		}
	}
	return out
}

// Subscribe registers l. The returned func removes it; calling it more than
// once is harmless.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// update applies fn under the write lock and, when fn reports a change,
// notifies listeners after the lock is released.
func (s *Store) update(fn func(st *State) bool) {
	s.mu.Lock()
	if !fn(&s.state) {
		s.mu.Unlock()
		return
	}
	snapshot := s.state.clone()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snapshot.clone())
	}
}

// SetOrganizationID scopes the store. A different id resets all state
// first so no data leaks between organizations; the same id is a no-op.
func (s *Store) SetOrganizationID(orgID string) {
	s.update(func(st *State) bool {
		if st.OrganizationID == orgID {
			return false
		}
		*st = initialState(orgID)
		return true
	})
}

// SetEquipment replaces the equipment list.
func (s *Store) SetEquipment(equipment []models.Equipment) {
	cp := models.CloneEquipment(equipment)
	s.update(func(st *State) bool {
		st.Equipment = cp
		return true
	})
}

// SetSnapshots replaces the snapshot sequence. The last snapshot becomes
// current and its equipment replaces the equipment list.
func (s *Store) SetSnapshots(snapshots []models.EquipmentSnapshot) {
	cp := models.CloneSnapshots(snapshots)
	s.update(func(st *State) bool {
		st.Snapshots = cp
		if len(cp) == 0 {
			st.CurrentSnapshot = nil
			st.Equipment = []models.Equipment{}
			return true
		}
		last := cp[len(cp)-1].Clone()
		st.CurrentSnapshot = &last
		st.Equipment = models.CloneEquipment(last.Equipment)
		return true
	})
}

// SetRawExperiments replaces the document-store records.
func (s *Store) SetRawExperiments(experiments []models.Experiment) {
	cp := models.CloneExperiments(experiments)
	s.update(func(st *State) bool {
		st.RawExperiments = cp
		return true
	})
}

// SetHistoricalData replaces the rollups.
func (s *Store) SetHistoricalData(h models.HistoricalData) {
	cp := h.Clone()
	s.update(func(st *State) bool {
		st.HistoricalData = cp
		return true
	})
}

// SetLoading sets the loading flag.
func (s *Store) SetLoading(loading bool) {
	s.update(func(st *State) bool {
		st.IsLoading = loading
		return true
	})
}

// SetError records msg as the last error. An empty msg clears it.
func (s *Store) SetError(msg string) {
	s.update(func(st *State) bool {
		if msg == "" {
			st.Error = nil
		} else {
			m := msg
			st.Error = &m
		}
		return true
	})
}

// SetLastSyncTime records when the last successful sync finished.
func (s *Store) SetLastSyncTime(t time.Time) {
	s.update(func(st *State) bool {
		st.LastSyncTime = &t
		return true
	})
}

// AddEquipment appends eq unless an item with the same id exists.
func (s *Store) AddEquipment(eq models.Equipment) {
	s.update(func(st *State) bool {
		for _, existing := range st.Equipment {
			if existing.ID == eq.ID {
				return false
			}
		}
		st.Equipment = append(models.CloneEquipment(st.Equipment), eq)
		return true
	})
}

// UpdateEquipment merges patch into the item with id. Unknown ids are a no-op.
func (s *Store) UpdateEquipment(id string, patch models.EquipmentPatch) {
	s.update(func(st *State) bool {
		for i, existing := range st.Equipment {
			if existing.ID == id {
				updated := models.CloneEquipment(st.Equipment)
				updated[i] = patch.Apply(existing)
				st.Equipment = updated
				return true
			}
		}
		return false
	})
}

// RemoveEquipment drops the item with id, if present.
func (s *Store) RemoveEquipment(id string) {
	s.update(func(st *State) bool {
		out := make([]models.Equipment, 0, len(st.Equipment))
		for _, eq := range st.Equipment {
			if eq.ID != id {
				out = append(out, eq)
			}
		}
		st.Equipment = out
		return true
	})
}

// Clear resets the store to its initial, unscoped state.
func (s *Store) Clear() {
	s.update(func(st *State) bool {
		*st = initialState("")
		return true
	})
}
