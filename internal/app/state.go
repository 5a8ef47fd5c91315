// Package app holds the application state shared by the windows: the open
// exhibition, the floor being shown and the current user mode.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"expo-floorplan/internal/exhibition"
	"expo-floorplan/internal/logging"
	"expo-floorplan/internal/recommend"
	"expo-floorplan/internal/store"
)

// EventType identifies different application events.
type EventType int

const (
	EventExhibitionLoaded EventType = iota
	EventFloorChanged
	EventStallsChanged
	EventFloorPlanChanged
	EventHierarchyChanged
	EventModeChanged
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// ErrNoExhibition is returned by operations that need a loaded exhibition.
var ErrNoExhibition = errors.New("no exhibition loaded")

// State holds the open exhibition. All mutations go through the store
// adapter first; the in-memory copy is refreshed from it afterwards.
type State struct {
	mu sync.RWMutex

	store       store.Adapter
	schema      *exhibition.Schema
	recommender *recommend.Service
	logger      *zap.Logger

	eventID string
	ex      *exhibition.Exhibition
	current exhibition.FloorRef
	mode    exhibition.Mode

	listeners map[EventType][]EventListener
}

// Options configure NewState.
type Options struct {
	Store       store.Adapter
	Schema      *exhibition.Schema
	Recommender *recommend.Service
	Mode        exhibition.Mode
	Logger      *zap.Logger
}

// NewState creates a new application state.
func NewState(opts Options) *State {
	if opts.Store == nil {
		opts.Store = store.NewMemory(opts.Schema, opts.Logger)
	}
	if opts.Schema == nil {
		opts.Schema = exhibition.DefaultSchema()
	}
	opts.Logger = logging.OrNop(opts.Logger)
	if opts.Recommender == nil {
		opts.Recommender = recommend.NewService(nil, 0, opts.Logger)
	}
	if opts.Mode == "" {
		opts.Mode = exhibition.ModeOrganizer
	}
	return &State{
		store:       opts.Store,
		schema:      opts.Schema,
		recommender: opts.Recommender,
		logger:      opts.Logger,
		mode:        opts.Mode,
		listeners:   make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Schema returns the stall field schema.
func (s *State) Schema() *exhibition.Schema { return s.schema }

// Store returns the persistence adapter.
func (s *State) Store() store.Adapter { return s.store }

// Load opens an exhibition, installing the demo data for the demo id, and
// shows its first floor.
func (s *State) Load(ctx context.Context, eventID string) error {
	ex, err := store.Seed(ctx, s.store, eventID)
	if err != nil {
		s.logger.Error("Failed to load exhibition", zap.String("event", eventID), zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.eventID = eventID
	s.ex = ex
	s.current, _ = ex.FirstFloor()
	s.mu.Unlock()

	s.logger.Info("Exhibition loaded", zap.String("event", eventID), zap.String("name", ex.Name))
	s.Emit(EventExhibitionLoaded, eventID)
	s.Emit(EventFloorChanged, s.Current())
	return nil
}

// Reload re-reads the exhibition from the store, keeping the current floor
// when it still exists.
func (s *State) Reload(ctx context.Context) error {
	s.mu.RLock()
	eventID := s.eventID
	s.mu.RUnlock()
	if eventID == "" {
		return ErrNoExhibition
	}

	ex, err := s.store.Load(ctx, eventID)
	if err != nil {
		s.logger.Error("Failed to reload exhibition", zap.String("event", eventID), zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.ex = ex
	floorChanged := false
	if _, err := ex.Floor(s.current); err != nil {
		s.current, _ = ex.FirstFloor()
		floorChanged = true
	}
	s.mu.Unlock()

	s.Emit(EventHierarchyChanged, nil)
	if floorChanged {
		s.Emit(EventFloorChanged, s.Current())
	} else {
		s.Emit(EventStallsChanged, s.Stalls())
		s.Emit(EventFloorPlanChanged, s.FloorPlanURL())
	}
	return nil
}

func (s *State) refresh(ctx context.Context) error {
	s.mu.RLock()
	eventID := s.eventID
	s.mu.RUnlock()

	ex, err := s.store.Load(ctx, eventID)
	if err != nil {
		return fmt.Errorf("reload after update: %w", err)
	}
	s.mu.Lock()
	s.ex = ex
	s.mu.Unlock()
	return nil
}

// EventID returns the loaded exhibition id.
func (s *State) EventID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eventID
}

// Exhibition returns a copy of the loaded exhibition, or nil.
func (s *State) Exhibition() *exhibition.Exhibition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ex == nil {
		return nil
	}
	return s.ex.Clone()
}

// Current returns the floor being shown.
func (s *State) Current() exhibition.FloorRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *State) ref() (store.Ref, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ex == nil {
		return store.Ref{}, ErrNoExhibition
	}
	if _, err := s.ex.Floor(s.current); err != nil {
		return store.Ref{}, err
	}
	return store.Ref{EventID: s.eventID, FloorRef: s.current}, nil
}

// Floor returns a copy of the current floor.
func (s *State) Floor() (*exhibition.Floor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ex == nil {
		return nil, ErrNoExhibition
	}
	f, err := s.ex.Floor(s.current)
	if err != nil {
		return nil, err
	}
	return f.Clone(), nil
}

// Stalls returns copies of the current floor's stalls in draw order.
func (s *State) Stalls() []*exhibition.Stall {
	f, err := s.Floor()
	if err != nil {
		return nil
	}
	return f.OrderedStalls()
}

// FloorPlanURL returns the current floor's image source.
func (s *State) FloorPlanURL() string {
	f, err := s.Floor()
	if err != nil {
		return ""
	}
	return f.FloorPlanURL
}

// SelectFloor switches to another floor of the loaded exhibition.
func (s *State) SelectFloor(ref exhibition.FloorRef) error {
	s.mu.Lock()
	if s.ex == nil {
		s.mu.Unlock()
		return ErrNoExhibition
	}
	if _, err := s.ex.Floor(ref); err != nil {
		s.mu.Unlock()
		return err
	}
	changed := s.current != ref
	s.current = ref
	s.mu.Unlock()

	if changed {
		s.Emit(EventFloorChanged, ref)
	}
	return nil
}

// Mode returns the current user mode.
func (s *State) Mode() exhibition.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// SetMode switches between organizer, visitor and customer.
func (s *State) SetMode(m exhibition.Mode) {
	s.mu.Lock()
	changed := s.mode != m
	s.mode = m
	s.mu.Unlock()
	if changed {
		s.Emit(EventModeChanged, m)
	}
}

// SaveStall creates (isNew) or updates a stall on the current floor.
func (s *State) SaveStall(ctx context.Context, st exhibition.Stall, isNew bool) (*exhibition.Stall, error) {
	ref, err := s.ref()
	if err != nil {
		return nil, err
	}
	var saved *exhibition.Stall
	if isNew {
		saved, err = s.store.CreateStall(ctx, ref, st)
	} else {
		saved, err = s.store.UpdateStall(ctx, ref, st)
	}
	if err != nil {
		return nil, err
	}
	return saved, s.stallsChanged(ctx)
}

// DeleteStall removes a stall from the current floor.
func (s *State) DeleteStall(ctx context.Context, id string) error {
	ref, err := s.ref()
	if err != nil {
		return err
	}
	if err := s.store.DeleteStall(ctx, ref, id); err != nil {
		return err
	}
	return s.stallsChanged(ctx)
}

// PurchaseStall marks a stall on the current floor as bought.
func (s *State) PurchaseStall(ctx context.Context, id string) (*exhibition.Stall, error) {
	ref, err := s.ref()
	if err != nil {
		return nil, err
	}
	st, err := s.store.PurchaseStall(ctx, ref, id)
	if err != nil {
		return nil, err
	}
	return st, s.stallsChanged(ctx)
}

func (s *State) stallsChanged(ctx context.Context) error {
	if err := s.refresh(ctx); err != nil {
		return err
	}
	s.Emit(EventStallsChanged, s.Stalls())
	return nil
}

// UploadFloorPlan stores the image file at path as the current floor plan.
func (s *State) UploadFloorPlan(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read floor plan: %w", err)
	}
	return s.SetFloorPlan(ctx, data)
}

// SetFloorPlan stores raw image bytes as the current floor plan.
func (s *State) SetFloorPlan(ctx context.Context, data []byte) (string, error) {
	ref, err := s.ref()
	if err != nil {
		return "", err
	}
	url, err := s.store.UpdateFloorPlan(ctx, ref, data, "")
	if err != nil {
		return "", err
	}
	if err := s.refresh(ctx); err != nil {
		return "", err
	}
	s.Emit(EventFloorPlanChanged, url)
	return url, nil
}

// editHierarchy applies fn to a copy of the exhibition and saves it.
func (s *State) editHierarchy(ctx context.Context, fn func(ex *exhibition.Exhibition) error) error {
	ex := s.Exhibition()
	if ex == nil {
		return ErrNoExhibition
	}
	if err := fn(ex); err != nil {
		return err
	}
	if err := s.store.Save(ctx, ex); err != nil {
		s.logger.Error("Failed to save exhibition", zap.String("event", ex.ID), zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.ex = ex
	floorGone := false
	if _, err := ex.Floor(s.current); err != nil {
		s.current, _ = ex.FirstFloor()
		floorGone = true
	}
	s.mu.Unlock()

	s.Emit(EventHierarchyChanged, nil)
	if floorGone {
		s.Emit(EventFloorChanged, s.Current())
	}
	return nil
}

// AddVenue creates a venue and returns its id.
func (s *State) AddVenue(ctx context.Context, name string) (string, error) {
	var id string
	err := s.editHierarchy(ctx, func(ex *exhibition.Exhibition) error {
		v, err := ex.AddVenue(name)
		if err != nil {
			return err
		}
		id = v.ID
		return nil
	})
	return id, err
}

// RenameVenue renames a venue.
func (s *State) RenameVenue(ctx context.Context, id, name string) error {
	return s.editHierarchy(ctx, func(ex *exhibition.Exhibition) error {
		return ex.RenameVenue(id, name)
	})
}

// DeleteVenue removes a venue with all its floors and stalls.
func (s *State) DeleteVenue(ctx context.Context, id string) error {
	return s.editHierarchy(ctx, func(ex *exhibition.Exhibition) error {
		return ex.DeleteVenue(id)
	})
}

// AddFloor creates a floor in a venue and returns its reference.
func (s *State) AddFloor(ctx context.Context, venueID, name string) (exhibition.FloorRef, error) {
	var ref exhibition.FloorRef
	err := s.editHierarchy(ctx, func(ex *exhibition.Exhibition) error {
		v, err := ex.Venue(venueID)
		if err != nil {
			return err
		}
		f, err := v.AddFloor(name)
		if err != nil {
			return err
		}
		ref = exhibition.FloorRef{VenueID: venueID, FloorID: f.ID}
		return nil
	})
	return ref, err
}

// RenameFloor renames a floor.
func (s *State) RenameFloor(ctx context.Context, ref exhibition.FloorRef, name string) error {
	return s.editHierarchy(ctx, func(ex *exhibition.Exhibition) error {
		v, err := ex.Venue(ref.VenueID)
		if err != nil {
			return err
		}
		return v.RenameFloor(ref.FloorID, name)
	})
}

// DeleteFloor removes a floor and its stalls.
func (s *State) DeleteFloor(ctx context.Context, ref exhibition.FloorRef) error {
	return s.editHierarchy(ctx, func(ex *exhibition.Exhibition) error {
		v, err := ex.Venue(ref.VenueID)
		if err != nil {
			return err
		}
		return v.DeleteFloor(ref.FloorID)
	})
}

// Recommend asks for stalls similar to st among the current floor's stalls.
func (s *State) Recommend(ctx context.Context, st *exhibition.Stall) (string, error) {
	return s.recommender.Recommend(ctx, st, s.Stalls())
}
