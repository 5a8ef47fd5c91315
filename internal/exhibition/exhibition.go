// Package exhibition holds the exhibition data model: venues, floors and
// the stalls placed on each floor plan.
package exhibition

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Mode selects who is using the floor plan.
type Mode string

const (
	ModeOrganizer Mode = "organizer"
	ModeVisitor   Mode = "visitor"
	ModeCustomer  Mode = "customer"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, bool) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeOrganizer, ModeVisitor, ModeCustomer:
		return m, true
	}
	return "", false
}

// Exhibition is the root of the container hierarchy.
type Exhibition struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Venues map[string]*Venue `json:"venues"`
}

// Venue groups floors.
type Venue struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Floors map[string]*Floor `json:"floors"`
}

// Floor owns a floor-plan image and its stalls.
type Floor struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	FloorPlanURL string            `json:"floorPlanUrl"`
	Stalls       map[string]*Stall `json:"stalls"`

	// NextSeq is the draw sequence handed to the next created stall.
	NextSeq int64 `json:"nextSeq"`
}

// FloorRef addresses a floor inside an exhibition.
type FloorRef struct {
	VenueID string `json:"venueId"`
	FloorID string `json:"floorId"`
}

// New creates an empty exhibition.
func New(id, name string) *Exhibition {
	return &Exhibition{ID: id, Name: name, Venues: make(map[string]*Venue)}
}

func cleanName(kind, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &NameError{Kind: kind}
	}
	return name, nil
}

// AddVenue creates a venue with a generated id.
func (e *Exhibition) AddVenue(name string) (*Venue, error) {
	name, err := cleanName("Venue", name)
	if err != nil {
		return nil, err
	}
	if e.Venues == nil {
		e.Venues = make(map[string]*Venue)
	}
	v := &Venue{ID: "venue-" + uuid.NewString(), Name: name, Floors: make(map[string]*Floor)}
	e.Venues[v.ID] = v
	return v, nil
}

// RenameVenue changes a venue's name.
func (e *Exhibition) RenameVenue(id, name string) error {
	v, err := e.Venue(id)
	if err != nil {
		return err
	}
	name, err = cleanName("Venue", name)
	if err != nil {
		return err
	}
	v.Name = name
	return nil
}

// DeleteVenue removes a venue together with its floors and their stalls.
func (e *Exhibition) DeleteVenue(id string) error {
	if _, ok := e.Venues[id]; !ok {
		return ErrVenueNotFound
	}
	delete(e.Venues, id)
	return nil
}

// Venue looks up a venue by id.
func (e *Exhibition) Venue(id string) (*Venue, error) {
	v, ok := e.Venues[id]
	if !ok {
		return nil, ErrVenueNotFound
	}
	return v, nil
}

// Floor resolves a floor reference.
func (e *Exhibition) Floor(ref FloorRef) (*Floor, error) {
	v, err := e.Venue(ref.VenueID)
	if err != nil {
		return nil, err
	}
	return v.Floor(ref.FloorID)
}

// SortedVenues lists venues by name, then id.
func (e *Exhibition) SortedVenues() []*Venue {
	out := make([]*Venue, 0, len(e.Venues))
	for _, v := range e.Venues {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// FirstFloor returns the first floor in listing order, if any.
func (e *Exhibition) FirstFloor() (FloorRef, bool) {
	for _, v := range e.SortedVenues() {
		if floors := v.SortedFloors(); len(floors) > 0 {
			return FloorRef{VenueID: v.ID, FloorID: floors[0].ID}, true
		}
	}
	return FloorRef{}, false
}

// Clone returns a deep copy of the exhibition.
func (e *Exhibition) Clone() *Exhibition {
	c := &Exhibition{ID: e.ID, Name: e.Name, Venues: make(map[string]*Venue, len(e.Venues))}
	for id, v := range e.Venues {
		c.Venues[id] = v.Clone()
	}
	return c
}

// AddFloor creates a floor with a generated id.
func (v *Venue) AddFloor(name string) (*Floor, error) {
	name, err := cleanName("Floor", name)
	if err != nil {
		return nil, err
	}
	if v.Floors == nil {
		v.Floors = make(map[string]*Floor)
	}
	f := &Floor{ID: "floor-" + uuid.NewString(), Name: name, Stalls: make(map[string]*Stall)}
	v.Floors[f.ID] = f
	return f, nil
}

// RenameFloor changes a floor's name.
func (v *Venue) RenameFloor(id, name string) error {
	f, err := v.Floor(id)
	if err != nil {
		return err
	}
	name, err = cleanName("Floor", name)
	if err != nil {
		return err
	}
	f.Name = name
	return nil
}

// DeleteFloor removes a floor and its stalls.
func (v *Venue) DeleteFloor(id string) error {
	if _, ok := v.Floors[id]; !ok {
		return ErrFloorNotFound
	}
	delete(v.Floors, id)
	return nil
}

// Floor looks up a floor by id.
func (v *Venue) Floor(id string) (*Floor, error) {
	f, ok := v.Floors[id]
	if !ok {
		return nil, ErrFloorNotFound
	}
	return f, nil
}

// SortedFloors lists floors by name, then id.
func (v *Venue) SortedFloors() []*Floor {
	out := make([]*Floor, 0, len(v.Floors))
	for _, f := range v.Floors {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Clone returns a deep copy of the venue.
func (v *Venue) Clone() *Venue {
	c := &Venue{ID: v.ID, Name: v.Name, Floors: make(map[string]*Floor, len(v.Floors))}
	for id, f := range v.Floors {
		c.Floors[id] = f.Clone()
	}
	return c
}

// Clone returns a deep copy of the floor.
func (f *Floor) Clone() *Floor {
	c := &Floor{ID: f.ID, Name: f.Name, FloorPlanURL: f.FloorPlanURL, NextSeq: f.NextSeq,
		Stalls: make(map[string]*Stall, len(f.Stalls))}
	for id, s := range f.Stalls {
		c.Stalls[id] = s.Clone()
	}
	return c
}

// Stall looks up a stall by id.
func (f *Floor) Stall(id string) (*Stall, error) {
	s, ok := f.Stalls[id]
	if !ok {
		return nil, ErrStallNotFound
	}
	return s, nil
}

// OrderedStalls returns the floor's stalls in draw order.
func (f *Floor) OrderedStalls() []*Stall {
	out := make([]*Stall, 0, len(f.Stalls))
	for _, s := range f.Stalls {
		out = append(out, s)
	}
	SortStalls(out)
	return out
}

func (f *Floor) numberTaken(number, exceptID string) bool {
	for _, s := range f.Stalls {
		if s.ID != exceptID && s.Number == number {
			return true
		}
	}
	return false
}

// SaveStall validates st and inserts it (empty or unknown id) or replaces
// the stored stall with the same id. Nothing changes when validation
// fails. The stored copy is returned along with whether it was created.
func (f *Floor) SaveStall(schema *Schema, st Stall) (*Stall, bool, error) {
	if schema == nil {
		schema = DefaultSchema()
	}
	cand := st.Clone()

	cand.Number = strings.TrimSpace(cand.Number)
	cand.Name = strings.TrimSpace(cand.Name)
	if cand.Name == "" {
		cand.Name = DefaultStallName
	}
	if cand.Category == "" {
		cand.Category = DefaultCategory
	}
	if cand.Segment == "" {
		cand.Segment = DefaultSegment
	}

	if cand.Number == "" {
		if schema.RequireNumber {
			return nil, false, ErrNumberRequired
		}
		cand.Number = GenerateNumber()
		for f.numberTaken(cand.Number, cand.ID) {
			cand.Number = GenerateNumber()
		}
	}
	if f.numberTaken(cand.Number, cand.ID) {
		return nil, false, &DuplicateNumberError{Number: cand.Number}
	}
	if errs := schema.Validate(cand); len(errs) > 0 {
		return nil, false, errs
	}
	if err := cand.validatePosition(); err != nil {
		return nil, false, err
	}

	if f.Stalls == nil {
		f.Stalls = make(map[string]*Stall)
	}
	existing, isEdit := f.Stalls[cand.ID]
	if cand.ID == "" || !isEdit {
		if cand.ID == "" {
			cand.ID = NewStallID()
		}
		cand.Seq = f.NextSeq
		f.NextSeq++
		f.Stalls[cand.ID] = cand
		return cand.Clone(), true, nil
	}

	cand.Seq = existing.Seq
	f.Stalls[cand.ID] = cand
	return cand.Clone(), false, nil
}

// DeleteStall removes exactly the stall with the given id.
func (f *Floor) DeleteStall(id string) error {
	if _, ok := f.Stalls[id]; !ok {
		return ErrStallNotFound
	}
	delete(f.Stalls, id)
	return nil
}

// MarkPurchased flags a stall as bought.
func (f *Floor) MarkPurchased(id string) (*Stall, error) {
	s, err := f.Stall(id)
	if err != nil {
		return nil, err
	}
	if s.Purchased {
		return nil, ErrAlreadyPurchased
	}
	s.Purchased = true
	return s.Clone(), nil
}

// StallList returns copies of the floor's stalls in draw order.
func (f *Floor) StallList() []Stall {
	ordered := f.OrderedStalls()
	out := make([]Stall, len(ordered))
	for i, s := range ordered {
		out[i] = *s.Clone()
	}
	return out
}
