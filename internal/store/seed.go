package store

import (
	"context"
	"errors"
	"fmt"

	"expo-floorplan/internal/exhibition"
)

// Demo exhibition identifiers.
const (
	DemoEventID  = "tech-art-expo"
	DemoVenueID  = "venue-main-hall"
	DemoFloorID  = "floor-ground"
	DemoPlanURL  = "https://placehold.co/1200x800.png"
	demoImageURL = "https://placehold.co/300x200.png"
)

// DemoRef addresses the demo floor.
var DemoRef = Ref{
	EventID:  DemoEventID,
	FloorRef: exhibition.FloorRef{VenueID: DemoVenueID, FloorID: DemoFloorID},
}

// Demo builds the "Tech & Art Expo" sample exhibition.
func Demo() *exhibition.Exhibition {
	stalls := []exhibition.Stall{
		{ID: "stall-001", X: 20, Y: 30, Number: "A-101", Category: "Electronics", Segment: "Luxury", Name: "ElectroWorld", Contact: "contact@electroworld.com"},
		{ID: "stall-002", X: 55, Y: 15, Number: "A-102", Category: "Food", Segment: "Basic", Name: "Gourmet Bites", Contact: "info@gourmetbites.com"},
		{ID: "stall-003", X: 70, Y: 75, Number: "B-201", Category: "Jewelry", Segment: "Combo", Name: "Gem Palace", Contact: "support@gempalace.com"},
		{ID: "stall-004", X: 35, Y: 45, Number: "C-301", Category: "Art", Segment: "Luxury", Name: "Artistic Visions", Contact: "gallery@artisticvisions.com"},
		{ID: "stall-005", X: 10, Y: 65, Number: "C-302", Category: "Apparel", Segment: "Basic", Name: "Fashion Forward", Contact: "sales@fashionforward.com"},
		{ID: "stall-006", X: 45, Y: 45, Number: "D-401", Category: "Electronics", Segment: "Luxury", Name: "Future Gadgets", Contact: "info@futuregadgets.com"},
	}

	floor := &exhibition.Floor{
		ID:           DemoFloorID,
		Name:         "Ground Floor",
		FloorPlanURL: DemoPlanURL,
		Stalls:       make(map[string]*exhibition.Stall, len(stalls)),
	}
	for i := range stalls {
		st := stalls[i]
		st.Image = demoImageURL
		st.Seq = int64(i)
		floor.Stalls[st.ID] = &st
	}
	floor.NextSeq = int64(len(stalls))

	ex := exhibition.New(DemoEventID, "Tech & Art Expo")
	ex.Venues[DemoVenueID] = &exhibition.Venue{
		ID:     DemoVenueID,
		Name:   "Main Hall",
		Floors: map[string]*exhibition.Floor{DemoFloorID: floor},
	}
	return ex
}

// Seed installs the demo exhibition when eventID is the demo id and the
// store does not have it yet. It returns whatever the store then holds.
func Seed(ctx context.Context, a Adapter, eventID string) (*exhibition.Exhibition, error) {
	ex, err := a.Load(ctx, eventID)
	if err == nil {
		return ex, nil
	}
	if !errors.Is(err, ErrEventNotFound) || eventID != DemoEventID {
		return nil, err
	}
	if err := a.Save(ctx, Demo()); err != nil {
		return nil, fmt.Errorf("seed demo exhibition: %w", err)
	}
	return a.Load(ctx, eventID)
}
