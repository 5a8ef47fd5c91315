// Command floorrender renders one floor of an exhibition to a PNG file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"expo-floorplan/internal/exhibition"
	"expo-floorplan/internal/floorplan"
	"expo-floorplan/internal/hittest"
	"expo-floorplan/internal/render"
	"expo-floorplan/internal/store"
	"expo-floorplan/internal/version"
	"expo-floorplan/internal/view"
	"expo-floorplan/pkg/geometry"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "floorrender: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	driver, path string
	event        string
	venue, floor string
	out          string
	width        int
	height       int
	style        string
	selected     string
	mode         string
	timeout      time.Duration
}

func parseFlags(args []string, stdout io.Writer) (*options, bool, error) {
	fs := flag.NewFlagSet("floorrender", flag.ContinueOnError)
	fs.SetOutput(stdout)
	o := &options{}
	fs.StringVar(&o.driver, "store", store.DriverMemory, "Store driver: memory, file or sqlite")
	fs.StringVar(&o.path, "path", "", "Store directory (file) or database (sqlite)")
	fs.StringVar(&o.event, "event", store.DemoEventID, "Exhibition id")
	fs.StringVar(&o.venue, "venue", "", "Venue id (default: first venue)")
	fs.StringVar(&o.floor, "floor", "", "Floor id (default: first floor of the venue)")
	fs.StringVar(&o.out, "out", "floor.png", "Output PNG path")
	fs.IntVar(&o.width, "width", 1200, "Output width in pixels")
	fs.IntVar(&o.height, "height", 800, "Output height in pixels")
	fs.StringVar(&o.style, "style", string(hittest.StylePoint), "Marker style: point, pin, thumbnail or box")
	fs.StringVar(&o.selected, "select", "", "Stall id to highlight")
	fs.StringVar(&o.mode, "mode", string(exhibition.ModeVisitor), "Mode used for marker colors")
	fs.DurationVar(&o.timeout, "timeout", 30*time.Second, "Image download timeout")
	showVersion := fs.Bool("version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, false, err
	}
	if *showVersion {
		fmt.Fprintln(stdout, version.String())
		return nil, true, nil
	}
	if o.width <= 0 || o.height <= 0 {
		return nil, false, errors.New("width and height must be positive")
	}
	return o, false, nil
}

func run(args []string, stdout io.Writer) error {
	o, done, err := parseFlags(args, stdout)
	if err != nil || done {
		return err
	}
	style, err := hittest.ParseStyle(o.style)
	if err != nil {
		return err
	}
	mode, ok := exhibition.ParseMode(o.mode)
	if !ok {
		return fmt.Errorf("unknown mode %q", o.mode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	adapter, err := store.Open(store.Options{Driver: o.driver, Path: o.path, Logger: zap.NewNop()})
	if err != nil {
		return err
	}
	defer adapter.Close()

	ex, err := store.Seed(ctx, adapter, o.event)
	if err != nil {
		return err
	}
	floor, err := pickFloor(ex, o.venue, o.floor)
	if err != nil {
		return err
	}

	size := geometry.NewSize(float64(o.width), float64(o.height))
	sc := render.Scene{
		PixelRatio: 1,
		Stalls:     floor.OrderedStalls(),
		SelectedID: o.selected,
		Mode:       mode,
		Geometry:   hittest.Geometry{Style: style, Radius: hittest.DefaultPinSize, Multiplier: hittest.DefaultMultiplier},
		Frame:      size,
	}

	img, err := floorplan.Decode(ctx, nil, floor.FloorPlanURL)
	if err != nil {
		fmt.Fprintf(stdout, "Floor plan unavailable: %v\n", err)
		sc.StatusText = floorplan.NoImageText
		sc.Transform = view.Identity()
	} else {
		sc.Image = img
		sc.Frame = floorplan.ImageSize(img)
		sc.Transform = view.FitToContainer(sc.Frame, size)
	}

	if style == hittest.StyleThumbnail {
		thumbs := floorplan.NewThumbnails(floorplan.Options{Timeout: o.timeout})
		defer thumbs.Close()
		for _, st := range sc.Stalls {
			thumbs.Get(st.Image)
		}
		thumbs.Wait()
		sc.Thumbnails = thumbs
	}

	r, err := render.New()
	if err != nil {
		return err
	}
	f, err := os.Create(o.out)
	if err != nil {
		return err
	}
	if err := r.WritePNG(f, o.width, o.height, sc); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Rendered %s / %s (%d stalls) to %s\n", ex.Name, floor.Name, len(sc.Stalls), o.out)
	return nil
}

// pickFloor resolves venue and floor ids. Without ids it takes the first
// floor; a floor id alone is looked up in every venue.
func pickFloor(ex *exhibition.Exhibition, venueID, floorID string) (*exhibition.Floor, error) {
	if venueID == "" && floorID == "" {
		ref, ok := ex.FirstFloor()
		if !ok {
			return nil, fmt.Errorf("exhibition %q has no floors", ex.ID)
		}
		return ex.Floor(ref)
	}
	if venueID == "" {
		for _, v := range ex.SortedVenues() {
			if f, err := v.Floor(floorID); err == nil {
				return f, nil
			}
		}
		return nil, fmt.Errorf("%w: %q", exhibition.ErrFloorNotFound, floorID)
	}
	v, err := ex.Venue(venueID)
	if err != nil {
		return nil, err
	}
	if floorID == "" {
		floors := v.SortedFloors()
		if len(floors) == 0 {
			return nil, fmt.Errorf("venue %q has no floors", v.Name)
		}
		return floors[0], nil
	}
	return v.Floor(floorID)
}
