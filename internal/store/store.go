// Package store persists exhibitions. Every adapter stores one document
// per exhibition and applies stall mutations as read-modify-write.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"expo-floorplan/internal/exhibition"
	"expo-floorplan/internal/floorplan"
	"expo-floorplan/internal/logging"
)

var (
	ErrEventNotFound = errors.New("exhibition not found")
	ErrInvalidID     = errors.New("invalid exhibition id")
	ErrUnknownDriver = errors.New("unknown store driver")
)

// Drivers accepted by Open.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Ref addresses a floor inside a stored exhibition.
type Ref struct {
	EventID string
	exhibition.FloorRef
}

// Adapter is the persistence contract the application talks to.
type Adapter interface {
	Load(ctx context.Context, eventID string) (*exhibition.Exhibition, error)
	Save(ctx context.Context, ex *exhibition.Exhibition) error
	CreateStall(ctx context.Context, ref Ref, st exhibition.Stall) (*exhibition.Stall, error)
	UpdateStall(ctx context.Context, ref Ref, st exhibition.Stall) (*exhibition.Stall, error)
	DeleteStall(ctx context.Context, ref Ref, id string) error
	PurchaseStall(ctx context.Context, ref Ref, id string) (*exhibition.Stall, error)
	UpdateFloorPlan(ctx context.Context, ref Ref, data []byte, mimeType string) (string, error)
	Close() error
}

// Options configure Open.
type Options struct {
	Driver string
	// Path is a directory for the file driver and a database file for
	// sqlite. Ignored by memory.
	Path   string
	Schema *exhibition.Schema
	Logger *zap.Logger
}

// Open creates the adapter named by opts.Driver.
func Open(opts Options) (Adapter, error) {
	switch strings.ToLower(opts.Driver) {
	case "", DriverMemory:
		return NewMemory(opts.Schema, opts.Logger), nil
	case DriverFile:
		return NewFile(opts.Path, opts.Schema, opts.Logger)
	case DriverSQLite:
		return NewSQLite(opts.Path, opts.Schema, opts.Logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}

func checkID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

type updateFunc func(ctx context.Context, eventID string, fn func(*exhibition.Exhibition) error) error

// mutations implements the stall and floor-plan operations shared by all
// adapters on top of an atomic update primitive.
type mutations struct {
	schema *exhibition.Schema
	logger *zap.Logger
	apply  updateFunc
}

func newMutations(schema *exhibition.Schema, logger *zap.Logger, update updateFunc) mutations {
	if schema == nil {
		schema = exhibition.DefaultSchema()
	}
	logger = logging.OrNop(logger)
	return mutations{schema: schema, logger: logger, apply: update}
}

func (m mutations) onFloor(ctx context.Context, ref Ref, fn func(*exhibition.Floor) error) error {
	err := m.apply(ctx, ref.EventID, func(ex *exhibition.Exhibition) error {
		f, err := ex.Floor(ref.FloorRef)
		if err != nil {
			return err
		}
		return fn(f)
	})
	if err != nil && !isUserError(err) {
		m.logger.Error("Store update failed",
			zap.String("event", ref.EventID),
			zap.String("floor", ref.FloorID),
			zap.Error(err))
	}
	return err
}

// isUserError reports validation outcomes that are not worth logging.
func isUserError(err error) bool {
	var fe exhibition.FieldErrors
	return errors.As(err, &fe) ||
		errors.Is(err, exhibition.ErrDuplicateNumber) ||
		errors.Is(err, exhibition.ErrNumberRequired) ||
		errors.Is(err, exhibition.ErrInvalidPosition) ||
		errors.Is(err, exhibition.ErrAlreadyPurchased) ||
		errors.Is(err, floorplan.ErrNotImage)
}

// CreateStall stores st as a new stall; any id it carries is replaced.
func (m mutations) CreateStall(ctx context.Context, ref Ref, st exhibition.Stall) (*exhibition.Stall, error) {
	st.ID = ""
	var saved *exhibition.Stall
	err := m.onFloor(ctx, ref, func(f *exhibition.Floor) error {
		s, _, err := f.SaveStall(m.schema, st)
		saved = s
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// UpdateStall replaces an existing stall.
func (m mutations) UpdateStall(ctx context.Context, ref Ref, st exhibition.Stall) (*exhibition.Stall, error) {
	var saved *exhibition.Stall
	err := m.onFloor(ctx, ref, func(f *exhibition.Floor) error {
		if _, err := f.Stall(st.ID); err != nil {
			return err
		}
		s, _, err := f.SaveStall(m.schema, st)
		saved = s
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (m mutations) DeleteStall(ctx context.Context, ref Ref, id string) error {
	return m.onFloor(ctx, ref, func(f *exhibition.Floor) error {
		return f.DeleteStall(id)
	})
}

func (m mutations) PurchaseStall(ctx context.Context, ref Ref, id string) (*exhibition.Stall, error) {
	var bought *exhibition.Stall
	err := m.onFloor(ctx, ref, func(f *exhibition.Floor) error {
		s, err := f.MarkPurchased(id)
		bought = s
		return err
	})
	if err != nil {
		return nil, err
	}
	return bought, nil
}

// UpdateFloorPlan stores data as the floor's image and returns the data
// URL. An empty mimeType is sniffed from the content.
func (m mutations) UpdateFloorPlan(ctx context.Context, ref Ref, data []byte, mimeType string) (string, error) {
	url, err := floorPlanURL(data, mimeType)
	if err != nil {
		return "", err
	}
	err = m.onFloor(ctx, ref, func(f *exhibition.Floor) error {
		f.FloorPlanURL = url
		return nil
	})
	if err != nil {
		return "", err
	}
	return url, nil
}

func floorPlanURL(data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", floorplan.ErrNotImage
	}
	if mimeType == "" {
		return floorplan.ImageDataURL(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return "", floorplan.ErrNotImage
	}
	return floorplan.EncodeDataURL(mimeType, data), nil
}
