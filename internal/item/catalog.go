package item

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/osse101/StreamRealm_Go/internal/domain"
	"github.com/osse101/StreamRealm_Go/internal/validation"
)

// SchemaName is the name the item schema is registered under
const SchemaName = "items.schema.json"

//go:embed items.schema.json
var itemsSchema []byte

// Sentinel errors for catalog loading
var (
	ErrDuplicateItemID = errors.New("duplicate item id")
	ErrInvalidConfig   = errors.New("invalid configuration")
)

// Catalog is a read-only lookup of item definitions
type Catalog interface {
	Get(itemID string) (*domain.Item, error)
	All() []domain.Item
}

// Config is the JSON document holding item definitions
type Config struct {
	Version     string        `json:"version"`
	Description string        `json:"description,omitempty"`
	Items       []domain.Item `json:"items"`
}

// Registry is an in-memory Catalog
type Registry struct {
	items map[string]*domain.Item
	order []string
}

// NewRegistry builds a registry from definitions, rejecting duplicate ids
func NewRegistry(items []domain.Item) (*Registry, error) {
	r := &Registry{
		items: make(map[string]*domain.Item, len(items)),
		order: make([]string, 0, len(items)),
	}
	for i := range items {
		def := items[i]
		if def.ID == "" {
			return nil, fmt.Errorf(ErrFmtItemEmptyID, ErrInvalidConfig, i)
		}
		if _, dup := r.items[def.ID]; dup {
			return nil, fmt.Errorf("%w: '%s'", ErrDuplicateItemID, def.ID)
		}
		if def.ShopPrice < 0 {
			return nil, fmt.Errorf(ErrFmtItemNegativePrice, ErrInvalidConfig, def.ID)
		}
		r.items[def.ID] = &def
		r.order = append(r.order, def.ID)
	}
	sort.Strings(r.order)
	return r, nil
}

// Get returns a copy of the definition for itemID
func (r *Registry) Get(itemID string) (*domain.Item, error) {
	def, ok := r.items[itemID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, itemID)
	}
	c := *def
	return &c, nil
}

// All returns every definition ordered by id
func (r *Registry) All() []domain.Item {
	out := make([]domain.Item, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.items[id])
	}
	return out
}

// Loader reads catalog files and validates them against the item schema
type Loader struct {
	schemas validation.SchemaValidator
}

// NewLoader creates a Loader with the embedded item schema registered
func NewLoader(schemas validation.SchemaValidator) (*Loader, error) {
	return NewLoaderWithSchema(schemas, itemsSchema)
}

// NewLoaderWithSchema registers schema in place of the embedded item schema
func NewLoaderWithSchema(schemas validation.SchemaValidator, schema []byte) (*Loader, error) {
	if err := schemas.Register(SchemaName, schema); err != nil {
		return nil, fmt.Errorf(ErrMsgRegisterSchemaFailed, err)
	}
	return &Loader{schemas: schemas}, nil
}

// LoadFile reads, validates and parses an items JSON file into a Registry
func (l *Loader) LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgReadConfigFileFailed, err)
	}
	return l.LoadBytes(data)
}

// LoadBytes validates and parses an items JSON document into a Registry
func (l *Loader) LoadBytes(data []byte) (*Registry, error) {
	if err := l.schemas.Validate(SchemaName, data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf(ErrMsgParseConfigFailed, err)
	}
	return NewRegistry(cfg.Items)
}
