package options

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Pins is a persisted, per-file record of user-pinned column types,
// adapted from the teacher's schema.Schema (internal/schema/manager.go
// in csvquery, which persists per-CSV "virtual column" metadata next
// to the file). Here the persisted metadata is the caller's type
// decisions instead of virtual-column defaults, so that a batch job
// that pins types once can reuse the decision on the next run without
// repeating WithColumnType calls in code.
type Pins struct {
	ColumnTypes map[string]string `json:"column_types"`
	TypeMap     map[string]string `json:"type_map"`

	path string
	mu   sync.Mutex
}

// LoadPins loads the persisted type pins for csvPath, if any. A
// missing pins file is not an error; an empty Pins is returned.
func LoadPins(csvPath string) (*Pins, error) {
	p := &Pins{
		ColumnTypes: make(map[string]string),
		TypeMap:     make(map[string]string),
		path:        pinsPath(csvPath),
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, p); err != nil {
		return nil, err
	}
	if p.ColumnTypes == nil {
		p.ColumnTypes = make(map[string]string)
	}
	if p.TypeMap == nil {
		p.TypeMap = make(map[string]string)
	}
	return p, nil
}

// Save writes the pins back to disk.
func (p *Pins) Save() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0644)
}

// Pin records a column's type decision.
func (p *Pins) Pin(column, typeName string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ColumnTypes[column] = typeName
}

// Unpin removes a column's recorded type decision.
func (p *Pins) Unpin(column string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.ColumnTypes, column)
}

// Apply layers the persisted pins onto o, without overriding any type
// already set by the caller in code.
func (p *Pins) Apply(o *Options) {
	if len(p.ColumnTypes) > 0 && o.TypesByName == nil {
		o.TypesByName = make(map[string]string, len(p.ColumnTypes))
	}
	for col, typ := range p.ColumnTypes {
		if _, exists := o.TypesByName[col]; !exists {
			o.TypesByName[col] = typ
		}
	}
	if len(p.TypeMap) > 0 && o.TypeMap == nil {
		o.TypeMap = make(map[string]string, len(p.TypeMap))
	}
	for k, v := range p.TypeMap {
		if _, exists := o.TypeMap[k]; !exists {
			o.TypeMap[k] = v
		}
	}
}

func pinsPath(csvPath string) string {
	dir := filepath.Dir(csvPath)
	base := filepath.Base(csvPath)
	return filepath.Join(dir, base+"_types.json")
}
