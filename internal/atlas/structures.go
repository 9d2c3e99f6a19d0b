package atlas

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Structure is one node of the atlas ontology.
type Structure struct {
	ID              uint32 `json:"id"`
	Acronym         string `json:"acronym"`
	Name            string `json:"name"`
	StructureIDPath []int  `json:"structure_id_path,omitempty"`
	RGBTriplet      [3]int `json:"rgb_triplet,omitempty"`
}

// Label formats the structure for display in the status bar.
func (s Structure) Label() string {
	if s.Acronym == "" {
		return s.Name
	}
	return fmt.Sprintf("%s - %s", s.Acronym, s.Name)
}

// Structures indexes the ontology by label value.
type Structures struct {
	byID map[uint32]Structure
}

// NewStructures builds an index. Later duplicates replace earlier ones.
func NewStructures(list []Structure) *Structures {
	s := &Structures{byID: make(map[uint32]Structure, len(list))}
	for _, st := range list {
		s.byID[st.ID] = st
	}
	return s
}

// Lookup returns the structure for a label value. Label 0 is background.
func (s *Structures) Lookup(id uint32) (Structure, bool) {
	if id == 0 || s == nil {
		return Structure{}, false
	}
	st, ok := s.byID[id]
	return st, ok
}

// Name returns the display label for id, or "" for background and unknown ids.
func (s *Structures) Name(id uint32) string {
	st, ok := s.Lookup(id)
	if !ok {
		return ""
	}
	return st.Label()
}

// Len returns the number of structures.
func (s *Structures) Len() int {
	if s == nil {
		return 0
	}
	return len(s.byID)
}

// List returns the structures ordered by id.
func (s *Structures) List() []Structure {
	out := make([]Structure, 0, len(s.byID))
	for _, st := range s.byID {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func loadStructures(path string) (*Structures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var list []Structure
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse structures: %w", err)
	}
	return NewStructures(list), nil
}
