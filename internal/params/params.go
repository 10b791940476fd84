// Package params loads the reaction parameters table that the liquid
// handling layer writes at the root of each experiment day. Every run folder
// carries its reaction id as the leading integer of its name; the table maps
// that id to the acquisition settings needed to rebuild the time axis.
package params

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// FilePrefix is the expected name prefix of the parameters table at the
// experiment root.
const FilePrefix = "reaction_parameters"

// ErrNotFound reports a missing parameters table or an id absent from it.
var ErrNotFound = errors.New("not found")

// Reaction holds the acquisition settings for a single experiment run.
// Columns beyond these (durations, reagent volumes) belong to the liquid
// handling layer and are ignored here.
type Reaction struct {
	ID              int
	NumMeasurements int
	Frequency       int
}

// TimeAxis returns the theoretical elapsed-time axis for the run: the
// strictly increasing sequence 0, f, 2f, ... with NumMeasurements entries.
func (r Reaction) TimeAxis() []float64 {
	axis := make([]float64, r.NumMeasurements)
	for i := range axis {
		axis[i] = float64(i * r.Frequency)
	}
	return axis
}

// Table is a read-only lookup of reactions by id.
type Table struct {
	byID map[int]Reaction
}

// Lookup returns the reaction with the given id.
func (t *Table) Lookup(id int) (Reaction, bool) {
	r, ok := t.byID[id]
	return r, ok
}

// Len returns the number of reactions in the table.
func (t *Table) Len() int { return len(t.byID) }

// Find locates the parameters table in dataDir by prefix match. Returns
// ErrNotFound if no matching CSV exists.
func Find(dataDir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dataDir, FilePrefix+"*.csv"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%s*.csv in %s: %w", FilePrefix, dataDir, ErrNotFound)
	}
	sort.Strings(matches)
	return matches[0], nil
}

// Load reads a parameters table. Required columns: reaction_id,
// num_measurements, frequency. Extra columns are ignored. Duplicate ids and
// non-positive frequencies are rejected.
func Load(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"reaction_id", "num_measurements", "frequency"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("read %s: missing column %q", path, required)
		}
	}

	t := &Table{byID: make(map[int]Reaction)}
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		reaction, err := parseRow(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("read %s line %d: %w", path, line, err)
		}
		if _, dup := t.byID[reaction.ID]; dup {
			return nil, fmt.Errorf("read %s line %d: duplicate reaction_id %d", path, line, reaction.ID)
		}
		t.byID[reaction.ID] = reaction
	}
	return t, nil
}

func parseRow(rec []string, cols map[string]int) (Reaction, error) {
	intField := func(name string) (int, error) {
		i := cols[name]
		if i >= len(rec) {
			return 0, fmt.Errorf("missing %s", name)
		}
		v, err := strconv.Atoi(strings.TrimSpace(rec[i]))
		if err != nil {
			return 0, fmt.Errorf("bad %s %q: %w", name, rec[i], err)
		}
		return v, nil
	}

	var reaction Reaction
	var err error
	if reaction.ID, err = intField("reaction_id"); err != nil {
		return Reaction{}, err
	}
	if reaction.NumMeasurements, err = intField("num_measurements"); err != nil {
		return Reaction{}, err
	}
	if reaction.Frequency, err = intField("frequency"); err != nil {
		return Reaction{}, err
	}
	if reaction.NumMeasurements < 0 {
		return Reaction{}, fmt.Errorf("num_measurements must be non-negative, got %d", reaction.NumMeasurements)
	}
	if reaction.Frequency < 1 {
		return Reaction{}, fmt.Errorf("frequency must be at least 1, got %d", reaction.Frequency)
	}
	return reaction, nil
}

// ParseReactionID extracts the leading integer token of a run folder name
// (e.g. "01_Ratio-10" -> 1).
func ParseReactionID(folder string) (int, error) {
	token, _, _ := strings.Cut(folder, "_")
	id, err := strconv.Atoi(token)
	if err != nil {
		return 0, fmt.Errorf("no reaction id in folder name %q: %w", folder, err)
	}
	return id, nil
}
