package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

// ErrNotFound is returned when a run id has no stored trace.
var ErrNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID        string             `json:"id"`
	Scenario  string             `json:"scenario"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Particles int                `json:"particles"`
	Ornaments int                `json:"ornaments"`
	Changes   int                `json:"changes"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Sample is one recorded tick of a run.
type Sample struct {
	Time         float64
	State        string
	Progress     float64
	Spread       float64
	Displacement float64
	RotX, RotY   float64
	Detected     bool
	Gesture      string
}

// Trace is the per-tick record of a run.
type Trace struct {
	Samples []Sample
}

func (t *Trace) Append(s Sample) { t.Samples = append(t.Samples, s) }
func (t *Trace) Len() int        { return len(t.Samples) }

// Column extracts one numeric column by its CSV header name.
func (t *Trace) Column(name string) ([]float64, error) {
	out := make([]float64, len(t.Samples))
	for i, s := range t.Samples {
		switch name {
		case "time":
			out[i] = s.Time
		case "progress":
			out[i] = s.Progress
		case "spread":
			out[i] = s.Spread
		case "displacement":
			out[i] = s.Displacement
		case "rot_x":
			out[i] = s.RotX
		case "rot_y":
			out[i] = s.RotY
		default:
			return nil, fmt.Errorf("storage: unknown column %q", name)
		}
	}
	return out, nil
}

var traceHeader = []string{"time", "state", "progress", "spread", "displacement", "rot_x", "rot_y", "detected", "gesture"}

// Columns lists the numeric columns accepted by Column.
func Columns() []string {
	return []string{"progress", "spread", "displacement", "rot_x", "rot_y"}
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }

// WriteCSV writes the trace with a header row.
func (t *Trace) WriteCSV(out io.Writer) error {
	w := csv.NewWriter(out)
	if err := w.Write(traceHeader); err != nil {
		return err
	}
	for _, s := range t.Samples {
		row := []string{
			formatFloat(s.Time),
			s.State,
			formatFloat(s.Progress),
			formatFloat(s.Spread),
			formatFloat(s.Displacement),
			formatFloat(s.RotX),
			formatFloat(s.RotY),
			strconv.FormatBool(s.Detected),
			s.Gesture,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadCSV parses a trace written by WriteCSV. Rows that do not parse are skipped.
func ReadCSV(in io.Reader) (*Trace, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	tr := &Trace{}
	if len(records) < 2 {
		return tr, nil
	}

	for _, rec := range records[1:] {
		if len(rec) < len(traceHeader) {
			continue
		}
		var nums [5]float64
		ok := true
		for j, idx := range []int{0, 2, 3, 4, 5} {
			v, err := strconv.ParseFloat(rec[idx], 64)
			if err != nil {
				ok = false
				break
			}
			nums[j] = v
		}
		if !ok {
			continue
		}
		rotY, err := strconv.ParseFloat(rec[6], 64)
		if err != nil {
			continue
		}
		detected, _ := strconv.ParseBool(rec[7])
		tr.Append(Sample{
			Time:         nums[0],
			State:        rec[1],
			Progress:     nums[1],
			Spread:       nums[2],
			Displacement: nums[3],
			RotX:         nums[4],
			RotY:         rotY,
			Detected:     detected,
			Gesture:      rec[8],
		})
	}
	return tr, nil
}

// Save writes metadata.json and frames.csv under a new run directory and
// returns the run id. meta.ID and meta.Timestamp are filled in when empty.
func (s *Store) Save(meta RunMetadata, trace *Trace) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if meta.ID == "" {
		name := meta.Scenario
		if name == "" {
			name = "run"
		}
		meta.ID = fmt.Sprintf("%s_%d", name, meta.Timestamp.UnixNano())
	}
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "frames.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if trace == nil {
		trace = &Trace{}
	}
	if err := trace.WriteCSV(csvFile); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// List returns the stored runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadTrace(runID string) (*Trace, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "frames.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()
	return ReadCSV(file)
}

// ExportJSON writes the metadata and trace of a run as one JSON document.
func ExportJSON(w io.Writer, meta *RunMetadata, trace *Trace) error {
	type sample struct {
		Time         float64 `json:"time"`
		State        string  `json:"state"`
		Progress     float64 `json:"progress"`
		Spread       float64 `json:"spread"`
		Displacement float64 `json:"displacement"`
		RotX         float64 `json:"rot_x"`
		RotY         float64 `json:"rot_y"`
		Detected     bool    `json:"detected"`
		Gesture      string  `json:"gesture,omitempty"`
	}
	doc := struct {
		*RunMetadata
		Frames []sample `json:"frames"`
	}{RunMetadata: meta}
	if trace != nil {
		doc.Frames = make([]sample, len(trace.Samples))
		for i, s := range trace.Samples {
			doc.Frames[i] = sample(s)
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
