package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/particlesim/internal/particle"
	"github.com/san-kum/particlesim/internal/sim"
)

const (
	metadataFile  = "metadata.json"
	seriesFile    = "series.csv"
	particlesFile = "particles.csv"
)

var particleHeader = []string{"x", "y", "vx", "vy", "radius", "mass"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Count       int                `json:"count"`
	Width       float64            `json:"width"`
	Height      float64            `json:"height"`
	Damping     float64            `json:"damping"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	GravityMode string             `json:"gravity_mode"`
	MaxSpeed    float64            `json:"max_speed,omitempty"`
	Steps       int                `json:"steps"`
	Contacts    int                `json:"contacts"`
	WallHits    int                `json:"wall_hits"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Save writes a run directory holding metadata.json, the sampled metric
// series and the final particle buffer. meta.ID and meta.Timestamp are
// filled in.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	if meta.Name == "" {
		meta.Name = "run"
	}
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Name, now.UnixNano())
	meta.Timestamp = now
	meta.Steps = result.StepsTaken
	meta.Contacts = result.Contacts
	meta.WallHits = result.WallHits
	meta.Metrics = result.Metrics

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeSeries(filepath.Join(runDir, seriesFile), result); err != nil {
		return "", err
	}
	if err := writeParticles(filepath.Join(runDir, particlesFile), result.Final); err != nil {
		return "", err
	}

	return meta.ID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func seriesNames(series map[string][]float64) []string {
	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func writeSeries(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	names := seriesNames(result.Series)
	if err := w.Write(append([]string{"time"}, names...)); err != nil {
		return err
	}

	for i, t := range result.Times {
		row := []string{strconv.FormatFloat(t, 'f', 6, 64)}
		for _, name := range names {
			val := 0.0
			if i < len(result.Series[name]) {
				val = result.Series[name][i]
			}
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func writeParticles(path string, data []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(particleHeader); err != nil {
		return err
	}
	row := make([]string, particle.Stride)
	for i := 0; i+particle.Stride <= len(data); i += particle.Stride {
		for j := 0; j < particle.Stride; j++ {
			row[j] = strconv.FormatFloat(data[i+j], 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

// LoadSeries returns the sample times and each metric's series.
func (s *Store) LoadSeries(runID string) ([]float64, map[string][]float64, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
		return nil, nil, err
	}

	series := make(map[string][]float64)
	if len(records) == 0 {
		return []float64{}, series, nil
	}

	header := records[0]
	for _, name := range header[1:] {
		series[name] = make([]float64, 0, len(records)-1)
	}
	times := make([]float64, 0, len(records)-1)

	for _, record := range records[1:] {
		if len(record) != len(header) {
			return nil, nil, fmt.Errorf("storage: %s: row has %d fields, want %d", seriesFile, len(record), len(header))
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("storage: %s: %w", seriesFile, err)
		}
		times = append(times, t)

		for j, name := range header[1:] {
			val, err := strconv.ParseFloat(record[j+1], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("storage: %s: %w", seriesFile, err)
			}
			series[name] = append(series[name], val)
		}
	}

	return times, series, nil
}

// LoadParticles returns the final particle buffer of a run in the flat
// stride-6 layout.
func (s *Store) LoadParticles(runID string) ([]float64, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, particlesFile))
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []float64{}, nil
	}

	data := make([]float64, 0, (len(records)-1)*particle.Stride)
	for _, record := range records[1:] {
		if len(record) != particle.Stride {
			return nil, fmt.Errorf("storage: %s: row has %d fields, want %d", particlesFile, len(record), particle.Stride)
		}
		for _, field := range record {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("storage: %s: %w", particlesFile, err)
			}
			data = append(data, val)
		}
	}

	return data, nil
}
