package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/particlesim/internal/particle"
)

type ExportData struct {
	Run       RunMetadata          `json:"run"`
	Times     []float64            `json:"times"`
	Series    map[string][]float64 `json:"series"`
	Particles []particle.Particle  `json:"particles"`
}

// Export gathers everything stored for a run.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	times, series, err := s.LoadSeries(runID)
	if err != nil {
		return nil, err
	}
	data, err := s.LoadParticles(runID)
	if err != nil {
		return nil, err
	}

	v := particle.NewView(data)
	ps := make([]particle.Particle, v.Len())
	for i := range ps {
		ps[i] = v.At(i)
	}

	return &ExportData{Run: *meta, Times: times, Series: series, Particles: ps}, nil
}

func WriteJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, data *ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}

func ExportJSONStdout(data *ExportData) error {
	return WriteJSON(os.Stdout, data)
}
