package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/san-kum/balls/internal/sim"
)

type BodyRecord struct {
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	VX     float64 `json:"vx" msgpack:"vx"`
	VY     float64 `json:"vy" msgpack:"vy"`
	Radius float64 `json:"radius" msgpack:"r"`
	Mass   float64 `json:"mass" msgpack:"m"`
}

type ExportData struct {
	ID       string             `json:"id" msgpack:"id"`
	Preset   string             `json:"preset" msgpack:"preset"`
	Dt       float64            `json:"dt" msgpack:"dt"`
	Duration float64            `json:"duration" msgpack:"duration"`
	Gravity  float64            `json:"gravity" msgpack:"gravity"`
	Width    float64            `json:"width" msgpack:"width"`
	Height   float64            `json:"height" msgpack:"height"`
	Steps    int                `json:"steps" msgpack:"steps"`
	Times    []float64          `json:"times" msgpack:"times"`
	Frames   [][]BodyRecord     `json:"frames" msgpack:"frames"`
	Metrics  map[string]float64 `json:"metrics" msgpack:"metrics"`
}

func NewExportData(meta *RunMetadata, frames []sim.Frame, times []float64) *ExportData {
	data := &ExportData{
		ID:       meta.ID,
		Preset:   meta.Preset,
		Dt:       meta.Dt,
		Duration: meta.Duration,
		Gravity:  meta.Gravity,
		Width:    meta.Width,
		Height:   meta.Height,
		Steps:    meta.Steps,
		Times:    times,
		Frames:   make([][]BodyRecord, len(frames)),
		Metrics:  meta.Metrics,
	}

	for i, f := range frames {
		data.Frames[i] = make([]BodyRecord, len(f))
		for j, b := range f {
			data.Frames[i][j] = BodyRecord{
				X: b.Position[0], Y: b.Position[1],
				VX: b.Velocity[0], VY: b.Velocity[1],
				Radius: b.Radius, Mass: b.Mass,
			}
		}
	}
	return data
}

// Export loads a stored run into its exchange form.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	frames, times, err := s.LoadFrames(runID)
	if err != nil {
		return nil, err
	}
	return NewExportData(meta, frames, times), nil
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

func WriteJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportMsgpack(path string, data *ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return msgpack.NewEncoder(file).Encode(data)
}

func ReadMsgpack(path string) (*ExportData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var data ExportData
	if err := msgpack.NewDecoder(file).Decode(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
