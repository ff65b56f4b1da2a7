package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/balls/internal/config"
	"github.com/san-kum/balls/internal/physics"
	"github.com/san-kum/balls/internal/sim"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

var framesHeader = []string{"time", "body", "x", "y", "vx", "vy", "radius", "mass"}

type Store struct {
	baseDir string
	logger  *log.Logger
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, logger: log.New(io.Discard), now: time.Now}
}

func (s *Store) SetLogger(l *log.Logger) {
	if l != nil {
		s.logger = l
	}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string              `json:"id"`
	Preset      string              `json:"preset"`
	Timestamp   time.Time           `json:"timestamp"`
	Seed        int64               `json:"seed"`
	Dt          float64             `json:"dt"`
	Duration    float64             `json:"duration"`
	Gravity     float64             `json:"gravity"`
	Width       float64             `json:"width"`
	Height      float64             `json:"height"`
	Bodies      int                 `json:"bodies"`
	Engine      config.EngineConfig `json:"engine"`
	Steps       int                 `json:"steps"`
	EnergyDrift float64             `json:"energy_drift"`
	Contacts    physics.Contacts    `json:"contacts"`
	Metrics     map[string]float64  `json:"metrics"`
}

func (s *Store) Save(preset string, cfg *config.Config, result *sim.Result) (string, error) {
	now := s.now()
	runID := s.newID(preset, now)
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	bodies := 0
	if last := result.Last(); last != nil {
		bodies = len(last)
	}
	meta := RunMetadata{
		ID:          runID,
		Preset:      preset,
		Timestamp:   now,
		Seed:        cfg.Seed,
		Dt:          cfg.Dt,
		Duration:    cfg.Duration,
		Gravity:     cfg.Gravity,
		Width:       cfg.Arena.Width,
		Height:      cfg.Arena.Height,
		Bodies:      bodies,
		Engine:      cfg.Engine,
		Steps:       result.StepsTaken,
		EnergyDrift: result.EnergyDrift,
		Contacts:    result.Contacts,
		Metrics:     result.Metrics,
	}

	if err := writeMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, framesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteFrames(csvFile, result.Frames, result.Times); err != nil {
		return "", err
	}

	s.logger.Info("run saved", "id", runID, "frames", len(result.Frames))
	return runID, nil
}

// newID is <preset>_<unix seconds>, suffixed when a run already took it.
func (s *Store) newID(preset string, now time.Time) string {
	base := fmt.Sprintf("%s_%d", preset, now.Unix())
	id := base
	for n := 2; ; n++ {
		if _, err := os.Stat(filepath.Join(s.baseDir, id)); os.IsNotExist(err) {
			return id
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
}

func writeMetadata(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// WriteFrames writes one row per body per frame.
func WriteFrames(out io.Writer, frames []sim.Frame, times []float64) error {
	w := csv.NewWriter(out)

	if err := w.Write(framesHeader); err != nil {
		return err
	}

	for i, frame := range frames {
		ts := strconv.FormatFloat(times[i], 'f', 6, 64)
		for j, b := range frame {
			row := []string{
				ts,
				strconv.Itoa(j),
				strconv.FormatFloat(b.Position[0], 'f', 6, 64),
				strconv.FormatFloat(b.Position[1], 'f', 6, 64),
				strconv.FormatFloat(b.Velocity[0], 'f', 6, 64),
				strconv.FormatFloat(b.Velocity[1], 'f', 6, 64),
				strconv.FormatFloat(b.Radius, 'f', 6, 64),
				strconv.FormatFloat(b.Mass, 'f', 6, 64),
			}
			if err := w.Write(row); err != nil {
				return err
			}
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
			s.logger.Debug("skipping run directory", "dir", entry.Name(), "err", err)
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
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}

	return &meta, nil
}

func (s *Store) LoadFrames(runID string) ([]sim.Frame, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, nil, err
	}
	defer file.Close()

	return ReadFrames(file)
}

// ReadFrames parses WriteFrames output. A row with body index 0 or a new
// time starts a frame; frames that held no bodies are not recoverable.
func ReadFrames(in io.Reader) ([]sim.Frame, []float64, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = len(framesHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	frames := make([]sim.Frame, 0)
	times := make([]float64, 0)
	if len(records) < 2 {
		return frames, times, nil
	}

	var ts string
	for i, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			if j == 1 {
				continue
			}
			vals[j], err = strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("storage: row %d: %w", i+2, err)
			}
		}

		if len(frames) == 0 || record[0] != ts || record[1] == "0" {
			ts = record[0]
			frames = append(frames, sim.Frame{})
			times = append(times, vals[0])
		}
		frames[len(frames)-1] = append(frames[len(frames)-1], physics.Body{
			Position:    mgl64.Vec2{vals[2], vals[3]},
			Velocity:    mgl64.Vec2{vals[4], vals[5]},
			Radius:      vals[6],
			Mass:        vals[7],
			GroundSlack: math.Inf(1),
		})
	}

	return frames, times, nil
}
