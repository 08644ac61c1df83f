package telemetry

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/myopic/ecosim/agent"
	"github.com/myopic/ecosim/ecoerr"
)

// OutputManager handles a run's CSV/JSON telemetry side-channel,
// mirroring the teacher's gocsv-based OutputManager.
type OutputManager struct {
	dir           string
	telemetryFile *os.File
	perfFile      *os.File
	bookmarkFile  *os.File

	telemetryHeaderWritten bool
	perfHeaderWritten      bool
	bookmarkHeaderWritten  bool
}

// NewOutputManager creates an output manager rooted at dir, opening
// telemetry.csv, perf.csv, and bookmarks.csv. Returns nil if dir is
// empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	const op = "telemetry.NewOutputManager"
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		return nil, ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	om.telemetryFile = f

	f, err = os.Create(filepath.Join(dir, "perf.csv"))
	if err != nil {
		om.telemetryFile.Close()
		return nil, ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	om.perfFile = f

	f, err = os.Create(filepath.Join(dir, "bookmarks.csv"))
	if err != nil {
		om.telemetryFile.Close()
		om.perfFile.Close()
		return nil, ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	om.bookmarkFile = f

	return om, nil
}

// WriteTelemetry appends a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	const op = "telemetry.WriteTelemetry"
	if om == nil {
		return nil
	}
	records := []WindowStats{stats}
	if !om.telemetryHeaderWritten {
		if err := gocsv.Marshal(records, om.telemetryFile); err != nil {
			return ecoerr.Wrap(ecoerr.IOFailure, op, err)
		}
		om.telemetryHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.telemetryFile); err != nil {
		return ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	return nil
}

// WritePerf appends a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	const op = "telemetry.WritePerf"
	if om == nil {
		return nil
	}
	records := []PerfStatsCSV{stats.ToCSV(windowEnd)}
	if !om.perfHeaderWritten {
		if err := gocsv.Marshal(records, om.perfFile); err != nil {
			return ecoerr.Wrap(ecoerr.IOFailure, op, err)
		}
		om.perfHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.perfFile); err != nil {
		return ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	return nil
}

// WriteBookmark appends a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	const op = "telemetry.WriteBookmark"
	if om == nil {
		return nil
	}
	records := []Bookmark{b}
	if !om.bookmarkHeaderWritten {
		if err := gocsv.Marshal(records, om.bookmarkFile); err != nil {
			return ecoerr.Wrap(ecoerr.IOFailure, op, err)
		}
		om.bookmarkHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.bookmarkFile); err != nil {
		return ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	return nil
}

// WriteHallOfFame saves the hall of fame as JSON.
func (om *OutputManager) WriteHallOfFame(hof *HallOfFame) error {
	const op = "telemetry.WriteHallOfFame"
	if om == nil || hof == nil {
		return nil
	}
	data, err := hof.MarshalJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(om.dir, "hall_of_fame.json"), data, 0o644); err != nil {
		return ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	return nil
}

// traceRow is one row of a per-agent decision trace, the CSV shape the
// --trace-agent CLI flag emits.
type traceRow struct {
	Tick   int    `csv:"tick"`
	Action string `csv:"action"`
	BandID int    `csv:"band_id"`
	Energy float64 `csv:"energy"`
	X      int    `csv:"x"`
	Y      int    `csv:"y"`
}

// WriteAgentTrace writes one agent's bounded decision history to
// trace_agent_<id>.csv, the data backing the --trace-agent inspection
// flag and the migration demonstrations original_source's visualizer
// scripts consumed.
func (om *OutputManager) WriteAgentTrace(a *agent.BandedAgent) error {
	const op = "telemetry.WriteAgentTrace"
	if om == nil {
		return nil
	}
	trajectory := a.GetTrajectory()
	rows := make([]traceRow, len(trajectory))
	for i, d := range trajectory {
		rows[i] = traceRow{
			Tick:   d.Tick,
			Action: d.Action.String(),
			BandID: d.BandID,
			Energy: d.Energy,
			X:      d.X,
			Y:      d.Y,
		}
	}

	id := a.GetStateSummary().AgentID
	path := filepath.Join(om.dir, "trace_agent_"+strconv.Itoa(id)+".csv")
	f, err := os.Create(path)
	if err != nil {
		return ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	defer f.Close()

	if err := gocsv.Marshal(rows, f); err != nil {
		return ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all open output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, f := range []*os.File{om.telemetryFile, om.perfFile, om.bookmarkFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
