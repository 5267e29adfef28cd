package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/readysim/internal/dynamo"
	"github.com/san-kum/readysim/internal/sim"
)

// SeriesColumns is the column order of a series file. The file itself has
// no header row.
var SeriesColumns = append([]string{"time", "readiness"}, dynamo.StateNames[:]...)

// Series is a trajectory read back from disk.
type Series struct {
	Times     []float64
	Readiness []float64
	States    []dynamo.State
}

// Readout wraps the series for the renderers. Its summary is empty.
func (s *Series) Readout() *sim.Readout {
	return &sim.Readout{Times: s.Times, States: s.States, Readiness: s.Readiness}
}

// WriteSeries writes one row per sample: time in days, readiness, A..I.
func WriteSeries(w io.Writer, out *sim.Readout) error {
	cw := csv.NewWriter(w)
	row := make([]string, len(SeriesColumns))
	for i := range out.Times {
		row[0] = strconv.FormatFloat(out.Times[i], 'g', -1, 64)
		row[1] = strconv.FormatFloat(out.Readiness[i], 'g', -1, 64)
		for j, v := range out.States[i] {
			row[2+j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadSeries parses what WriteSeries produced. Rows need at least time and
// readiness; state columns are optional.
func ReadSeries(r io.Reader) (*Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	s := &Series{
		Times:     make([]float64, 0, len(records)),
		Readiness: make([]float64, 0, len(records)),
		States:    make([]dynamo.State, 0, len(records)),
	}
	for i, record := range records {
		if len(record) < 2 {
			return nil, fmt.Errorf("series row %d: %d columns, need at least 2", i+1, len(record))
		}
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("series row %d column %d: %w", i+1, j+1, err)
			}
			vals[j] = v
		}
		s.Times = append(s.Times, vals[0])
		s.Readiness = append(s.Readiness, vals[1])
		s.States = append(s.States, dynamo.State(vals[2:]))
	}
	return s, nil
}
