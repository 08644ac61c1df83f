package runstore

import (
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/myopic/ecosim/ecoerr"
)

// DeltaRow is one sparse delta journal record: (tick, x, y, field_id, delta)
// with |delta| > 1e-8, matching spec.md §6's grid/deltas.parquet schema.
type DeltaRow struct {
	Tick    int32   `parquet:"name=tick, type=INT32"`
	X       int32   `parquet:"name=x, type=INT32"`
	Y       int32   `parquet:"name=y, type=INT32"`
	FieldID int32   `parquet:"name=field_id, type=INT32"`
	Delta   float32 `parquet:"name=delta, type=FLOAT"`
}

// WriteDeltas writes rows to a deltas.parquet file, snappy-compressed.
func WriteDeltas(path string, rows []DeltaRow) error {
	const op = "runstore.WriteDeltas"
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	defer fw.Close()

	pw, err := writer.NewParquetWriter(fw, new(DeltaRow), 4)
	if err != nil {
		return ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			return ecoerr.Wrap(ecoerr.IOFailure, op, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	return nil
}

// ReadDeltas reads every row from a deltas.parquet file, in on-disk order
// (which the writer appends in tick order).
func ReadDeltas(path string) ([]DeltaRow, error) {
	const op = "runstore.ReadDeltas"
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(DeltaRow), 4)
	if err != nil {
		return nil, ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	defer pr.ReadStop()

	n := int(pr.GetNumRows())
	rows := make([]DeltaRow, n)
	if n > 0 {
		if err := pr.Read(&rows); err != nil {
			return nil, ecoerr.Wrap(ecoerr.IOFailure, op, err)
		}
	}
	return rows, nil
}
