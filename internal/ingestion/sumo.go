package ingestion

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/tse-eval/resampler/internal/core/series"
)

// EdgeRecords streams the samples of a SUMO edgeData (or laneData) dump.
// Every child of an <interval> becomes one record carrying the interval's
// attributes overlaid with its own. The sequence can be ranged over once.
func EdgeRecords(r io.Reader) iter.Seq2[Record, error] {
	return xmlRecords(r, func(depth int, el xml.StartElement, interval Record) (Record, bool) {
		if depth != 3 {
			return nil, false
		}
		rec := make(Record, len(interval), len(interval)+len(el.Attr))
		copy(rec, interval)
		for _, a := range el.Attr {
			rec = rec.Set(a.Name.Local, a.Value)
		}
		return rec, true
	})
}

// LoopRecords streams the <interval> elements of a SUMO induction loop dump.
// The sequence can be ranged over once.
func LoopRecords(r io.Reader) iter.Seq2[Record, error] {
	return xmlRecords(r, func(depth int, el xml.StartElement, _ Record) (Record, bool) {
		if depth != 2 {
			return nil, false
		}
		return attrs(el), true
	})
}

// xmlRecords walks the token stream and yields whatever emit selects.
// Depth 1 is the document root; the attributes of the current depth-2 element
// are passed to emit.
func xmlRecords(r io.Reader, emit func(depth int, el xml.StartElement, parent Record) (Record, bool)) iter.Seq2[Record, error] {
	var consumed atomic.Bool
	return func(yield func(Record, error) bool) {
		if consumed.Swap(true) {
			yield(nil, ErrSequenceConsumed)
			return
		}

		dec := xml.NewDecoder(r)
		depth := 0
		var parent Record
		for {
			tok, err := dec.Token()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, fmt.Errorf("decode xml: %w", err))
				return
			}
			switch el := tok.(type) {
			case xml.StartElement:
				depth++
				if depth == 2 {
					parent = attrs(el)
				}
				if rec, ok := emit(depth, el, parent); ok {
					if !yield(rec, nil) {
						return
					}
				}
			case xml.EndElement:
				depth--
			}
		}
	}
}

func attrs(el xml.StartElement) Record {
	rec := make(Record, 0, len(el.Attr))
	for _, a := range el.Attr {
		rec = rec.Set(a.Name.Local, a.Value)
	}
	return rec
}

// EdgeDataLayout keeps speed and the edge id of SUMO edge dumps. The
// interval begin becomes timeStamp in nanoseconds and id becomes connectionID.
func EdgeDataLayout() Layout {
	return Layout{
		TimeColumn: "timeStamp",
		TimeUnit:   time.Second,
		StoreNanos: true,
		Drop: []string{
			"end", "sampledSeconds", "traveltime", "waitingTime", "timeLoss",
			"departed", "arrived", "entered", "left",
			"laneChangedFrom", "laneChangedTo", "teleported",
		},
		Rename: map[string]string{"begin": "timeStamp", "id": "connectionID"},
		Labels: []string{"connectionID"},
	}
}

// LoopDataLayout indexes induction loop intervals by their begin second.
func LoopDataLayout() Layout {
	return Layout{
		TimeColumn: "begin",
		TimeUnit:   time.Second,
		Drop:       []string{"length"},
		Labels:     []string{"id"},
	}
}

// EdgeDataSource reads a SUMO edge data XML file.
type EdgeDataSource struct {
	Path string
}

func (s EdgeDataSource) Load(ctx context.Context) (*series.Table, error) {
	return loadXML(ctx, s.Path, "edge", EdgeRecords, EdgeDataLayout())
}

// LoopDataSource reads a SUMO induction loop XML file.
type LoopDataSource struct {
	Path string
}

func (s LoopDataSource) Load(ctx context.Context) (*series.Table, error) {
	return loadXML(ctx, s.Path, "loop", LoopRecords, LoopDataLayout())
}

func loadXML(ctx context.Context, path, kind string, records func(io.Reader) iter.Seq2[Record, error], layout Layout) (*series.Table, error) {
	start := time.Now()
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s data: %w", kind, err)
	}
	defer f.Close()

	tbl, err := BuildTable(ctx, records(f), layout)
	if err != nil {
		return nil, fmt.Errorf("read %s data %s: %w", kind, path, err)
	}
	slog.Info("[Ingestion] Read SUMO dump",
		"kind", kind,
		"path", path,
		"rows", tbl.Len(),
		"took", time.Since(start),
	)
	return tbl, nil
}
