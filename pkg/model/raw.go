package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Analysis is the payload the external analyzer produces: a dependency map
// plus a parallel per-file metadata record. This core consumes it as-is and
// never computes it.
//
// The format carries bson tags so snapshots can be stored verbatim by the
// optional Mongo-backed snapshot store.
type Analysis struct {
	FileGraph map[string][]string   `json:"fileGraph" bson:"file_graph"`
	FileData  map[string]FileRecord `json:"fileData,omitempty" bson:"file_data,omitempty"`
}

// FileRecord is the analyzer's metadata for one file. Records may be
// missing for files that only appear as dependency targets; Build creates
// minimally-populated nodes for those.
type FileRecord struct {
	Category           string  `json:"category" bson:"category"`
	Size               string  `json:"size,omitempty" bson:"size,omitempty"` // humanized, e.g. "12.4KB"
	Lines              int     `json:"lines,omitempty" bson:"lines,omitempty"`
	MTime              float64 `json:"mtime,omitempty" bson:"mtime,omitempty"` // unix seconds
	InboundCount       int     `json:"inboundCount" bson:"inbound_count"`
	OutboundCount      int     `json:"outboundCount" bson:"outbound_count"`
	ChainDepth         int     `json:"chainDepth,omitempty" bson:"chain_depth,omitempty"`
	IsUnused           bool    `json:"isUnused,omitempty" bson:"is_unused,omitempty"`
	IsEntryPoint       bool    `json:"isEntryPoint,omitempty" bson:"is_entry_point,omitempty"`
	CycleParticipation int     `json:"cycleParticipation,omitempty" bson:"cycle_participation,omitempty"`
}

// UnmarshalAnalysis decodes an analyzer payload from JSON bytes.
func UnmarshalAnalysis(data []byte) (Analysis, error) {
	var a Analysis
	if err := json.Unmarshal(data, &a); err != nil {
		return Analysis{}, fmt.Errorf("unmarshal analysis: %w", err)
	}
	return a, nil
}

// metrics converts the record into Metrics. Degree counts are carried over
// but overwritten from the edge list at the end of Build.
func (r FileRecord) metrics() Metrics {
	m := Metrics{
		Inbound:            r.InboundCount,
		Outbound:           r.OutboundCount,
		CycleParticipation: r.CycleParticipation,
		Unused:             r.IsUnused,
		EntryPoint:         r.IsEntryPoint,
		ChainDepth:         r.ChainDepth,
		Lines:              r.Lines,
		SizeBytes:          parseHumanSize(r.Size),
	}
	if r.MTime > 0 {
		m.LastModified = time.Unix(int64(r.MTime), 0).UTC()
	}
	return m
}

// parseHumanSize parses the analyzer's humanized size strings ("340B",
// "12.4KB", "3MB"). Unparseable input yields 0.
func parseHumanSize(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	mult := int64(1)
	upper := strings.ToUpper(s)
	switch {
	case strings.HasSuffix(upper, "GB"):
		mult, upper = 1<<30, upper[:len(upper)-2]
	case strings.HasSuffix(upper, "MB"):
		mult, upper = 1<<20, upper[:len(upper)-2]
	case strings.HasSuffix(upper, "KB"):
		mult, upper = 1<<10, upper[:len(upper)-2]
	case strings.HasSuffix(upper, "B"):
		upper = upper[:len(upper)-1]
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(upper), 64)
	if err != nil {
		return 0
	}
	return int64(v * float64(mult))
}
