package rpc

import (
	"encoding/json"
	"fmt"

	"github.com/danielpatrickdp/cleanslate/go-screener/internal/analysis"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/crecord"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/decision"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/eval"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/logging"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/petition"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region messages
// ScreenRequest is the JSON shape carried in a request Struct.
type ScreenRequest struct {
	Record crecord.Record `json:"record"`
	AsOf   crecord.Date   `json:"as_of"` // optional
}

// BatchRequest screens several records as of one date.
type BatchRequest struct {
	Records []crecord.Record `json:"records"`
	AsOf    crecord.Date     `json:"as_of"`
}

// ScreenResult is a screening report as seen by a client. Decisions arrive
// in their exported form.
type ScreenResult struct {
	RunID       string              `json:"run_id"`
	AsOf        crecord.Date        `json:"as_of"`
	Summary     analysis.Summary    `json:"summary"`
	Decisions   []decision.Exported `json:"decisions"`
	Petitions   []petition.Petition `json:"petitions"`
	Remaining   crecord.Record      `json:"remaining"`
	Diagnostics []logging.Entry     `json:"diagnostics"`
	Eval        eval.EvalResult     `json:"eval"`
}

// BatchResult holds one entry per requested record, in order.
type BatchResult struct {
	Items []BatchItem `json:"items"`
}

// BatchItem is one record's outcome within a batch.
type BatchItem struct {
	Index  int           `json:"index"`
	Report *ScreenResult `json:"report,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// #endregion messages

// #region struct-bridge
// toStruct converts any JSON-marshalable value to a protobuf Struct.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("to struct: %w", err)
	}
	return out, nil
}

// fromStruct decodes a protobuf Struct into v through its JSON form.
func fromStruct(s *structpb.Struct, v any) error {
	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("from struct: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return nil
}

// #endregion struct-bridge
