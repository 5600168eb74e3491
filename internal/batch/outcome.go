package batch

import (
	"encoding/json"
	"errors"

	"github.com/wonny/varlytics/internal/simulation"
)

// Result is the successful output of one catalogue entry
type Result struct {
	simulation.Summary
	ChartData           *simulation.ChartData `json:"chart_data,omitempty"`
	CompressedChartData string                `json:"compressed_chart_data,omitempty"`
}

// Outcome is either a Result or the failure of one entry.
// It marshals to the result object or to {"error": "<message>"}.
type Outcome struct {
	Result *Result
	Err    error
}

// Ok wraps a successful result
func Ok(r *Result) Outcome {
	return Outcome{Result: r}
}

// Failed wraps an entry failure
func Failed(err error) Outcome {
	if err == nil {
		err = errors.New("unknown failure")
	}
	return Outcome{Err: err}
}

// OK reports whether the entry succeeded
func (o Outcome) OK() bool {
	return o.Err == nil
}

type errorBody struct {
	Error string `json:"error"`
}

// MarshalJSON implements json.Marshaler
func (o Outcome) MarshalJSON() ([]byte, error) {
	if o.Err != nil {
		return json.Marshal(errorBody{Error: o.Err.Error()})
	}
	return json.Marshal(o.Result)
}

// UnmarshalJSON implements json.Unmarshaler
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var probe errorBody
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.Error != "" {
		*o = Failed(errors.New(probe.Error))
		return nil
	}

	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*o = Ok(&r)
	return nil
}
