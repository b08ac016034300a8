package pixelproc

import (
	"encoding/json"
	"fmt"

	"github.com/cherenkov-tools/pixelproc/pkg/cleaning"
	"github.com/cherenkov-tools/pixelproc/pkg/trace"
)

type ExtractionMethod struct {
	Name string
	Code trace.Method
}

func (e ExtractionMethod) String() string {
	if e.Code < trace.MethodFixedWindow || e.Code > trace.MethodPulseFit {
		return "UNKNOWN"
	}
	return e.Code.String()
}

func (e ExtractionMethod) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

func (e *ExtractionMethod) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	code, err := trace.ParseMethod(s)
	if err != nil {
		return fmt.Errorf("invalid ExtractionMethod: %s", s)
	}
	*e = ExtractionMethod{Name: s, Code: code}
	return nil
}

type CleaningMethod struct {
	Name string
	Code cleaning.Method
}

func (c CleaningMethod) String() string {
	if c.Code < cleaning.MethodTwoLevel || c.Code > cleaning.MethodTraceCorrelation {
		return "UNKNOWN"
	}
	return c.Code.String()
}

func (c CleaningMethod) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *CleaningMethod) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	code, err := cleaning.ParseMethod(s)
	if err != nil {
		return fmt.Errorf("invalid CleaningMethod: %s", s)
	}
	*c = CleaningMethod{Name: s, Code: code}
	return nil
}

type FitFunction struct {
	Name string
	Code trace.FitFunction
}

func (f FitFunction) String() string {
	if f.Code < trace.FitEV || f.Code > trace.FitGrisu {
		return "UNKNOWN"
	}
	return f.Code.String()
}

func (f FitFunction) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

func (f *FitFunction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	code, err := trace.ParseFitFunction(s)
	if err != nil {
		return fmt.Errorf("invalid FitFunction: %s", s)
	}
	*f = FitFunction{Name: s, Code: code}
	return nil
}

// PoleZero is the pole-zero cancellation preset of the oversampled extractor.
type PoleZero struct {
	Name string
	Code trace.PoleZero
}

var poleZeroStrings = []string{
	"none",
	"short",
	"long",
}

var poleZeroCodes = []trace.PoleZero{
	trace.PoleZeroNone,
	trace.PoleZeroShort,
	trace.PoleZeroLong,
}

func poleZeroFromCode(code trace.PoleZero) PoleZero {
	for i, v := range poleZeroCodes {
		if v == code {
			return PoleZero{Name: poleZeroStrings[i], Code: code}
		}
	}
	return PoleZero{Name: fmt.Sprintf("%g", float64(code)), Code: code}
}

func (p PoleZero) String() string {
	for i, v := range poleZeroCodes {
		if v == p.Code {
			return poleZeroStrings[i]
		}
	}
	return "UNKNOWN"
}

func (p PoleZero) MarshalJSON() ([]byte, error) {
	for _, v := range poleZeroCodes {
		if v == p.Code {
			return json.Marshal(p.String())
		}
	}
	return json.Marshal(float64(p.Code))
}

// UnmarshalJSON accepts a preset name or an explicit constant.
func (p *PoleZero) UnmarshalJSON(data []byte) error {
	var value float64
	if err := json.Unmarshal(data, &value); err == nil {
		*p = poleZeroFromCode(trace.PoleZero(value))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for i, v := range poleZeroStrings {
		if v == s {
			*p = PoleZero{Name: s, Code: poleZeroCodes[i]}
			return nil
		}
	}
	return fmt.Errorf("invalid PoleZero: %s", s)
}
