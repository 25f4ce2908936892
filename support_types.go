package main

import (
	"fmt"
)

// OutputFormat describes the way reports are printed.
type OutputFormat int

const (
	OutputFormatInvalid OutputFormat = iota

	// OutputFormatText prints a report per line.
	OutputFormatText

	// OutputFormatJSON prints a JSON array of reports.
	OutputFormatJSON
)

var outputFormatValueMap = map[OutputFormat]string{
	OutputFormatText: "text",
	OutputFormatJSON: "json",
}

func (f OutputFormat) String() string {
	v, ok := outputFormatValueMap[f]
	if !ok {
		return fmt.Sprintf("invalid(%d)", f)
	}

	return v
}

// MarshalText for flag defaults.
func (f OutputFormat) MarshalText() ([]byte, error) {
	v, ok := outputFormatValueMap[f]
	if !ok {
		return nil, fmt.Errorf("marshal invalid output format %d", int(f))
	}

	return []byte(v), nil
}

// UnmarshalText for setting values with configs, CLI, etc.
func (f *OutputFormat) UnmarshalText(rawtext []byte) error {
	text := string(rawtext)
	for k, v := range outputFormatValueMap {
		if v == text {
			*f = k
			return nil
		}
	}

	return fmt.Errorf("unknown output format %q", text)
}
