package jobfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	yaml "go.yaml.in/yaml/v3"
)

// File is the top level of a job file.
type File struct {
	PollInterval  string `yaml:"poll_interval"`
	MaxConcurrent int    `yaml:"max_concurrent"`
	Jobs          []Job  `yaml:"jobs"`
}

// Job is a single one-shot job. Exactly one of At and In must be set.
type Job struct {
	Name  string            `yaml:"name"`
	At    string            `yaml:"at"`
	In    string            `yaml:"in"`
	Kind  string            `yaml:"kind"`
	Param map[string]string `yaml:"param"`
}

func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read job file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes data strictly; unknown keys are rejected.
// An empty document is a valid file with no jobs.
func Parse(data []byte) (File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("yaml decode: %w", err)
	}
	if err := f.Validate(); err != nil {
		return File{}, err
	}
	return f, nil
}

func (f File) Validate() error {
	if _, err := ParseDurationField("poll_interval", f.PollInterval); err != nil {
		return err
	}
	if f.MaxConcurrent < 0 {
		return fmt.Errorf("max_concurrent: must be >= 0")
	}

	seen := make(map[string]struct{}, len(f.Jobs))
	for i, j := range f.Jobs {
		path := fmt.Sprintf("jobs[%d]", i)
		if err := j.validate(path); err != nil {
			return err
		}
		if _, ok := seen[j.Name]; ok {
			return fmt.Errorf("%s.name: duplicate name %q", path, j.Name)
		}
		seen[j.Name] = struct{}{}
	}
	return nil
}

// Poll returns poll_interval, or def if it is unset or zero.
func (f File) Poll(def time.Duration) time.Duration {
	d, err := ParseDurationField("poll_interval", f.PollInterval)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func (j Job) validate(path string) error {
	if strings.TrimSpace(j.Name) == "" {
		return fmt.Errorf("%s.name: required", path)
	}
	if strings.TrimSpace(j.Kind) == "" {
		return fmt.Errorf("%s.kind: required", path)
	}

	hasAt, hasIn := strings.TrimSpace(j.At) != "", strings.TrimSpace(j.In) != ""
	switch {
	case hasAt && hasIn:
		return fmt.Errorf("%s: at and in are mutually exclusive", path)
	case !hasAt && !hasIn:
		return fmt.Errorf("%s: one of at or in is required", path)
	}

	if _, err := j.Target(time.Time{}); err != nil {
		return fmt.Errorf("%s.%w", path, err)
	}
	return nil
}

// Target resolves the absolute time j fires at. In is an offset from now.
func (j Job) Target(now time.Time) (time.Time, error) {
	if at := strings.TrimSpace(j.At); at != "" {
		t, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return time.Time{}, fmt.Errorf("at: invalid time %q: %w", j.At, err)
		}
		return t, nil
	}
	d, err := ParseDurationField("in", j.In)
	if err != nil {
		return time.Time{}, err
	}
	return now.Add(d), nil
}

func ParseDurationField(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}
