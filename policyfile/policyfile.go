// Package policyfile loads per-resource origin policies from YAML files.
//
// A policy file maps resource paths to their access-control
// configuration:
//
//	resources:
//	  /api/:
//	    access-control:
//	      allow-origin:
//	        - "http://localhost"
//	        - "https://example.com"
//	  /public/:
//	    access-control:
//	      allow-origin: "*"
//	  /internal/:
//	    access-control: {}
//
// The allow-origin entry accepts several shapes, distinguished by the
// YAML node kind: omitting it disables CORS for the resource, the "*"
// scalar allows all origins, any other scalar allows a single origin,
// and a sequence allows a set of origins.
package policyfile

import (
	"errors"
	"fmt"
	"os"

	"github.com/corsica/corsica"
	"gopkg.in/yaml.v3"
)

// A File is the parsed form of a policy file.
type File struct {
	Resources map[string]Resource `yaml:"resources"`
}

// A Resource is the configuration of a single resource.
type Resource struct {
	AccessControl AccessControl `yaml:"access-control"`
}

// An AccessControl is the access-control section of a resource.
type AccessControl struct {
	AllowOrigin *AllowOriginSpec `yaml:"allow-origin"`
}

// An AllowOriginSpec is the YAML representation of an
// [corsica.AllowOrigin] value; see the package documentation for the
// accepted shapes.
type AllowOriginSpec struct {
	policy corsica.AllowOrigin
}

// UnmarshalYAML implements [yaml.Unmarshaler]; it dispatches on the
// node's kind rather than on its content.
func (s *AllowOriginSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var origin string
		if err := node.Decode(&origin); err != nil {
			return err
		}
		if origin == "*" {
			s.policy = corsica.Wildcard()
		} else {
			s.policy = corsica.SingleOrigin(origin)
		}
		return nil
	case yaml.SequenceNode:
		var origins []string
		if err := node.Decode(&origins); err != nil {
			return err
		}
		s.policy = corsica.OriginSet(origins...)
		return nil
	default:
		return fmt.Errorf("line %d: allow-origin must be a string or a sequence of strings", node.Line)
	}
}

// Policy returns the [corsica.AllowOrigin] value that s decodes to.
// A nil s (allow-origin omitted) yields a nil policy.
func (s *AllowOriginSpec) Policy() corsica.AllowOrigin {
	if s == nil {
		return nil
	}
	return s.policy
}

// Parse parses data as a policy file. Parse performs no policy
// validation; that happens when the parsed policies are compiled (see
// [File.Policies]).
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("policyfile: %w", err)
	}
	return &f, nil
}

// Load reads and parses the policy file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("policyfile: %w", err)
	}
	return Parse(data)
}

// Config returns the [corsica.Config] of the resource registered under
// path, or nil if the file contains no such resource.
func (f *File) Config(path string) *corsica.Config {
	res, found := f.Resources[path]
	if !found {
		return nil
	}
	return &corsica.Config{AllowOrigin: res.AccessControl.AllowOrigin.Policy()}
}

// Configs returns the per-resource configurations of f, keyed by
// resource path.
func (f *File) Configs() map[string]*corsica.Config {
	out := make(map[string]*corsica.Config, len(f.Resources))
	for path := range f.Resources {
		out[path] = f.Config(path)
	}
	return out
}

// Policies validates and compiles all of f's resource policies.
// If any of them is invalid, it returns a nil map and an error that
// identifies each offending resource by path.
func (f *File) Policies() (map[string]*corsica.Policy, error) {
	var errs []error
	out := make(map[string]*corsica.Policy, len(f.Resources))
	for path, cfg := range f.Configs() {
		p, err := corsica.NewPolicy(cfg)
		if err != nil {
			errs = append(errs, fmt.Errorf("policyfile: resource %s: %w", path, err))
			continue
		}
		out[path] = p
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}
