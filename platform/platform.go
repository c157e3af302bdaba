// Package platform implements maek's platform tag, the object/executable
// suffix table, and the Options type a build description may set globally
// and override per CPP/LINK call.
package platform

import (
	"fmt"
	"runtime"
)

// Tag is one of the platform strings maek recognizes.
type Tag string

const (
	Linux   Tag = "linux"
	MacOS   Tag = "macos"
	Windows Tag = "windows"
)

// suffixes holds the object/executable suffix for each recognized platform.
var suffixes = map[Tag]struct{ obj, exe string }{
	Linux:   {obj: ".o", exe: ""},
	MacOS:   {obj: ".o", exe: ""},
	Windows: {obj: ".obj", exe: ".exe"},
}

// Current returns the Tag for the host this process is running on. It is
// fatal (panics at startup, not mid-build) to run on an unrecognized
// platform, per the spec's "unknown platform: fatal at startup".
func Current() Tag {
	switch runtime.GOOS {
	case "linux":
		return Linux
	case "darwin":
		return MacOS
	case "windows":
		return Windows
	default:
		panic(fmt.Sprintf("maek: unsupported platform %q", runtime.GOOS))
	}
}

// ObjSuffix returns the default object file suffix for t.
func (t Tag) ObjSuffix() string {
	s, ok := suffixes[t]
	if !ok {
		panic(fmt.Sprintf("maek: unsupported platform %q", t))
	}
	return s.obj
}

// ExeSuffix returns the default executable suffix for t.
func (t Tag) ExeSuffix() string {
	s, ok := suffixes[t]
	if !ok {
		panic(fmt.Sprintf("maek: unsupported platform %q", t))
	}
	return s.exe
}

// Options holds maek's recognized global/per-call configuration. Unknown
// keys passed through a build description's option map are a hard error
// (enforced by the caller building an Options from a map, see FromMap).
type Options struct {
	ObjPrefix string   // default "objs/"
	ObjSuffix string   // platform default if empty
	ExeSuffix string   // platform default if empty
	Depends   []string // extra prerequisites
	CPPFlags  []string // extra compile flags
	LINKLibs  []string // extra linker flags
}

// Default returns the global default Options for platform t.
func Default(t Tag) Options {
	return Options{
		ObjPrefix: "objs/",
		ObjSuffix: t.ObjSuffix(),
		ExeSuffix: t.ExeSuffix(),
	}
}

// Merge returns a copy of o with every field in override set (non-zero)
// taking precedence, and slice fields (Depends/CPPFlags/LINKLibs)
// concatenated rather than replaced, matching "global defaults merged with
// per-call overrides".
func (o Options) Merge(override Options) Options {
	merged := o
	if override.ObjPrefix != "" {
		merged.ObjPrefix = override.ObjPrefix
	}
	if override.ObjSuffix != "" {
		merged.ObjSuffix = override.ObjSuffix
	}
	if override.ExeSuffix != "" {
		merged.ExeSuffix = override.ExeSuffix
	}
	merged.Depends = append(append([]string{}, o.Depends...), override.Depends...)
	merged.CPPFlags = append(append([]string{}, o.CPPFlags...), override.CPPFlags...)
	merged.LINKLibs = append(append([]string{}, o.LINKLibs...), override.LINKLibs...)
	return merged
}

// recognizedKeys are the only keys FromMap accepts.
var recognizedKeys = map[string]bool{
	"objPrefix": true,
	"objSuffix": true,
	"exeSuffix": true,
	"depends":   true,
	"CPPFlags":  true,
	"LINKLibs":  true,
}

// FromMap builds Options from a loosely typed map, as a build description
// authored in Go might assemble one from literal values. Any key not in
// recognizedKeys is a hard error.
func FromMap(m map[string]any) (Options, error) {
	var o Options
	for k, v := range m {
		if !recognizedKeys[k] {
			return Options{}, fmt.Errorf("maek: unknown option key %q", k)
		}
		switch k {
		case "objPrefix":
			s, ok := v.(string)
			if !ok {
				return Options{}, fmt.Errorf("maek: option %q must be a string", k)
			}
			o.ObjPrefix = s
		case "objSuffix":
			s, ok := v.(string)
			if !ok {
				return Options{}, fmt.Errorf("maek: option %q must be a string", k)
			}
			o.ObjSuffix = s
		case "exeSuffix":
			s, ok := v.(string)
			if !ok {
				return Options{}, fmt.Errorf("maek: option %q must be a string", k)
			}
			o.ExeSuffix = s
		case "depends":
			s, ok := v.([]string)
			if !ok {
				return Options{}, fmt.Errorf("maek: option %q must be a []string", k)
			}
			o.Depends = s
		case "CPPFlags":
			s, ok := v.([]string)
			if !ok {
				return Options{}, fmt.Errorf("maek: option %q must be a []string", k)
			}
			o.CPPFlags = s
		case "LINKLibs":
			s, ok := v.([]string)
			if !ok {
				return Options{}, fmt.Errorf("maek: option %q must be a []string", k)
			}
			o.LINKLibs = s
		}
	}
	return o, nil
}
