package config

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Explain returns the value at a dotted key path and where it came from.
//
// Supported paths are every key of the options and logging sections, e.g.
//
//	options.launcher_exe
//	options.res_x
//	options.hdr_bpc
//	logging.level
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

// Keys lists every explainable path in a stable order.
func Keys() []string {
	var keys []string
	for _, section := range []struct {
		name string
		t    reflect.Type
	}{
		{"options", reflect.TypeOf(Options{})},
		{"logging", reflect.TypeOf(LoggingConfig{})},
	} {
		for i := 0; i < section.t.NumField(); i++ {
			name, _, _ := strings.Cut(section.t.Field(i).Tag.Get("yaml"), ",")
			keys = append(keys, section.name+"."+name)
		}
	}
	sort.Strings(keys)
	return keys
}

func lookupValue(cfg *Config, path string) (any, error) {
	section, key, ok := strings.Cut(path, ".")
	if !ok || key == "" {
		return nil, fmt.Errorf("unknown path: %s", path)
	}

	var v reflect.Value
	switch section {
	case "options":
		v = reflect.ValueOf(cfg.Options)
	case "logging":
		v = reflect.ValueOf(cfg.Logging)
	default:
		return nil, fmt.Errorf("unknown path: %s", path)
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("yaml"), ",")
		if name == key {
			return v.Field(i).Interface(), nil
		}
	}
	return nil, fmt.Errorf("unknown path: %s", path)
}
