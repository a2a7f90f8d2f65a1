package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceFile    SourceKind = "file"
	SourceFlag    SourceKind = "flag"
)

type Source struct {
	Kind   SourceKind
	File   string
	Line   int
	Column int
}

func (s Source) String() string {
	switch {
	case s.Kind == SourceFile && s.Line > 0:
		return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
	case s.Kind == SourceFile:
		return s.File
	default:
		return string(s.Kind)
	}
}

type LoadResult struct {
	Config  *Config
	Sources map[string]Source // key path (options.res_x) -> last writer
	File    string            // empty when running on defaults
}

// SearchNames are tried in order inside the install directory.
var SearchNames = []string{"hdrlaunch.yaml", "hdrlaunch.yml", "hdrlaunch.toml", "hdrlaunch.ini"}

// FindConfig returns the first config file present in dir.
func FindConfig(dir string) (string, bool, error) {
	for _, name := range SearchNames {
		path := filepath.Join(dir, name)
		exists, err := pathExists(path)
		if err != nil {
			return "", false, err
		}
		if exists {
			return path, true, nil
		}
	}
	return "", false, nil
}

// Load reads the config file at path (or the first one found in dir when
// path is empty), layers flags on top and validates the result. Without a
// file the defaults apply.
func Load(dir, path string, flags RawConfig) (*LoadResult, error) {
	if path == "" && dir != "" {
		found, ok, err := FindConfig(dir)
		if err != nil {
			return nil, err
		}
		if ok {
			path = found
		}
	}
	return LoadFromPath(path, flags)
}

// LoadFromPath loads one file; an empty path means defaults only.
func LoadFromPath(path string, flags RawConfig) (*LoadResult, error) {
	raw := RawConfig{}
	sources := map[string]Source{}
	file := ""

	if path != "" {
		canon, err := canonicalPath(path)
		if err != nil {
			return nil, err
		}
		fileRaw, fileSources, err := loadRaw(canon)
		if err != nil {
			return nil, err
		}
		raw = raw.Merge(fileRaw)
		for key, src := range fileSources {
			sources[key] = src
		}
		file = canon
	}

	raw = raw.Merge(flags)
	for _, key := range rawKeys(flags) {
		sources[key] = Source{Kind: SourceFlag}
	}

	cfg := DefaultConfig()
	raw.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, attachSourceContext(err, sources)
	}

	return &LoadResult{Config: cfg, Sources: sources, File: file}, nil
}

func loadRaw(path string) (RawConfig, map[string]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RawConfig{}, nil, fmt.Errorf("%s: failed to read: %w", path, err)
	}

	var raw RawConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return RawConfig{}, nil, fmt.Errorf("%s: failed to parse yaml: %w", path, err)
		}
		if err := decodeStrictYAML(data, &raw); err != nil {
			return RawConfig{}, nil, fmt.Errorf("%s: %w", path, err)
		}
		return raw, collectSources(&doc, path), nil
	case ".toml":
		if err := decodeStrictTOML(data, &raw); err != nil {
			return RawConfig{}, nil, fmt.Errorf("%s: %w", path, err)
		}
	case ".ini":
		if err := decodeINI(data, &raw); err != nil {
			return RawConfig{}, nil, fmt.Errorf("%s: %w", path, err)
		}
	default:
		return RawConfig{}, nil, fmt.Errorf("%s: unsupported config format %q (want .yaml, .yml, .toml or .ini)", path, ext)
	}

	sources := map[string]Source{}
	for _, key := range rawKeys(raw) {
		sources[key] = Source{Kind: SourceFile, File: path}
	}
	return raw, sources, nil
}

func decodeStrictYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	return nil
}

func decodeStrictTOML(data []byte, out any) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("unknown field: %s", strict.String())
		}
		return err
	}
	return nil
}

type iniSetter func(o *RawOptions, k *ini.Key) error

var iniOptionKeys = map[string]iniSetter{
	"launcher_exe": func(o *RawOptions, k *ini.Key) error {
		o.LauncherExe = Ptr(k.String())
		return nil
	},
	"launcher_args": func(o *RawOptions, k *ini.Key) error {
		o.LauncherArgs = k.Strings(" ")
		return nil
	},
	"wait_on_process":            iniBool(func(o *RawOptions) **bool { return &o.WaitOnProcess }),
	"toggle_hdr":                 iniBool(func(o *RawOptions) **bool { return &o.ToggleHDR }),
	"enable_hdr":                 iniBool(func(o *RawOptions) **bool { return &o.EnableHDR }),
	"refresh_rate_use_max":       iniBool(func(o *RawOptions) **bool { return &o.RefreshRateUseMax }),
	"disable_reset_display_mode": iniBool(func(o *RawOptions) **bool { return &o.DisableResetDisplayMode }),
	"remote_desktop":             iniBool(func(o *RawOptions) **bool { return &o.RemoteDesktop }),
	"compatibility_window":       iniBool(func(o *RawOptions) **bool { return &o.CompatibilityWindow }),
	"inhibit_idle":               iniBool(func(o *RawOptions) **bool { return &o.InhibitIdle }),
	"res_x":                      iniUint16(func(o *RawOptions) **uint16 { return &o.ResX }),
	"res_y":                      iniUint16(func(o *RawOptions) **uint16 { return &o.ResY }),
	"refresh_rate":               iniUint16(func(o *RawOptions) **uint16 { return &o.RefreshRate }),
	"hdr_bpc": func(o *RawOptions, k *ini.Key) error {
		v, err := k.Int()
		if err != nil {
			return err
		}
		o.HDRBpc = &v
		return nil
	},
}

func iniBool(field func(*RawOptions) **bool) iniSetter {
	return func(o *RawOptions, k *ini.Key) error {
		v, err := k.Bool()
		if err != nil {
			return err
		}
		*field(o) = &v
		return nil
	}
}

func iniUint16(field func(*RawOptions) **uint16) iniSetter {
	return func(o *RawOptions, k *ini.Key) error {
		v, err := k.Uint()
		if err != nil {
			return err
		}
		if v > 0xFFFF {
			return fmt.Errorf("value %d out of range", v)
		}
		u := uint16(v)
		*field(o) = &u
		return nil
	}
}

// decodeINI reads the [options] and [logging] sections. Unknown sections or
// keys are errors, like the yaml and toml decoders.
func decodeINI(data []byte, out *RawConfig) error {
	f, err := ini.LoadSources(ini.LoadOptions{}, data)
	if err != nil {
		return fmt.Errorf("failed to parse ini: %w", err)
	}

	for _, sec := range f.Sections() {
		switch sec.Name() {
		case ini.DefaultSection:
			if len(sec.Keys()) > 0 {
				return fmt.Errorf("key %q outside of a section", sec.Keys()[0].Name())
			}
		case "options":
			opts := &RawOptions{}
			for _, k := range sec.Keys() {
				set, ok := iniOptionKeys[k.Name()]
				if !ok {
					return fmt.Errorf("unknown field %q in [options]", k.Name())
				}
				if err := set(opts, k); err != nil {
					return fmt.Errorf("options.%s: %w", k.Name(), err)
				}
			}
			out.Options = opts
		case "logging":
			logging := &RawLoggingConfig{}
			for _, k := range sec.Keys() {
				v := k.String()
				switch k.Name() {
				case "level":
					logging.Level = &v
				case "file":
					logging.File = &v
				case "stdout":
					logging.Stdout = &v
				default:
					return fmt.Errorf("unknown field %q in [logging]", k.Name())
				}
			}
			out.Logging = logging
		default:
			return fmt.Errorf("unknown section [%s]", sec.Name())
		}
	}
	return nil
}

// rawKeys lists the dotted paths of every key set in raw.
func rawKeys(raw RawConfig) []string {
	var keys []string
	collect := func(prefix string, v reflect.Value) {
		if v.IsNil() {
			return
		}
		v = v.Elem()
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			if v.Field(i).IsNil() {
				continue
			}
			name, _, _ := strings.Cut(t.Field(i).Tag.Get("yaml"), ",")
			keys = append(keys, prefix+"."+name)
		}
	}
	collect("options", reflect.ValueOf(raw.Options))
	collect("logging", reflect.ValueOf(raw.Logging))
	return keys
}

func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// Best-effort; still use abs.
		return abs, nil
	}
	return real, nil
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func collectSources(doc *yaml.Node, file string) map[string]Source {
	out := make(map[string]Source)
	if doc == nil {
		return out
	}
	node := doc
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	collectSourcesRec(node, file, "", out)
	return out
}

func collectSourcesRec(node *yaml.Node, file string, prefix string, out map[string]Source) {
	if node == nil || node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valNode := node.Content[i+1]
		path := keyNode.Value
		if prefix != "" {
			path = prefix + "." + keyNode.Value
		}
		out[path] = Source{
			Kind:   SourceFile,
			File:   file,
			Line:   valNode.Line,
			Column: valNode.Column,
		}
		collectSourcesRec(valNode, file, path, out)
	}
}

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" {
		return fmt.Sprintf("%s: %s: %v", e.Source.File, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

func attachSourceContext(err error, sources map[string]Source) error {
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path == "" {
		return err
	}
	if src, ok := sources[verr.Path]; ok {
		verr.Source = src
	}
	return verr
}
