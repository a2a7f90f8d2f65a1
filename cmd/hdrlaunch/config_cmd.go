package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/hdrlaunch/internal/config"
	"github.com/1broseidon/hdrlaunch/internal/runtimepath"
)

func loadConfigForCommand(path string) (*config.LoadResult, error) {
	dir := ""
	if path == "" {
		installDir, _, err := runtimepath.InstallDir()
		if err != nil {
			return nil, err
		}
		dir = installDir
	}
	return config.Load(dir, path, config.RawConfig{})
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  hdrlaunch config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  hdrlaunch config print [--path PATH] [--defaults]")
		fmt.Fprintln(os.Stderr, "  hdrlaunch config explain [--path PATH] <section.key>")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: search the install directory)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		res, err := loadConfigForCommand(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		_, warnings := res.Config.Normalize()
		for _, w := range warnings {
			fmt.Printf("warning: %s\n", w)
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: search the install directory)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			res, err := loadConfigForCommand(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			if res.File != "" {
				fmt.Printf("# file: %s\n", res.File)
			}
			cfg = res.Config
		}
		eff, warnings := cfg.Normalize()
		fmt.Printf("# mode: %s\n", eff.Mode)
		for _, w := range warnings {
			fmt.Printf("# warning: %s\n", w)
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: search the install directory)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <section.key>; known keys:")
			for _, k := range config.Keys() {
				fmt.Fprintf(os.Stderr, "  %s\n", k)
			}
			return 2
		}
		queryPath := fs.Arg(0)

		res, err := loadConfigForCommand(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		value, src, err := config.Explain(res, queryPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		out, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		fmt.Printf("path: %s\n", queryPath)
		fmt.Printf("source: %s\n", src)
		fmt.Printf("value: %s", string(out))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}
