package hclconfig

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/relaygrid/internal/ctxlog"
	"github.com/vk/relaygrid/internal/descriptor"
	"github.com/vk/relaygrid/internal/fieldtype"
	"github.com/vk/relaygrid/internal/fsutil"
)

// fileRoot is the set of top-level blocks accepted in any file.
type fileRoot struct {
	Server      *serverBlock       `hcl:"server,block"`
	Store       *storeBlock        `hcl:"store,block"`
	Log         *logBlock          `hcl:"log,block"`
	Events      *eventsBlock       `hcl:"events,block"`
	Descriptors []*descriptorBlock `hcl:"descriptor,block"`
}

type serverBlock struct {
	Listen      *string `hcl:"listen,optional"`
	Prefix      *string `hcl:"prefix,optional"`
	ClassPrefix *string `hcl:"class_prefix,optional"`
}

type storeBlock struct {
	Dir    *string `hcl:"dir,optional"`
	Watch  *bool   `hcl:"watch,optional"`
	Resync *string `hcl:"resync,optional"`
}

type logBlock struct {
	Level  *string `hcl:"level,optional"`
	Format *string `hcl:"format,optional"`
}

type eventsBlock struct {
	Enabled *bool `hcl:"enabled,optional"`
}

type descriptorBlock struct {
	Group  string        `hcl:"group,label"`
	ID     string        `hcl:"id,label"`
	Name   *string       `hcl:"name,optional"`
	Fields []*fieldBlock `hcl:"field,block"`
	Range  hcl.Range     `hcl:",def_range"`
}

type fieldBlock struct {
	Name string `hcl:"name,label"`
	Type string `hcl:"type"`
}

// Config is the merged content of all configuration files. Nil fields were
// not set by any file.
type Config struct {
	Listen      *string
	Prefix      *string
	ClassPrefix *string

	StoreDir    *string
	WatchStore  *bool
	StoreResync *string

	LogLevel  *string
	LogFormat *string

	EventsEnabled *bool

	// Descriptors are the seed descriptors, in file and block order.
	Descriptors []*descriptor.Descriptor
}

// Load parses every .hcl file under the given paths and merges them.
func Load(ctx context.Context, paths ...string) (*Config, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL config loader started.", "path_count", len(paths))

	files, err := findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL config files.", "count", len(files))

	cfg := &Config{}
	seen := make(map[string]hcl.Range)
	parser := hclparse.NewParser()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		cfg.merge(&root)

		for _, block := range root.Descriptors {
			d, err := translateDescriptor(ctx, block)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", block.Range, err)
			}
			if prev, dup := seen[d.Key()]; dup {
				return nil, fmt.Errorf("%s: descriptor %s/%s already defined at %s", block.Range, d.Group, d.ID, prev)
			}
			seen[d.Key()] = block.Range
			cfg.Descriptors = append(cfg.Descriptors, d)
		}
	}

	logger.Debug("HCL config loading complete.", "files", len(files), "descriptors", len(cfg.Descriptors))
	return cfg, nil
}

func (c *Config) merge(root *fileRoot) {
	if s := root.Server; s != nil {
		setIfPresent(&c.Listen, s.Listen)
		setIfPresent(&c.Prefix, s.Prefix)
		setIfPresent(&c.ClassPrefix, s.ClassPrefix)
	}
	if s := root.Store; s != nil {
		setIfPresent(&c.StoreDir, s.Dir)
		setIfPresent(&c.WatchStore, s.Watch)
		setIfPresent(&c.StoreResync, s.Resync)
	}
	if l := root.Log; l != nil {
		setIfPresent(&c.LogLevel, l.Level)
		setIfPresent(&c.LogFormat, l.Format)
	}
	if e := root.Events; e != nil {
		setIfPresent(&c.EventsEnabled, e.Enabled)
	}
}

func setIfPresent[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}

// translateDescriptor converts a descriptor block into a compiled descriptor.
func translateDescriptor(ctx context.Context, block *descriptorBlock) (*descriptor.Descriptor, error) {
	group, err := descriptor.ParseGroup(block.Group)
	if err != nil {
		return nil, err
	}
	if err := descriptor.ValidateID(block.ID); err != nil {
		return nil, err
	}

	fields := descriptor.NewFields()
	for _, f := range block.Fields {
		if _, dup := fields.Get(f.Name); dup {
			return nil, fmt.Errorf("descriptor %s/%s declares field %q twice", group, block.ID, f.Name)
		}
		if !fieldtype.Known(f.Type) {
			ctxlog.FromContext(ctx).Warn("Unknown field type, falling back to STRING.", "descriptor", descriptor.QualifiedKey(group, block.ID), "field", f.Name, "type", f.Type)
		}
		fields.Set(f.Name, f.Type)
	}

	name := group.DefaultDisplayName(block.ID)
	if block.Name != nil && *block.Name != "" {
		name = *block.Name
	}
	return &descriptor.Descriptor{
		ID:          block.ID,
		Group:       group,
		Fields:      descriptor.Compile(fields),
		DisplayName: name,
	}, nil
}

// findAllHCLFiles expands the given paths into a sorted, de-duplicated list
// of .hcl files. Unlike optional module paths, a configured path that does
// not exist is an error.
func findAllHCLFiles(paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	var all []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing config path %s: %w", path, err)
		}

		found := []string{path}
		if info.IsDir() {
			found, err = fsutil.FindFilesByExtension(path, ".hcl")
			if err != nil {
				return nil, fmt.Errorf("error walking config path %s: %w", path, err)
			}
		}
		for _, f := range found {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			all = append(all, f)
		}
	}
	return all, nil
}
