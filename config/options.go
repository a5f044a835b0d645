package config

import (
	"io/fs"
	"os"
)

type Format string

const (
	FormatAuto Format = ""
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

type options struct {
	envEnabled bool
	envLookup  func(string) (string, bool)
	fileReader func(string) ([]byte, error)
	format     Format
}

func defaultOptions() options {
	return options{
		envEnabled: true,
		envLookup:  os.LookupEnv,
		fileReader: os.ReadFile,
		format:     FormatAuto,
	}
}

type Option func(*options)

func WithEnv(enabled bool) Option {
	return func(o *options) {
		o.envEnabled = enabled
	}
}

func WithoutEnv() Option {
	return WithEnv(false)
}

// WithEnvLookup overrides the environment lookup used for CREDKIT_*
// overrides. Useful in tests.
func WithEnvLookup(fn func(string) (string, bool)) Option {
	return func(o *options) {
		if fn != nil {
			o.envLookup = fn
		}
	}
}

func WithFileSystem(fsys fs.FS) Option {
	return func(o *options) {
		if fsys == nil {
			return
		}
		if readFS, ok := fsys.(fs.ReadFileFS); ok {
			o.fileReader = readFS.ReadFile
			return
		}
		o.fileReader = func(name string) ([]byte, error) {
			return fs.ReadFile(fsys, name)
		}
	}
}

// WithFormat forces Load to parse the provided format instead of relying on
// file extension detection.
func WithFormat(format Format) Option {
	return func(o *options) {
		o.format = format
	}
}
