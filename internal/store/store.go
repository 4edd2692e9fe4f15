package store

import (
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/pkg/errors"
	"github.com/ugorji/go/codec"
	"gopkg.in/yaml.v3"
)

const (
	msgpackExt = ".msgpack"
	yamlExt    = ".yaml"
)

var ErrEmptyName = errors.New("artifact name must be set")

// FileStore writes run artifacts next to each other, every file name starting
// with the same prefix. Binary artifacts use msgpack, human-facing ones YAML.
type FileStore struct {
	handle *codec.MsgpackHandle
	prefix string
}

// NewFileStore creates the directory of prefix if needed. An empty prefix
// selects a fresh temporary directory.
func NewFileStore(prefix string) (*FileStore, error) {
	if prefix == "" {
		dir, err := os.MkdirTemp("", "gridpipe-")
		if err != nil {
			return nil, errors.Wrap(err, "unable to create temporary directory")
		}

		prefix = filepath.Join(dir, "run")
	}

	err := os.MkdirAll(filepath.Dir(prefix), 0o755)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create directory for %s", prefix)
	}

	handle := &codec.MsgpackHandle{WriteExt: true}
	handle.MapType = reflect.TypeOf(map[string]interface{}(nil))
	handle.RawToString = true
	handle.SignedInteger = true

	return &FileStore{handle: handle, prefix: prefix}, nil
}

// Prefix returns the prefix shared by every artifact path.
func (s *FileStore) Prefix() string {
	return s.prefix
}

// Path returns the path of the artifact name with extension ext.
func (s *FileStore) Path(name, ext string) string {
	return s.prefix + "_" + name + ext
}

func (s *FileStore) write(path string, encode func(w io.Writer) error) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", path)
	}

	defer func() {
		cerr := file.Close()
		if err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "unable to close file %s", path)
		}
	}()

	err = encode(file)
	if err != nil {
		return errors.Wrapf(err, "unable to encode %s", path)
	}

	return nil
}

func (s *FileStore) read(path string, decode func(r io.Reader) error) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "unable to open file %s", path)
	}
	defer file.Close()

	err = decode(file)
	if err != nil {
		return errors.Wrapf(err, "unable to decode %s", path)
	}

	return nil
}

func checkName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}

	return nil
}

// Save writes v as msgpack and returns the artifact path.
func (s *FileStore) Save(name string, v any) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}

	path := s.Path(name, msgpackExt)

	return path, s.write(path, func(w io.Writer) error {
		return codec.NewEncoder(w, s.handle).Encode(v)
	})
}

// Load reads the msgpack artifact at path into v.
func (s *FileStore) Load(path string, v any) error {
	return s.read(path, func(r io.Reader) error {
		return codec.NewDecoder(r, s.handle).Decode(v)
	})
}

// SaveYAML writes v as YAML and returns the artifact path.
func (s *FileStore) SaveYAML(name string, v any) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}

	path := s.Path(name, yamlExt)

	return path, s.write(path, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		err := enc.Encode(v)
		if err != nil {
			return err
		}

		return enc.Close()
	})
}

// LoadYAML reads the YAML artifact at path into v.
func (s *FileStore) LoadYAML(path string, v any) error {
	return s.read(path, func(r io.Reader) error {
		return yaml.NewDecoder(r).Decode(v)
	})
}
