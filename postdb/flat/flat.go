package flat

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/trailimage/trailmap/conceptual"
	"github.com/trailimage/trailmap/params"
)

// Flat is a directory of gzipped archive files.
type Flat struct {
	path string
}

func NewFlatWithRoot(root string) *Flat {
	root = filepath.Clean(root)
	if !filepath.IsAbs(root) {
		root, _ = filepath.Abs(root)
	}
	return &Flat{path: root}
}

// ForPost is the archive directory posts/<slug>.
func (f *Flat) ForPost(slug conceptual.PostSlug) *Flat {
	return f.Joining(params.PostsDir, slug.String())
}

// Joining returns a new Flat below f. f is not modified.
func (f *Flat) Joining(paths ...string) *Flat {
	return &Flat{path: filepath.Join(append([]string{f.path}, paths...)...)}
}

func (f *Flat) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

func (f *Flat) MkdirAll() error {
	return os.MkdirAll(f.path, 0770)
}

func (f *Flat) Path() string {
	return f.path
}

func (f *Flat) NamedGZWriter(name string, config *GZFileWriterConfig) (*GZFileWriter, error) {
	if config == nil {
		config = DefaultGZFileWriterConfig()
	}
	return NewGZFileWriter(filepath.Join(f.path, name), config)
}

func (f *Flat) NamedGZReader(name string) (*GZFileReader, error) {
	return NewGZFileReader(filepath.Join(f.path, name))
}

// WriteGZ replaces the named archive with data.
func (f *Flat) WriteGZ(name string, data []byte) (n int, err error) {
	w, err := f.NamedGZWriter(name, nil)
	if err != nil {
		return 0, err
	}
	n, err = w.Write(data)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// ReadGZ returns the uncompressed contents of the named archive.
func (f *Flat) ReadGZ(name string) ([]byte, error) {
	r, err := f.NamedGZReader(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

type GZFileWriterConfig struct {
	CompressionLevel int
	Flag             int
	FilePerm         os.FileMode
	DirPerm          os.FileMode
}

// DefaultGZFileWriterConfig truncates; an archive holds the latest upload.
func DefaultGZFileWriterConfig() *GZFileWriterConfig {
	return &GZFileWriterConfig{
		CompressionLevel: params.DefaultGZipCompressionLevel,
		Flag:             os.O_WRONLY | os.O_TRUNC | os.O_CREATE,
		FilePerm:         0660,
		DirPerm:          0770,
	}
}

// GZFileWriter holds an exclusive flock on its file until closed.
type GZFileWriter struct {
	f   *os.File
	gzw *gzip.Writer
}

func NewGZFileWriter(path string, config *GZFileWriterConfig) (*GZFileWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), config.DirPerm); err != nil {
		return nil, err
	}
	fi, err := os.OpenFile(path, config.Flag, config.FilePerm)
	if err != nil {
		return nil, err
	}
	if err := syscall.Flock(int(fi.Fd()), syscall.LOCK_EX); err != nil {
		fi.Close()
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	gzw, err := gzip.NewWriterLevel(fi, config.CompressionLevel)
	if err != nil {
		syscall.Flock(int(fi.Fd()), syscall.LOCK_UN)
		fi.Close()
		return nil, err
	}
	return &GZFileWriter{f: fi, gzw: gzw}, nil
}

func (g *GZFileWriter) Write(p []byte) (int, error) {
	return g.gzw.Write(p)
}

func (g *GZFileWriter) Close() error {
	defer g.f.Close()
	defer syscall.Flock(int(g.f.Fd()), syscall.LOCK_UN)
	if err := g.gzw.Close(); err != nil {
		return err
	}
	return g.f.Sync()
}

func (g *GZFileWriter) Path() string {
	return g.f.Name()
}

// GZFileReader holds a shared flock on its file until closed.
type GZFileReader struct {
	f      *os.File
	gzr    *gzip.Reader
	closed bool
}

func NewGZFileReader(path string) (*GZFileReader, error) {
	fi, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if err := syscall.Flock(int(fi.Fd()), syscall.LOCK_SH); err != nil {
		fi.Close()
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	gzr, err := gzip.NewReader(fi)
	if err != nil {
		syscall.Flock(int(fi.Fd()), syscall.LOCK_UN)
		fi.Close()
		return nil, err
	}
	return &GZFileReader{f: fi, gzr: gzr}, nil
}

func (g *GZFileReader) Read(p []byte) (int, error) {
	if g.closed {
		return 0, os.ErrClosed
	}
	return g.gzr.Read(p)
}

func (g *GZFileReader) Close() error {
	if g.closed {
		return nil
	}
	g.closed = true
	defer g.f.Close()
	defer syscall.Flock(int(g.f.Fd()), syscall.LOCK_UN)
	return g.gzr.Close()
}
