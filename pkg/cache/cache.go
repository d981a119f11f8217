// Package cache stores finished renders on disk so that repeating a seeded
// render with identical inputs returns the stored image.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"

	"github.com/dgraph-io/badger"
	"github.com/golang/glog"

	"github.com/taigrr/pathtrace/pkg/render"
)

// keyPrefix namespaces render entries in the key-value store.
var keyPrefix = []byte("render/")

// headerSize is the encoded width and height preceding the pixel data.
const headerSize = 8

// Cache is a badger-backed store of framebuffers.
type Cache struct {
	DB *badger.DB
}

// Open opens or creates a cache in dir.
func Open(dir string) (*Cache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(glogLogger{})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("while opening render cache in %q: %w", dir, err)
	}
	return &Cache{DB: db}, nil
}

// Close releases the database.
func (c *Cache) Close() error {
	return c.DB.Close()
}

// Key derives a cache key from every input that influences the image.
func Key(parts ...any) []byte {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%#v", parts)))
	return append(append([]byte{}, keyPrefix...), sum[:]...)
}

// Get returns the framebuffer stored under key. ok is false on a miss.
func (c *Cache) Get(key []byte) (fb *render.Framebuffer, ok bool, err error) {
	err = c.DB.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		data, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		fb, err = decode(data)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("while reading cached render: %w", err)
	}
	return fb, true, nil
}

// Put stores fb under key, replacing any previous entry.
func (c *Cache) Put(key []byte, fb *render.Framebuffer) error {
	data := encode(fb)
	err := c.DB.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		return fmt.Errorf("while writing cached render: %w", err)
	}
	return nil
}

func encode(fb *render.Framebuffer) []byte {
	data := make([]byte, headerSize, headerSize+4*len(fb.Pixels))
	binary.BigEndian.PutUint32(data[0:4], uint32(fb.Width))
	binary.BigEndian.PutUint32(data[4:8], uint32(fb.Height))
	for _, p := range fb.Pixels {
		data = append(data, p.R, p.G, p.B, p.A)
	}
	return data
}

func decode(data []byte) (*render.Framebuffer, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("cached render has wrong length; got %d, want at least %d", len(data), headerSize)
	}
	width := int(binary.BigEndian.Uint32(data[0:4]))
	height := int(binary.BigEndian.Uint32(data[4:8]))
	pixels := data[headerSize:]
	if len(pixels) != 4*width*height {
		return nil, fmt.Errorf("cached %dx%d render has %d pixel bytes, want %d", width, height, len(pixels), 4*width*height)
	}

	fb := render.NewFramebuffer(width, height)
	for i := range fb.Pixels {
		p := pixels[4*i:]
		fb.Pixels[i] = color.RGBA{p[0], p[1], p[2], p[3]}
	}
	return fb, nil
}

// glogLogger routes badger's internal logging to glog.
type glogLogger struct{}

func (glogLogger) Errorf(format string, args ...interface{})   { glog.Errorf(format, args...) }
func (glogLogger) Warningf(format string, args ...interface{}) { glog.Warningf(format, args...) }
func (glogLogger) Infof(format string, args ...interface{})    { glog.V(1).Infof(format, args...) }
func (glogLogger) Debugf(format string, args ...interface{})   { glog.V(2).Infof(format, args...) }
