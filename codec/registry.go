package codec

import (
	"strings"
	"sync"
)

// Registry manages the available codecs
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Codec // key can be either name or extension
	order  []Codec          // registration order, for Detect
}

var defaultRegistry = &Registry{
	codecs: make(map[string]Codec),
}

// Register registers a codec under its name and all of its extensions
func Register(codec Codec) {
	defaultRegistry.Register(codec)
}

// Get retrieves a codec by name or extension
func Get(nameOrExt string) (Codec, error) {
	return defaultRegistry.Get(nameOrExt)
}

// Detect finds the codec whose magic bytes match the start of data
func Detect(data []byte) (Codec, error) {
	return defaultRegistry.Detect(data)
}

// List returns all registered codecs
func List() []Codec {
	return defaultRegistry.List()
}

// Register registers a codec under its name and all of its extensions
func (r *Registry) Register(codec Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.codecs[codec.Name()] = codec
	for _, ext := range codec.Extensions() {
		r.codecs[ext] = codec
	}
	r.order = append(r.order, codec)
}

// Get retrieves a codec by name or extension (case-insensitive)
func (r *Registry) Get(nameOrExt string) (Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codec, ok := r.codecs[strings.ToLower(nameOrExt)]
	if !ok {
		return nil, ErrCodecNotFound
	}
	return codec, nil
}

// Detect finds the codec whose magic bytes match the start of data.
// Codecs are tried in registration order.
func (r *Registry) Detect(data []byte) (Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, codec := range r.order {
		if codec.Sniff(data) {
			return codec, nil
		}
	}
	return nil, ErrCodecNotFound
}

// List returns all registered codecs (deduplicated)
func (r *Registry) List() []Codec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[Codec]bool)
	codecs := make([]Codec, 0)

	for _, codec := range r.order {
		if !seen[codec] {
			seen[codec] = true
			codecs = append(codecs, codec)
		}
	}

	return codecs
}
