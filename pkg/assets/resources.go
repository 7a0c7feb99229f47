package assets

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/taigrr/facet/pkg/logging"
	"github.com/taigrr/facet/pkg/models"
	"github.com/taigrr/facet/pkg/texture"
)

// Resources caches models and the images they reference. Images loaded on
// behalf of a model stay referenced until that model is evicted.
type Resources struct {
	models *Cache[*models.Model]
	images *Cache[*texture.Image]

	mu        sync.Mutex
	modelDeps map[Handle][]Handle
}

// NewResources creates an empty resource set. A nil clock uses time.Now.
func NewResources(killTime time.Duration, now func() time.Time) *Resources {
	return &Resources{
		models:    NewCache[*models.Model](killTime, now),
		images:    NewCache[*texture.Image](killTime, now),
		modelDeps: make(map[Handle][]Handle),
	}
}

// Model returns the model at path, loading it on a cache miss. The caller
// holds one reference on the returned handle and must ReleaseModel it.
func (r *Resources) Model(path string) (Handle, *models.Model, error) {
	key, err := filepath.Abs(path)
	if err != nil {
		key = filepath.Clean(path)
	}

	if h, ok := r.models.Lookup(key); ok && r.models.Acquire(h) {
		m, _ := r.models.Get(h)
		return h, m, nil
	}

	deps := &depCollector{res: r}
	m, err := models.LoadGLTF(key, deps)
	if err != nil {
		deps.release()
		return 0, nil, fmt.Errorf("load model: %w", err)
	}

	h := r.models.Insert(key, m)
	r.mu.Lock()
	r.modelDeps[h] = deps.handles
	r.mu.Unlock()

	logging.Logger().Info("model cached", "path", key, "handle", h, "images", len(deps.handles))
	return h, m, nil
}

// ReleaseModel drops a reference obtained from Model.
func (r *Resources) ReleaseModel(h Handle) {
	r.models.Release(h)
}

// Image implements models.ImageSource. The image is cached under key and
// released immediately, so it lives for the kill time unless re-acquired.
func (r *Resources) Image(key string, load func() ([]byte, error)) (*texture.Image, error) {
	h, img, err := r.AcquireImage(key, load)
	if err != nil {
		return nil, err
	}
	r.images.Release(h)
	return img, nil
}

// AcquireImage returns the image cached under key, decoding the bytes from
// load on a miss. The caller holds one reference.
func (r *Resources) AcquireImage(key string, load func() ([]byte, error)) (Handle, *texture.Image, error) {
	if h, ok := r.images.Lookup(key); ok && r.images.Acquire(h) {
		img, _ := r.images.Get(h)
		return h, img, nil
	}

	data, err := load()
	if err != nil {
		return 0, nil, fmt.Errorf("read image %s: %w", key, err)
	}
	img, err := texture.DecodeBytes(data, false)
	if err != nil {
		return 0, nil, fmt.Errorf("image %s: %w", key, err)
	}

	h := r.images.Insert(key, img)
	logging.Logger().Debug("image cached", "key", key, "handle", h)
	return h, img, nil
}

// ReleaseImage drops a reference obtained from AcquireImage.
func (r *Resources) ReleaseImage(h Handle) {
	r.images.Release(h)
}

// Update evicts idle resources. Evicting a model releases its images, which
// then begin their own idle period.
func (r *Resources) Update() {
	log := logging.Logger()

	for _, ev := range r.models.Update() {
		r.mu.Lock()
		deps := r.modelDeps[ev.Handle]
		delete(r.modelDeps, ev.Handle)
		r.mu.Unlock()

		for _, img := range deps {
			r.images.Release(img)
		}
		log.Info("model evicted", "path", ev.Key, "handle", ev.Handle)
	}

	for _, ev := range r.images.Update() {
		log.Info("image evicted", "key", ev.Key, "handle", ev.Handle)
	}
}

// Stats reports the number of cached models and images.
func (r *Resources) Stats() (modelCount, imageCount int) {
	return r.models.Len(), r.images.Len()
}

// depCollector resolves a model's images through Resources and remembers
// the handles so the model can keep them alive.
type depCollector struct {
	res     *Resources
	handles []Handle
}

func (d *depCollector) Image(key string, load func() ([]byte, error)) (*texture.Image, error) {
	h, img, err := d.res.AcquireImage(key, load)
	if err != nil {
		return nil, err
	}
	d.handles = append(d.handles, h)
	return img, nil
}

func (d *depCollector) release() {
	for _, h := range d.handles {
		d.res.images.Release(h)
	}
	d.handles = nil
}
