package traversal

import "go.uber.org/zap"

type release struct {
	name string
	fn   func()
}

// Resources owns everything spawned for the current room. Release tears it
// all down in reverse acquisition order and is safe to call repeatedly.
type Resources struct {
	releases []release
	log      *zap.Logger
}

func NewResources(log *zap.Logger) *Resources {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resources{log: log}
}

// Add registers fn to run on the next Release. name is used for logging.
func (r *Resources) Add(name string, fn func()) {
	if fn == nil {
		return
	}
	r.releases = append(r.releases, release{name: name, fn: fn})
}

// Len returns the number of resources currently held.
func (r *Resources) Len() int {
	return len(r.releases)
}

// Release runs every registered release func, last added first, and returns
// how many ran. A panicking release is logged and does not stop the rest.
func (r *Resources) Release() int {
	held := r.releases
	r.releases = nil

	for i := len(held) - 1; i >= 0; i-- {
		r.run(held[i])
	}
	if len(held) > 0 {
		r.log.Debug("room resources released", zap.Int("count", len(held)))
	}
	return len(held)
}

func (r *Resources) run(rel release) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("release panicked", zap.String("resource", rel.name), zap.Any("panic", p))
		}
	}()
	rel.fn()
}
