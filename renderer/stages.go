package renderer

import (
	"fmt"

	"go.uber.org/zap"
)

// stage is one step of the context build. release undoes create and is only called after create succeeded.
type stage struct {
	name    string
	fatal   bool
	create  func() error
	release func()
}

// builder runs stages in order and remembers which ones are live, so that they can be released in exact
// reverse order on failure or teardown.
type builder struct {
	log     *zap.Logger
	created []stage
}

// run creates every stage. A failing fatal stage releases everything created so far and returns the error
// naming the stage; a failing optional stage is logged and skipped.
func (b *builder) run(stages []stage) error {
	for _, s := range stages {
		if err := s.create(); err != nil {
			if !s.fatal {
				b.log.Warn("Optional stage failed, continuing without it", zap.String("stage", s.name), zap.Error(err))
				continue
			}
			b.log.Error("Stage failed, releasing created stages", zap.String("stage", s.name), zap.Error(err))
			b.unwind()
			return fmt.Errorf("stage %s: %w", s.name, err)
		}
		b.log.Debug("Stage ready", zap.String("stage", s.name))
		b.created = append(b.created, s)
	}
	return nil
}

// unwind releases all created stages, last first.
func (b *builder) unwind() {
	for i := len(b.created) - 1; i >= 0; i-- {
		if b.created[i].release != nil {
			b.created[i].release()
		}
		b.log.Debug("Stage released", zap.String("stage", b.created[i].name))
	}
	b.created = nil
}

func (b *builder) names() []string {
	names := make([]string, len(b.created))
	for i := range b.created {
		names[i] = b.created[i].name
	}
	return names
}
