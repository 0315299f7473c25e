package logging

import (
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// appenders is the set of output cores shared by a logger and all of its subloggers.
type appenders struct {
	mu    sync.RWMutex
	cores []zapcore.Core
}

func (a *appenders) add(core zapcore.Core) {
	a.mu.Lock()
	a.cores = append(a.cores, core)
	a.mu.Unlock()
}

// levelCore gates entries on a logger's own level and fans them out to the shared appenders.
type levelCore struct {
	level  zap.AtomicLevel
	shared *appenders
	fields []zapcore.Field
}

func (c *levelCore) Enabled(level zapcore.Level) bool {
	return c.level.Enabled(level)
}

func (c *levelCore) With(fields []zapcore.Field) zapcore.Core {
	combined := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	combined = append(combined, c.fields...)
	combined = append(combined, fields...)
	return &levelCore{level: c.level, shared: c.shared, fields: combined}
}

func (c *levelCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *levelCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	all := fields
	if len(c.fields) > 0 {
		all = make([]zapcore.Field, 0, len(c.fields)+len(fields))
		all = append(all, c.fields...)
		all = append(all, fields...)
	}

	c.shared.mu.RLock()
	defer c.shared.mu.RUnlock()
	var err error
	for _, core := range c.shared.cores {
		if !core.Enabled(entry.Level) {
			continue
		}
		err = multierr.Combine(err, core.Write(entry, all))
	}
	return err
}

func (c *levelCore) Sync() error {
	c.shared.mu.RLock()
	defer c.shared.mu.RUnlock()
	var err error
	for _, core := range c.shared.cores {
		err = multierr.Combine(err, core.Sync())
	}
	return err
}

type impl struct {
	*zap.SugaredLogger
	name   string
	level  zap.AtomicLevel
	shared *appenders
}

func newImpl(name string, level zap.AtomicLevel) *impl {
	return buildImpl(name, level, &appenders{})
}

func buildImpl(name string, level zap.AtomicLevel, shared *appenders) *impl {
	zl := zap.New(&levelCore{level: level, shared: shared}, zap.AddCaller())
	if name != "" {
		zl = zl.Named(name)
	}
	return &impl{
		SugaredLogger: zl.Sugar(),
		name:          name,
		level:         level,
		shared:        shared,
	}
}

func (imp *impl) addCore(core zapcore.Core) {
	imp.shared.add(core)
}

func (imp *impl) Level() zapcore.Level {
	return imp.level.Level()
}

func (imp *impl) SetLevel(level zapcore.Level) {
	imp.level.SetLevel(level)
}

func (imp *impl) Sublogger(subname string) Logger {
	newName := subname
	if imp.name != "" {
		newName = fmt.Sprintf("%s.%s", imp.name, subname)
	}
	return buildImpl(newName, zap.NewAtomicLevelAt(imp.level.Level()), imp.shared)
}

func (imp *impl) AsZap() *zap.SugaredLogger {
	return imp.SugaredLogger
}
