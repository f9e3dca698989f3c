package logging

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	encoderConfig = zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	leveler = &levelSetter{
		levelers:     make(map[string]zap.AtomicLevel),
		defaultLevel: zap.InfoLevel,
	}
	output = &switchableSink{ws: zapcore.Lock(zapcore.AddSync(os.Stdout))}
)

type Leveler interface {
	SetLevel(name string, level zapcore.Level)
	GetLevel(name string) zapcore.Level
	SetAllLevels(level zapcore.Level)
}

type levelSetter struct {
	levelers     map[string]zap.AtomicLevel
	defaultLevel zapcore.Level
	mu           sync.RWMutex
}

var _ Leveler = (*levelSetter)(nil)

func GetLeveler() Leveler {
	return leveler
}

func (lw *levelSetter) SetLevel(name string, level zapcore.Level) {
	_ = lw.setLevel(name, level)
}

func (lw *levelSetter) GetLevel(name string) zapcore.Level {
	lw.mu.RLock()
	defer lw.mu.RUnlock()

	if l, ok := lw.levelers[name]; ok {
		return l.Level()
	}

	return lw.defaultLevel
}

// SetAllLevels changes every existing logger and the level new loggers start at.
func (lw *levelSetter) SetAllLevels(level zapcore.Level) {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	lw.defaultLevel = level
	for _, l := range lw.levelers {
		l.SetLevel(level)
	}
}

func (lw *levelSetter) setLevel(name string, level zapcore.Level) zap.AtomicLevel {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	if _, ok := lw.levelers[name]; !ok {
		lw.levelers[name] = zap.NewAtomicLevelAt(level)
	}

	lw.levelers[name].SetLevel(level)

	return lw.levelers[name]
}

func (lw *levelSetter) register(name string) zap.AtomicLevel {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	if l, ok := lw.levelers[name]; ok {
		return l
	}
	l := zap.NewAtomicLevelAt(lw.defaultLevel)
	lw.levelers[name] = l
	return l
}

// switchableSink lets package level loggers, built at init, follow a later
// change of destination (the terminal display owns stdout once it starts).
type switchableSink struct {
	mu sync.RWMutex
	ws zapcore.WriteSyncer
}

func (s *switchableSink) Write(p []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ws.Write(p)
}

func (s *switchableSink) Sync() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ws.Sync()
}

func (s *switchableSink) set(ws zapcore.WriteSyncer) {
	s.mu.Lock()
	s.ws = ws
	s.mu.Unlock()
}

// SetOutput sends all log output, including loggers that already exist, to w.
func SetOutput(w io.Writer) {
	output.set(zapcore.Lock(zapcore.AddSync(w)))
}

// Redirect opens the given paths (files, "stdout", "stderr") and sends all log
// output there. The returned func restores stdout and closes the files; calls
// after the first do nothing.
func Redirect(paths ...string) (func(), error) {
	ws, closeAll, err := zap.Open(paths...)
	if err != nil {
		return nil, err
	}
	output.set(ws)
	var once sync.Once
	return func() {
		once.Do(func() {
			_ = ws.Sync()
			output.set(zapcore.Lock(zapcore.AddSync(os.Stdout)))
			closeAll()
		})
	}, nil
}

func New(name string) *zap.SugaredLogger {
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), output, leveler.register(name))
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.PanicLevel)).Named(name).Sugar()
}
