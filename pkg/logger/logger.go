package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config opciones para el logger.
type Config struct {
	Env     string // development -> consola legible; otro -> JSON
	Level   string // trace, debug, info, warn, error
	Service string // opcional; se agrega como campo "service"
}

// Logger envoltorio de zerolog que se inyecta por constructor.
type Logger struct {
	zl zerolog.Logger
}

// New crea el logger de la aplicación y redirige el logger global de zerolog a él.
func New(cfg Config) *Logger {
	var w io.Writer = os.Stdout
	if cfg.Env == "development" {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}
	ctx := zerolog.New(w).Level(ParseLevel(cfg.Level)).With().Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}
	zl := ctx.Logger()
	log.Logger = zl
	return &Logger{zl: zl}
}

// Nop descarta todo.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// WithWriter logger JSON sobre w.
func WithWriter(w io.Writer, level string) *Logger {
	return &Logger{zl: zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()}
}

// ParseLevel traduce el nombre del nivel; vacío o desconocido = info.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func (l *Logger) Trace() *zerolog.Event { return l.zl.Trace() }
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// Named sublogger con el campo component fijo (ledger, http, seed...).
func (l *Logger) Named(component string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", component).Logger()}
}

// Zerolog acceso a la API directa.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zl
}
