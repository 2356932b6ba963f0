// Package logger eventos estructurados de la API de movimentações sobre zerolog.
// Todo evento lleva service y version; los del libro agregan tenant_id vía ForTenant.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config opciones para el logger.
type Config struct {
	Env     string // development -> consola legible; cualquier otro -> JSON
	Level   string // LOG_LEVEL: trace, debug, info, warn, error (vacío o desconocido = info)
	Service string // APP_NAME
	Version string
}

// Logger envuelve zerolog para inyectarlo en casos de uso y middlewares.
type Logger struct {
	zl zerolog.Logger
}

// New crea el logger del proceso y lo instala como logger global de zerolog.
func New(cfg Config) *Logger {
	var w io.Writer = os.Stdout
	if cfg.Env == "development" {
		w = zerolog.ConsoleWriter{Out: os.Stdout}
	}
	zl := build(w, cfg)
	log.Logger = zl
	return &Logger{zl: zl}
}

// Nop logger deshabilitado, para tests.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// FromWriter logger JSON sobre w; útil para capturar eventos en tests.
func FromWriter(w io.Writer, cfg Config) *Logger {
	return &Logger{zl: build(w, cfg)}
}

func build(w io.Writer, cfg Config) zerolog.Logger {
	ctx := zerolog.New(w).Level(parseLevel(cfg.Level)).With().Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}
	if cfg.Version != "" {
		ctx = ctx.Str("version", cfg.Version)
	}
	return ctx.Logger()
}

func parseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// ForTenant sublogger con tenant_id fijo para los eventos de un comercio.
func (l *Logger) ForTenant(tenantID int64) *Logger {
	return &Logger{zl: l.zl.With().Int64("tenant_id", tenantID).Logger()}
}

func (l *Logger) Trace() *zerolog.Event { return l.zl.Trace() }
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }
