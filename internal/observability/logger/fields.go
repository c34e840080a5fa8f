package logger

import "go.uber.org/zap"

// Campos estándar HTTP.

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }
func Bytes(v int) zap.Field        { return zap.Int("bytes", v) }
func DurationMs(v int64) zap.Field { return zap.Int64("duration_ms", v) }
func ClientIP(v string) zap.Field  { return zap.String("client_ip", v) }
func UserAgent(v string) zap.Field { return zap.String("user_agent", v) }

// Campos estándar de negocio.

func UserID(v string) zap.Field { return zap.String("user_id", v) }

// Email enmascara antes de loguear: nunca va el email completo a los logs.
func Email(v string) zap.Field { return zap.String("email", maskEmail(v)) }

// Provider crea un campo para el identity provider social ("google", "github").
func Provider(v string) zap.Field { return zap.String("provider", v) }

// Flow crea un campo para el flujo de auth ("register", "verify", "reset", "social").
func Flow(v string) zap.Field { return zap.String("flow", v) }

// Campos genéricos.

func Err(err error) zap.Field            { return zap.Error(err) }
func String(key, v string) zap.Field     { return zap.String(key, v) }
func Int(key string, v int) zap.Field    { return zap.Int(key, v) }
func Bool(key string, v bool) zap.Field  { return zap.Bool(key, v) }
func Any(key string, v any) zap.Field    { return zap.Any(key, v) }
