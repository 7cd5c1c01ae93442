package logging

import (
	"time"

	"go.uber.org/zap"
)

// Field is a structured key-value pair attached to an entry
type Field = zap.Field

func String(key, value string) Field        { return zap.String(key, value) }
func Int(key string, value int) Field       { return zap.Int(key, value) }
func Uint64(key string, value uint64) Field { return zap.Uint64(key, value) }
func Bool(key string, value bool) Field     { return zap.Bool(key, value) }

// Error attaches err under "error". A nil error adds nothing.
func Error(err error) Field { return zap.Error(err) }

func Component(name string) Field { return String("component", name) }

// OperationID tags every entry of one top-level call
func OperationID(id string) Field { return String("operation_id", id) }

func Latency(d time.Duration) Field { return zap.Duration("latency", d) }

func Nodes(n int) Field   { return Int("nodes", n) }
func Edges(n int) Field   { return Int("edges", n) }
func Depth(d int) Field   { return Int("depth", d) }
func Run(r int) Field     { return Int("run", r) }
func Seed(s uint64) Field { return Uint64("seed", s) }
