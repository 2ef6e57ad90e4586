package refptr

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var pkgLogger atomic.Pointer[zap.Logger]

func init() {
	pkgLogger.Store(zap.NewNop())
}

// SetLogger sets the logger used for lifecycle events (payload destruction,
// block release, failed promotions). All of them are logged at debug level.
// Passing nil disables logging, which is the default.
func SetLogger(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	pkgLogger.Store(log)
}

func logger() *zap.Logger {
	return pkgLogger.Load()
}
