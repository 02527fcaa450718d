//go:build windows

package platform

import (
	"errors"
	"runtime"

	ole "github.com/go-ole/go-ole"
	"go.uber.org/zap"
)

// sFalse is returned by CoInitializeEx when the thread is already
// initialized in the requested apartment. It still needs a matching
// CoUninitialize.
const sFalse = 0x1

// COMRuntime initializes COM in single-threaded-apartment mode for the
// duration of one call.
type COMRuntime struct {
	logger *zap.Logger
}

// NewCOMRuntime creates a COM runtime adapter.
func NewCOMRuntime(logger *zap.Logger) *COMRuntime {
	return &COMRuntime{logger: logger.Named("com")}
}

// Acquire locks the calling goroutine to its OS thread (an STA is bound to
// one thread) and initializes COM on it. The returned func uninitializes
// COM and unlocks the thread.
func (c *COMRuntime) Acquire() (func(), error) {
	runtime.LockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		var oleErr *ole.OleError
		if !errors.As(err, &oleErr) || oleErr.Code() != sFalse {
			runtime.UnlockOSThread()
			return nil, err
		}
		c.logger.Debug("COM already initialized on this thread")
	}
	c.logger.Debug("COM initialized")

	return func() {
		ole.CoUninitialize()
		runtime.UnlockOSThread()
		c.logger.Debug("COM uninitialized")
	}, nil
}
