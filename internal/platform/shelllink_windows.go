//go:build windows

package platform

import (
	"fmt"
	"runtime"
	"syscall"
	"unsafe"

	ole "github.com/go-ole/go-ole"
	"golang.org/x/sys/windows"

	"github.com/Guliveer/toastreg/notification"
)

var (
	clsidShellLink    = ole.NewGUID("{00021401-0000-0000-C000-000000000046}")
	iidIShellLinkW    = ole.NewGUID("{000214F9-0000-0000-C000-000000000046}")
	iidIPropertyStore = ole.NewGUID("{886D8EEB-8CF2-4446-8D02-CDBA1DBDCF99}")
	iidIPersistFile   = ole.NewGUID("{0000010B-0000-0000-C000-000000000046}")

	procPropVariantClear = windows.NewLazySystemDLL("ole32.dll").NewProc("PropVariantClear")
)

// vtable slots, counted from the start of IUnknown.
const (
	shellLinkGetPath = 3
	shellLinkSetPath = 20

	propStoreGetValue = 5
	propStoreSetValue = 6
	propStoreCommit   = 7

	persistFileLoad = 5
	persistFileSave = 6
)

const (
	vtEmpty  = 0
	vtLPWSTR = 31
	vtCLSID  = 72

	stgmRead = 0
	maxPath  = 32767
)

// propertyKey mirrors PROPERTYKEY.
type propertyKey struct {
	fmtid ole.GUID
	pid   uint32
}

// propVariant mirrors PROPVARIANT for the pointer-carrying types used here
// (VT_LPWSTR, VT_CLSID).
type propVariant struct {
	vt       uint16
	reserved [3]uint16
	str      *uint16
	_        uintptr
}

// comCall invokes vtable slot method on obj and converts a failing HRESULT.
func comCall(obj *ole.IUnknown, method int, args ...uintptr) error {
	vtbl := (*[32]uintptr)(unsafe.Pointer(obj.RawVTable))
	hr, _, _ := syscall.SyscallN(vtbl[method], append([]uintptr{uintptr(unsafe.Pointer(obj))}, args...)...)
	if int32(hr) < 0 {
		return ole.NewError(hr)
	}
	return nil
}

func queryInterface(obj *ole.IUnknown, iid *ole.GUID) (*ole.IUnknown, error) {
	disp, err := obj.QueryInterface(iid)
	if err != nil {
		return nil, err
	}
	return (*ole.IUnknown)(unsafe.Pointer(disp)), nil
}

func toPropertyKey(k notification.PropertyKey) (*propertyKey, error) {
	g := ole.NewGUID(k.FormatID)
	if g == nil {
		return nil, fmt.Errorf("invalid property set id %q", k.FormatID)
	}
	return &propertyKey{fmtid: *g, pid: k.PID}, nil
}

type shellLinkFactory struct{}

func (shellLinkFactory) NewShellLink() (notification.ShellLink, error) {
	unk, err := ole.CreateInstance(clsidShellLink, iidIShellLinkW)
	if err != nil {
		return nil, fmt.Errorf("CoCreateInstance(ShellLink): %w", err)
	}
	return &shellLink{obj: unk}, nil
}

func (f shellLinkFactory) LoadShellLink(path string) (notification.ShellLink, error) {
	link, err := f.NewShellLink()
	if err != nil {
		return nil, err
	}
	sl := link.(*shellLink)
	if err := sl.withPersistFile(func(pf *ole.IUnknown) error {
		p, err := windows.UTF16PtrFromString(path)
		if err != nil {
			return err
		}
		err = comCall(pf, persistFileLoad, uintptr(unsafe.Pointer(p)), stgmRead)
		runtime.KeepAlive(p)
		return err
	}); err != nil {
		sl.Release()
		return nil, fmt.Errorf("IPersistFile::Load: %w", err)
	}
	return sl, nil
}

// shellLink wraps an IShellLinkW.
type shellLink struct {
	obj *ole.IUnknown
}

func (l *shellLink) SetTargetPath(path string) error {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	err = comCall(l.obj, shellLinkSetPath, uintptr(unsafe.Pointer(p)))
	runtime.KeepAlive(p)
	if err != nil {
		return fmt.Errorf("IShellLinkW::SetPath: %w", err)
	}
	return nil
}

func (l *shellLink) TargetPath() (string, error) {
	buf := make([]uint16, maxPath)
	if err := comCall(l.obj, shellLinkGetPath, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)), 0, 0); err != nil {
		return "", fmt.Errorf("IShellLinkW::GetPath: %w", err)
	}
	return windows.UTF16ToString(buf), nil
}

func (l *shellLink) PropertyStore() (notification.PropertyStore, error) {
	ps, err := queryInterface(l.obj, iidIPropertyStore)
	if err != nil {
		return nil, fmt.Errorf("QueryInterface(IPropertyStore): %w", err)
	}
	return &propertyStore{obj: ps}, nil
}

func (l *shellLink) Persist(path string) error {
	return l.withPersistFile(func(pf *ole.IUnknown) error {
		p, err := windows.UTF16PtrFromString(path)
		if err != nil {
			return err
		}
		err = comCall(pf, persistFileSave, uintptr(unsafe.Pointer(p)), 1)
		runtime.KeepAlive(p)
		if err != nil {
			return fmt.Errorf("IPersistFile::Save: %w", err)
		}
		return nil
	})
}

func (l *shellLink) withPersistFile(fn func(pf *ole.IUnknown) error) error {
	pf, err := queryInterface(l.obj, iidIPersistFile)
	if err != nil {
		return fmt.Errorf("QueryInterface(IPersistFile): %w", err)
	}
	defer pf.Release()
	return fn(pf)
}

func (l *shellLink) Release() {
	if l.obj != nil {
		l.obj.Release()
		l.obj = nil
	}
}

// propertyStore wraps an IPropertyStore.
type propertyStore struct {
	obj *ole.IUnknown
}

func (s *propertyStore) SetValue(key notification.PropertyKey, value string) error {
	pk, err := toPropertyKey(key)
	if err != nil {
		return err
	}
	str, err := windows.UTF16PtrFromString(value)
	if err != nil {
		return err
	}
	pv := &propVariant{vt: vtLPWSTR, str: str}
	err = comCall(s.obj, propStoreSetValue, uintptr(unsafe.Pointer(pk)), uintptr(unsafe.Pointer(pv)))
	runtime.KeepAlive(pk)
	runtime.KeepAlive(pv)
	if err != nil {
		return fmt.Errorf("IPropertyStore::SetValue(pid %d): %w", key.PID, err)
	}
	return nil
}

func (s *propertyStore) Value(key notification.PropertyKey) (string, error) {
	pk, err := toPropertyKey(key)
	if err != nil {
		return "", err
	}
	var pv propVariant
	err = comCall(s.obj, propStoreGetValue, uintptr(unsafe.Pointer(pk)), uintptr(unsafe.Pointer(&pv)))
	runtime.KeepAlive(pk)
	if err != nil {
		return "", fmt.Errorf("IPropertyStore::GetValue(pid %d): %w", key.PID, err)
	}
	defer procPropVariantClear.Call(uintptr(unsafe.Pointer(&pv)))

	switch pv.vt {
	case vtEmpty:
		return "", nil
	case vtLPWSTR:
		return windows.UTF16PtrToString(pv.str), nil
	case vtCLSID:
		// The shell may coerce the activator to its schema type.
		return (*ole.GUID)(unsafe.Pointer(pv.str)).String(), nil
	default:
		return "", fmt.Errorf("property pid %d has unexpected type %d", key.PID, pv.vt)
	}
}

func (s *propertyStore) Commit() error {
	if err := comCall(s.obj, propStoreCommit); err != nil {
		return fmt.Errorf("IPropertyStore::Commit: %w", err)
	}
	return nil
}

func (s *propertyStore) Release() {
	if s.obj != nil {
		s.obj.Release()
		s.obj = nil
	}
}
