package notification

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const testCLSID = "11111111-2222-3333-4444-555555555555"

func TestRegister_ThenDeregister_LeavesNothing(t *testing.T) {
	h := newHarness(t, Options{})

	path, err := h.svc.Register("a.b.c", testCLSID, "Demo")
	require.NoError(t, err)
	require.FileExists(t, path)

	require.NoError(t, h.svc.Deregister("a.b.c", testCLSID, "Demo"))

	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err), "shortcut should be gone")
	ok, _ := h.keys.KeyExists(CLSIDKeyPath(testCLSID))
	require.False(t, ok, "CLSID key should be gone")
	ok, _ = h.keys.KeyExists(AppIDKeyPath(testCLSID))
	require.False(t, ok, "AppID key should be gone")
}

func TestRegister_Scenario(t *testing.T) {
	h := newHarness(t, Options{})

	path, err := h.svc.Register("a.b.c", testCLSID, "Demo")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "Demo.lnk"), "path = %s", path)
	require.Equal(t,
		filepath.Join(h.env.roaming, "Microsoft", "Windows", "Start Menu", "Programs", "Demo.lnk"),
		path)

	appID, err := h.keys.GetString(`Software\Classes\CLSID\{`+testCLSID+`}`, "AppID")
	require.NoError(t, err)
	require.Equal(t, testCLSID, appID)

	require.NoError(t, h.svc.Deregister("a.b.c", testCLSID, "Demo"))

	err = h.svc.Deregister("a.b.c", testCLSID, "Demo")
	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound), "third call should be NotFoundError, got %v", err)
	require.Equal(t, "shortcut", notFound.Kind)
}

func TestRegister_IsIdempotent(t *testing.T) {
	h := newHarness(t, Options{})

	first, err := h.svc.Register("a.b.c", testCLSID, "Demo")
	require.NoError(t, err)
	second, err := h.svc.Register("a.b.c", testCLSID, "Demo")
	require.NoError(t, err)
	require.Equal(t, first, second)

	st, err := h.svc.Status(NewIdentity("a.b.c", testCLSID, "Demo"))
	require.NoError(t, err)
	require.Equal(t, Present, st.State())
	require.Empty(t, st.Mismatches())
}

func TestRegister_DefaultsAppNameToAUMID(t *testing.T) {
	h := newHarness(t, Options{})

	path, err := h.svc.Register("com.example.app", testCLSID, "")
	require.NoError(t, err)
	require.Equal(t, "com.example.app.lnk", filepath.Base(path))

	appID, err := h.keys.GetString(CLSIDKeyPath(testCLSID), "AppID")
	require.NoError(t, err)
	require.Equal(t, testCLSID, appID)

	require.NoError(t, h.svc.Deregister("com.example.app", testCLSID, ""))
}

func TestRegister_ActivationCommandShape(t *testing.T) {
	h := newHarness(t, Options{})

	_, err := h.svc.Register("a.b.c", testCLSID, "Demo")
	require.NoError(t, err)

	cmd, err := h.keys.GetString(CLSIDKeyPath(testCLSID)+`\LocalServer32`, "")
	require.NoError(t, err)
	require.Equal(t, `"C:\Apps\demo\demo.exe" -ToastActivated`, cmd)

	surrogate, err := h.keys.GetString(AppIDKeyPath(testCLSID), "DllSurrogate")
	require.NoError(t, err)
	require.Equal(t, "", surrogate)
}

func TestRegister_PropertiesReadBack(t *testing.T) {
	h := newHarness(t, Options{})

	_, err := h.svc.Register("a.b.c", testCLSID, "Demo")
	require.NoError(t, err)

	st, err := h.svc.Status(NewIdentity("a.b.c", testCLSID, "Demo"))
	require.NoError(t, err)
	require.True(t, st.Shortcut.Present)
	require.Equal(t, "a.b.c", st.Shortcut.AUMID)
	require.Equal(t, "{"+testCLSID+"}", st.Shortcut.ActivatorCLSID)
	require.Equal(t, h.env.exe, st.Shortcut.Target)
	require.Equal(t, testCLSID, st.Server.AppID)
	require.True(t, st.Server.Surrogate)
}

func TestDeregister_NeverRegistered_FailsBeforeRegistry(t *testing.T) {
	h := newHarness(t, Options{})

	err := h.svc.Deregister("a.b.c", testCLSID, "Demo")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNotFound))

	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	require.Empty(t, h.keys.ops, "registry must not be touched")
}

func TestDeregister_MissingRegistryKey_IsRegistryError(t *testing.T) {
	h := newHarness(t, Options{})

	path, err := h.svc.Register("a.b.c", testCLSID, "Demo")
	require.NoError(t, err)
	require.NoError(t, h.keys.DeleteTree(CLSIDKeyPath(testCLSID)))

	err = h.svc.Deregister("a.b.c", testCLSID, "Demo")
	var regErr *RegistryError
	require.True(t, errors.As(err, &regErr), "got %v", err)
	require.Equal(t, CLSIDKeyPath(testCLSID), regErr.Path)
	require.True(t, errors.Is(err, ErrNotFound))
	require.Contains(t, err.Error(), CLSIDKeyPath(testCLSID))

	// No rollback or retry: the shortcut is left for the caller to sort out.
	require.FileExists(t, path)
}

func TestDeregister_ToleratesMissingAppIDKey(t *testing.T) {
	h := newHarness(t, Options{})

	_, err := h.svc.Register("a.b.c", testCLSID, "Demo")
	require.NoError(t, err)
	require.NoError(t, h.keys.DeleteTree(AppIDKeyPath(testCLSID)))

	require.NoError(t, h.svc.Deregister("a.b.c", testCLSID, "Demo"))
}

func TestRegister_ShortcutFailure(t *testing.T) {
	steps := map[string]string{
		"new":     "create shell link",
		"target":  "set target path",
		"store":   "query property store",
		"set":     "set AUMID property",
		"commit":  "commit property store",
		"persist": "persist shortcut",
	}
	for fail, step := range steps {
		t.Run(fail, func(t *testing.T) {
			h := newHarness(t, Options{})
			h.links.fail[fail] = errBoom

			_, err := h.svc.Register("a.b.c", testCLSID, "Demo")
			var platErr *PlatformError
			require.True(t, errors.As(err, &platErr), "got %v", err)
			require.Equal(t, step, platErr.Step)
			require.ErrorIs(t, err, errBoom)

			require.Zero(t, h.links.live, "COM objects must be released")
			require.Equal(t, 1, h.runtime.released)

			// Register is not atomic: the activation server stays behind.
			ok, _ := h.keys.KeyExists(CLSIDKeyPath(testCLSID))
			require.True(t, ok)
		})
	}
}

func TestRegister_ShortcutFailure_RollsBackWhenEnabled(t *testing.T) {
	h := newHarness(t, Options{RollbackOnFailure: true})
	h.links.fail["persist"] = errBoom

	_, err := h.svc.Register("a.b.c", testCLSID, "Demo")
	require.ErrorIs(t, err, errBoom)

	ok, _ := h.keys.KeyExists(CLSIDKeyPath(testCLSID))
	require.False(t, ok, "CLSID key should be rolled back")
	ok, _ = h.keys.KeyExists(AppIDKeyPath(testCLSID))
	require.False(t, ok, "AppID key should be rolled back")
}

func TestRegister_RollbackKeepsEarlierRegistration(t *testing.T) {
	h := newHarness(t, Options{RollbackOnFailure: true})

	_, err := h.svc.Register("a.b.c", testCLSID, "Demo")
	require.NoError(t, err)

	h.links.fail["persist"] = errBoom
	_, err = h.svc.Register("a.b.c", testCLSID, "Demo")
	require.ErrorIs(t, err, errBoom)

	st, err := h.svc.Status(NewIdentity("a.b.c", testCLSID, "Demo"))
	require.NoError(t, err)
	require.Equal(t, Present, st.State(), "shortcut=%t server=%t", st.Shortcut.Present, st.Server.Present)
	require.NotContains(t, h.keys.ops, "delete "+CLSIDKeyPath(testCLSID))
}

func TestDeregister_RegistryDeleteFailure(t *testing.T) {
	h := newHarness(t, Options{})

	path, err := h.svc.Register("a.b.c", testCLSID, "Demo")
	require.NoError(t, err)
	h.keys.failOn["delete "+CLSIDKeyPath(testCLSID)] = os.ErrPermission

	err = h.svc.Deregister("a.b.c", testCLSID, "Demo")
	var regErr *RegistryError
	require.True(t, errors.As(err, &regErr), "got %v", err)
	require.Equal(t, "delete", regErr.Op)
	require.Equal(t, CLSIDKeyPath(testCLSID), regErr.Path)
	require.ErrorIs(t, err, os.ErrPermission)
	require.False(t, errors.Is(err, ErrNotFound))
	require.Contains(t, err.Error(), CLSIDKeyPath(testCLSID))

	require.FileExists(t, path, "shortcut phase must not run")
	ok, _ := h.keys.KeyExists(CLSIDKeyPath(testCLSID))
	require.True(t, ok)
}

func TestDeregister_AppIDDeleteFailure(t *testing.T) {
	h := newHarness(t, Options{})

	_, err := h.svc.Register("a.b.c", testCLSID, "Demo")
	require.NoError(t, err)
	h.keys.failOn["delete "+AppIDKeyPath(testCLSID)] = os.ErrPermission

	err = h.svc.Deregister("a.b.c", testCLSID, "Demo")
	var regErr *RegistryError
	require.True(t, errors.As(err, &regErr), "got %v", err)
	require.Equal(t, AppIDKeyPath(testCLSID), regErr.Path)
	require.False(t, errors.Is(err, ErrNotFound))
}

func TestDeregister_ShortcutRemoveFailure(t *testing.T) {
	h := newHarness(t, Options{})

	path, err := h.svc.Register("a.b.c", testCLSID, "Demo")
	require.NoError(t, err)

	// A non-empty directory in place of the shortcut cannot be removed.
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(path, "keep"), nil, 0644))

	err = h.svc.Deregister("a.b.c", testCLSID, "Demo")
	var ioErr *IoError
	require.True(t, errors.As(err, &ioErr), "got %v", err)
	require.Equal(t, "remove", ioErr.Op)
	require.Equal(t, path, ioErr.Path)
	require.False(t, errors.Is(err, ErrNotFound))
}

func TestRegister_RegistryFailureStopsBeforeShortcut(t *testing.T) {
	h := newHarness(t, Options{})
	h.keys.failOn["set "+CLSIDKeyPath(testCLSID)] = errBoom

	_, err := h.svc.Register("a.b.c", testCLSID, "Demo")
	var regErr *RegistryError
	require.True(t, errors.As(err, &regErr), "got %v", err)
	require.Equal(t, "write", regErr.Op)
	require.False(t, errors.Is(err, ErrNotFound))
	require.Zero(t, h.links.newCalls, "shortcut phase must not run")
}

func TestRegister_UnresolvableExecutable(t *testing.T) {
	h := newHarness(t, Options{})
	h.env.exeErr = errBoom

	_, err := h.svc.Register("a.b.c", testCLSID, "Demo")
	var ioErr *IoError
	require.True(t, errors.As(err, &ioErr), "got %v", err)
}

func TestApply_RuntimeAcquiredAndReleasedPerCall(t *testing.T) {
	h := newHarness(t, Options{})

	_, err := h.svc.Register("a.b.c", testCLSID, "Demo")
	require.NoError(t, err)
	_ = h.svc.Deregister("a.b.c", testCLSID, "Demo")
	_ = h.svc.Deregister("a.b.c", testCLSID, "Demo")

	require.Equal(t, 3, h.runtime.acquired)
	require.Equal(t, 3, h.runtime.released)
}

func TestApply_RuntimeFailure(t *testing.T) {
	h := newHarness(t, Options{})
	h.runtime.err = errBoom

	_, err := h.svc.Register("a.b.c", testCLSID, "Demo")
	var platErr *PlatformError
	require.True(t, errors.As(err, &platErr))
	require.Empty(t, h.keys.ops)
}

func TestApply_InvalidIdentity(t *testing.T) {
	h := newHarness(t, Options{})

	_, err := h.svc.Register("", testCLSID, "Demo")
	require.ErrorIs(t, err, ErrInvalidIdentity)
	err = h.svc.Deregister("a.b.c", "", "Demo")
	require.ErrorIs(t, err, ErrInvalidIdentity)
	require.Zero(t, h.runtime.acquired)
}

func TestStatus_Partial(t *testing.T) {
	h := newHarness(t, Options{})

	_, err := h.svc.Register("a.b.c", testCLSID, "Demo")
	require.NoError(t, err)
	require.NoError(t, h.keys.DeleteTree(CLSIDKeyPath(testCLSID)))

	st, err := h.svc.Status(NewIdentity("a.b.c", testCLSID, "Demo"))
	require.NoError(t, err)
	require.Equal(t, Partial, st.State())
}

func TestStatus_Mismatches(t *testing.T) {
	h := newHarness(t, Options{})

	_, err := h.svc.Register("a.b.c", testCLSID, "Demo")
	require.NoError(t, err)

	st, err := h.svc.Status(NewIdentity("x.y.z", testCLSID, "Demo"))
	require.NoError(t, err)
	require.Len(t, st.Mismatches(), 1)
	require.Contains(t, st.Mismatches()[0], "AUMID")
}

func TestRegisterDeregister_RoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		aumid := rapid.StringMatching(`[a-z]{1,8}(\.[a-z0-9]{1,8}){1,3}`).Draw(rt, "aumid")
		clsid := rapid.StringMatching(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`).Draw(rt, "clsid")
		appName := rapid.StringMatching(`([A-Za-z][A-Za-z0-9 _-]{0,15})?`).Draw(rt, "appName")

		h := newHarness(t, Options{})
		path, err := h.svc.Register(aumid, clsid, appName)
		if err != nil {
			rt.Fatalf("register: %v", err)
		}
		want := appName
		if want == "" {
			want = aumid
		}
		if filepath.Base(path) != want+".lnk" {
			rt.Fatalf("shortcut name = %q, want %q", filepath.Base(path), want+".lnk")
		}

		if err := h.svc.Deregister(aumid, clsid, appName); err != nil {
			rt.Fatalf("deregister: %v", err)
		}
		st, err := h.svc.Status(NewIdentity(aumid, clsid, appName))
		if err != nil {
			rt.Fatalf("status: %v", err)
		}
		if st.State() != Absent {
			rt.Fatalf("state after round trip = %s, want absent", st.State())
		}
	})
}
