package commands

import (
	"bytes"
	"runtime"
	"testing"
)

// withTempConfig переопределяет пользовательский конфиг-каталог на время
// теста, чтобы артефакты (токены/логин) создавались в temp.
func withTempConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if runtime.GOOS == "windows" {
		t.Setenv("APPDATA", dir)
	} else {
		t.Setenv("XDG_CONFIG_HOME", dir)
	}
	return dir
}

// captureOut перенаправляет вывод команд в буфер на время теста.
func captureOut(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	old := Out
	Out = buf
	t.Cleanup(func() { Out = old })
	return buf
}
