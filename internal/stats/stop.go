package stats

import "os"

// StopFunc - внешний сигнал кооперативной остановки. Опрашивается агрегатором
// на границах пакетов строк.
type StopFunc func() bool

func Never() bool { return false }

// StopFile возвращает сигнал, который срабатывает, как только появляется файл path.
// Пустой путь означает, что остановка файлом отключена.
func StopFile(path string) StopFunc {
	if path == "" {
		return Never
	}
	return func() bool {
		_, err := os.Stat(path)
		return err == nil
	}
}

// AnyStop срабатывает, если сработал хотя бы один из сигналов.
func AnyStop(fns ...StopFunc) StopFunc {
	return func() bool {
		for _, fn := range fns {
			if fn != nil && fn() {
				return true
			}
		}
		return false
	}
}
