// Package buildinfo предоставляет информацию о сборке приложения:
// версию, дату сборки и commit hash, задаваемые через ldflags.
package buildinfo

import (
	"fmt"

	"go.uber.org/zap"
)

// Info содержит информацию о сборке приложения
type Info struct {
	Version string
	Date    string
	Commit  string
}

// NewInfo создает структуру с информацией о сборке.
// Пустые значения заменяются на N/A.
func NewInfo(version, date, commit string) *Info {
	if version == "" {
		version = "N/A"
	}
	if date == "" {
		date = "N/A"
	}
	if commit == "" {
		commit = "N/A"
	}
	return &Info{
		Version: version,
		Date:    date,
		Commit:  commit,
	}
}

// String возвращает строковое представление информации о сборке
func (info *Info) String() string {
	return fmt.Sprintf("Version: %s, Date: %s, Commit: %s", info.Version, info.Date, info.Commit)
}

// Fields возвращает поля для структурного логирования
func (info *Info) Fields() []zap.Field {
	return []zap.Field{
		zap.String("version", info.Version),
		zap.String("build_date", info.Date),
		zap.String("commit", info.Commit),
	}
}
